package remote

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderSignature      = "X-Sync-Signature"
	HeaderTimestamp      = "X-Sync-Timestamp"
	HeaderID             = "X-Sync-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderMutationType   = "X-Sync-Mutation-Type"
)

// Signature authenticates a request body. The MAC covers
// "<unix timestamp>.<body>" so a captured request cannot be replayed later.
type Signature struct {
	Value     string
	Timestamp int64
	ID        string
}

// Apply sets the signature headers on h.
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderSignature, s.Value)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderID, s.ID)
}

// Sign computes an HMAC-SHA256 signature of body at time now.
func Sign(secret string, body []byte, now time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if len(body) == 0 {
		return Signature{}, fmt.Errorf("%w: body cannot be empty", ErrInvalidMutation)
	}
	ts := now.Unix()
	return Signature{
		Value:     mac(secret, ts, body),
		Timestamp: ts,
		ID:        uuid.NewString(),
	}, nil
}

// Verify checks sig against body. A positive maxAge rejects signatures older
// than maxAge or more than a minute in the future.
func Verify(secret string, body []byte, sig Signature, maxAge time.Duration, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfiguration)
	}
	if sig.Value == "" {
		return fmt.Errorf("%w: signature is missing", ErrInvalidSignature)
	}
	if maxAge > 0 {
		age := now.Sub(time.Unix(sig.Timestamp, 0))
		if age > maxAge {
			return fmt.Errorf("%w: timestamp too old: %v", ErrInvalidSignature, age)
		}
		if age < -time.Minute {
			return fmt.Errorf("%w: timestamp is in the future", ErrInvalidSignature)
		}
	}
	expected := mac(secret, sig.Timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(sig.Value)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

// SignatureFromHeader reads signature headers from an HTTP request.
func SignatureFromHeader(h http.Header) (Signature, error) {
	sig := Signature{
		Value: h.Get(HeaderSignature),
		ID:    h.Get(HeaderID),
	}
	raw := h.Get(HeaderTimestamp)
	if sig.Value == "" || raw == "" {
		return Signature{}, fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
	}
	sig.Timestamp = ts
	return sig, nil
}

func mac(secret string, ts int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", ts)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
