package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

// Applier applies a mutation received by the handler. Returning an error
// wrapping ErrPermanentFailure answers 422, which the client will not fix by
// retrying; any other error answers 500.
type Applier interface {
	Apply(ctx context.Context, m mutation.PendingMutation) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, m mutation.PendingMutation) error

func (f ApplierFunc) Apply(ctx context.Context, m mutation.PendingMutation) error {
	return f(ctx, m)
}

// Response is the JSON body returned by the handler.
type Response struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusApplied   = "applied"
	StatusDuplicate = "duplicate"
)

// HandlerOption configures the handler built by NewHandler.
type HandlerOption func(*handler)

// WithSecret requires requests signed with secret.
func WithSecret(secret string) HandlerOption {
	return func(h *handler) {
		h.secret = secret
	}
}

// WithMaxAge rejects signatures older than d. Zero disables the check.
func WithMaxAge(d time.Duration) HandlerOption {
	return func(h *handler) {
		if d >= 0 {
			h.maxAge = d
		}
	}
}

// WithDedupeSize sets how many recent mutation ids are remembered.
func WithDedupeSize(n int) HandlerOption {
	return func(h *handler) {
		if n > 0 {
			h.recent = newRecentIDs(n)
		}
	}
}

// WithMaxBodySize limits request bodies to n bytes.
func WithMaxBodySize(n int64) HandlerOption {
	return func(h *handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *handler) {
		if l != nil {
			h.logger = l
		}
	}
}

type handler struct {
	applier Applier
	secret  string
	maxAge  time.Duration
	maxBody int64
	recent  *recentIDs
	logger  *slog.Logger
}

// NewHandler returns a router serving POST /mutations and GET /health.
// It panics on a nil applier.
func NewHandler(applier Applier, opts ...HandlerOption) chi.Router {
	if applier == nil {
		panic("remote: applier cannot be nil")
	}
	h := &handler{
		applier: applier,
		maxAge:  5 * time.Minute,
		maxBody: 1 << 20,
		recent:  newRecentIDs(1024),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("remote-handler"))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Response{Status: "ok"})
	})
	r.Post(MutationsPath, h.handleMutation)
	return r
}

func (h *handler) handleMutation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, Response{Error: "request body too large"})
		return
	}

	if h.secret != "" {
		sig, err := SignatureFromHeader(r.Header)
		if err == nil {
			err = Verify(h.secret, body, sig, h.maxAge, time.Now())
		}
		if err != nil {
			h.logger.WarnContext(ctx, "rejected unsigned or forged request", logger.Error(err))
			writeJSON(w, http.StatusUnauthorized, Response{Error: "invalid signature"})
			return
		}
	}

	var m mutation.PendingMutation
	if err := json.Unmarshal(body, &m); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	if key := r.Header.Get(HeaderIdempotencyKey); key != "" && key != m.ID {
		writeJSON(w, http.StatusBadRequest, Response{ID: m.ID, Error: "idempotency key does not match mutation id"})
		return
	}
	if err := mutation.Validate(m.Payload); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Response{ID: m.ID, Error: err.Error()})
		return
	}

	switch h.recent.claim(m.ID) {
	case claimDone:
		writeJSON(w, http.StatusOK, Response{ID: m.ID, Status: StatusDuplicate})
		return
	case claimInFlight:
		writeJSON(w, http.StatusConflict, Response{ID: m.ID, Error: "mutation is being applied"})
		return
	}

	if err := h.applier.Apply(ctx, m); err != nil {
		h.recent.release(m.ID)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrPermanentFailure) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.ErrorContext(ctx, "apply failed",
			logger.MutationID(m.ID),
			logger.MutationType(m.Type),
			logger.Error(err))
		writeJSON(w, status, Response{ID: m.ID, Error: err.Error()})
		return
	}

	h.recent.complete(m.ID)
	h.logger.DebugContext(ctx, "mutation applied",
		logger.MutationID(m.ID),
		logger.MutationType(m.Type))
	writeJSON(w, http.StatusOK, Response{ID: m.ID, Status: StatusApplied})
}

func writeJSON(w http.ResponseWriter, status int, v Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
