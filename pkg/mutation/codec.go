package mutation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// record is the persisted shape of a PendingMutation.
type record struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	RetryCount int             `json:"retryCount"`
}

// MarshalJSON encodes the mutation with its payload nested under "payload".
func (m PendingMutation) MarshalJSON() ([]byte, error) {
	payload, err := Normalize(m.Payload)
	if err != nil {
		return nil, err
	}
	if m.Type != "" && m.Type != payload.Type() {
		return nil, fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, m.Type, payload.Type())
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", payload.Type(), err)
	}
	return json.Marshal(record{
		ID:         m.ID,
		Type:       payload.Type(),
		Payload:    raw,
		Timestamp:  m.Timestamp,
		RetryCount: m.RetryCount,
	})
}

// UnmarshalJSON decodes a record, dispatching on its type tag.
func (m *PendingMutation) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return ErrMissingID
	}
	payload, err := DecodePayload(rec.Type, rec.Payload)
	if err != nil {
		return err
	}
	if rec.RetryCount < 0 {
		rec.RetryCount = 0
	}
	*m = PendingMutation{
		ID:         rec.ID,
		Type:       rec.Type,
		Payload:    payload,
		Timestamp:  rec.Timestamp,
		RetryCount: rec.RetryCount,
	}
	return nil
}

// DecodePayload decodes raw JSON into the payload type registered for t.
func DecodePayload(t Type, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrPayloadNil
	}
	switch t {
	case TypeAddItem:
		return decodeAs[AddItem](raw)
	case TypeUpdateItem:
		return decodeAs[UpdateItem](raw)
	case TypeDeleteItem:
		return decodeAs[DeleteItem](raw)
	case TypeCheckItem:
		return decodeAs[CheckItem](raw)
	case TypeBatchCheck:
		return decodeAs[BatchCheck](raw)
	case TypeBatchDelete:
		return decodeAs[BatchDelete](raw)
	case TypeReorderItems:
		return decodeAs[ReorderItems](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func decodeAs[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return p, nil
}

// MarshalList encodes mutations as a JSON array preserving order.
func MarshalList(items []PendingMutation) ([]byte, error) {
	if items == nil {
		items = []PendingMutation{}
	}
	return json.Marshal(items)
}

// UnmarshalList decodes a JSON array of mutations.
// Any malformed record fails the whole list.
func UnmarshalList(data []byte) ([]PendingMutation, error) {
	var items []PendingMutation
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []PendingMutation{}
	}
	return items, nil
}
