package mutation

import "errors"

var (
	// ErrPayloadNil is returned when a mutation is built without a payload
	ErrPayloadNil = errors.New("mutation payload cannot be nil")

	// ErrInvalidPayload is returned when a payload misses required fields
	ErrInvalidPayload = errors.New("invalid mutation payload")

	// ErrUnknownType is returned when decoding a record with an unsupported kind
	ErrUnknownType = errors.New("unknown mutation type")

	// ErrTypeMismatch is returned when a record's type tag disagrees with its payload
	ErrTypeMismatch = errors.New("mutation type does not match payload")

	// ErrMissingID is returned when decoding a record without an identifier
	ErrMissingID = errors.New("mutation id is required")
)
