package mutation

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of a mutation.
type Type string

const (
	TypeAddItem      Type = "ADD_ITEM"
	TypeUpdateItem   Type = "UPDATE_ITEM"
	TypeDeleteItem   Type = "DELETE_ITEM"
	TypeCheckItem    Type = "CHECK_ITEM"
	TypeBatchCheck   Type = "BATCH_CHECK"
	TypeBatchDelete  Type = "BATCH_DELETE"
	TypeReorderItems Type = "REORDER_ITEMS"
)

// Types lists every supported mutation kind.
var Types = []Type{
	TypeAddItem,
	TypeUpdateItem,
	TypeDeleteItem,
	TypeCheckItem,
	TypeBatchCheck,
	TypeBatchDelete,
	TypeReorderItems,
}

// Valid reports whether t is one of the supported kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeAddItem, TypeUpdateItem, TypeDeleteItem, TypeCheckItem,
		TypeBatchCheck, TypeBatchDelete, TypeReorderItems:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Payload is the type-specific data needed to replay a mutation.
// The interface is sealed: only payload types of this package implement it.
type Payload interface {
	Type() Type
	sealed()
}

// AddItem creates a new item in a list.
type AddItem struct {
	ListID   string  `json:"listId" validate:"required"`
	ItemID   string  `json:"itemId" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity,omitempty" validate:"finite,gte=0"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category,omitempty"`
	Position int     `json:"position" validate:"gte=0"`
}

// UpdateItem changes item fields. Nil fields are left untouched.
type UpdateItem struct {
	ItemID   string   `json:"itemId" validate:"required"`
	Name     *string  `json:"name,omitempty" validate:"omitnil,min=1"`
	Quantity *float64 `json:"quantity,omitempty" validate:"omitnil,finite,gte=0"`
	Unit     *string  `json:"unit,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// DeleteItem removes a single item.
type DeleteItem struct {
	ItemID string `json:"itemId" validate:"required"`
}

// CheckItem sets the checked state of a single item.
type CheckItem struct {
	ItemID  string `json:"itemId" validate:"required"`
	Checked bool   `json:"checked"`
}

// BatchCheck sets the same checked state on several items.
type BatchCheck struct {
	ItemIDs []string `json:"itemIds" validate:"required,min=1,dive,required"`
	Checked bool     `json:"checked"`
}

// BatchDelete removes several items.
type BatchDelete struct {
	ItemIDs []string `json:"itemIds" validate:"required,min=1,dive,required"`
}

// Position is a single ordering delta of a reorder operation.
type Position struct {
	ItemID   string `json:"itemId" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// ReorderItems moves items of a list to new positions.
type ReorderItems struct {
	ListID    string     `json:"listId" validate:"required"`
	Positions []Position `json:"positions" validate:"required,min=1,dive"`
}

func (AddItem) Type() Type      { return TypeAddItem }
func (UpdateItem) Type() Type   { return TypeUpdateItem }
func (DeleteItem) Type() Type   { return TypeDeleteItem }
func (CheckItem) Type() Type    { return TypeCheckItem }
func (BatchCheck) Type() Type   { return TypeBatchCheck }
func (BatchDelete) Type() Type  { return TypeBatchDelete }
func (ReorderItems) Type() Type { return TypeReorderItems }

func (AddItem) sealed()      {}
func (UpdateItem) sealed()   {}
func (DeleteItem) sealed()   {}
func (CheckItem) sealed()    {}
func (BatchCheck) sealed()   {}
func (BatchDelete) sealed()  {}
func (ReorderItems) sealed() {}

// PendingMutation is a recorded intent to change remote state.
type PendingMutation struct {
	ID         string
	Type       Type
	Payload    Payload
	Timestamp  time.Time
	RetryCount int
}

// New validates the payload and builds a PendingMutation with a fresh ID,
// the current time and a zero retry count.
func New(payload Payload) (PendingMutation, error) {
	return NewAt(payload, time.Now())
}

// NewAt is like New but uses the given creation time.
func NewAt(payload Payload, ts time.Time) (PendingMutation, error) {
	payload, err := Normalize(payload)
	if err != nil {
		return PendingMutation{}, err
	}
	if err := Validate(payload); err != nil {
		return PendingMutation{}, err
	}
	return PendingMutation{
		ID:        uuid.NewString(),
		Type:      payload.Type(),
		Payload:   payload,
		Timestamp: ts,
	}, nil
}

// Attempt returns the 1-based number of the next execution attempt.
func (m PendingMutation) Attempt() int {
	return m.RetryCount + 1
}
