package mutation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("finite", isFinite); err != nil {
			panic(err)
		}
	})
	return validate
}

// isFinite rejects NaN and infinities, which JSON cannot encode.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return true
}

// Validate checks that the payload carries every field its kind requires.
func Validate(payload Payload) error {
	payload, err := Normalize(payload)
	if err != nil {
		return err
	}

	if err := payloadValidator().Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, payload.Type(), strings.Join(fields, ", "))
		}
		return errors.Join(ErrInvalidPayload, err)
	}
	return nil
}

// Normalize dereferences pointer payloads so that every payload stored in a
// PendingMutation is a value of one of the declared payload types.
func Normalize(payload Payload) (Payload, error) {
	switch p := payload.(type) {
	case nil:
		return nil, ErrPayloadNil
	case AddItem, UpdateItem, DeleteItem, CheckItem, BatchCheck, BatchDelete, ReorderItems:
		return p, nil
	case *AddItem:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *UpdateItem:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *DeleteItem:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *CheckItem:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *BatchCheck:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *BatchDelete:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	case *ReorderItems:
		if p == nil {
			return nil, ErrPayloadNil
		}
		return *p, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, payload)
	}
}
