package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Namespace records the queue namespace under the key "namespace".
func Namespace(ns string) slog.Attr {
	return slog.String("namespace", ns)
}

// MutationID records the mutation identifier under the key "mutation_id".
// If id is empty, it returns an empty Attr.
func MutationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("mutation_id", id)
}

// MutationType records the mutation kind under the key "mutation_type".
func MutationType[T ~string](t T) slog.Attr {
	return slog.String("mutation_type", string(t))
}

// RetryCount records the number of failed attempts under the key "retry_count".
func RetryCount(n int) slog.Attr {
	return slog.Int("retry_count", n)
}

// StorageKey records the persistence key under the key "storage_key".
func StorageKey(key string) slog.Attr {
	return slog.String("storage_key", key)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a lifecycle event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Duration records an elapsed duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
