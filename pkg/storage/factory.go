package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Factory opens a storage for a DSN whose scheme it was registered for.
type Factory func(ctx context.Context, dsn string) (Storage, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: map[string]Factory{},
}

// Register binds a DSN scheme to a factory, replacing any previous binding.
// Empty schemes and nil factories are ignored.
func Register(scheme string, factory Factory) {
	scheme = normalizeScheme(scheme)
	if scheme == "" || factory == nil {
		return
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[scheme] = factory
}

// Schemes returns the registered schemes, built-in ones excluded.
func Schemes() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]string, 0, len(registry.factories))
	for scheme := range registry.factories {
		out = append(out, scheme)
	}
	return out
}

func lookup(scheme string) (Factory, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	f, ok := registry.factories[normalizeScheme(scheme)]
	return f, ok
}

// Open builds a storage from a DSN.
//
// Built-in schemes are memory:// (also mem://, inmem://) and file://<dir>.
// A DSN without a scheme is treated as a directory path for file storage.
// Other schemes must be registered with Register first.
func Open(ctx context.Context, dsn string) (Storage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty dsn", ErrInvalidDSN)
	}
	// Registered factories parse their own DSNs; some forms such as
	// sqlite://:memory: are not valid URLs.
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		if factory, ok := lookup(scheme); ok {
			return factory(ctx, dsn)
		}
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	scheme := normalizeScheme(parsed.Scheme)
	switch scheme {
	case "", "file":
		path, err := DSNPath(parsed, dsn)
		if err != nil {
			return nil, err
		}
		return NewFileStorage(path)
	case "memory", "mem", "inmem":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// DSNPath extracts a filesystem path from a parsed DSN.
// It accepts bare paths, file:///abs/path, file://relative/path and opaque forms.
func DSNPath(parsed *url.URL, raw string) (string, error) {
	if parsed == nil {
		return "", ErrInvalidDSN
	}
	if strings.TrimSpace(parsed.Scheme) == "" {
		if strings.TrimSpace(raw) == "" {
			return "", ErrInvalidDSN
		}
		return strings.TrimSpace(raw), nil
	}
	path := strings.TrimSpace(parsed.Path)
	if parsed.Host != "" {
		path = parsed.Host + path
	}
	if path == "" {
		path = strings.TrimSpace(parsed.Opaque)
	}
	if path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidDSN)
	}
	return path, nil
}

func normalizeScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}
