package logger

import (
	"context"
	"log/slog"
)

type namespaceKey struct{}

// ContextWithNamespace stores the active queue namespace in ctx.
func ContextWithNamespace(ctx context.Context, ns string) context.Context {
	return context.WithValue(ctx, namespaceKey{}, ns)
}

// NamespaceFromContext returns the namespace stored by ContextWithNamespace.
func NamespaceFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	ns, ok := ctx.Value(namespaceKey{}).(string)
	return ns, ok && ns != ""
}

func namespaceExtractor(ctx context.Context) (slog.Attr, bool) {
	ns, ok := NamespaceFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return Namespace(ns), true
}
