package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	serve := func(header string) (string, string) {
		var seen string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodPost, "/mutations", nil)
		if header != "" {
			req.Header.Set(requestid.Header, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return seen, rec.Header().Get(requestid.Header)
	}

	t.Run("reuses a valid incoming id", func(t *testing.T) {
		t.Parallel()

		seen, echoed := serve("pass-42")
		assert.Equal(t, "pass-42", seen)
		assert.Equal(t, "pass-42", echoed)
	})

	t.Run("generates when missing or invalid", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "has space", "a/b", strings.Repeat("x", 129)} {
			seen, echoed := serve(in)
			require.NotEmpty(t, seen, in)
			assert.NotEqual(t, in, seen)
			assert.Equal(t, seen, echoed)
			assert.True(t, requestid.Valid(seen))
		}
	})
}

func TestEnsure(t *testing.T) {
	t.Parallel()

	ctx, id := requestid.Ensure(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, requestid.FromContext(ctx))

	same, again := requestid.Ensure(ctx)
	assert.Equal(t, id, again)
	assert.Equal(t, ctx, same)
}

func TestSetHeader(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	requestid.SetHeader(context.Background(), h)
	assert.Empty(t, h.Get(requestid.Header))

	requestid.SetHeader(requestid.WithContext(context.Background(), "abc_1"), h)
	assert.Equal(t, "abc_1", h.Get(requestid.Header))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	ex := requestid.LoggerExtractor()
	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(requestid.WithContext(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
