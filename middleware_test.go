package authkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// TestRequirePermission tests the permission-enforcing middleware
func TestRequirePermission(t *testing.T) {
	a := newTestAuthority(t)
	mw := NewMiddleware(a, WithEntityExtractor(EntityFromHeader("X-Entity")))
	handler := mw.RequirePermission(ByPermissionKey("documents:READ"))(okHandler(t))

	t.Run("No entity header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Unknown entity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:nobody")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:alice")
		rec := httptest.NewRecorder()
		mw.RequirePermission(ByPermissionKey("documents:WRITE"))(okHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Unknown permission key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:alice")
		rec := httptest.NewRecorder()
		mw.RequirePermission(ByPermissionKey("secrets:READ"))(okHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Allowed with checker in context", func(t *testing.T) {
		var checker *Checker
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			checker = CheckerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:alice")
		rec := httptest.NewRecorder()
		mw.RequirePermission(ByPermissionKey("documents:READ"))(inner).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, checker)
		assert.Equal(t, "user:alice", checker.EntityName())
	})

	t.Run("NONE requirement passes unregistered entities", func(t *testing.T) {
		var checker *Checker
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			checker = CheckerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:visitor")
		rec := httptest.NewRecorder()
		mw.RequirePermission(ByPermissionKey("status:NONE"))(inner).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, checker, "unregistered entities have no checker")
	})
}

// TestRequireAnyPermission tests the any-of middleware
func TestRequireAnyPermission(t *testing.T) {
	a := newTestAuthority(t)
	mw := NewMiddleware(a, WithEntityExtractor(EntityFromHeader("X-Entity")))

	handler := mw.RequireAnyPermission(
		ByPermissionKey("documents:WRITE"),
		ByPermissionKey("documents:READ"),
	)(okHandler(t))

	t.Run("Second permission suffices", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:alice")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("None held", func(t *testing.T) {
		require.NoError(t, a.AddUser("carol"))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:carol")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("No entity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// TestEntityExtractors tests the bundled extractors and the context default
func TestEntityExtractors(t *testing.T) {
	t.Run("From header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Entity", "user:alice")
		assert.Equal(t, "user:alice", EntityFromHeader("X-Entity")(req))
	})

	t.Run("From query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?entity=user:bob", nil)
		assert.Equal(t, "user:bob", EntityFromQuery("entity")(req))
	})

	t.Run("Default reads the context", func(t *testing.T) {
		a := newTestAuthority(t)
		mw := NewMiddleware(a)
		handler := mw.Protect(ByPermissionKey("documents:READ"), okHandler(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithEntity(req.Context(), "user:alice"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

// TestWithErrorHandler tests overriding the error responses
func TestWithErrorHandler(t *testing.T) {
	a := newTestAuthority(t)

	var seen error
	mw := NewMiddleware(a,
		WithEntityExtractor(EntityFromHeader("X-Entity")),
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			seen = err
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Entity", "user:alice")
	rec := httptest.NewRecorder()
	mw.RequirePermission(ByPermissionKey("documents:WRITE"))(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.True(t, IsAccessDenied(seen))

	var e *Error
	require.ErrorAs(t, seen, &e)
	assert.Equal(t, []string{"documents:READ"}, e.Held)
}
