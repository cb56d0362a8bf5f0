package authkit

import (
	"net/http"
)

// Middleware provides HTTP middleware enforcing permission decisions. It is
// router-agnostic: handlers wrap plain http.Handler values, so it composes
// with chi, gorilla/mux and the standard library.
type Middleware struct {
	authority    *Authority
	getEntity    func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := authkit.NewMiddleware(authority,
//	    authkit.WithEntityExtractor(func(r *http.Request) string {
//	        return r.Header.Get("X-Entity")
//	    }),
//	)
func NewMiddleware(authority *Authority, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		authority:    authority,
		getEntity:    defaultGetEntity,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithEntityExtractor sets a custom function to extract the acting entity's
// name from a request.
func WithEntityExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getEntity = fn
	}
}

// WithErrorHandler sets a custom error handler for the middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetEntity(r *http.Request) string {
	return EntityFromContext(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsAccessDenied(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsEntityNotFound(err), IsPermissionUnset(err), IsNoEntity(err):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case IsPermissionNotFound(err), IsRoleNotFound(err), IsInvalidName(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// EntityFromHeader creates an entity extractor that reads the entity name
// from a header.
//
// Example:
//
//	// For header X-Entity: user:alice
//	authkit.WithEntityExtractor(authkit.EntityFromHeader("X-Entity"))
func EntityFromHeader(headerName string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// EntityFromQuery creates an entity extractor that reads the entity name
// from a query parameter.
func EntityFromQuery(queryParam string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.URL.Query().Get(queryParam)
	}
}

// RequirePermission creates middleware that requires the acting entity to
// hold the given permission. On success a Checker for the entity is stored
// in the request context for handlers.
//
// Example:
//
//	mux.Handle("/reports",
//	    mw.RequirePermission(authkit.ByPermissionKey("reports:READ"))(reportsHandler))
func (m *Middleware) RequirePermission(perm PermissionRef) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			name := m.getEntity(r)
			if name == "" {
				m.errorHandler(w, r, ErrNoEntity)
				return
			}

			allowed, err := m.authority.CanEntityDo(ByEntityName(name), perm)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				m.errorHandler(w, r, NewError(ErrAccessDenied, "missing required permission").
					WithEntity(name).
					WithHeld(m.authority.heldPermissionKeys(ByEntityName(name))))
				return
			}

			// Add checker to context for use in handlers. A NONE-level
			// requirement can pass for an unregistered entity, in which
			// case there is no checker to add.
			if checker, err := m.authority.Checker(ByEntityName(name)); err == nil {
				ctx = WithChecker(ctx, checker)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission creates middleware that requires the acting entity to
// hold at least one of the given permissions.
func (m *Middleware) RequireAnyPermission(perms ...PermissionRef) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			name := m.getEntity(r)
			if name == "" {
				m.errorHandler(w, r, ErrNoEntity)
				return
			}

			var lastErr error
			for _, perm := range perms {
				allowed, err := m.authority.CanEntityDo(ByEntityName(name), perm)
				if err != nil {
					lastErr = err
					continue
				}
				if allowed {
					if checker, err := m.authority.Checker(ByEntityName(name)); err == nil {
						ctx = WithChecker(ctx, checker)
						r = r.WithContext(ctx)
					}
					next.ServeHTTP(w, r)
					return
				}
				lastErr = nil
			}

			if lastErr != nil {
				m.errorHandler(w, r, lastErr)
				return
			}
			m.errorHandler(w, r, NewError(ErrAccessDenied, "missing required permission").
				WithEntity(name).
				WithHeld(m.authority.heldPermissionKeys(ByEntityName(name))))
		})
	}
}

// Protect wraps a single handler, shorthand for RequirePermission when no
// middleware chain is in play.
func (m *Middleware) Protect(perm PermissionRef, next http.Handler) http.Handler {
	return m.RequirePermission(perm)(next)
}
