// internal/testutil/http.go
package testutil

import (
	"context"
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly instead of going
// through a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// SignedInAs attaches the user to the request context the way the session
// middleware would.
func SignedInAs(r *http.Request, u models.User) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		UnitID:   u.UnitID.Hex(),
	})
}
