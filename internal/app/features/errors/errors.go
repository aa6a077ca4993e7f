// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
)

// Handler answers the router's fallback routes.
// No backend needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers known paths with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}

// Forbidden tells a signed-in user which role they hold; signed-out callers
// get 401 instead.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	role, _, _, signedIn := authz.UserCtx(r)
	if !signedIn {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	respond.JSON(w, http.StatusForbidden, map[string]string{
		"error": "you don't have permission to view this page",
		"role":  role,
	})
}
