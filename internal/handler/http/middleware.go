package http

import (
	"net/http"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/httputil"
)

// userIDHeader carries the authenticated caller's identity, set by the auth
// gateway fronting this service.
const userIDHeader = "X-User-ID"

// callerID returns the authenticated user's ID, or "" when the request is
// anonymous.
func callerID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// requireCaller rejects anonymous requests on mutating endpoints.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerID(r) == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("missing user identity"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin loads the caller and rejects non-admins. Used by the
// operator repair endpoints.
func requireAdmin(r *http.Request, users *service.UserService) error {
	caller, err := users.GetByID(r.Context(), callerID(r))
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// CORS sets permissive CORS headers and answers preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
