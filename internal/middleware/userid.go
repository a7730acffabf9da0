package middleware

import (
	"context"
	"net/http"
	"strings"
)

const HeaderUserID = "X-User-Id"

type ctxKey string

const ctxUserID ctxKey = "user_id"

// UserID resolves the caller's identity from the X-User-Id header and stores
// it in the request context. There is no authentication; a missing header
// falls back to the fixed demo user so every service call still receives an
// explicit identifier.
func UserID(defaultUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if uid == "" {
				uid = defaultUserID
			}
			ctx := context.WithValue(r.Context(), ctxUserID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
