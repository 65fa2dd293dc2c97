package middleware

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/khub/internal/api"
)

type contextKey string

const (
	SessionIDKey    contextKey = "session_id"
	SessionIDHeader            = "X-Session-ID"
	maxSessionIDLen            = 128
)

// SessionID resolves the explorer session of a request from the
// X-Session-ID header, minting a new id when the header is absent. The id is
// echoed back so clients can keep it.
func SessionID(newID func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionIDHeader)
			if len(id) > maxSessionIDLen {
				api.Error(w, http.StatusBadRequest, "session id too long")
				return
			}
			if id == "" {
				id = newID()
			}

			w.Header().Set(SessionIDHeader, id)
			ctx := context.WithValue(r.Context(), SessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
