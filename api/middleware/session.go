package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-cart/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// SessionHeader carries the shopper's cart session id in both directions.
const SessionHeader = "X-Cart-Session"

const maxSessionIDLen = 128

// Session binds the cart session id, minting one when the client sent none.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
			minted := sessionID == ""
			if minted {
				sessionID = uuid.NewString()
			}
			if !validSessionID(sessionID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session id"))
				return
			}

			w.Header().Set(SessionHeader, sessionID)

			var ctx context.Context
			if minted {
				ctx = WithMintedSession(r.Context(), sessionID)
			} else {
				ctx = WithSessionID(r.Context(), sessionID)
			}
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validSessionID(id string) bool {
	if len(id) > maxSessionIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
