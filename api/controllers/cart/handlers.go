package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/api/responses"
	"github.com/angelmondragon/storefront-cart/api/validators"
	cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-cart/pkg/errors"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

// Sessions resolves the cart store bound to a shopper session.
type Sessions interface {
	Get(ctx context.Context, sessionID string) (*cartsvc.Store, error)
	Empty() *cartsvc.Store
}

// CartFetch returns the session's cart and its totals.
func CartFetch(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		responses.WriteSuccess(w, newCartView(store))
	})
}

// CartClear empties the cart lines and drops the coupon. Saved items stay.
func CartClear(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.ClearCart()
		responses.WriteSuccess(w, newCartView(store))
	})
}

func CartAddItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.AddItem(payload.Product.toProduct(), payload.Quantity, payload.Variant.toVariant())
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(store))
	})
}

func CartUpdateQuantity(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpdateQuantity(chi.URLParam(r, "itemID"), *payload.Quantity)
		responses.WriteSuccess(w, newCartView(store))
	})
}

func CartRemoveItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.RemoveItem(chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartView(store))
	})
}

func CartSaveForLater(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.SaveForLater(chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartView(store))
	})
}

func CartMoveToCart(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.MoveToCart(chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartView(store))
	})
}

func CartRemoveSavedItem(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.RemoveSavedItem(chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartView(store))
	})
}

// CartApplyCoupon always answers 200; a rejected code is reported in the
// body, not as an error.
func CartApplyCoupon(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		var payload ApplyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := store.ApplyCoupon(payload.Code)
		responses.WriteSuccess(w, CouponView{
			Success: result.Success,
			Message: result.Message,
			Cart:    newCartView(store),
		})
	})
}

func CartRemoveCoupon(sessions Sessions, logg *logger.Logger) http.HandlerFunc {
	return withExistingStore(sessions, logg, func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store) {
		store.RemoveCoupon()
		responses.WriteSuccess(w, newCartView(store))
	})
}

type storeHandler func(w http.ResponseWriter, r *http.Request, store *cartsvc.Store)

// withExistingStore serves requests that cannot create cart state. A session
// minted on this request has nothing to load, so it gets a detached empty
// store instead of a registry entry.
func withExistingStore(sessions Sessions, logg *logger.Logger, next storeHandler) http.HandlerFunc {
	opened := withStore(sessions, logg, next)
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions != nil && middleware.SessionMinted(r.Context()) {
			next(w, r, sessions.Empty())
			return
		}
		opened(w, r)
	}
}

func withStore(sessions Sessions, logg *logger.Logger, next storeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}

		store, err := sessions.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open cart"))
			return
		}

		next(w, r, store)
	}
}
