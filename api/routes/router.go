package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-cart/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-cart/api/controllers/cart"
	"github.com/angelmondragon/storefront-cart/api/middleware"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions cartcontrollers.Sessions,
	gatherer prometheus.Gatherer,
	deps map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Get("/", cartcontrollers.CartFetch(sessions, logg))
		r.Delete("/", cartcontrollers.CartClear(sessions, logg))

		r.Post("/items", cartcontrollers.CartAddItem(sessions, logg))
		r.Patch("/items/{itemID}", cartcontrollers.CartUpdateQuantity(sessions, logg))
		r.Delete("/items/{itemID}", cartcontrollers.CartRemoveItem(sessions, logg))
		r.Post("/items/{itemID}/save", cartcontrollers.CartSaveForLater(sessions, logg))

		r.Post("/saved/{itemID}/move", cartcontrollers.CartMoveToCart(sessions, logg))
		r.Delete("/saved/{itemID}", cartcontrollers.CartRemoveSavedItem(sessions, logg))

		r.Post("/coupon", cartcontrollers.CartApplyCoupon(sessions, logg))
		r.Delete("/coupon", cartcontrollers.CartRemoveCoupon(sessions, logg))
	})

	return r
}
