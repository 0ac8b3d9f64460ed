package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harvestlane/storefront-gateway/api/controllers"
	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/internal/account"
	"github.com/harvestlane/storefront-gateway/internal/auth"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/internal/catalog"
	checkoutsvc "github.com/harvestlane/storefront-gateway/internal/checkout"
	"github.com/harvestlane/storefront-gateway/internal/reviews"
	"github.com/harvestlane/storefront-gateway/internal/wishlist"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/harvestlane/storefront-gateway/pkg/redis"
)

// Deps collects everything the storefront surface is wired with.
type Deps struct {
	Cfg  *config.Config
	Logg *logger.Logger

	RedisPinger redis.Pinger
	Gatherer    prometheus.Gatherer

	Catalog  *catalog.Service
	Auth     *auth.Service
	Account  *account.Service
	Checkout *checkoutsvc.Service
	Reviews  *reviews.Service
	Handoff  *checkoutsvc.Handoff

	Carts  *cart.Registry
	Wishes *wishlist.Registry
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Cfg, d.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Session(cfg.Session, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.RedisPinger))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-otp", controllers.AuthRequestOTP(d.Auth, logg))
		r.Post("/verify-otp", controllers.AuthVerifyOTP(d.Auth, cfg, logg))
		r.Put("/complete-profile", controllers.AuthCompleteProfile(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(cfg, d.Carts, d.Wishes, logg))
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.Catalog, logg))
		r.Get("/search", controllers.ProductSearch(d.Catalog, logg))
		r.Get("/category/{slug}", controllers.ProductsByCategory(d.Catalog, logg))
		r.Get("/{productId}", controllers.ProductDetail(d.Catalog, logg))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(d.Catalog, logg))
		r.Get("/{categoryId}", controllers.CategoryDetail(d.Catalog, logg))
	})

	r.Get("/offer", controllers.OfferList(d.Catalog, logg))

	r.Route("/review", func(r chi.Router) {
		r.Get("/{productId}", controllers.ReviewList(d.Reviews, logg))
		r.Post("/", controllers.ReviewSubmit(d.Reviews, cfg, logg))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", controllers.CartFetch(d.Carts, cfg, logg))
		r.Post("/", controllers.CartAdd(d.Carts, cfg, logg))
		r.Delete("/{itemId}", controllers.CartRemove(d.Carts, cfg, logg))
		r.Post("/{itemId}/increase", controllers.CartIncrease(d.Carts, logg))
		r.Post("/{itemId}/decrease", controllers.CartDecrease(d.Carts, logg))
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", controllers.WishlistFetch(d.Wishes, logg))
		r.Post("/add", controllers.WishlistAdd(d.Wishes, cfg, logg))
		r.Delete("/{productId}", controllers.WishlistRemove(d.Wishes, cfg, logg))
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/profile", controllers.AccountProfile(d.Account, cfg, logg))
	})

	r.Get("/order/history", controllers.AccountOrders(d.Account, cfg, logg))

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/config", controllers.CheckoutConfig(d.Checkout))
		r.Post("/stage/buy-now", controllers.CheckoutStageBuyNow(d.Handoff, logg))
		r.Post("/stage/cart", controllers.CheckoutStageCart(d.Handoff, d.Carts, logg))
		r.Post("/initiate", controllers.CheckoutInitiate(d.Checkout, d.Handoff, d.Account, cfg, logg))
		r.Post("/confirm/{paymentIntentId}", controllers.CheckoutConfirm(d.Checkout, d.Handoff, d.Account, cfg, logg))
		r.Post("/create-payment", controllers.CheckoutCreatePayment(d.Checkout, cfg, logg))
		r.Post("/verify-payment", controllers.CheckoutVerifyPayment(d.Checkout, cfg, logg))
	})

	return r
}
