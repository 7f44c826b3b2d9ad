package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmuriuki/agrimarket-backend/api/controllers"
	"github.com/dmuriuki/agrimarket-backend/api/middleware"
	"github.com/dmuriuki/agrimarket-backend/internal/articles"
	"github.com/dmuriuki/agrimarket-backend/internal/auth"
	"github.com/dmuriuki/agrimarket-backend/internal/media"
	"github.com/dmuriuki/agrimarket-backend/internal/messages"
	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/orders"
	"github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/internal/reviews"
	"github.com/dmuriuki/agrimarket-backend/pkg/config"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/logger"
	"github.com/dmuriuki/agrimarket-backend/pkg/metrics"
	"github.com/dmuriuki/agrimarket-backend/pkg/redis"
	"github.com/dmuriuki/agrimarket-backend/pkg/storage/gcs"
)

// Deps carries everything the router needs to wire the HTTP surface.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client
	GCS   gcs.Pinger

	AuthService     auth.Service
	RegisterService auth.RegisterService

	Products      products.Service
	Orders        orders.Service
	Reviews       reviews.Service
	Notifications notifications.Service
	Messages      messages.Service
	Media         media.Service
	Articles      articles.Service

	HTTPMetrics *metrics.HTTPMetrics
	Registry    prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.GCS))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Anonymous catalogue and content reads.
		r.Group(func(r chi.Router) {
			r.Get("/products", controllers.ListProducts(deps.Products, logg))
			r.Get("/products/{productId}", controllers.GetProduct(deps.Products, logg))
			r.Get("/products/{productId}/reviews", controllers.ListProductReviews(deps.Reviews, logg))
			r.Get("/articles", controllers.ListArticles(deps.Articles, logg))
			r.Get("/articles/{slug}", controllers.GetArticleBySlug(deps.Articles, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))

			r.Get("/me", controllers.ProfileGet(deps.AuthService, logg))
			r.Put("/me", controllers.ProfileUpdate(deps.AuthService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).Post("/", controllers.PlaceOrder(deps.Orders, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleFarmer), logg)).Post("/{orderId}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
			})

			r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).Post("/reviews", controllers.CreateReview(deps.Reviews, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", controllers.SendMessage(deps.Messages, logg))
				r.Get("/conversations", controllers.ListConversations(deps.Messages, logg))
				r.Get("/conversations/{conversationId}", controllers.ListConversationMessages(deps.Messages, logg))
			})

			r.Route("/media", func(r chi.Router) {
				r.Post("/presign", controllers.MediaPresign(deps.Media, logg))
				r.Post("/confirm", controllers.MediaConfirm(deps.Media, logg))
				r.Get("/{mediaId}", controllers.MediaGet(deps.Media, logg))
			})

			r.Route("/farmer", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleFarmer), logg))
				r.Get("/listings", controllers.FarmerListListings(deps.Products, logg))
				r.Post("/products", controllers.FarmerCreateListing(deps.Products, logg))
				r.Patch("/products/{productId}", controllers.FarmerUpdateListing(deps.Products, logg))
				r.Delete("/products/{productId}", controllers.FarmerDeleteListing(deps.Products, logg))
				r.Post("/articles", controllers.FarmerCreateArticle(deps.Articles, logg))
				r.Patch("/articles/{articleId}", controllers.FarmerUpdateArticle(deps.Articles, logg))
			})
		})
	})

	return r
}
