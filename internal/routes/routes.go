package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"apporbit/internal/handlers"
	"apporbit/internal/identity"
	"apporbit/internal/middleware"
	"apporbit/internal/services"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Products   *services.ProductService
	Reports    *services.ReportService
	Reviews    *services.ReviewService
	Users      *services.UserService
	Coupons    *services.CouponService
	Payment    *services.PaymentService
	Statistics *services.StatisticsService

	Verifier    identity.Verifier
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	Ping        handlers.PingFunc
	Logger      *zap.Logger
}

// NewRouter builds the engine with the middleware chain and every route.
func NewRouter(d Deps) *gin.Engine {
	if err := handlers.RegisterValidators(); err != nil {
		d.Logger.Warn("custom validators not registered", zap.Error(err))
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			d.Logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		}),
		middleware.Metrics(),
		middleware.CORS(d.CORSOrigins),
	)

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(router *gin.Engine, d Deps) {
	userAuth := middleware.UserAuth(d.Verifier, d.Logger)
	modAuth := middleware.ModeratorAuth(d.Verifier, d.Logger)
	adminAuth := middleware.AdminAuth(d.Verifier, d.Logger)

	router.GET("/", handlers.Home())
	router.GET("/healthz", handlers.Healthz(d.Ping))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.WritesOnly())
	}

	products := api.Group("/products")
	{
		products.POST("", userAuth, handlers.SubmitProduct(d.Products))
		products.GET("", handlers.ListProducts(d.Products))
		products.GET("/trending", handlers.ListTrendingProducts(d.Products))
		products.GET("/featured", handlers.ListFeaturedProducts(d.Products))
		products.GET("/mine", userAuth, handlers.ListMyProducts(d.Products))
		products.GET("/pending", modAuth, handlers.ListPendingProducts(d.Products))
		products.GET("/reported", modAuth, handlers.ListReportedProducts(d.Products))
		products.GET("/:id", handlers.GetProduct(d.Products))
		products.PATCH("/:id", userAuth, handlers.UpdateProduct(d.Products))
		products.DELETE("/:id", userAuth, handlers.DeleteProduct(d.Products))
		products.PATCH("/:id/vote", userAuth, handlers.VoteProduct(d.Products))
		products.PATCH("/:id/accept", modAuth, handlers.AcceptProduct(d.Products))
		products.PATCH("/:id/reject", modAuth, handlers.RejectProduct(d.Products))
		products.PATCH("/:id/feature", modAuth, handlers.FeatureProduct(d.Products))
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("", handlers.ListReviews(d.Reviews))
		reviews.POST("", userAuth, handlers.AddReview(d.Reviews))
	}

	reports := api.Group("/reports")
	{
		reports.GET("", modAuth, handlers.ListReports(d.Reports))
		reports.POST("", userAuth, handlers.FileReport(d.Reports))
	}

	users := api.Group("/users")
	{
		users.GET("", adminAuth, handlers.ListUsers(d.Users))
		users.GET("/me", userAuth, handlers.GetCurrentUser(d.Users))
		users.GET("/subscription-status", handlers.GetSubscriptionStatus(d.Users, "GET /api/users/subscription-status"))
		users.PUT("/:email", userAuth, handlers.UpsertUser(d.Users))
		users.PATCH("/:id/role", adminAuth, handlers.SetUserRole(d.Users))
	}

	payment := api.Group("/payment")
	{
		payment.GET("/subscription-status", handlers.GetSubscriptionStatus(d.Users, "GET /api/payment/subscription-status"))
		payment.PATCH("/subscribe", userAuth, handlers.Subscribe(d.Users))
		payment.POST("/create-payment-intent", userAuth, handlers.CreatePaymentIntent(d.Payment, "POST /api/payment/create-payment-intent"))
	}

	coupons := api.Group("/coupons")
	{
		coupons.GET("", handlers.ListCoupons(d.Coupons))
		coupons.GET("/valid", handlers.ListValidCoupons(d.Coupons))
		coupons.POST("", adminAuth, handlers.CreateCoupon(d.Coupons))
		coupons.PATCH("/:id", adminAuth, handlers.UpdateCoupon(d.Coupons))
		coupons.DELETE("/:id", adminAuth, handlers.DeleteCoupon(d.Coupons))
		coupons.POST("/create-payment-intent", userAuth, handlers.CreatePaymentIntent(d.Payment, "POST /api/coupons/create-payment-intent"))
	}

	api.GET("/statistics", adminAuth, handlers.GetStatistics(d.Statistics))
}
