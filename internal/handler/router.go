package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"airdine/internal/handler/api"
	"airdine/internal/handler/middleware"
	"airdine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	offerHandler *api.OfferHandler,
	activationHandler *api.ActivationHandler,
	restaurantHandler *api.RestaurantHandler,
	bookingHandler *api.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, offerHandler, activationHandler, restaurantHandler, bookingHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	offerHandler *api.OfferHandler,
	activationHandler *api.ActivationHandler,
	restaurantHandler *api.RestaurantHandler,
	bookingHandler *api.BookingHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: authHandler.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		offers := apiGroup.Group("/offers")
		{
			// Listing works anonymously but hides used-up offers for known users.
			addRoutes(offers, []route{
				{Method: http.MethodGet, Path: "", Handler: offerHandler.List, Mw: []gin.HandlerFunc{authMiddleware.OptionalAuth()}},
				{Method: http.MethodGet, Path: "/featured", Handler: offerHandler.Featured},
				{Method: http.MethodGet, Path: "/trending", Handler: offerHandler.Trending},
				{Method: http.MethodGet, Path: "/stats", Handler: offerHandler.Stats},
			})

			offersAuth := offers.Group("")
			offersAuth.Use(authMiddleware.RequireAuth())
			addRoutes(offersAuth, []route{
				{Method: http.MethodGet, Path: "/usage", Handler: offerHandler.UsageSummary},
				{Method: http.MethodPost, Path: "/redeem", Handler: offerHandler.Redeem},
				{Method: http.MethodPost, Path: "/:id/activate", Handler: offerHandler.Activate},
			})

			addRoutes(offers, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: offerHandler.Get},
			})
		}

		activations := apiGroup.Group("/activations")
		activations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(activations, []route{
				{Method: http.MethodGet, Path: "", Handler: activationHandler.ListMine},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: activationHandler.Cancel},
			})
		}

		restaurants := apiGroup.Group("/restaurants")
		{
			addRoutes(restaurants, []route{
				{Method: http.MethodGet, Path: "", Handler: restaurantHandler.List, Mw: []gin.HandlerFunc{authMiddleware.OptionalAuth()}},
				{Method: http.MethodGet, Path: "/:id", Handler: restaurantHandler.Get},
			})

			restaurantsAuth := restaurants.Group("")
			restaurantsAuth.Use(authMiddleware.RequireAuth())
			addRoutes(restaurantsAuth, []route{
				{Method: http.MethodGet, Path: "/:id/activations", Handler: restaurantHandler.ListActivations},
				{Method: http.MethodPut, Path: "/:id/favorite", Handler: restaurantHandler.Favorite},
				{Method: http.MethodDelete, Path: "/:id/favorite", Handler: restaurantHandler.Unfavorite},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.Cancel},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
