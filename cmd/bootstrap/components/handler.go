package components

import (
	"airdine/internal/handler"
	"airdine/internal/handler/api"
	"airdine/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewOfferHandler,
		api.NewActivationHandler,
		api.NewRestaurantHandler,
		api.NewBookingHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
