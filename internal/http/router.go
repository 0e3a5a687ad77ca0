package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"feedtrans/internal/handler"
)

func NewRouter(
	feedHandler *handler.FeedHandler,
	pipelineHandler *handler.PipelineHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(RequestLoggerMiddleware())
	e.Use(middleware.Recover())

	e.GET("/healthz", handler.Health)
	feedHandler.RegisterRoutes(e)

	api := e.Group("/api")
	pipelineHandler.RegisterRoutes(api)

	return e
}
