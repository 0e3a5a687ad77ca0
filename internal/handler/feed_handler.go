package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// FeedHandler serves the published translated feed.
type FeedHandler struct {
	outputPath string
}

func NewFeedHandler(outputPath string) *FeedHandler {
	return &FeedHandler{outputPath: outputPath}
}

func (h *FeedHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/feed.xml", h.GetFeed)
}

// GetFeed serves the output file. Before the first publish there is nothing
// to serve.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	info, err := os.Stat(h.outputPath)
	if err != nil || info.IsDir() {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "feed not published yet"})
	}
	c.Response().Header().Set(echo.HeaderContentType, rssContentType)
	return c.File(h.outputPath)
}
