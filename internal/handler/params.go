package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 100
)

func parseLimitParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultRunsLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, strconv.ErrSyntax
	}
	return min(limit, maxRunsLimit), nil
}

func idToString(id int64) string {
	return strconv.FormatInt(id, 10)
}
