package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func parseIntQuery(c echo.Context, name string) (int, error) {
	return strconv.Atoi(c.QueryParam(name))
}

func isValidStatus(s string) bool {
	return s == "pending" || s == "uploaded" || s == "failed"
}
