package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// pageResponse is the envelope all paginated list endpoints share.
type pageResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// pageParams reads ?page and ?size with defaults and bounds. Size is capped
// at 100 so a single request cannot drag the whole table over the wire.
func pageParams(c echo.Context) (page, size int) {
	page, size = 1, 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil && v > 0 {
		size = v
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
