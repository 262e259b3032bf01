package utils

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"caradmin/internal/pkg/response"
)

// ParamID parses a positive int64 path parameter. On failure it writes
// 400 INVALID_ID and returns false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// QueryBool reads an optional boolean query parameter.
func QueryBool(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// QueryInt reads an int query parameter, def when missing or malformed.
func QueryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
