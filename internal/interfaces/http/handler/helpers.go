package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingParam = errors.New("missing required parameter")

// parseUUID parses a UUID from a raw string.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errMissingParam
	}
	return uuid.Parse(raw)
}

// parseUUIDQuery parses a UUID query parameter.
func parseUUIDQuery(c *gin.Context, name string) (uuid.UUID, error) {
	return parseUUID(c.Query(name))
}

// intQuery reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
