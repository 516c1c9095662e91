package helpers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParamUUID reads a uuid path parameter and responds with 400 when it is
// malformed. The second result is false once a response has been written.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid "+name+".")
		return uuid.Nil, false
	}
	return id, true
}

// QueryInt reads an optional integer query parameter.
func QueryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := StringToInt(raw)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return v, true
}
