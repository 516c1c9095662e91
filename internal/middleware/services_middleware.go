package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/services"
)

func ServicesMiddleware(svc *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("services", svc)
		c.Next()
	}
}

func GetServices(c *gin.Context) *services.Services {
	svc, exists := c.Get("services")
	if !exists {
		return nil
	}
	return svc.(*services.Services)
}
