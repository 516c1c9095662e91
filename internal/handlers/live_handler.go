package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/live"
	"github.com/farellandr/eventpass/internal/middleware"
)

// LiveFeed upgrades the request to a websocket that receives redemption
// updates for one event.
func LiveFeed(hub *live.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := helpers.ParamUUID(c, "id")
		if !ok {
			return
		}
		svc, ok := getServices(c)
		if !ok {
			return
		}
		if err := svc.Events.Authorize(c.Request.Context(), middleware.GetActor(c), eventID); err != nil {
			helpers.RespondWithServiceError(c, err)
			return
		}

		// the upgrader has already written the error response
		if err := hub.Serve(c.Writer, c.Request, eventID); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}
