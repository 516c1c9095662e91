package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/services"
)

type EventRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	EndDate           time.Time `json:"end_date" binding:"required"`
	Location          string    `json:"location"`
	MaxAttendees      int       `json:"max_attendees"`
	AvailableBenefits []string  `json:"available_benefits"`
}

func (req EventRequest) input() services.EventInput {
	return services.EventInput{
		Title:             helpers.SanitizeText(req.Title),
		Description:       helpers.SanitizeText(req.Description),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Location:          helpers.SanitizeText(req.Location),
		MaxAttendees:      req.MaxAttendees,
		AvailableBenefits: helpers.SanitizeList(req.AvailableBenefits),
	}
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	event, err := svc.Events.Create(c.Request.Context(), middleware.GetActor(c), req.input())
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully.",
		"event":   event,
	})
}

func GetEvent(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	event, err := svc.Events.Get(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListEvents returns the caller's own events.
func ListEvents(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}

	events, err := svc.Events.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func UpdateEvent(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	event, err := svc.Events.Update(c.Request.Context(), middleware.GetActor(c), eventID, req.input())
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func DeleteEvent(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	if err := svc.Events.Delete(c.Request.Context(), middleware.GetActor(c), eventID); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
