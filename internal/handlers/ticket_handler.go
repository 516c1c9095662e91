package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventpass/internal/credentials"
	"github.com/farellandr/eventpass/internal/helpers"
	"github.com/farellandr/eventpass/internal/middleware"
	"github.com/farellandr/eventpass/internal/render"
	"github.com/farellandr/eventpass/internal/services"
)

type CredentialsRequest struct {
	HolderName  string `json:"holder_name"`
	HolderEmail string `json:"holder_email"`
}

type TicketRequest struct {
	HolderName       string   `json:"holder_name" binding:"required"`
	HolderEmail      string   `json:"holder_email" binding:"required"`
	Role             string   `json:"role"`
	SelectedBenefits []string `json:"selected_benefits"`
	PinCode          string   `json:"pin_code"`
}

type TicketUpdateRequest struct {
	HolderName       *string  `json:"holder_name"`
	HolderEmail      *string  `json:"holder_email"`
	Role             *string  `json:"role"`
	SelectedBenefits []string `json:"selected_benefits"`
	IsActive         *bool    `json:"is_active"`
}

type PinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

type RedeemRequest struct {
	Benefit string `json:"benefit" binding:"required"`
	Pin     string `json:"pin" binding:"required"`
}

type DeliverRequest struct {
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
}

// PreviewCredentials returns a PIN and QR payload without storing a ticket.
// Send the PIN back as pin_code on create to keep it.
func PreviewCredentials(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	holder := credentials.Holder{Name: helpers.SanitizeText(req.HolderName), Email: req.HolderEmail}
	creds, err := svc.Tickets.PreviewCredentials(c.Request.Context(), middleware.GetActor(c), eventID, holder)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, creds)
}

func CreateTicket(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Issue(c.Request.Context(), middleware.GetActor(c), eventID, services.IssueInput{
		HolderName:       helpers.SanitizeText(req.HolderName),
		HolderEmail:      req.HolderEmail,
		Role:             req.Role,
		SelectedBenefits: helpers.SanitizeList(req.SelectedBenefits),
		PinCode:          req.PinCode,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully.",
		"ticket":  ticket,
	})
}

func ListTickets(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	tickets, err := svc.Tickets.ListByEvent(c.Request.Context(), middleware.GetActor(c), eventID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

func GetTicket(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Get(c.Request.Context(), middleware.GetActor(c), ticketID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func UpdateTicket(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req TicketUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Update(c.Request.Context(), middleware.GetActor(c), ticketID, services.TicketUpdateInput{
		HolderName:       helpers.SanitizePtr(req.HolderName),
		HolderEmail:      req.HolderEmail,
		Role:             req.Role,
		SelectedBenefits: helpers.SanitizeList(req.SelectedBenefits),
		IsActive:         req.IsActive,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket updated successfully.",
		"ticket":  ticket,
	})
}

func DeleteTicket(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	if err := svc.Tickets.Delete(c.Request.Context(), middleware.GetActor(c), ticketID); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket deleted successfully.",
	})
}

func DeactivateTicket(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Deactivate(c.Request.Context(), middleware.GetActor(c), ticketID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket deactivated.",
		"ticket":  ticket,
	})
}

func VerifyPin(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "PIN is required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	if err := svc.Tickets.VerifyPin(c.Request.Context(), ticketID, req.Pin); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func RedeemBenefit(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Benefit and PIN are required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Redeem(c.Request.Context(), ticketID, req.Benefit, req.Pin)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Benefit redeemed.",
		"ticket_id":           ticket.ID,
		"used_benefits":       ticket.UsedBenefits,
		"remaining_benefits":  ticket.RemainingBenefits(),
		"total_benefits_used": ticket.TotalBenefitsUsed,
		"status":              ticket.Status(),
	})
}

// LookupTicket is the standalone PIN lookup. It is public and reveals no
// credentials.
func LookupTicket(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "PIN is required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Tickets.LookupByPin(c.Request.Context(), eventID, req.Pin)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func TicketQR(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	size, ok := helpers.QueryInt(c, "size", 0)
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	png, err := svc.Artifacts.TicketQR(c.Request.Context(), middleware.GetActor(c), ticketID, size)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func TicketImage(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	templateID, err := uuid.Parse(c.Query("template_id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid template_id.")
		return
	}
	mode, err := render.ParseMode(c.Query("mode"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid mode.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	png, err := svc.Artifacts.RenderTicket(c.Request.Context(), middleware.GetActor(c), ticketID, templateID, mode)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ticket-%s.png"`, ticketID))
	c.Data(http.StatusOK, "image/png", png)
}

func DeliverTicket(c *gin.Context) {
	ticketID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "template_id is required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	artifact, err := svc.Artifacts.Deliver(c.Request.Context(), middleware.GetActor(c), ticketID, req.TemplateID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":   "Ticket queued for delivery.",
		"recipient": artifact.Recipient,
		"filename":  artifact.Filename,
	})
}
