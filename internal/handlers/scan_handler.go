package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
)

type DecodeRequest struct {
	Payload string `json:"payload" binding:"required"`
}

func StartScanSession(c *gin.Context) {
	eventID, ok := helpers.ParamUUID(c, "id")
	if !ok {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.Start(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func GetScanSession(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.Get(c.Request.Context(), c.Param("sid"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func DecodeScan(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "QR payload is required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.Decode(c.Request.Context(), c.Param("sid"), req.Payload)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func SubmitScanPin(c *gin.Context) {
	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "PIN is required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.SubmitPin(c.Request.Context(), c.Param("sid"), req.Pin)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func RedeemScan(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Benefit and PIN are required.")
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.Redeem(c.Request.Context(), c.Param("sid"), req.Benefit, req.Pin)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func ResetScanSession(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}

	view, err := svc.Scans.Reset(c.Request.Context(), c.Param("sid"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func CloseScanSession(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}

	if err := svc.Scans.Close(c.Request.Context(), c.Param("sid")); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scan session closed.",
	})
}
