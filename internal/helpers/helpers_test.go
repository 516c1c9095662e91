package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithServiceError(c, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondWithServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrInvalidQR, http.StatusNotFound, "invalid_qr"},
		{services.ErrInvalidPin, http.StatusForbidden, "invalid_pin"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{services.ErrAlreadyRedeemed, http.StatusConflict, "already_redeemed"},
		{services.ErrTicketClosed, http.StatusConflict, "ticket_closed"},
		{services.ErrBenefitNotSelected, http.StatusBadRequest, "benefit_not_selected"},
		{&services.BackendError{Op: "get ticket", Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, "backend"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, body := respond(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, http.StatusText(tc.status), body.Error)
			assert.NotContains(t, body.Message, "dial tcp")
		})
	}
}

func TestRespondWithServiceError_Validation(t *testing.T) {
	status, body := respond(t, &services.ValidationError{Field: "holder_email", Message: "is not a valid email address"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body.Code)
	assert.Equal(t, "holder_email", body.Field)
	assert.Equal(t, "is not a valid email address", body.Message)
}

func TestRespondWithServiceError_BackendNamesOperation(t *testing.T) {
	err := fmt.Errorf("redeem: %w", &services.BackendError{Op: "redeem benefit", Err: errors.New("pq: connection reset by peer")})
	status, body := respond(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "backend", body.Code)
	assert.Contains(t, body.Message, "redeem benefit failed")
	assert.NotContains(t, body.Message, "connection reset")
}

func TestParamUUID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := ParamUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Lunch", SanitizeText(" <b>Lunch</b> "))
	assert.Equal(t, "Fish & Chips", SanitizeText("Fish & Chips"))
	assert.Equal(t, "", SanitizeText(`<script>alert(1)</script>`))
	assert.Equal(t, "", SanitizeText(`&lt;script&gt;alert(1)&lt;/script&gt;`))
	assert.Equal(t, "VIP", SanitizeText(`&amp;lt;b&amp;gt;VIP&amp;lt;/b&amp;gt;`))
	assert.NotContains(t, SanitizeText(`&lt;img src=x onerror=alert(1)&gt;Ada`), "<")
	assert.Equal(t, "a < b", SanitizeText("a < b"))
	assert.Equal(t, []string{"WiFi", "Parking"}, SanitizeList([]string{"<i>WiFi</i>", "Parking"}))
	assert.Nil(t, SanitizeList(nil))
	assert.Nil(t, SanitizePtr(nil))
}
