package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hongquyngo/vti-production-sub002/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type returnLinePayload struct {
	IssuanceDetailID string `json:"issuance_detail_id" binding:"required,uuid"`
	Condition        string `json:"condition" binding:"required,oneof=GOOD DAMAGED"`
}

type returnPayload struct {
	Reason string              `json:"reason" binding:"required,max=8"`
	Lines  []returnLinePayload `json:"returns" binding:"required,min=1,dive"`
}

func TestValidationDetails_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req returnPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	body := `{"reason":"much too long","returns":[{"issuance_detail_id":"nope","condition":"BROKEN"}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	byField := map[string]string{}
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at most 8 characters", byField["reason"])
	assert.Equal(t, "Invalid UUID format", byField["returns[0].issuance_detail_id"])
	assert.Equal(t, "Must be one of: GOOD DAMAGED", byField["returns[0].condition"])
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	details := ValidationDetails(errors.New("unexpected EOF"))

	require.Len(t, details, 1)
	assert.Equal(t, "body", details[0].Field)
	assert.Equal(t, "unexpected EOF", details[0].Message)
}
