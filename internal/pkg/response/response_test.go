package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatebot/internal/domain/reason"
)

func TestReason_WritesCodeAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Reason(c, reason.PropertyUnavailable)

	assert.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "PROPERTY_UNAVAILABLE", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

func TestInternal_RecordsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Internal(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestStatusFor(t *testing.T) {
	cases := map[reason.Code]int{
		reason.UserNotFound:       http.StatusNotFound,
		reason.AlreadyPending:     http.StatusConflict,
		reason.RoleChangeLocked:   http.StatusForbidden,
		reason.InvalidRatingValue: http.StatusBadRequest,
		reason.FreePeriodUsed:     http.StatusConflict,
		reason.RoleMismatch:       http.StatusBadRequest,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), code.String())
	}
}
