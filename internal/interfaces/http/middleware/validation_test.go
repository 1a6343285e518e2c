package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createChargeRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3"`
	Method   string `json:"method" binding:"omitempty,oneof=CASH CARD TRANSFER"`
}

func setupValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()
	router.POST("/transactions", func(c *gin.Context) {
		var req createChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	t.Run("missing required field reports the json name", func(t *testing.T) {
		router := setupValidationRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"currency":"USD"}`))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `"amount"`)
		assert.Contains(t, body, "This field is required")
	})

	t.Run("oneof violation lists the choices", func(t *testing.T) {
		router := setupValidationRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/transactions",
			strings.NewReader(`{"amount":"10.00","currency":"USD","method":"BARTER"}`))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Must be one of: CASH CARD TRANSFER")
	})

	t.Run("length violation names the expected length", func(t *testing.T) {
		router := setupValidationRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/transactions",
			strings.NewReader(`{"amount":"10.00","currency":"EURO"}`))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Must be exactly 3 characters")
	})

	t.Run("valid payload passes", func(t *testing.T) {
		router := setupValidationRouter()
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/transactions",
			strings.NewReader(`{"amount":"10.00","currency":"USD","method":"CASH"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
