//go:build unit

package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   httperr.Kind
	}{
		{"transition", &reservation.TransitionError{Machine: reservation.MachineStatus, From: "completed", To: "confirmed"}, http.StatusConflict, httperr.KindInvalidTransition},
		{"not found", errs.Mark(errors.New("no rows"), errs.ErrReservationNotFound), http.StatusNotFound, httperr.KindNotFound},
		{"not owner", commands.ErrNotOwner, http.StatusForbidden, httperr.KindForbidden},
		{"concurrent change", errs.Mark(errors.New("0 rows"), commands.ErrConcurrentChange), http.StatusConflict, httperr.KindInvalidState},
		{"missing proof", reservation.ErrProofRequired, http.StatusBadRequest, httperr.KindMissingInput},
		{"bad amount", reservation.ErrNonPositiveAmount, http.StatusBadRequest, httperr.KindValidation},
		{"inventory down", errs.Mark(errors.New("dial tcp"), errs.ErrUpstreamFailure), http.StatusBadGateway, httperr.KindUpstreamFailure},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, httperr.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := httperr.Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "sentinel message is public",
			err:     errs.Wrap(reservation.ErrDepositNotPaid, "confirm"),
			status:  http.StatusConflict,
			message: "deposit has not been paid",
		},
		{
			name:    "transition error is reported verbatim",
			err:     errs.Wrap(&reservation.TransitionError{Machine: reservation.MachineDeposit, From: "paid", To: "paid"}, "pay"),
			status:  http.StatusConflict,
			message: `invalid deposit transition from "paid" to "paid"`,
		},
		{
			name:    "taxonomy message when no sentinel carries one",
			err:     errs.Mark(errors.New("no rows in result set"), errs.ErrReservationNotFound),
			status:  http.StatusNotFound,
			message: "reservation not found",
		},
		{
			name:    "internal errors are hidden",
			err:     errors.New("pq: password authentication failed"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/reservations", nil)

			httperr.Abort(c, tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.status, rec.Code)
			var body httperr.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error.Message)

			require.Len(t, c.Errors, 1)
			assert.ErrorIs(t, c.Errors[0].Err, tt.err)
		})
	}
}

type bindTarget struct {
	Reason string `json:"reason" binding:"max=5"`
	Method string `json:"paymentMethod" binding:"required,oneof=cash transfer"`
}

func TestAbortBinding(t *testing.T) {
	gin.SetMode(gin.TestMode)
	httperr.UseJSONFieldNames()

	bind := func(t *testing.T, raw string) (*httptest.ResponseRecorder, map[string]any) {
		t.Helper()
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		var target bindTarget
		err := c.ShouldBindJSON(&target)
		require.Error(t, err)
		httperr.AbortBinding(c, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	t.Run("validation problems use json names", func(t *testing.T) {
		rec, body := bind(t, `{"reason":"far too long","paymentMethod":"cheque"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request", body["error"].(map[string]any)["message"])
		detail, ok := body["detail"].([]any)
		require.True(t, ok)
		require.Len(t, detail, 2)
		assert.Equal(t, map[string]any{"field": "reason", "problem": "must be at most 5"}, detail[0])
		assert.Equal(t, map[string]any{"field": "paymentMethod", "problem": "must be one of: cash, transfer"}, detail[1])
	})

	t.Run("malformed json", func(t *testing.T) {
		rec, body := bind(t, `{"reason":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "VALIDATION", errBody["kind"])
		assert.Equal(t, "Invalid request format", errBody["message"])
		assert.NotContains(t, body, "detail")
	})
}
