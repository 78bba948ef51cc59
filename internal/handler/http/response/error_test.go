package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/voucher"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "office_id", Message: "office_id is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped office not found", fmt.Errorf("load: %w", office.ErrOfficeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"version conflict", attendance.ErrVersionConflict, http.StatusConflict, "CONFLICT"},
		{"batched voucher", voucher.ErrVoucherAlreadyBatched, http.StatusConflict, "CONFLICT"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"insufficient role", auth.ErrInsufficientRole, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestIsSkippable(t *testing.T) {
	assert.True(t, IsSkippable(fmt.Errorf("resolve: %w", office.ErrEmployeeNotFound)))
	assert.True(t, IsSkippable(attendance.ErrNoResolvableIdentity))
	assert.False(t, IsSkippable(attendance.ErrVersionConflict))
	assert.False(t, IsSkippable(errors.New("boom")))
}
