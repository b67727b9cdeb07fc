package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mediavault/mediavault-server/internal/errors"
	"github.com/mediavault/mediavault-server/internal/validation"
)

type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=500"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := reviewRequest{
		Decision: "approve",
		Reason:   "looks correct",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       reviewRequest
		wantField string
	}{
		{
			name:      "missing decision",
			req:       reviewRequest{Reason: "missing"},
			wantField: "decision",
		},
		{
			name:      "unknown decision",
			req:       reviewRequest{Decision: "maybe"},
			wantField: "decision",
		},
		{
			name: "reason too long",
			req: reviewRequest{
				Decision: "reject",
				Reason:   string(make([]byte, 501)),
			},
			wantField: "reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := reviewRequest{Decision: ""}

	err := v.Validate(req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)

	// Should use JSON tag name "decision", not struct field name "Decision"
	assert.Contains(t, details, "decision")
	assert.NotContains(t, details, "Decision")
}
