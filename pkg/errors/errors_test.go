package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "client not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "client not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestInvalidFieldDoesNotMutateBase(t *testing.T) {
	appErr := InvalidField("email", "Enter a valid email address.")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, []string{"Enter a valid email address."}, appErr.Fields["email"])
	assert.Nil(t, ErrValidation.Fields)
}
