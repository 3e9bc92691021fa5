package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Username string `validate:"required,min=3,max=30"`
	Password string `validate:"required,min=6,max=128"`
	Role     string `validate:"omitempty,oneof=admin seller customer"`
}

func TestValidate_OK(t *testing.T) {
	err := Validate(sampleRequest{Username: "alice", Password: "secret123", Role: "customer"})
	assert.NoError(t, err)
}

func TestValidate_MissingFields(t *testing.T) {
	err := Validate(sampleRequest{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "Username")
	assert.Contains(t, err.Error(), "is required")
}

func TestValidate_BadRole(t *testing.T) {
	err := Validate(sampleRequest{Username: "alice", Password: "secret123", Role: "root"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidate_PasswordTooShort(t *testing.T) {
	err := Validate(sampleRequest{Username: "alice", Password: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")
}
