package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-core/pkg/apierror"
)

func strPtr(s string) *string { return &s }

func TestRegisterRequestValidate(t *testing.T) {
	valid := func() RegisterRequest {
		return RegisterRequest{
			Username:  "johndoe",
			Email:     "john@example.com",
			Password:  "SecurePass123",
			FirstName: strPtr("John"),
			LastName:  strPtr("Doe"),
		}
	}

	t.Run("valid input is trimmed", func(t *testing.T) {
		req := valid()
		req.Username = "  johndoe "
		req.Email = " john@example.com"
		require.NoError(t, req.Validate())
		assert.Equal(t, "johndoe", req.Username)
		assert.Equal(t, "john@example.com", req.Email)
	})

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		field  string
	}{
		{name: "username too short", mutate: func(r *RegisterRequest) { r.Username = "jo" }, field: "username"},
		{name: "username too long", mutate: func(r *RegisterRequest) { r.Username = strings.Repeat("u", 51) }, field: "username"},
		{name: "username with zero width space", mutate: func(r *RegisterRequest) { r.Username = "john\u200Bdoe" }, field: "username"},
		{name: "missing email", mutate: func(r *RegisterRequest) { r.Email = "" }, field: "email"},
		{name: "email without domain dot", mutate: func(r *RegisterRequest) { r.Email = "john@localhost" }, field: "email"},
		{name: "email with display name", mutate: func(r *RegisterRequest) { r.Email = "John <john@example.com>" }, field: "email"},
		{name: "email too long", mutate: func(r *RegisterRequest) { r.Email = strings.Repeat("a", 95) + "@x.com" }, field: "email"},
		{name: "password too short", mutate: func(r *RegisterRequest) { r.Password = "short" }, field: "password"},
		{name: "password over 72 bytes", mutate: func(r *RegisterRequest) { r.Password = strings.Repeat("p", 73) }, field: "password"},
		{name: "first name too long", mutate: func(r *RegisterRequest) { r.FirstName = strPtr(strings.Repeat("f", 51)) }, field: "first_name"},
		{name: "last name too long", mutate: func(r *RegisterRequest) { r.LastName = strPtr(strings.Repeat("l", 51)) }, field: "last_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			var apiErr *apierror.APIError
			require.ErrorAs(t, req.Validate(), &apiErr)
			assert.Equal(t, apierror.CodeValidation, apiErr.Code)
			assert.Equal(t, tt.field, apiErr.Details)
		})
	}
}

func TestRegisterRequestCleansNames(t *testing.T) {
	req := RegisterRequest{
		Username:  "johndoe",
		Email:     "john@example.com",
		Password:  "SecurePass123",
		FirstName: strPtr("  Jo\u200Bhn "),
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "John", *req.FirstName)
	assert.Nil(t, req.LastName)
}

func TestLoginRequestValidate(t *testing.T) {
	t.Run("username alias", func(t *testing.T) {
		req := LoginRequest{Username: " johndoe ", Password: "x"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "johndoe", req.Identifier)
	})

	t.Run("identifier wins", func(t *testing.T) {
		req := LoginRequest{Identifier: "john@example.com", Username: "johndoe", Password: "x"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "john@example.com", req.Identifier)
	})

	t.Run("missing identifier", func(t *testing.T) {
		req := LoginRequest{Password: "x"}
		require.Error(t, req.Validate())
	})

	t.Run("missing password", func(t *testing.T) {
		req := LoginRequest{Identifier: "johndoe"}
		require.Error(t, req.Validate())
	})
}

func TestPasswordResetRequestsValidate(t *testing.T) {
	require.NoError(t, (&PasswordResetRequest{Email: "john@example.com"}).Validate())
	require.Error(t, (&PasswordResetRequest{Email: "nope"}).Validate())

	require.NoError(t, (&PasswordResetConfirmRequest{Token: "abc", NewPassword: "BrandNewPass1"}).Validate())
	require.Error(t, (&PasswordResetConfirmRequest{NewPassword: "BrandNewPass1"}).Validate())

	var apiErr *apierror.APIError
	require.ErrorAs(t, (&PasswordResetConfirmRequest{Token: "abc", NewPassword: "short"}).Validate(), &apiErr)
	assert.Equal(t, "new_password", apiErr.Details)
}
