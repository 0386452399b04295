package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
)

func strPtr(s string) *string {
	return &s
}

func TestLoginForm(t *testing.T) {
	require.NoError(t, Form(dto.LoginRequest{Email: "ana@uni.edu", Password: "secret"}))

	err := Form(dto.LoginRequest{Email: "nope", Password: "123"})
	require.Error(t, err)
	require.Equal(t, api.KindValidation, api.KindOf(err))
	require.Contains(t, err.Error(), "Enter a valid email address")
	require.Contains(t, err.Error(), "Password must be at least 6 characters")
}

func TestRegisterForm(t *testing.T) {
	valid := dto.RegisterRequest{
		Name:            "Ana Torres",
		Email:           "ana@uni.edu",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
		University:      "UNAL",
	}
	require.NoError(t, Form(valid))

	weak := valid
	weak.Password, weak.ConfirmPassword = "secret1", "secret1"
	err := Form(weak)
	require.Error(t, err)
	require.Contains(t, err.Error(), "one uppercase letter")

	mismatch := valid
	mismatch.ConfirmPassword = "Secret2"
	err = Form(mismatch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Passwords do not match")

	short := valid
	short.Name = "A"
	err = Form(short)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Name must be at least 2 characters")
}

func TestProfileUpdateForm(t *testing.T) {
	require.NoError(t, Form(dto.ProfileUpdateRequest{}))
	require.NoError(t, Form(dto.ProfileUpdateRequest{Name: strPtr("Ana")}))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	err := Form(dto.ProfileUpdateRequest{Career: strPtr(string(long))})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Career must be at most 100 characters")
}
