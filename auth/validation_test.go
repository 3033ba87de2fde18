package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	tests := map[string]string{
		"998901234567":      "998901234567",
		"+998 90 123-45-67": "998901234567",
		"901234567":         "998901234567",
		"90 123 45 67":      "998901234567",
		"12345":             "12345",
		"":                  "",
		"٩٠١٢٣٤٥٦٧":         "",
	}
	for in, want := range tests {
		require.Equal(t, want, auth.FormatPhoneNumber(in), "input %q", in)
	}
}

func TestIsValidPhone(t *testing.T) {
	require.True(t, auth.IsValidPhone("998901234567"))
	require.True(t, auth.IsValidPhone("+998 (90) 123 45 67"))
	require.True(t, auth.IsValidPhone("901234567"))
	require.False(t, auth.IsValidPhone("99890123456"))
	require.False(t, auth.IsValidPhone("997901234567"))
	require.False(t, auth.IsValidPhone(""))
}

func TestIsValidPassword(t *testing.T) {
	require.True(t, auth.IsValidPassword("secret1"))
	require.True(t, auth.IsValidPassword("123456"))
	require.False(t, auth.IsValidPassword("12345"))
	require.False(t, auth.IsValidPassword(""))
}

func TestValidator_ValidateCredentials(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		creds, err := v.ValidateCredentials("+998 90 123 45 67", "secret1")
		require.NoError(t, err)
		require.Equal(t, "998901234567", creds.Phone)
		require.Equal(t, "secret1", creds.Password)
	})

	t.Run("bad phone", func(t *testing.T) {
		_, err := v.ValidateCredentials("12345", "secret1")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "phone")
		require.NotContains(t, err.Error(), "password")
	})

	t.Run("short password", func(t *testing.T) {
		_, err := v.ValidateCredentials("998901234567", "abc")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "password must be at least 6 characters")
	})

	t.Run("both missing", func(t *testing.T) {
		_, err := v.ValidateCredentials("", "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "phone")
		require.Contains(t, err.Error(), "password")
	})
}
