package auth_test

import (
	"errors"
	"fmt"
	"testing"

	auth "github.com/gunung/portal-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "expired", err: auth.ErrInvalidToken.WithReason(auth.ReasonTokenExpired, nil), want: true},
		{name: "wrapped expired", err: fmt.Errorf("verify: %w", auth.ErrInvalidToken.WithReason(auth.ReasonTokenExpired, nil)), want: true},
		{name: "malformed", err: auth.ErrInvalidToken.WithReason(auth.ReasonTokenMalformed, nil)},
		{name: "plain sentinel", err: auth.ErrInvalidToken},
		{name: "foreign error", err: errors.New("expired")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.IsTokenExpiredError(tt.err))
		})
	}
}

func TestError_IsMatchesTextCode(t *testing.T) {
	expired := auth.ErrInvalidToken.WithReason(auth.ReasonTokenExpired, errors.New("exp"))
	forged := auth.ErrInvalidToken.WithReason(auth.ReasonTokenSignature, errors.New("sig"))

	assert.True(t, errors.Is(expired, auth.ErrInvalidToken))
	assert.True(t, errors.Is(forged, auth.ErrInvalidToken))
	assert.True(t, errors.Is(expired, forged))
	assert.False(t, errors.Is(expired, auth.ErrMissingToken))
	assert.False(t, errors.Is(auth.ErrNotFound, auth.ErrIdentityNotFound))
}

func TestError_DecoratingDoesNotMutateSentinels(t *testing.T) {
	source := errors.New("boom")
	decorated := auth.ErrServer.WithReason(auth.ReasonTokenClaims, source).
		WithFields(auth.FieldError{Path: "x"})

	assert.Empty(t, auth.ErrServer.Reason)
	assert.Nil(t, auth.ErrServer.Source)
	assert.Empty(t, auth.ErrServer.Fields)

	assert.Equal(t, auth.ReasonTokenClaims, decorated.Reason)
	assert.True(t, errors.Is(decorated, source))
	assert.Len(t, decorated.Fields, 1)
}

func TestError_Message(t *testing.T) {
	err := auth.ErrInvalidCredentials.WithReason(auth.ReasonUnknownEmail, errors.New("no row"))
	assert.Equal(t, "Email atau password salah (unknown_email): no row", err.Error())
	assert.Equal(t, "Token tidak ditemukan", auth.ErrMissingToken.Error())
}

func TestAsError(t *testing.T) {
	assert.Nil(t, auth.AsError(nil))

	known := auth.ErrForbidden.WithReason(auth.ReasonRoleMismatch, nil)
	assert.Same(t, known, auth.AsError(fmt.Errorf("wrapped: %w", known)))

	unknown := auth.AsError(errors.New("disk full"))
	require.NotNil(t, unknown)
	assert.Equal(t, 500, unknown.Code)
	assert.Equal(t, auth.TextCodeServerError, unknown.TextCode)
	assert.Equal(t, "Terjadi kesalahan server", unknown.Message)
}

func TestInternal(t *testing.T) {
	cause := errors.New("constraint failed")
	err := auth.Internal(cause, "insert user %s", "u-1")

	assert.True(t, errors.Is(err, auth.ErrServer))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "insert user u-1: constraint failed")
}

func TestStructuredErrorProperties(t *testing.T) {
	tests := []struct {
		err      *auth.Error
		code     int
		textCode string
		message  string
	}{
		{auth.ErrValidation, 400, auth.TextCodeValidation, "Data tidak valid"},
		{auth.ErrBadRequest, 400, auth.TextCodeBadRequest, "Format permintaan tidak valid"},
		{auth.ErrDuplicateEmail, 409, auth.TextCodeDuplicateEmail, "Email sudah terdaftar"},
		{auth.ErrInvalidCredentials, 401, auth.TextCodeInvalidCredentials, "Email atau password salah"},
		{auth.ErrMissingToken, 401, auth.TextCodeMissingToken, "Token tidak ditemukan"},
		{auth.ErrInvalidToken, 401, auth.TextCodeInvalidToken, "Token tidak valid"},
		{auth.ErrForbidden, 403, auth.TextCodeForbidden, "Akses ditolak. Hanya admin yang dapat mengakses"},
		{auth.ErrAdminOnly, 403, auth.TextCodeForbidden, "Akses ditolak"},
		{auth.ErrNotFound, 404, auth.TextCodeNotFound, "User tidak ditemukan"},
		{auth.ErrIdentityNotFound, 404, auth.TextCodeIdentityNotFound, "User tidak ditemukan"},
		{auth.ErrServer, 500, auth.TextCodeServerError, "Terjadi kesalahan server"},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.Equal(t, tt.message, tt.err.Message)
		})
	}
}
