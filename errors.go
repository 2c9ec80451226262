package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Public text codes. These are the only failure kinds a client can observe.
const (
	TextCodeValidation         = "VALIDATION_ERROR"
	TextCodeBadRequest         = "BAD_REQUEST"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeMissingToken       = "MISSING_TOKEN"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeNotFound           = "NOT_FOUND"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeServerError        = "SERVER_ERROR"
)

// Reason is the internal variant behind a public error. It ends up in logs,
// never in responses.
type Reason string

const (
	ReasonUnknownEmail     Reason = "unknown_email"
	ReasonPasswordMismatch Reason = "password_mismatch"
	ReasonAdminEmail       Reason = "admin_email_mismatch"
	ReasonAdminPassword    Reason = "admin_password_mismatch"
	ReasonTokenMalformed   Reason = "token_malformed"
	ReasonTokenSignature   Reason = "token_signature_invalid"
	ReasonTokenExpired     Reason = "token_expired"
	ReasonTokenClaims      Reason = "token_claims_invalid"
	ReasonRoleMismatch     Reason = "role_mismatch"
	ReasonEmptySecret      Reason = "empty_secret"
	ReasonSecretTooLong    Reason = "secret_too_long"
)

// FieldError is a single per-field validation failure. The JSON shape matches
// what the browser client already renders.
type FieldError struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Msg      string `json:"msg"`
	Location string `json:"location"`
}

// Error is the tagged error used across the module. Several internal reasons
// share one TextCode so that callers cannot tell them apart.
type Error struct {
	TextCode string
	Code     int
	Message  string
	Reason   Reason
	Fields   []FieldError
	Source   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Reason != "" {
		b.WriteString(" (" + string(e.Reason) + ")")
	}
	if e.Source != nil {
		b.WriteString(": " + e.Source.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Source
}

// Is matches any *Error carrying the same public text code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.TextCode == e.TextCode
}

// Clone returns a shallow copy safe to decorate
func (e *Error) Clone() *Error {
	if e == nil {
		return nil
	}
	c := *e
	if len(e.Fields) > 0 {
		c.Fields = append([]FieldError(nil), e.Fields...)
	}
	return &c
}

// WithReason returns a copy tagged with the internal reason and cause
func (e *Error) WithReason(reason Reason, source error) *Error {
	c := e.Clone()
	c.Reason = reason
	c.Source = source
	return c
}

// WithMessage returns a copy with a different client message. The text code
// is kept, so errors.Is still matches.
func (e *Error) WithMessage(message string) *Error {
	c := e.Clone()
	c.Message = message
	return c
}

// WithFields returns a copy carrying validation failures
func (e *Error) WithFields(fields ...FieldError) *Error {
	c := e.Clone()
	c.Fields = append(c.Fields, fields...)
	return c
}

var (
	// ErrValidation carries per-field failures in Fields
	ErrValidation = &Error{
		TextCode: TextCodeValidation,
		Code:     http.StatusBadRequest,
		Message:  "Data tidak valid",
	}

	// ErrBadRequest is returned for bodies that cannot be decoded
	ErrBadRequest = &Error{
		TextCode: TextCodeBadRequest,
		Code:     http.StatusBadRequest,
		Message:  "Format permintaan tidak valid",
	}

	ErrDuplicateEmail = &Error{
		TextCode: TextCodeDuplicateEmail,
		Code:     http.StatusConflict,
		Message:  "Email sudah terdaftar",
	}

	// ErrInvalidCredentials never reveals whether the email or the password was wrong
	ErrInvalidCredentials = &Error{
		TextCode: TextCodeInvalidCredentials,
		Code:     http.StatusUnauthorized,
		Message:  "Email atau password salah",
	}

	ErrMissingToken = &Error{
		TextCode: TextCodeMissingToken,
		Code:     http.StatusUnauthorized,
		Message:  "Token tidak ditemukan",
	}

	// ErrInvalidToken covers malformed, forged and expired tokens alike
	ErrInvalidToken = &Error{
		TextCode: TextCodeInvalidToken,
		Code:     http.StatusUnauthorized,
		Message:  "Token tidak valid",
	}

	ErrForbidden = &Error{
		TextCode: TextCodeForbidden,
		Code:     http.StatusForbidden,
		Message:  "Akses ditolak. Hanya admin yang dapat mengakses",
	}

	// ErrAdminOnly is the /admin/verify flavour of ErrForbidden
	ErrAdminOnly = ErrForbidden.WithMessage("Akses ditolak")

	ErrNotFound = &Error{
		TextCode: TextCodeNotFound,
		Code:     http.StatusNotFound,
		Message:  "User tidak ditemukan",
	}

	// ErrIdentityNotFound is a valid token whose user has since been deleted
	ErrIdentityNotFound = &Error{
		TextCode: TextCodeIdentityNotFound,
		Code:     http.StatusNotFound,
		Message:  "User tidak ditemukan",
	}

	ErrServer = &Error{
		TextCode: TextCodeServerError,
		Code:     http.StatusInternalServerError,
		Message:  "Terjadi kesalahan server",
	}
)

// AsError resolves err to an *Error, wrapping anything unknown as ErrServer
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var richErr *Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return ErrServer.WithReason("", err)
}

// Internal wraps an unexpected failure with context
func Internal(err error, format string, args ...any) *Error {
	return ErrServer.WithReason("", fmt.Errorf(format+": %w", append(args, err)...))
}

// IsTokenExpiredError reports whether err is an invalid token caused by expiry
func IsTokenExpiredError(err error) bool {
	var richErr *Error
	return errors.As(err, &richErr) && richErr.Reason == ReasonTokenExpired
}
