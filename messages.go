package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	msgFullNameRequired = "Nama lengkap wajib diisi"
	msgEmailInvalid     = "Email tidak valid"
	msgPasswordLength   = "Password minimal 6 karakter"
	msgPasswordTooLong  = "Password maksimal 72 byte"
	msgPasswordMismatch = "Password tidak cocok"
	msgPasswordRequired = "Password wajib diisi"
)

const (
	// MinPasswordLength is the shortest accepted registration password, in characters
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit
	MaxPasswordBytes = 72
)

// RegisterUserMessage is the registration payload
type RegisterUserMessage struct {
	FullName        string `json:"fullName" form:"fullName"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.FullName,
			validation.Required.Error(msgFullNameRequired),
		),
		validation.Field(&e.Email,
			validation.Required.Error(msgEmailInvalid),
			is.Email.Error(msgEmailInvalid),
		),
		validation.Field(&e.Password,
			validation.Required.Error(msgPasswordLength),
			validation.RuneLength(MinPasswordLength, 0).Error(msgPasswordLength),
			validation.Length(0, MaxPasswordBytes).Error(msgPasswordTooLong),
		),
		validation.Field(&e.ConfirmPassword,
			validation.By(func(value interface{}) error {
				if value.(string) != e.Password {
					return errors.New(msgPasswordMismatch)
				}
				return nil
			}),
		),
	)
	return validationError(err, "fullName", "email", "password", "confirmPassword")
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) Type() string { return "user.login" }

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error(msgEmailInvalid),
			is.Email.Error(msgEmailInvalid),
		),
		validation.Field(&r.Password,
			validation.Required.Error(msgPasswordRequired),
		),
	)
	return validationError(err, "email", "password")
}

// AdminLoginRequest payload. It is not shape-validated, any mismatch is
// simply a failed login.
type AdminLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r AdminLoginRequest) Type() string { return "admin.login" }

// validationError turns ozzo errors into ErrValidation with fields listed in
// the given order.
func validationError(err error, order ...string) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return Internal(err, "validate payload")
	}

	fields := make([]FieldError, 0, len(errs))
	for _, name := range order {
		fieldErr, ok := errs[name]
		if !ok || fieldErr == nil {
			continue
		}
		fields = append(fields, FieldError{
			Type:     "field",
			Path:     name,
			Msg:      fieldErr.Error(),
			Location: "body",
		})
	}

	if len(fields) == 0 {
		return Internal(err, "validate payload")
	}

	return ErrValidation.WithFields(fields...)
}
