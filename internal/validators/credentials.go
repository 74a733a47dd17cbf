// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-journal-keeper/models"
)

// Field name constants used to specify which fields should be validated.
// They are passed to Validate to restrict validation to a subset of fields.
const (
	// FieldUsername targets the login name. Blank names are rejected.
	FieldUsername = "username"

	// FieldPassword targets the new password. Only the empty password is
	// rejected; whitespace is a legal password character.
	FieldPassword = "password"

	// FieldCurrentPassword targets the password being replaced.
	FieldCurrentPassword = "current_password"

	// FieldSecurityQuestion targets the question shown on reset.
	FieldSecurityQuestion = "security_question"

	// FieldSecurityAnswer targets the answer to the security question.
	// Blank answers are rejected at registration, empty ones at reset.
	FieldSecurityAnswer = "security_answer"
)

// CredentialsValidator implements [Validator] for the account requests:
// RegisterRequest, ChangePasswordRequest and ResetPasswordRequest, by value
// or by pointer.
type CredentialsValidator struct{}

// NewCredentialsValidator constructs a CredentialsValidator and returns it as
// the Validator interface.
func NewCredentialsValidator() Validator {
	return &CredentialsValidator{}
}

// Validate dispatches to the type-specific rules. Without fields every
// field of the request is checked.
func (v *CredentialsValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterRequest:
		return v.validateRegister(value, fields...)
	case *models.RegisterRequest:
		return v.validateRegister(*value, fields...)

	case models.ChangePasswordRequest:
		return v.validateChangePassword(value, fields...)
	case *models.ChangePasswordRequest:
		return v.validateChangePassword(*value, fields...)

	case models.ResetPasswordRequest:
		return v.validateResetPassword(value, fields...)
	case *models.ResetPasswordRequest:
		return v.validateResetPassword(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *CredentialsValidator) validateRegister(r models.RegisterRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldPassword, FieldSecurityQuestion, FieldSecurityAnswer}
	}

	for _, f := range fields {
		switch f {
		case FieldUsername:
			if isBlank(r.Username) {
				return ErrEmptyUsername
			}
		case FieldPassword:
			if r.Password == "" {
				return ErrEmptyPassword
			}
		case FieldSecurityQuestion:
			if isBlank(r.SecurityQuestion) {
				return ErrEmptySecurityQuestion
			}
		case FieldSecurityAnswer:
			if isBlank(r.SecurityAnswer) {
				return ErrEmptySecurityAnswer
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *CredentialsValidator) validateChangePassword(r models.ChangePasswordRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCurrentPassword, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldCurrentPassword:
			if r.CurrentPassword == "" {
				return ErrEmptyCurrentPassword
			}
		case FieldPassword:
			if r.NewPassword == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *CredentialsValidator) validateResetPassword(r models.ResetPasswordRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldSecurityAnswer, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldUsername:
			if isBlank(r.Username) {
				return ErrEmptyUsername
			}
		case FieldSecurityAnswer:
			if r.SecurityAnswer == "" {
				return ErrEmptySecurityAnswer
			}
		case FieldPassword:
			if r.NewPassword == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
