package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyUsername         = errors.New("username is required")
	ErrEmptyPassword         = errors.New("password is required")
	ErrEmptyCurrentPassword  = errors.New("current password is required")
	ErrEmptySecurityQuestion = errors.New("security question is required")
	ErrEmptySecurityAnswer   = errors.New("security answer is required")
)
