package models

// RegisterRequest carries the input of an account registration.
type RegisterRequest struct {
	Username         string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
}

// ChangePasswordRequest carries the input of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
}

// ResetPasswordRequest carries the input of a password reset.
type ResetPasswordRequest struct {
	Username       string
	SecurityAnswer string
	NewPassword    string
}
