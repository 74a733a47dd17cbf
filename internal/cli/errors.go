package cli

import (
	"errors"

	"github.com/MKhiriev/go-journal-keeper/internal/app"
	"github.com/MKhiriev/go-journal-keeper/internal/service"
)

var (
	errPasswordMismatch  = errors.New(app.MsgPasswordsDoNotMatch)
	errAborted           = errors.New(app.MsgAborted)
	errWrongAnswer       = errors.New(app.MsgInvalidSecurityAnswer)
	errPasswordUnchanged = errors.New(app.MsgPasswordNotChanged)
)

// Describe turns err into the one-line message shown on the terminal.
// Sentinels of the service layer get fixed wording; anything else is
// printed as is.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errWrongAnswer):
		return app.MsgInvalidSecurityAnswer
	case errors.Is(err, service.ErrBackupFailed):
		return app.MsgBackupFailed
	case errors.Is(err, errPasswordUnchanged):
		return app.MsgPasswordNotChanged
	case errors.Is(err, service.ErrAuthenticationFailure):
		return app.MsgInvalidLoginPassword
	case errors.Is(err, service.ErrUserNotFound):
		return app.MsgUserNotFound
	case errors.Is(err, service.ErrDuplicateUser):
		return app.MsgLoginAlreadyExists
	case errors.Is(err, service.ErrEntryNotFound):
		return app.MsgEntryNotFound
	case errors.Is(err, service.ErrDecryptionFailure):
		return app.MsgDecryptionFailed
	}
	return err.Error()
}
