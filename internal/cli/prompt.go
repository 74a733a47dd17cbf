package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/getpass"
)

// Prompter asks the user for input. Secrets are read without echo.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
}

type terminalPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalPrompter reads lines from in and secrets from the controlling
// terminal. Prompts for lines are written to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) Prompter {
	return &terminalPrompter{in: in, out: out}
}

// ReadLine reads byte by byte so input piped after the line (an entry body)
// is left for the command.
func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	var (
		sb  strings.Builder
		buf [1]byte
	)
	for {
		n, err := p.in.Read(buf[:])
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			if sb.Len() == 0 {
				return "", io.ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(sb.String(), "\r"), nil
}

func (p *terminalPrompter) ReadSecret(prompt string) (string, error) {
	return getpass.Prompt(prompt)
}

// readNewPassword asks for a password twice.
func readNewPassword(p Prompter, label string) (string, error) {
	password, err := p.ReadSecret(label + ": ")
	if err != nil {
		return "", err
	}
	confirm, err := p.ReadSecret("Confirm " + strings.ToLower(label) + ": ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errPasswordMismatch
	}
	return password, nil
}

// confirm asks a yes/no question; anything but "y" or "yes" is a no.
func confirm(p Prompter, question string) (bool, error) {
	answer, err := p.ReadLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
