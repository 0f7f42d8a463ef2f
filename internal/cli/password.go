package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/pyro-notes/pyro/internal/config"
)

// PasswordPrompt reads a password interactively. prompt is shown to the user.
type PasswordPrompt func(prompt string) (string, error)

var errNoPassword = errors.New("no password given: use --password, $" + config.EnvPassword + " or run from a terminal")

// terminalPrompt reads a password from the controlling terminal without echo.
func terminalPrompt(out io.Writer) PasswordPrompt {
	return func(prompt string) (string, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errNoPassword
		}
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
}

// resolvePassword picks the password from the flag, the environment or a
// prompt, in that order. confirm asks twice when prompting.
func resolvePassword(flag string, prompt PasswordPrompt, confirm bool) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(config.EnvPassword); env != "" {
		return env, nil
	}

	password, err := prompt("Password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errNoPassword
	}
	if confirm {
		again, err := prompt("Repeat password: ")
		if err != nil {
			return "", err
		}
		if again != password {
			return "", errors.New("passwords do not match")
		}
	}
	return password, nil
}
