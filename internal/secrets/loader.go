package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned for a required source with neither a file nor
// a value.
var ErrNotConfigured = errors.New("not configured")

// Source says where one credential comes from.
type Source struct {
	// Name labels the credential in error messages. The value never appears.
	Name string
	// Value is an inline credential from config, flags or the environment.
	Value string
	// File holds the credential on its first line. It wins over Value.
	File string
	// Optional makes an unconfigured source load as "" without an error.
	Optional bool
}

// Load resolves src to a trimmed credential.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	value := src.Value
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	switch {
	case secret == "" && file != "":
		return "", fmt.Errorf("%s file %q is empty", name, file)
	case secret == "" && src.Optional:
		return "", nil
	case secret == "":
		return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
	case strings.ContainsAny(secret, "\r\n"):
		return "", fmt.Errorf("%s must be a single line", name)
	}

	return secret, nil
}
