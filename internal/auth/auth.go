// Package auth provides API token management for the requirements service.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// TokenEnvVar is the environment variable holding a personal access token.
const TokenEnvVar = "REQBOARD_TOKEN"

// TokenProvider defines the interface for obtaining an authentication token.
// Implementations may use different sources (CLI tools, environment variables, etc).
type TokenProvider interface {
	GetToken() (string, error)
}

// CommandProvider obtains tokens by running a configured command and reading its stdout,
// for example a password manager or an SSO helper.
type CommandProvider struct {
	Command string
}

// GetToken runs the command and returns its trimmed output.
// Returns an error if no command is configured, the binary is missing, or the command fails.
func (c *CommandProvider) GetToken() (string, error) {
	args := strings.Fields(c.Command)
	if len(args) == 0 {
		return "", errors.New("no token command configured")
	}

	cmd := exec.Command(args[0], args[1:]...)
	output, err := cmd.Output()
	if err != nil {
		// Check if it's an exec error (binary not found)
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", fmt.Errorf("token command %q not found in PATH", args[0])
		}
		return "", fmt.Errorf("token command failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("token command returned empty token")
	}

	return token, nil
}

// EnvProvider obtains tokens from the REQBOARD_TOKEN environment variable.
type EnvProvider struct{}

// GetToken reads the REQBOARD_TOKEN environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if token == "" {
		return "", errors.New(TokenEnvVar + " environment variable not set or empty")
	}
	return token, nil
}

// GetToken attempts to obtain a token using the following strategy:
// 1. Run the configured token command, if any
// 2. Fall back to the REQBOARD_TOKEN environment variable
// 3. Return a clear, actionable error if both fail
func GetToken(command string) (string, error) {
	var cmdErr error
	if command != "" {
		cmdProvider := &CommandProvider{Command: command}
		token, err := cmdProvider.GetToken()
		if err == nil {
			return token, nil
		}
		cmdErr = err
	}

	envProvider := &EnvProvider{}
	token, err := envProvider.GetToken()
	if err == nil {
		return token, nil
	}

	if cmdErr != nil {
		return "", fmt.Errorf(
			"failed to obtain token: command error (%v) and %s not set.\n"+
				"Please either fix token_command in the config file or set %s",
			cmdErr, TokenEnvVar, TokenEnvVar,
		)
	}
	return "", fmt.Errorf(
		"failed to obtain token: %s not set.\n"+
			"Please either set token_command in the config file or set %s",
		TokenEnvVar, TokenEnvVar,
	)
}
