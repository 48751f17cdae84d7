package token

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// The client token authenticates submissions to the collection API. It is a
// UUID issued per account and stored in a small YAML file in the user's home
// directory; a missing or invalid token is requested interactively.

const promptMessage = "Please enter your client token from 17lands.com/account: "

// Valid reports whether the string parses as a UUID.
func Valid(maybeToken string) bool {
	_, err := uuid.Parse(maybeToken)
	return err == nil
}

// Load reads the stored token from path. A missing file, unreadable file, or
// invalid token all yield ("", false).
func Load(path string) (string, bool) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", false
	}

	stored := v.GetString("client.token")
	if !Valid(stored) {
		return "", false
	}
	return stored, true
}

// Save persists the token to path so the prompt only ever runs once.
func Save(path, clientToken string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("client.token", clientToken)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", path, err)
	}
	return nil
}

// Prompt reads tokens from in until a valid one arrives, re-prompting on
// invalid input. Exhausted input is an error; the program cannot continue
// without a token.
func Prompt(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	message := promptMessage
	for {
		fmt.Fprint(out, message)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("no client token provided")
		}
		entered := strings.TrimSpace(scanner.Text())
		if Valid(entered) {
			return entered, nil
		}
		message = "That token is invalid. Please enter a valid client token: "
	}
}

// Acquire returns the stored token, prompting for and persisting a new one
// when the store has nothing usable.
func Acquire(path string) (string, error) {
	if stored, ok := Load(path); ok {
		return stored, nil
	}

	entered, err := Prompt(os.Stdin, os.Stderr)
	if err != nil {
		return "", err
	}
	if err := Save(path, entered); err != nil {
		return "", err
	}
	return entered, nil
}
