package token

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "11111111-2222-3333-4444-555555555555"

func TestValid(t *testing.T) {
	assert.True(t, Valid(validToken))
	assert.False(t, Valid("not-a-uuid"))
	assert.False(t, Valid(""))
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")

	require.NoError(t, Save(path, validToken))

	got, ok := Load(path)
	require.True(t, ok)
	assert.Equal(t, validToken, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, ok := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.False(t, ok)
}

func TestLoad_InvalidStoredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  token: garbage\n"), 0o644))

	_, ok := Load(path)
	assert.False(t, ok)
}

func TestPrompt_AcceptsValidToken(t *testing.T) {
	var out bytes.Buffer
	got, err := Prompt(strings.NewReader(validToken+"\n"), &out)

	require.NoError(t, err)
	assert.Equal(t, validToken, got)
	assert.Contains(t, out.String(), "client token")
}

func TestPrompt_RepromptsOnInvalidInput(t *testing.T) {
	var out bytes.Buffer
	input := "garbage\nstill wrong\n" + validToken + "\n"

	got, err := Prompt(strings.NewReader(input), &out)

	require.NoError(t, err)
	assert.Equal(t, validToken, got)
	assert.Contains(t, out.String(), "invalid")
}

func TestPrompt_ExhaustedInput(t *testing.T) {
	var out bytes.Buffer
	_, err := Prompt(strings.NewReader("garbage\n"), &out)

	assert.Error(t, err)
}

func TestAcquire_UsesStoredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")
	require.NoError(t, Save(path, validToken))

	got, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, validToken, got)
}
