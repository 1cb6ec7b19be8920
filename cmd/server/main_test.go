package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agent-hub/agent-hub/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHashKey(t *testing.T) {
	out, err := run(t, "hash-key", "--cost", "4", "admin-secret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin-secret")))

	_, err = run(t, "hash-key")
	assert.Error(t, err)
}

func TestExecRequiresType(t *testing.T) {
	_, err := run(t, "exec", "--payload", `{"query":"go"}`)
	assert.ErrorContains(t, err, "type")
}

func TestBadConfigFails(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "status")
	assert.ErrorContains(t, err, "config error")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	l = newLogger(config.LogConfig{Level: "bogus"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
