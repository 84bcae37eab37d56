package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amoylab/rentmanager/internal/auth/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rentmanager.db")
	yaml := "database:\n  type: sqlite\n  dbname: " + strings.ReplaceAll(dbPath, "\\", "\\\\") + "\n" +
		"logger:\n  level: error\n" +
		"jwt:\n  secret_key: " + testSecret + "\n"
	path := filepath.Join(dir, "apiserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.SetArgs([]string{})
		rootCmd.SetOut(nil)
		configPath = ""
		tokenUser, tokenEmail = "", ""
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "reconcile", "token", "watch", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestTokenCommand(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := execute(t, "token", "--conf", cfgPath, "--user", "user-1", "--email", "a@example.com")
	require.NoError(t, err)

	svc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: 1})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject())
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestReconcileCommand(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := execute(t, "reconcile", "--conf", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 0 rooms, corrected 0")
}

func TestConfigPath_Env(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/tmp/custom.yaml")
	configPath = ""
	assert.Equal(t, "/tmp/custom.yaml", getConfigPath())

	configPath = "/tmp/flag.yaml"
	t.Cleanup(func() { configPath = "" })
	assert.Equal(t, "/tmp/flag.yaml", getConfigPath())
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "reconcile", "--conf", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
