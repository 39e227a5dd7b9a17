package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/recode/internal/daemon"
)

func TestPidFile_Path(t *testing.T) {
	dir := testEnv(t)

	pf := pidFile()
	expected := filepath.Join(dir, "recode-serve.pid")
	assert.Equal(t, expected, pf.Path)
}

func TestServeLogPath(t *testing.T) {
	dir := testEnv(t)

	logPath := serveLogPath()
	expected := filepath.Join(dir, "recode-serve.log")
	assert.Equal(t, expected, logPath)
}

func TestServeStatusRun_NotRunning(t *testing.T) {
	testEnv(t)

	// No PID file exists, so status should show "not running" without error.
	err := serveStatusRun()
	assert.NoError(t, err)
}

func TestServeStopRun_NotRunning(t *testing.T) {
	testEnv(t)

	// No PID file exists, so stop should return an error.
	err := serveStopRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestServeStartRun_AlreadyRunning(t *testing.T) {
	dir := testEnv(t)

	// Write a PID file for the current process (which is alive).
	pf := daemon.NewPIDFile(filepath.Join(dir, "recode-serve.pid"))
	require.NoError(t, pf.Write())
	t.Cleanup(func() { _ = os.Remove(pf.Path) })

	err := serveStartRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServeStatusRun_CleansStalePIDFile(t *testing.T) {
	dir := testEnv(t)

	pf := daemon.NewPIDFile(filepath.Join(dir, "recode-serve.pid"))
	require.NoError(t, pf.WritePID(999999))

	require.NoError(t, serveStatusRun())
	_, err := os.Stat(pf.Path)
	assert.True(t, os.IsNotExist(err), "stale PID file should be removed")
}

func TestServeStartRun_RequiresAPIKey(t *testing.T) {
	testEnv(t)

	err := serveStartRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion.api_key")
}

func TestServeStartRun_DryRun(t *testing.T) {
	dir := testEnv(t)
	viper.Set("completion.api_key", "test-key")
	dryRun = true

	require.NoError(t, serveStartRun())
	_, err := os.Stat(filepath.Join(dir, "recode-serve.pid"))
	assert.True(t, os.IsNotExist(err), "dry run must not start a server")
}
