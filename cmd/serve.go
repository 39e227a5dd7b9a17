package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/recode/internal/api"
	"github.com/joescharf/recode/internal/daemon"
	"github.com/joescharf/recode/internal/session"
)

const (
	stopTimeout  = 10 * time.Second
	pollInterval = 100 * time.Millisecond
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and REST API server",
	Long: `Start an HTTP server that serves the web UI and the REST API.
By default it listens on port 8080. Use --port to change it.

'recode serve' runs in the foreground; 'recode serve start' runs it in the
background and 'recode serve stop' stops it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun()
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.AddCommand(serveStartCmd, serveStopCmd, serveStatusCmd)
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.PersistentFlags().Lookup("port"))
}

func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(statePath("recode-serve.pid"))
}

func serveLogPath() string {
	return statePath("recode-serve.log")
}

func serveRun() error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	completer, err := newCompleter(cfg.Completion)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	m := session.NewManager(completer, cfg.Language, cfg.SessionTTL, logger)
	srv := api.NewServer(m, catalog, cfg.OutputFilename, logger)
	srv.RewriteTimeout = cfg.Completion.Timeout + 30*time.Second
	hs := api.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), srv)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- hs.Start() }()

	ui.Success("Serving recode at http://localhost:%d", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return hs.Stop()
}

func serveStartRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("recode serve is already running (PID %d)", pid)
	}
	if pf.Clean() {
		ui.VerboseLog("Removed stale PID file %s", pf.Path)
	}

	// Fail here rather than in the detached child.
	if _, err := loadConfig(true); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	port := viper.GetInt("port")
	args := []string{"serve", "--port", strconv.Itoa(port)}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	logPath := serveLogPath()
	if dryRun {
		ui.DryRunMsg("Would run %s %v in the background, logging to %s", exe, args, logPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if err := pf.WritePID(child.Process.Pid); err != nil {
		_ = child.Process.Kill()
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("recode serve started (PID %d) at http://localhost:%d", child.Process.Pid, port)
	ui.Info("Log: %s", logPath)
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		pf.Clean()
		return fmt.Errorf("recode serve is not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop recode serve (PID %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal PID %d: %w", pid, err)
	}
	if !pf.WaitForExit(stopTimeout, pollInterval) {
		ui.Warning("PID %d did not exit after %s, killing it", pid, stopTimeout)
		if err := pf.Signal(sigKILL()); err != nil {
			return fmt.Errorf("kill PID %d: %w", pid, err)
		}
		pf.WaitForExit(2*time.Second, pollInterval)
	}

	_ = pf.Remove()
	ui.Success("recode serve stopped (PID %d)", pid)
	return nil
}

func serveStatusRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		ui.Success("recode serve is running (PID %d) on port %d", pid, viper.GetInt("port"))
		ui.Info("Log: %s", serveLogPath())
		return nil
	}
	if pf.Clean() {
		ui.Warning("Removed stale PID file %s", pf.Path)
	}
	ui.Info("recode serve is not running")
	return nil
}
