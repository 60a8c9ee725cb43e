package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/chaos-engine/internal/config"
)

// getBinaryPath returns the path to the chaos_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "chaos_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

// useTestConfig installs a default config without inter-stage delays and
// restores the previous one when the test ends.
func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	prev := appConfig
	cfg := config.Default()
	cfg.Humanize.InterPassDelay = 0
	cfg.Bulk.DocumentInterval = 0
	appConfig = &cfg
	t.Cleanup(func() { appConfig = prev })
	return appConfig
}

// testCommand returns a command wired to in-memory streams.
func testCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, &stdout, &stderr
}

// setHumanizeFlags sets the humanize command globals and resets them afterwards.
func setHumanizeFlags(t *testing.T, in, out string, passes int, seed int64, asJSON bool) {
	t.Helper()
	humanizeInputFile, humanizeOutputFile = in, out
	humanizePasses, humanizeSeed, humanizeJSON = passes, seed, asJSON
	humanizeDelay = -1
	t.Cleanup(func() {
		humanizeInputFile, humanizeOutputFile = "", ""
		humanizePasses, humanizeSeed, humanizeJSON = 0, -1, false
		humanizeDelay = time.Duration(-1)
	})
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
