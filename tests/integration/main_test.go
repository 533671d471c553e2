//go:build integration

// Package integration provides integration tests against the live GigaChat API.
package integration

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// cliBinary holds the path to the pre-built CLI binary.
// It is set once in TestMain and used by all tests.
var cliBinary string

// projectRoot is the directory containing go.mod.
var projectRoot string

// TestMain loads .env from the project root, builds the CLI binary once
// before running all tests, and cleans up afterward.
func TestMain(m *testing.M) {
	projectRoot = findProjectRoot()
	if projectRoot == "" {
		log.Fatal("Could not find project root (go.mod)")
	}

	// Credentials may live in the project .env; the process env still wins.
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	tmpDir, err := os.MkdirTemp("", "giga-integration-test")
	if err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}

	cliBinary = filepath.Join(tmpDir, "giga-test")
	cmd := exec.Command("go", "build", "-o", cliBinary, "./cli/cmd/giga")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		log.Fatalf("Failed to build CLI: %v\n%s", err, output)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)

	os.Exit(code)
}

// findProjectRoot locates the project root by looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// getCliBinary returns the path to the pre-built CLI binary.
func getCliBinary() string {
	return cliBinary
}
