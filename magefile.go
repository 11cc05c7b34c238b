//go:build mage

package main

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// Build compiles the fig binary with version metadata baked in.
func Build() error {
	ldflags := fmt.Sprintf(
		"-X github.com/puqiar/go-fig/cmd/fig/cmd.GitCommit=%s -X github.com/puqiar/go-fig/cmd/fig/cmd.BuildDate=%s",
		gitCommit(), time.Now().UTC().Format(time.RFC3339),
	)
	return sh.Run("go", "build", "-ldflags", ldflags, "-o", "bin/fig", "./cmd/fig")
}

// Test runs the full test suite.
func Test() error {
	return sh.Run("go", "test", "./...")
}

// Install installs the fig binary into GOPATH/bin.
func Install() error {
	return sh.Run("go", "install", "./cmd/fig")
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
