//go:build e2e && unix

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// CreateTestWorkspace creates a temporary directory the app runs in
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// SeedCatalog writes a generated catalog of count assets into the workspace.
// The extension picks the format: .yaml or .db.
func (tf *TUITestFramework) SeedCatalog(name string, count int) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}

	path := filepath.Join(tf.workspace, name)
	cmd := exec.Command(binPath, "seed", path, "--count", fmt.Sprint(count))
	cmd.Dir = tf.workspace
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("seed failed: %v\n%s", err, out)
	}
	return path, nil
}

// StartWithCatalog seeds a catalog and opens it in the TUI
func (tf *TUITestFramework) StartWithCatalog(name string, count int, args ...string) error {
	if _, err := tf.CreateTestWorkspace(); err != nil {
		return err
	}
	path, err := tf.SeedCatalog(name, count)
	if err != nil {
		return err
	}

	kind := "yaml"
	if filepath.Ext(name) == ".db" {
		kind = "sqlite"
	}
	return tf.StartApp(append([]string{"--source", kind, "--path", path}, args...)...)
}
