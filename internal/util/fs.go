package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin keeps only the last element of name so the result stays inside
// root. Names that reduce to nothing, "." or ".." resolve to root itself.
func SafeJoin(root, name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	switch base {
	case "/", ".", "..":
		return root
	}
	return filepath.Join(root, base)
}
