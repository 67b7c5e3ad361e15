package devreload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveTarget returns the directory to watch and, for a single file, the
// cleaned file path events are filtered to.
func resolveTarget(path string) (string, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", "", fmt.Errorf("devreload: path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("devreload: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return path, "", nil
	}
	clean := filepath.Clean(path)
	return filepath.Dir(clean), clean, nil
}
