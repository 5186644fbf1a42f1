package airodump

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iyow2233/capstone/internal/core/domain"
)

// ArtifactPrefix names the structured scan output files
// (network_scan-01.csv, network_scan-02.csv, ...).
const ArtifactPrefix = "network_scan"

// RemoveArtifacts deletes files in dir whose name starts with prefix. It
// returns the number removed.
func RemoveArtifacts(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// FindArtifact returns the newest file in dir with the given prefix and suffix.
func FindArtifact(dir, prefix, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoArtifact, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no %s*%s in %s", domain.ErrNoArtifact, prefix, suffix, dir)
	}
	// airodump-ng numbers files -01, -02, ...
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
