// Package manifest locates and parses the ptl.yml application manifest.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// CandidatePaths returns the manifest search order: explicit overrides
// first, then the fixed container mount points, then the workspace.
func CandidatePaths(workspace string, overrides ...string) []string {
	if workspace == "" {
		workspace = constants.DefaultWorkspace
	}

	paths := make([]string, 0, len(overrides)+len(constants.ManifestSearchDirs)+1)

	for _, override := range overrides {
		if override != "" {
			paths = append(paths, override)
		}
	}

	for _, dir := range constants.ManifestSearchDirs {
		paths = append(paths, filepath.Join(dir, constants.ManifestFileName))
	}

	return append(paths, filepath.Join(workspace, constants.ManifestFileName))
}

// Load parses the first candidate that exists. Later candidates are not
// examined once one is found.
func Load(paths []string) (*ptl.Manifest, string, error) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, "", fmt.Errorf("checking %s: %w", path, err)
		}

		if info.IsDir() {
			continue
		}

		manifest, err := LoadFile(path)
		if err != nil {
			return nil, "", err
		}

		return manifest, path, nil
	}

	return nil, "", fmt.Errorf("%w: %s", ptl.ErrManifestNotFound, strings.Join(paths, ", "))
}

// LoadFile parses one manifest file.
func LoadFile(path string) (*ptl.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	manifest, err := ptl.DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if manifest.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ptl.ErrManifestNameRequired)
	}

	return manifest, nil
}
