// Package archive builds the zippack of a service build context: a zip of
// every regular file under the build root except the fixed ignore list.
package archive

import (
	"archive/zip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// ZipPack is a finished service archive.
type ZipPack struct {
	// Root is the absolute build path the archive was made from.
	Root string
	// Data is the raw zip archive.
	Data []byte
	// Files lists the archived entry names in archive order.
	Files []string
}

// Size returns the archive size in bytes.
func (z *ZipPack) Size() int {
	return len(z.Data)
}

// Base64 returns the archive encoded for embedding in a manifest.
func (z *ZipPack) Base64() string {
	return base64.StdEncoding.EncodeToString(z.Data)
}

// Builder produces zippacks.
type Builder struct {
	ignore  []glob.Glob
	tempDir string
	logger  ptl.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger that receives one debug line per archived file.
func WithLogger(logger ptl.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithTempDir sets where intermediate archives are written.
func WithTempDir(dir string) Option {
	return func(b *Builder) {
		b.tempDir = dir
	}
}

// NewBuilder creates a Builder using the default ignore list.
func NewBuilder(opts ...Option) (*Builder, error) {
	return NewBuilderWithIgnore(constants.ZipPackIgnoreGlobs, opts...)
}

// NewBuilderWithIgnore creates a Builder with a custom ignore list. Patterns
// are compiled without separators, so '*' also matches '/'.
func NewBuilderWithIgnore(patterns []string, opts ...Option) (*Builder, error) {
	builder := &Builder{}

	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", pattern, err)
		}

		builder.ignore = append(builder.ignore, compiled)
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder, nil
}

// Ignored reports whether a root-relative slash path is on the ignore list.
func (b *Builder) Ignored(rel string) bool {
	for _, pattern := range b.ignore {
		if pattern.Match(rel) {
			return true
		}
	}

	return false
}

// Build archives root. The intermediate file is removed before returning,
// on success and on error.
func (b *Builder) Build(root string) (pack *ZipPack, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading build path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, constants.ErrNotDirectory)
	}

	tmp, err := os.CreateTemp(b.tempDir, constants.ZipPackPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating zippack: %w", err)
	}

	defer func() {
		_ = tmp.Close()

		if removeErr := os.Remove(tmp.Name()); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) && err == nil {
			err = fmt.Errorf("removing zippack: %w", removeErr)
		}
	}()

	writer := zip.NewWriter(tmp)

	files, err := b.writeTree(writer, root)
	if err != nil {
		_ = writer.Close()

		return nil, err
	}

	// Flush the central directory before reading the archive back.
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing zippack: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing zippack: %w", err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("reading zippack: %w", err)
	}

	return &ZipPack{Root: root, Data: data, Files: files}, nil
}

func (b *Builder) writeTree(writer *zip.Writer, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			// "dir/" matching means every descendant matches too.
			if b.Ignored(rel + "/") {
				return filepath.SkipDir
			}

			return nil
		}

		if b.Ignored(rel) {
			return nil
		}

		added, err := b.addFile(writer, path, rel)
		if err != nil {
			return err
		}

		if added {
			files = append(files, rel)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

// addFile copies one file into the archive. Symlinks are followed; links to
// directories and other non-regular files are skipped.
func (b *Builder) addFile(writer *zip.Writer, path, rel string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", rel, err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, fmt.Errorf("zip header for %s: %w", rel, err)
	}

	header.Name = rel
	header.Method = zip.Deflate

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return false, fmt.Errorf("adding %s: %w", rel, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", rel, err)
	}
	defer func() { _ = src.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return false, fmt.Errorf("writing %s: %w", rel, err)
	}

	if b.logger != nil {
		b.logger.Debug(fmt.Sprintf(" > Found %s", rel), nil)
	}

	return true, nil
}
