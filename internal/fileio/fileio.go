// Package fileio is the line-based text I/O collaborator used by the contact
// repository. It is trusted and synchronous.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tartampluch/vcard-editor/internal/config"
)

// maxLineSize bounds a single line. Inline base64 photos are written on one
// line by most exporters, so the scanner default (64 KiB) is too small.
const maxLineSize = 64 * 1024 * 1024

const utf8BOM = "\uFEFF"

// Handler defines the file operations the repository depends on.
// It exists so the repository can be exercised without touching the disk.
type Handler interface {
	ReadLines(path string) ([]string, error)
	WriteAllText(path, contents string) error
	MoveFile(src, dst string) error
	FileExists(path string) bool
	GetExtension(path string) string
	WriteBytes(path string, data []byte) error
}

// OS implements Handler on the local filesystem.
type OS struct{}

// ReadLines returns the file's lines without their terminators.
// CRLF and LF endings are both accepted; a leading UTF-8 BOM is dropped.
func (OS) ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// WriteAllText replaces the file content.
func (OS) WriteAllText(path, contents string) error {
	return os.WriteFile(path, []byte(contents), config.FilePermShared)
}

// MoveFile renames src to dst, replacing dst if it already exists.
func (OS) MoveFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

// FileExists reports whether path names an existing regular file.
func (OS) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// GetExtension returns the lower-cased extension of path, dot included.
func (OS) GetExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// WriteBytes writes binary data such as an exported photo.
func (OS) WriteBytes(path string, data []byte) error {
	return os.WriteFile(path, data, config.FilePermShared)
}
