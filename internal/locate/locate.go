// Package locate finds the media file a run should transcribe.
package locate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// MediaFile is a candidate input discovered by a directory scan.
type MediaFile struct {
	Path    string
	ModTime time.Time
	Ext     string
}

// Name returns the file name without its directory.
func (m MediaFile) Name() string {
	return filepath.Base(m.Path)
}

// EnsureDirs creates every missing directory, logging each one it creates.
func EnsureDirs(logger *slog.Logger, dirs ...string) error {
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("locate: stat %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("locate: create directory %s: %w", dir, err)
		}
		logger.Info("Created directory", "dir", dir)
	}
	return nil
}

// Latest returns the most recently modified file in dir whose extension is
// one of exts. Extensions are compared exactly, so ".MP3" does not match
// ".mp3". Hidden files and directories are ignored;
// symlinks are followed.
//
// A missing dir is created and reported as no match. Equal modification
// times resolve to the lexicographically smallest path.
func Latest(dir string, exts []string) (MediaFile, bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return MediaFile{}, false, fmt.Errorf("locate: create directory %s: %w", dir, err)
		}
		return MediaFile{}, false, nil
	}
	if err != nil {
		return MediaFile{}, false, fmt.Errorf("locate: read directory %s: %w", dir, err)
	}

	candidates := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (MediaFile, bool) {
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.HasPrefix(name, ".") || !lo.Contains(exts, ext) {
			return MediaFile{}, false
		}
		path := filepath.Join(dir, name)
		info, err := entry.Info()
		if err == nil && entry.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(path)
		}
		// Entries removed mid-scan and dangling links are skipped.
		if err != nil || !info.Mode().IsRegular() {
			return MediaFile{}, false
		}
		return MediaFile{Path: path, ModTime: info.ModTime(), Ext: ext}, true
	})
	if len(candidates) == 0 {
		return MediaFile{}, false, nil
	}

	return lo.MaxBy(candidates, newer), true, nil
}

// newer reports whether a should win over b.
func newer(a, b MediaFile) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path < b.Path
}
