// Package upload stores user-submitted hostel images on local disk and
// hands back the public URL path they are served from.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage writes uploaded images into a single flat directory that the
// server exposes under /static/uploads/.
type Storage struct {
	dir    string
	logger *slog.Logger
}

// New creates the upload directory if needed and returns a Storage
// rooted there.
func New(dir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", dir, err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// SaveImage writes the uploaded file to disk under a collision-proof name
// and returns the URL path to reference it from review pages.
//
// The stored name is "<random-hex>_<sanitized original name>": the random
// prefix prevents one upload from overwriting another, the sanitized
// original name keeps files recognizable when browsing the directory.
func (s *Storage) SaveImage(file io.Reader, filename string) (string, error) {
	name := fmt.Sprintf("%s_%s", randomHex(), sanitizeFilename(filename))
	dst := filepath.Join(s.dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("upload: creating %s: %w", name, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("upload: writing %s: %w", name, err)
	}

	s.logger.Info("image stored", slog.String("name", name))
	return "/static/uploads/" + name, nil
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sanitizeFilename strips any path components from the client-supplied
// name and replaces everything outside a conservative character set, so
// the value is safe to join onto the upload directory.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filepath.Clean(filename))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		base = "image"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
