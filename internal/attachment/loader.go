// Package attachment turns files on disk into the data-URIs the composer
// attaches to a prompt.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"royal-terminal/internal/logging"
)

// MaxFileSize caps a single attachment
const MaxFileSize = 20 << 20

var (
	ErrUnsupported = errors.New("unsupported attachment")
	ErrTooLarge    = errors.New("attachment too large")
)

// LoadImage reads an image file and returns it as a data-URI.
func LoadImage(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsImage(ext) {
		return "", fmt.Errorf("%w: %s is not an image", ErrUnsupported, filepath.Base(path))
	}

	data, err := readLimited(path)
	if err != nil {
		return "", err
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s has content type %s", ErrUnsupported, filepath.Base(path), mime.String())
	}

	return dataURI(baseType(mime.String()), data), nil
}

// LoadFile reads a file and returns it as a data-URI followed by
// "*<original filename>". Text files are normalized to UTF-8 first.
func LoadFile(path string) (string, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	data, err := readLimited(path)
	if err != nil {
		return "", err
	}

	mimeType := baseType(mimetype.Detect(data).String())
	if IsText(ext) {
		normalized, enc, err := normalizeText(data)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		logging.Debug("Attachment %s decoded from %s", name, enc)
		data = normalized
		mimeType = "text/plain"
	}

	return dataURI(mimeType, data) + "*" + name, nil
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupported, filepath.Base(path))
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, filepath.Base(path), info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// baseType drops MIME parameters such as "; charset=utf-8"
func baseType(mime string) string {
	t, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(t)
}
