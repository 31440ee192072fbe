package attachment

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Smallest valid PNG: 1x1 transparent pixel
var pngBytes, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodePayload(t *testing.T, uri string) []byte {
	t.Helper()
	_, payload, found := strings.Cut(uri, ",")
	if !found {
		t.Fatalf("not a data-URI: %q", uri)
	}
	payload, _, _ = strings.Cut(payload, "*")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	return data
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pixel.png", pngBytes)

	uri, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("unexpected prefix: %q", uri[:30])
	}
	if string(decodePayload(t, uri)) != string(pngBytes) {
		t.Error("payload does not round-trip")
	}
}

func TestLoadImageRejectsNonImages(t *testing.T) {
	dir := t.TempDir()

	notes := writeFile(t, dir, "notes.txt", []byte("hello"))
	if _, err := LoadImage(notes); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for text, got %v", err)
	}

	fake := writeFile(t, dir, "fake.png", []byte("just text pretending"))
	if _, err := LoadImage(fake); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for fake png, got %v", err)
	}
}

func TestLoadFileText(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "plain.txt", data: []byte("héllo"), want: "héllo"},
		{name: "bom.txt", data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom")...), want: "bom"},
		{name: "utf16.txt", data: []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, want: "hi"},
		{name: "latin1.md", data: []byte{'c', 'a', 'f', 0xE9}, want: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.data)

			uri, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if !strings.HasPrefix(uri, "data:text/plain;base64,") {
				t.Errorf("unexpected prefix in %q", uri)
			}
			if !strings.HasSuffix(uri, "*"+tt.name) {
				t.Errorf("expected filename suffix in %q", uri)
			}
			if got := string(decodePayload(t, uri)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFileBinary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chart.png", pngBytes)

	uri, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") || !strings.HasSuffix(uri, "*chart.png") {
		t.Errorf("unexpected uri %q", uri)
	}
}

func TestLoadFileRejects(t *testing.T) {
	dir := t.TempDir()

	exe := writeFile(t, dir, "tool.exe", []byte("MZ"))
	if _, err := LoadFile(exe); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectPaths(t *testing.T) {
	dir := t.TempDir()
	image := writeFile(t, dir, "photo.png", pngBytes)
	notes := writeFile(t, dir, "notes.txt", []byte("n"))
	spaced := writeFile(t, dir, "my notes.txt", []byte("n"))

	tests := []struct {
		name      string
		input     string
		wantPaths []string
		wantQuery string
	}{
		{
			name:      "no paths",
			input:     "just a question",
			wantQuery: "just a question",
		},
		{
			name:      "query before path",
			input:     "describe " + image,
			wantPaths: []string{image},
			wantQuery: "describe",
		},
		{
			name:      "path then query",
			input:     notes + " summarize this",
			wantPaths: []string{notes},
			wantQuery: "summarize this",
		},
		{
			name:      "two paths",
			input:     "compare " + image + " with " + notes,
			wantPaths: []string{image, notes},
			wantQuery: "compare with",
		},
		{
			name:      "path with space",
			input:     "read " + spaced + " please",
			wantPaths: []string{spaced},
			wantQuery: "read please",
		},
		{
			name:      "missing file is left in the prompt",
			input:     "read " + filepath.Join(dir, "absent.txt"),
			wantQuery: "read " + filepath.Join(dir, "absent.txt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPaths(tt.input)

			if len(got.Paths) != len(tt.wantPaths) {
				t.Fatalf("expected %d paths, got %+v", len(tt.wantPaths), got.Paths)
			}
			for i, want := range tt.wantPaths {
				if got.Paths[i].Path != want {
					t.Errorf("path %d: got %q, want %q", i, got.Paths[i].Path, want)
				}
			}
			if got.Query != tt.wantQuery {
				t.Errorf("query: got %q, want %q", got.Query, tt.wantQuery)
			}
		})
	}
}

func TestDetectionSplitsImagesAndFiles(t *testing.T) {
	dir := t.TempDir()
	image := writeFile(t, dir, "photo.png", pngBytes)
	notes := writeFile(t, dir, "notes.txt", []byte("n"))

	d := DetectPaths(image + " " + notes)
	if imgs := d.Images(); len(imgs) != 1 || imgs[0] != image {
		t.Errorf("unexpected images %v", imgs)
	}
	if files := d.Files(); len(files) != 1 || files[0] != notes {
		t.Errorf("unexpected files %v", files)
	}
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	payload := base64.StdEncoding.EncodeToString(pngBytes)

	first, err := SaveImage(dir, payload, now)
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if filepath.Base(first) != "royal-image-20250304-050607.png" {
		t.Errorf("unexpected name %q", filepath.Base(first))
	}

	second, err := SaveImage(dir, "data:image/png;base64,"+payload, now)
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if second == first {
		t.Error("expected a distinct name for the second image")
	}

	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(pngBytes) {
		t.Error("saved bytes differ from payload")
	}
}

func TestSaveImageRejects(t *testing.T) {
	dir := t.TempDir()

	if _, err := SaveImage(dir, "%%%not-base64", time.Now()); err == nil {
		t.Error("expected error for invalid base64")
	}

	text := base64.StdEncoding.EncodeToString([]byte("plain words"))
	if _, err := SaveImage(dir, text, time.Now()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
