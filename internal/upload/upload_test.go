package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartUpload(t *testing.T, field, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/register", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	file, header, err := req.FormFile(field)
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return file, header
}

func TestSaveProfilePicturePNG(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "images"), 5*1024*1024)

	file, header := multipartUpload(t, "profile_picture", "me.png", pngHeader)
	defer file.Close()

	path, err := store.SaveProfilePicture(file, header)
	if err != nil {
		t.Fatalf("SaveProfilePicture error: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("expected .png path, got %q", path)
	}
	if _, err := os.Stat(filepath.FromSlash(path)); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestSaveProfilePictureRejectsNonImage(t *testing.T) {
	store := NewStore(t.TempDir(), 5*1024*1024)

	file, header := multipartUpload(t, "profile_picture", "notes.txt", []byte("plain text, not an image"))
	defer file.Close()

	if _, err := store.SaveProfilePicture(file, header); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveProfilePictureRejectsOversize(t *testing.T) {
	store := NewStore(t.TempDir(), 16)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	file, header := multipartUpload(t, "profile_picture", "big.png", big)
	defer file.Close()

	if _, err := store.SaveProfilePicture(file, header); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}
