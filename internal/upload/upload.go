package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedType = errors.New("only images (JPEG, PNG, WebP) are allowed")
)

// extensions by sniffed content type
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store writes accepted image uploads under Dir with collision-free
// names and hands back the stored path.
type Store struct {
	Dir     string
	MaxSize int64
}

func NewStore(dir string, maxSize int64) *Store {
	return &Store{Dir: dir, MaxSize: maxSize}
}

// SaveProfilePicture validates type by sniffing the first bytes, not
// by trusting the client's declared content type.
func (s *Store) SaveProfilePicture(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.MaxSize {
		return "", ErrFileTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	ext, ok := imageExts[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := fmt.Sprintf("profilePicture-%s%s", uuid.NewString(), ext)
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	// MaxSize+1 so an understated header.Size still gets caught.
	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(file, s.MaxSize+1)))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if written > s.MaxSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return filepath.ToSlash(path), nil
}
