// Package media stores uploaded recipe images on the local filesystem.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidImage is returned when the upload is not base64 encoded image data.
var ErrInvalidImage = errors.New("upload a valid image")

const recipesDir = "recipes"

// Store writes images under root and exposes them under baseURL.
type Store struct {
	root    string
	baseURL string
}

// NewStore creates a new Store.
func NewStore(root, baseURL string) *Store {
	return &Store{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Save decodes a base64 image, optionally wrapped in a data URI such as
// "data:image/png;base64,....", and returns the URL it is served at.
func (s *Store) Save(_ context.Context, encoded string) (string, error) {
	data, err := decode(encoded)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: got %s", ErrInvalidImage, mtype.String())
	}

	dir := filepath.Join(s.root, recipesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	name := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + recipesDir + "/" + name, nil
}

// Delete removes an image previously returned by Save. URLs outside the store are ignored.
func (s *Store) Delete(url string) error {
	prefix := s.baseURL + "/" + recipesDir + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, prefix))
	err := os.Remove(filepath.Join(s.root, recipesDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func decode(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		payload = body
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}
