// Package storage implements the upload-storage collaborator for
// profile and post images.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"  // register decoders for common upload formats
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// maxDimension caps the longer image edge; larger uploads are scaled down.
	maxDimension = 1920
	webpQuality  = 85
)

// Store persists an uploaded image and returns its public reference path.
type Store interface {
	Save(ctx context.Context, content []byte) (string, error)
}

// DiskStore writes uploads to a local directory, transcoded to WebP.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save decodes the upload, scales it down to maxDimension if necessary,
// encodes it as WebP and writes it under a random name. The returned
// reference is the public path clients use (e.g. "/uploads/<name>.webp").
func (s *DiskStore) Save(_ context.Context, content []byte) (string, error) {
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	decoded = scaleDown(decoded, maxDimension)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, decoded, &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	name := uuid.New().String() + ".webp"
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "/uploads/" + name, nil
}

// scaleDown resizes src so its longer edge is at most max, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func scaleDown(src image.Image, max int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = max
		nh = h * max / w
	} else {
		nh = max
		nw = w * max / h
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
