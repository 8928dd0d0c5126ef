// Package images normalizes uploaded pictures into the single format the API
// stores and serves: a 250x250 PNG.
package images

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

var ErrNotAnImage = errors.New("not a decodable image")

const (
	// Width and Height are the exact dimensions every stored image is
	// resized to, matching the dimensions the clients render.
	Width  = 250
	Height = 250
)

// Normalize decodes data (JPEG or PNG), resizes it to Width x Height and
// re-encodes it as PNG. The resize does not preserve aspect ratio.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	resized := imaging.Resize(img, Width, Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
