// Package assets prepares site photos for the web and uploads them to
// S3-compatible object storage.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

const (
	DefaultMaxWidth = 2000
	DefaultQuality  = 82
)

// CompressOptions bound the size of a compressed image.
type CompressOptions struct {
	MaxWidth int
	Quality  int
}

func (o CompressOptions) withDefaults() CompressOptions {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Compressed is a re-encoded JPEG image.
type Compressed struct {
	Data   []byte
	Width  int
	Height int
}

// Compress decodes a JPEG or PNG image, scales it down to MaxWidth keeping
// the aspect ratio, and re-encodes it as JPEG. Transparent pixels are
// flattened onto white.
func Compress(r io.Reader, opts CompressOptions) (*Compressed, error) {
	opts = opts.withDefaults()

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > opts.MaxWidth {
		height = height * opts.MaxWidth / width
		if height < 1 {
			height = 1
		}
		width = opts.MaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return &Compressed{Data: buf.Bytes(), Width: width, Height: height}, nil
}
