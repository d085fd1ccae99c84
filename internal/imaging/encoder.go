package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// DefaultMaxDim bounds the longest side of an encoded image; larger
// payloads are thumbnailed down before writing.
const DefaultMaxDim = 512

// Payload shape errors.
var (
	ErrBadSampleDepth = errors.New("unsupported bits per sample")
	ErrBadChannels    = errors.New("unsupported channel count")
	ErrShortPixels    = errors.New("pixel buffer shorter than declared shape")
)

// PNGEncoder is the imaging collaborator: it converts raw RGB/RGBA
// payloads to NRGBA and writes them as PNG files.
type PNGEncoder struct {
	MaxDim int
}

// NewPNGEncoder returns an encoder with the default size bound.
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{MaxDim: DefaultMaxDim}
}

// Encode validates the payload shape, converts it, downscales when the
// longest side exceeds MaxDim, and writes a PNG at path. The parent
// directory is created as needed.
func (e *PNGEncoder) Encode(path string, data *Data) error {
	img, err := toImage(data)
	if err != nil {
		return err
	}

	var out image.Image = img
	if e.MaxDim > 0 && (data.Width > e.MaxDim || data.Height > e.MaxDim) {
		out = resize.Thumbnail(uint(e.MaxDim), uint(e.MaxDim), img, resize.Lanczos3)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	if err := png.Encode(f, out); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// toImage copies the payload rows into an NRGBA image. The wire format
// carries 8-bit samples in RGB (3 channels) or RGBA (4 channels) order
// with an explicit row stride.
func toImage(data *Data) (*image.NRGBA, error) {
	if data.BitsPerSample != 8 {
		return nil, fmt.Errorf("%w: %d", ErrBadSampleDepth, data.BitsPerSample)
	}
	if data.Channels != 3 && data.Channels != 4 {
		return nil, fmt.Errorf("%w: %d", ErrBadChannels, data.Channels)
	}
	if data.Width <= 0 || data.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", data.Width, data.Height)
	}
	if data.RowStride < data.Width*data.Channels {
		return nil, fmt.Errorf("row stride %d too small for width %d with %d channels",
			data.RowStride, data.Width, data.Channels)
	}

	need := (data.Height-1)*data.RowStride + data.Width*data.Channels
	if len(data.Pixels) < need {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShortPixels, len(data.Pixels), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, data.Width, data.Height))
	for y := 0; y < data.Height; y++ {
		row := data.Pixels[y*data.RowStride:]
		for x := 0; x < data.Width; x++ {
			px := row[x*data.Channels:]
			a := uint8(255)
			if data.Channels == 4 {
				a = px[3]
			}
			off := img.PixOffset(x, y)
			img.Pix[off+0] = px[0]
			img.Pix[off+1] = px[1]
			img.Pix[off+2] = px[2]
			img.Pix[off+3] = a
		}
	}
	return img, nil
}
