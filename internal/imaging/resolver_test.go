package imaging

import (
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Download Complete7", "DownloadComplete7"},
		{"Hi3", "Hi3"},
		{"build #42 done!", "build42done"},
		{"../../etc/passwd1", "etcpasswd1"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestResolver_FromPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "icon.png")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0600))

	r := NewResolver(dir, NewPNGEncoder(), testLogger())

	assert.Equal(t, existing, r.FromPath(existing))
	assert.Equal(t, "", r.FromPath(filepath.Join(dir, "missing.png")))
	assert.Equal(t, "", r.FromPath(""))
	assert.Equal(t, "", r.FromPath("firefox")) // icon name, not a path
}

func TestResolver_FromPayload(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, NewPNGEncoder(), testLogger())

	path := r.FromPayload("Download Complete7", rgbPayload(3, 2))
	require.NotEmpty(t, path)
	assert.Equal(t, filepath.Join(dir, "DownloadComplete7.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestResolver_FromPayloadNil(t *testing.T) {
	r := NewResolver(t.TempDir(), NewPNGEncoder(), testLogger())
	assert.Equal(t, "", r.FromPayload("Hi1", nil))
}

func TestResolver_FromPayloadEncodeFailure(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, NewPNGEncoder(), testLogger())

	// Declared shape larger than the pixel buffer.
	bad := rgbPayload(3, 2)
	bad.Pixels = bad.Pixels[:4]

	assert.Equal(t, "", r.FromPayload("Broken5", bad))

	_, err := os.Stat(filepath.Join(dir, "Broken5.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestPNGEncoder_RGBAPayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	data := &Data{
		Width:         2,
		Height:        2,
		RowStride:     8,
		HasAlpha:      true,
		BitsPerSample: 8,
		Channels:      4,
		Pixels: []byte{
			255, 0, 0, 255, 0, 255, 0, 128,
			0, 0, 255, 255, 255, 255, 255, 0,
		},
	}

	require.NoError(t, NewPNGEncoder().Encode(path, data))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestPNGEncoder_DownscalesOversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")

	enc := &PNGEncoder{MaxDim: 4}
	require.NoError(t, enc.Encode(path, rgbPayload(8, 6)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 4)
	assert.LessOrEqual(t, img.Bounds().Dy(), 4)
}

func TestPNGEncoder_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Data)
		wantErr error
	}{
		{"16 bit samples", func(d *Data) { d.BitsPerSample = 16 }, ErrBadSampleDepth},
		{"two channels", func(d *Data) { d.Channels = 2 }, ErrBadChannels},
		{"short buffer", func(d *Data) { d.Pixels = d.Pixels[:2] }, ErrShortPixels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := rgbPayload(3, 2)
			tt.mutate(data)
			err := NewPNGEncoder().Encode(filepath.Join(t.TempDir(), "x.png"), data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// rgbPayload builds a w x h RGB payload with a tight row stride.
func rgbPayload(w, h int) *Data {
	pixels := make([]byte, w*h*3)
	for i := range pixels {
		pixels[i] = byte(i * 11)
	}
	return &Data{
		Width:         w,
		Height:        h,
		RowStride:     w * 3,
		BitsPerSample: 8,
		Channels:      3,
		Pixels:        pixels,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
