package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultThumbWidth is the card thumbnail width in pixels.
const DefaultThumbWidth = 640

// ErrInvalidName is returned for paths outside the image root.
var ErrInvalidName = errors.New("assets: invalid image name")

// Thumbnailer downsizes images to WebP and caches the results.
type Thumbnailer struct {
	src   fs.FS
	width int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]byte
}

// NewThumbnailer reads source images from src. Images narrower than width
// are re-encoded without scaling.
func NewThumbnailer(src fs.FS, width int) *Thumbnailer {
	if width <= 0 {
		width = DefaultThumbWidth
	}
	return &Thumbnailer{src: src, width: width, cache: make(map[string][]byte)}
}

// Get returns the WebP thumbnail of name, a slash-separated path relative
// to the image root. Missing files report fs.ErrNotExist.
func (t *Thumbnailer) Get(name string) ([]byte, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, ErrInvalidName
	}

	t.mu.RLock()
	data, ok := t.cache[name]
	t.mu.RUnlock()
	if ok {
		return data, nil
	}

	v, err, _ := t.group.Do(name, func() (interface{}, error) {
		out, err := t.render(name)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.cache[name] = out
		t.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (t *Thumbnailer) render(name string) ([]byte, error) {
	f, err := t.src.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, scaleToWidth(img, t.width), nil); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// scaleToWidth keeps the aspect ratio and never upscales.
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
