package legend

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextMeasurer reports the rendered width of text at a font size.
type TextMeasurer interface {
	MeasureText(text string, fontSize float64) float64
}

// DefaultCharRatio is the assumed advance of one character relative to the
// font size.
const DefaultCharRatio = 0.5

// CharWidthMeasurer assumes every character has the same advance width.
type CharWidthMeasurer struct {
	Ratio float64 // zero means DefaultCharRatio
}

func (c CharWidthMeasurer) MeasureText(text string, fontSize float64) float64 {
	r := c.Ratio
	if r == 0 {
		r = DefaultCharRatio
	}
	return float64(utf8.RuneCountInString(text)) * fontSize * r
}

// FontMeasurer measures text with real glyph advances from an OpenType font.
// Faces are cached per size; a face is not safe for concurrent use, so every
// measurement holds the lock.
type FontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer parses an OpenType/TrueType font. A nil ttf selects the
// bundled Go Regular face.
func NewFontMeasurer(ttf []byte) (*FontMeasurer, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

// LoadFontMeasurer reads a font file from disk. An empty path selects Go Regular.
func LoadFontMeasurer(path string) (*FontMeasurer, error) {
	if path == "" {
		return NewFontMeasurer(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return NewFontMeasurer(data)
}

// NewFace returns a fresh face at the given size, owned by the caller.
func (f *FontMeasurer) NewFace(size float64) (font.Face, error) {
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (f *FontMeasurer) MeasureText(text string, fontSize float64) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	face, ok := f.faces[fontSize]
	if !ok {
		var err error
		face, err = f.NewFace(fontSize)
		if err != nil {
			return CharWidthMeasurer{}.MeasureText(text, fontSize)
		}
		f.faces[fontSize] = face
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64
}
