package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"investigation-canvas/application/render"
	"investigation-canvas/domain/core/valueobjects"
)

// Surface is a render.Surface backed by an in-memory RGBA image
type Surface struct {
	dc      *gg.Context
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[render.Font]font.Face
}

// NewSurface creates a raster surface of the given pixel size
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &Surface{
		dc:      gg.NewContext(width, height),
		regular: regular,
		bold:    bold,
		faces:   make(map[render.Font]font.Face),
	}, nil
}

// Resize replaces the backing image. The caller redraws afterwards.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if width == s.dc.Width() && height == s.dc.Height() {
		return nil
	}
	s.dc = gg.NewContext(width, height)
	return nil
}

// Size implements render.Surface
func (s *Surface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

// Clear implements render.Surface
func (s *Surface) Clear(c color.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

// FillRect implements render.Surface
func (s *Surface) FillRect(r valueobjects.Rect, c color.Color) {
	s.dc.SetColor(c)
	s.dc.DrawRectangle(r.Origin().X(), r.Origin().Y(), r.Size().Width(), r.Size().Height())
	s.dc.Fill()
}

// StrokeRect implements render.Surface
func (s *Surface) StrokeRect(r valueobjects.Rect, st render.Stroke) {
	s.applyStroke(st)
	s.dc.DrawRectangle(r.Origin().X(), r.Origin().Y(), r.Size().Width(), r.Size().Height())
	s.dc.Stroke()
}

// Line implements render.Surface
func (s *Surface) Line(from, to valueobjects.Position, st render.Stroke) {
	s.applyStroke(st)
	s.dc.DrawLine(from.X(), from.Y(), to.X(), to.Y())
	s.dc.Stroke()
}

// Text implements render.Surface
func (s *Surface) Text(text string, at valueobjects.Position, f render.Font, c color.Color) {
	s.dc.SetFontFace(s.face(f))
	s.dc.SetColor(c)
	s.dc.DrawString(text, at.X(), at.Y())
}

// MeasureText implements render.Surface
func (s *Surface) MeasureText(text string, f render.Font) float64 {
	s.dc.SetFontFace(s.face(f))
	w, _ := s.dc.MeasureString(text)
	return w
}

// Image returns the current frame
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the current frame as PNG
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// SavePNG writes the current frame to a PNG file
func (s *Surface) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

func (s *Surface) applyStroke(st render.Stroke) {
	s.dc.SetColor(st.Color)
	s.dc.SetLineWidth(st.Width)
	s.dc.SetDash(st.Dash...)
}

func (s *Surface) face(f render.Font) font.Face {
	if face, ok := s.faces[f]; ok {
		return face
	}
	ttf := s.regular
	if f.Bold {
		ttf = s.bold
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	s.faces[f] = face
	return face
}
