package render

import (
	"image/color"
	"math"

	"investigation-canvas/domain/core/entities"
)

// Theme holds the colours and metrics the renderer draws with
type Theme struct {
	Background color.Color

	NodeFill           color.Color
	NodeFillSelected   color.Color
	NodeBorder         Stroke
	NodeBorderSelected Stroke
	AccentWidth        float64
	Accents            map[entities.SourceCategory]color.Color
	AnnotationAccent   color.Color
	DefaultAccent      color.Color

	TitleFont    Font
	TitleColor   color.Color
	TitleOffsetX float64
	TitleOffsetY float64
	Placeholder  string

	BodyFont       Font
	BodyColor      color.Color
	BodyOffsetY    float64
	BodyLineHeight float64
	BodyPadding    float64

	Connection         Stroke
	ConnectionSelected Stroke
	ArrowLength        float64
	ArrowAngle         float64

	Preview Stroke
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// DefaultTheme returns the standard canvas look
func DefaultTheme() Theme {
	grey := rgb(0x6c, 0x75, 0x7d)
	blue := rgb(0x00, 0x66, 0xcc)

	return Theme{
		Background: color.White,

		NodeFill:           color.White,
		NodeFillSelected:   rgb(0xe7, 0xf3, 0xff),
		NodeBorder:         Stroke{Color: rgb(0xdd, 0xdd, 0xdd), Width: 2},
		NodeBorderSelected: Stroke{Color: blue, Width: 3},
		AccentWidth:        4,
		Accents: map[entities.SourceCategory]color.Color{
			entities.SourceGit:     rgb(0xf0, 0x50, 0x33),
			entities.SourceCI:      rgb(0x00, 0xad, 0xd8),
			entities.SourceLogs:    rgb(0xff, 0xd4, 0x3b),
			entities.SourceMetrics: rgb(0x20, 0xc9, 0x97),
			entities.SourceTraces:  rgb(0x6f, 0x42, 0xc1),
			entities.SourceManual:  grey,
		},
		AnnotationAccent: grey,
		DefaultAccent:    grey,

		TitleFont:    Font{Size: 12, Bold: true},
		TitleColor:   rgb(0x33, 0x33, 0x33),
		TitleOffsetX: 8,
		TitleOffsetY: 20,
		Placeholder:  "Untitled",

		BodyFont:       Font{Size: 11},
		BodyColor:      rgb(0x66, 0x66, 0x66),
		BodyOffsetY:    35,
		BodyLineHeight: 12,
		BodyPadding:    16,

		Connection:         Stroke{Color: rgb(0x99, 0x99, 0x99), Width: 2},
		ConnectionSelected: Stroke{Color: blue, Width: 3},
		ArrowLength:        10,
		ArrowAngle:         math.Pi / 6,

		Preview: Stroke{Color: blue, Width: 2, Dash: []float64{5, 5}},
	}
}

// AccentFor returns the left-bar colour for a node
func (t Theme) AccentFor(kind entities.NodeKind, source entities.SourceCategory) color.Color {
	if kind == entities.KindAnnotation {
		return t.AnnotationAccent
	}
	if c, ok := t.Accents[source]; ok {
		return c
	}
	return t.DefaultAccent
}
