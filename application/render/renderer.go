package render

import (
	"math"

	"investigation-canvas/application/interaction"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	"investigation-canvas/domain/services"
)

// Renderer draws a full frame from the scene and the transient interaction state.
// It keeps no state between frames.
type Renderer struct {
	theme Theme
}

// NewRenderer creates a renderer with the given theme
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Theme returns the theme in use
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Render redraws everything: background, connections, nodes, then the connect preview
func (r *Renderer) Render(surface Surface, scene services.SceneReader, snap interaction.Snapshot) {
	surface.Clear(r.theme.Background)

	for _, conn := range scene.Connections() {
		from, okFrom := scene.Node(conn.From())
		to, okTo := scene.Node(conn.To())
		if !okFrom || !okTo {
			continue
		}
		r.drawConnection(surface, from, to, conn.ID().Equals(snap.Selection.Connection))
	}

	for _, node := range scene.Nodes() {
		r.drawNode(surface, node, node.ID().Equals(snap.Selection.Node))
	}

	if sourceID, targetID, ok := snap.Preview(); ok {
		source, okSource := scene.Node(sourceID)
		target, okTarget := scene.Node(targetID)
		if okSource && okTarget {
			surface.Line(source.Center(), target.Center(), r.theme.Preview)
		}
	}
}

func (r *Renderer) drawConnection(surface Surface, from, to *entities.Node, selected bool) {
	stroke := r.theme.Connection
	if selected {
		stroke = r.theme.ConnectionSelected
	}

	start, end := from.Center(), to.Center()
	surface.Line(start, end, stroke)

	// The arrow tip sits on the destination border so nodes drawn later do not hide it
	tip := borderPoint(to.Bounds(), start)
	angle := math.Atan2(end.Y()-start.Y(), end.X()-start.X())
	for _, side := range []float64{-1, 1} {
		a := angle + side*r.theme.ArrowAngle
		wing := valueobjects.NewPosition(
			tip.X()-r.theme.ArrowLength*math.Cos(a),
			tip.Y()-r.theme.ArrowLength*math.Sin(a),
		)
		surface.Line(tip, wing, stroke)
	}
}

func (r *Renderer) drawNode(surface Surface, node *entities.Node, selected bool) {
	bounds := node.Bounds()
	origin := bounds.Origin()

	fill, border := r.theme.NodeFill, r.theme.NodeBorder
	if selected {
		fill, border = r.theme.NodeFillSelected, r.theme.NodeBorderSelected
	}
	surface.FillRect(bounds, fill)
	surface.StrokeRect(bounds, border)

	accentSize, err := valueobjects.NewSize(r.theme.AccentWidth, node.Size().Height())
	if err == nil {
		surface.FillRect(valueobjects.NewRect(origin, accentSize), r.theme.AccentFor(node.Kind(), node.Source()))
	}

	title := node.Title()
	if title == "" {
		title = r.theme.Placeholder
	}
	textX := origin.X() + r.theme.TitleOffsetX
	surface.Text(title, valueobjects.NewPosition(textX, origin.Y()+r.theme.TitleOffsetY), r.theme.TitleFont, r.theme.TitleColor)

	measure := func(s string) float64 { return surface.MeasureText(s, r.theme.BodyFont) }
	lines := WrapText(node.Description(), node.Size().Width()-r.theme.BodyPadding, measure)
	y := origin.Y() + r.theme.BodyOffsetY
	for _, line := range lines {
		if line != "" {
			surface.Text(line, valueobjects.NewPosition(textX, y), r.theme.BodyFont, r.theme.BodyColor)
		}
		y += r.theme.BodyLineHeight
	}
}

// borderPoint returns where the segment from the rectangle center towards p
// leaves the rectangle. If p lies inside the rectangle the center is returned.
func borderPoint(rect valueobjects.Rect, p valueobjects.Position) valueobjects.Position {
	center := rect.Center()
	dx, dy := p.X()-center.X(), p.Y()-center.Y()
	if dx == 0 && dy == 0 {
		return center
	}

	halfW, halfH := rect.Size().Width()/2, rect.Size().Height()/2
	scale := math.Inf(1)
	if dx != 0 {
		scale = halfW / math.Abs(dx)
	}
	if dy != 0 {
		scale = math.Min(scale, halfH/math.Abs(dy))
	}
	if scale >= 1 {
		return center
	}

	return valueobjects.NewPosition(center.X()+dx*scale, center.Y()+dy*scale)
}
