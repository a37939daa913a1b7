package shape

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// metricsFace is the fixed face text is measured with. Widths scale
// linearly from its 13px height to the shape's font size.
var metricsFace = basicfont.Face7x13

const metricsHeight = 13

// MeasureText returns the box that fits text at fontSize, padding included.
func MeasureText(text string, fontSize, lineHeight, padding float64) geom.Vec {
	if fontSize <= 0 {
		fontSize = 20
	}
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		adv := font.MeasureString(metricsFace, line)
		width = math.Max(width, float64(adv)/64*fontSize/metricsHeight)
	}
	height := float64(len(lines)) * fontSize * lineHeight
	return geom.V(
		math.Max(1, math.Ceil(width+padding*2)),
		math.Max(1, math.Ceil(height+padding*2)),
	)
}

func textAutoSize(m *document.ShapeModel) {
	if m.IsSizeLocked {
		m.Size = MeasureText(m.Text, m.FontSize, m.LineHeight, m.Padding)
	}
	clampSize(m)
}

func TextDef() *Def {
	flags := defaultFlags()
	flags.CanEdit = true
	flags.CanFlip = false
	return &Def{
		Type:  TypeText,
		Flags: flags,
		Defaults: func() document.ShapeModel {
			m := boxDefaults(TypeText)()
			m.Size = geom.V(1, 1)
			m.Style.StrokeWidth = 0
			m.FontSize = 20
			m.LineHeight = 1.2
			m.Padding = 4
			m.IsSizeLocked = true
			return m
		},
		Bounds:   boxBounds,
		Validate: textAutoSize,
		// a manual resize unlocks the size from the text
		OnResize: func(s *Shape, initial document.ShapeModel, info ResizeInfo) {
			s.props.IsSizeLocked = false
			boxResize(s, initial, info)
		},
		OnResetBounds: func(s *Shape, _ ResetBoundsInfo) {
			s.Update(func(m *document.ShapeModel) { m.IsSizeLocked = true })
		},
	}
}
