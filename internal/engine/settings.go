package engine

// GridSize is the base grid step in page units.
const GridSize = 8

// Settings are user preferences that tools read.
type Settings struct {
	Color        string  `json:"color,omitempty"`
	StrokeWidth  float64 `json:"strokeWidth,omitempty"`
	ShowGrid     bool    `json:"showGrid"`
	SnapToGrid   bool    `json:"snapToGrid"`
	IsToolLocked bool    `json:"isToolLocked"`
	PenMode      bool    `json:"penMode"`
}

func DefaultSettings() Settings {
	return Settings{Color: "#000000", StrokeWidth: 2, ShowGrid: true}
}
