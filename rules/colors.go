package rules

import "sync"

// Reference colours for the board.
const (
	BackgroundColor  = "#408480"
	SnakeFillColor   = "#800094"
	SnakeBorderColor = "#8000ff"
	PreyColor        = "#ffff00"
)

var defaultColors = []string{
	SnakeFillColor,
	"#8f4949",
	"#49628f",
	"#7f498f",
	"#8f7f49",
	"#628f49",
	"#104947",
	"#cd1e91",
	"#1e4fcd",
	"#1ecdc7",
	"#cd681e",
}

var palette = defaultColors

var colorIndex = 0

var colorMutex = &sync.Mutex{}

func nextColorIndex() int {
	colorMutex.Lock()
	defer colorMutex.Unlock()

	current := colorIndex
	colorIndex = (colorIndex + 1) % len(palette)
	return current
}

func nextColor() string {
	return palette[nextColorIndex()]
}
