package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Style turns plain text into styled text
type Style func(string) string

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Warning(s string) string {
	return ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

func Dim(s string) string {
	return ColorDim + s + ColorReset
}

// Tag renders a bracketed label such as a surface name
func Tag(s string) string {
	return ColorBold + ColorCyan + "[" + s + "]" + ColorReset
}

// Painter applies styles only when color output is enabled
type Painter struct {
	Color bool
}

// Paint styles s, or returns it unchanged when color is off
func (p Painter) Paint(style Style, s string) string {
	if !p.Color {
		return s
	}
	return style(s)
}

// Tag renders a bracketed label, plain when color is off
func (p Painter) Tag(s string) string {
	if !p.Color {
		return "[" + s + "]"
	}
	return Tag(s)
}
