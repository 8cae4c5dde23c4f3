package render

import (
	"fmt"

	"github.com/banshee-data/orbits/internal/config"
)

// Output formats accepted by ForFormat.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
)

// ForFormat returns the renderer for format and the file extension it writes.
func ForFormat(format string, cfg *config.Config) (Renderer, string, error) {
	switch format {
	case FormatPNG:
		return NewPNGRenderer(cfg), ".png", nil
	case FormatHTML:
		return NewHTMLRenderer(cfg), ".html", nil
	default:
		return nil, "", fmt.Errorf("unknown format %q (want %s or %s)", format, FormatPNG, FormatHTML)
	}
}
