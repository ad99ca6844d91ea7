// Package compare lays two map screenshots side by side under their titles.
package compare

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"log/slog"
	"os"

	"github.com/couchcryptid/fire-match-viz/internal/domain"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Figure geometry in pixels: two equal panels, each with a title band.
const (
	FigureWidth  = 1200
	FigureHeight = 800

	titleBand = 30
	margin    = 10
)

// Viewer composes comparison figures and hands them to a Displayer.
type Viewer struct {
	display domain.Displayer
	logger  *slog.Logger
}

// NewViewer creates a Viewer. A nil display only composes.
func NewViewer(display domain.Displayer, logger *slog.Logger) *Viewer {
	return &Viewer{display: display, logger: logger}
}

// Show loads both images and displays them side by side, each under its
// title with axes hidden. Either image failing to load is an error.
func (v *Viewer) Show(ctx context.Context, path1, path2, title1, title2 string) (image.Image, error) {
	left, err := load(path1)
	if err != nil {
		return nil, err
	}
	right, err := load(path2)
	if err != nil {
		return nil, err
	}

	fig := Compose(left, right, title1, title2)
	v.logger.Debug("comparison composed", "left", path1, "right", path2)

	if v.display != nil {
		name := "comparison_" + domain.FileLabel(title1) + "_" + domain.FileLabel(title2)
		if err := v.display.Show(ctx, name, fig); err != nil {
			return nil, fmt.Errorf("show comparison: %w", err)
		}
	}
	return fig, nil
}

func load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode screenshot %s: %w", path, err)
	}
	return img, nil
}

// Compose draws left and right into a white FigureWidth×FigureHeight canvas.
// Each image is scaled to fit its panel keeping its aspect ratio.
func Compose(left, right image.Image, title1, title2 string) *image.RGBA {
	fig := image.NewRGBA(image.Rect(0, 0, FigureWidth, FigureHeight))
	draw.Draw(fig, fig.Bounds(), image.White, image.Point{}, draw.Src)

	panelW := FigureWidth / 2
	drawPanel(fig, image.Rect(0, 0, panelW, FigureHeight), left, title1)
	drawPanel(fig, image.Rect(panelW, 0, FigureWidth, FigureHeight), right, title2)
	return fig
}

func drawPanel(dst *image.RGBA, panel image.Rectangle, src image.Image, title string) {
	area := image.Rect(panel.Min.X+margin, panel.Min.Y+titleBand, panel.Max.X-margin, panel.Max.Y-margin)
	xdraw.CatmullRom.Scale(dst, fit(src.Bounds(), area), src, src.Bounds(), xdraw.Over, nil)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(color.Black), Face: face}
	tw := dr.MeasureString(title).Ceil()
	x := panel.Min.X + (panel.Dx()-tw)/2
	y := panel.Min.Y + (titleBand+face.Metrics().Ascent.Ceil())/2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(title)
}

// fit returns the largest rectangle with src's aspect ratio centered in area.
func fit(src, area image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return image.Rectangle{Min: area.Min, Max: area.Min}
	}
	var w, h int
	if sw*area.Dy() > sh*area.Dx() {
		// Wider than the area: fill the width.
		w = area.Dx()
		h = sh * area.Dx() / sw
	} else {
		h = area.Dy()
		w = sw * area.Dy() / sh
	}
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
