package compositor

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// textRenderer burns subtitle text into frames. Text is drawn with a dark
// stroke pass under a light fill pass so it stays legible over any masked
// background.
type textRenderer struct {
	face       font.Face
	lineHeight int
}

func newTextRenderer(sizePx float64) (*textRenderer, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	metrics := face.Metrics()
	return &textRenderer{
		face:       face,
		lineHeight: metrics.Height.Ceil(),
	}, nil
}

var (
	strokeColor = color.RGBA{R: 10, G: 10, B: 10, A: 255}
	fillColor   = color.RGBA{R: 245, G: 245, B: 245, A: 255}
)

// strokeOffsets are the pixel displacements of the stroke pass.
var strokeOffsets = [8][2]int{
	{-2, -2}, {0, -2}, {2, -2},
	{-2, 0}, {2, 0},
	{-2, 2}, {0, 2}, {2, 2},
}

// drawCentered renders text centered inside rect, one pass of dark stroke
// then one of light fill per line.
func (r *textRenderer) drawCentered(img *image.RGBA, rect image.Rectangle, text string) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")

	blockHeight := r.lineHeight * len(lines)
	ascent := r.face.Metrics().Ascent.Ceil()
	top := rect.Min.Y + (rect.Dy()-blockHeight)/2

	for i, line := range lines {
		if line == "" {
			continue
		}
		width := font.MeasureString(r.face, line).Ceil()
		x := rect.Min.X + (rect.Dx()-width)/2
		y := top + i*r.lineHeight + ascent

		for _, off := range strokeOffsets {
			r.drawLine(img, line, x+off[0], y+off[1], strokeColor)
		}
		r.drawLine(img, line, x, y, fillColor)
	}
}

func (r *textRenderer) drawLine(img *image.RGBA, line string, x, y int, c color.RGBA) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(line)
}
