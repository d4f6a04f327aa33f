package compositor

import (
	"image"

	"github.com/veilcut/veilcut/internal/region"
)

// pixelRect converts a percent-coordinate region to a pixel rectangle
// against the canvas size, clipped to the frame.
func pixelRect(r region.Region, width, height int) image.Rectangle {
	x0 := int(r.X / 100 * float64(width))
	y0 := int(r.Y / 100 * float64(height))
	x1 := int((r.X + r.Width) / 100 * float64(width))
	y1 := int((r.Y + r.Height) / 100 * float64(height))
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
}

// blurRect box-blurs the frame inside rect, sampling only pixels within the
// rect so content outside the mask never bleeds in. Two separable passes.
func blurRect(img *image.RGBA, rect image.Rectangle, radius int) {
	if radius <= 0 || rect.Empty() {
		return
	}

	w := rect.Dx()
	h := rect.Dy()
	tmp := make([]uint8, w*h*4)

	// horizontal pass into tmp
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, n int
			lo := x - radius
			hi := x + radius
			if lo < 0 {
				lo = 0
			}
			if hi > w-1 {
				hi = w - 1
			}
			for sx := lo; sx <= hi; sx++ {
				off := img.PixOffset(rect.Min.X+sx, rect.Min.Y+y)
				sumR += int(img.Pix[off])
				sumG += int(img.Pix[off+1])
				sumB += int(img.Pix[off+2])
				n++
			}
			to := (y*w + x) * 4
			tmp[to] = uint8(sumR / n)
			tmp[to+1] = uint8(sumG / n)
			tmp[to+2] = uint8(sumB / n)
			tmp[to+3] = 255
		}
	}

	// vertical pass back into the frame
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, n int
			lo := y - radius
			hi := y + radius
			if lo < 0 {
				lo = 0
			}
			if hi > h-1 {
				hi = h - 1
			}
			for sy := lo; sy <= hi; sy++ {
				from := (sy*w + x) * 4
				sumR += int(tmp[from])
				sumG += int(tmp[from+1])
				sumB += int(tmp[from+2])
				n++
			}
			off := img.PixOffset(rect.Min.X+x, rect.Min.Y+y)
			img.Pix[off] = uint8(sumR / n)
			img.Pix[off+1] = uint8(sumG / n)
			img.Pix[off+2] = uint8(sumB / n)
			img.Pix[off+3] = 255
		}
	}
}

// fillRect blends a translucent dark overlay over rect. Opacity is in
// percent [0,100].
func fillRect(img *image.RGBA, rect image.Rectangle, opacity float64) {
	if opacity <= 0 || rect.Empty() {
		return
	}
	if opacity > 100 {
		opacity = 100
	}
	alpha := opacity / 100

	// overlay color is near-black, matching the interactive mask preview
	const or, og, ob = 16, 16, 16

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off] = blend(img.Pix[off], or, alpha)
			img.Pix[off+1] = blend(img.Pix[off+1], og, alpha)
			img.Pix[off+2] = blend(img.Pix[off+2], ob, alpha)
		}
	}
}

func blend(dst, src uint8, alpha float64) uint8 {
	return uint8(float64(dst)*(1-alpha) + float64(src)*alpha)
}
