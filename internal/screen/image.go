// internal/screen/image.go
package screen

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
)

// downscale shrinks img by the given linear factor using approximate
// bilinear interpolation. Factor 1 returns the input unchanged.
func downscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	if w < 1 || h < 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// grayscale converts an image to 8-bit grayscale.
func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// sobelMask marks pixels whose Sobel gradient magnitude exceeds threshold.
// The one-pixel border is left unmarked.
func sobelMask(gray *image.Gray, threshold int) []bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	mask := make([]bool, w*h)
	if w < 3 || h < 3 {
		return mask
	}

	at := func(x, y int) int {
		return int(gray.GrayAt(x, y).Y)
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy >= threshold {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

// connectedComponents groups 4-connected marked pixels into bounding boxes,
// scanning row-major so results are in deterministic top-left order.
func connectedComponents(mask []bool, w, h int) []schemas.Rect {
	visited := make([]bool, len(mask))
	var boxes []schemas.Rect
	queue := make([]int, 0, 256)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		minX, minY := w, h
		maxX, maxY := 0, 0
		queue = append(queue[:0], start)
		visited[start] = true

		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			x, y := idx%w, idx/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) {
					continue
				}
				// Horizontal neighbors must stay on the same row.
				if (n == idx-1 || n == idx+1) && n/w != y {
					continue
				}
				if mask[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		boxes = append(boxes, schemas.Rect{
			X: minX, Y: minY,
			W: maxX - minX + 1, H: maxY - minY + 1,
		})
	}
	return boxes
}

// classifyKind assigns a kind from full-resolution box geometry. Wide, low
// boxes read as text fields; everything else in the size band reads as a
// button.
func classifyKind(bounds schemas.Rect, aspectMin float64, maxHeight int) schemas.RegionKind {
	if bounds.H <= 0 {
		return schemas.RegionUnknown
	}
	aspect := float64(bounds.W) / float64(bounds.H)
	if aspect >= aspectMin && bounds.H <= maxHeight {
		return schemas.RegionTextField
	}
	return schemas.RegionButton
}
