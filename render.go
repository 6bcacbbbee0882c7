package mandel

import (
	"errors"
	"fmt"
	"sync"
)

// Render fills pixels row by row with the gray escape-time image of vp.
// len(pixels) must equal res.Pixels().
func Render(pixels []byte, res Resolution, vp Viewport) {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("mandel: buffer of %d bytes for %dx%d image", len(pixels), res.Width, res.Height))
	}

	for row := 0; row < res.Height; row++ {
		for column := 0; column < res.Width; column++ {
			c := PixelToPoint(res, column, row, vp)
			pixels[row*res.Width+column] = Intensity(EscapeTime(c, Limit))
		}
	}
}

// Band is a run of image rows rendered by a single worker.
type Band struct {
	Top  int // first row in the full image
	Rows int
}

// Viewport returns the part of vp covered by b, cut from the full image coordinates.
func (b Band) Viewport(res Resolution, vp Viewport) Viewport {
	return Viewport{
		TopLeft:     PixelToPoint(res, 0, b.Top, vp),
		BottomRight: PixelToPoint(res, res.Width, b.Top+b.Rows, vp),
	}
}

// Bands splits height rows into at most workers bands.
// Every band but the last has ceil(height/workers) rows, the last one takes what is left.
func Bands(height, workers int) []Band {
	if height <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	rows := (height + workers - 1) / workers

	bands := make([]Band, 0, (height+rows-1)/rows)
	for top := 0; top < height; top += rows {
		bh := rows
		if top+bh > height {
			bh = height - top
		}
		bands = append(bands, Band{Top: top, Rows: bh})
	}
	return bands
}

// RenderBand renders band b of the full image described by res and vp into a new buffer.
func RenderBand(res Resolution, vp Viewport, b Band) []byte {
	pixels := make([]byte, res.Width*b.Rows)
	renderBand(pixels, res, vp, b)
	return pixels
}

func renderBand(pixels []byte, res Resolution, vp Viewport, b Band) {
	Render(pixels, Resolution{Width: res.Width, Height: b.Rows}, b.Viewport(res, vp))
}

// replaced in tests
var parallelBand = renderBand

// RenderParallel renders the same image as Render, split into horizontal bands
// rendered on separate goroutines. Each goroutine writes only its own part of pixels.
// A panic while rendering a band fails the whole call; the content of pixels is then undefined.
func RenderParallel(pixels []byte, res Resolution, vp Viewport, workers int) error {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("mandel: buffer of %d bytes for %dx%d image", len(pixels), res.Width, res.Height))
	}

	bands := Bands(res.Height, workers)

	// subslices are cut before any goroutine starts
	parts := make([][]byte, len(bands))
	for i, b := range bands {
		parts[i] = pixels[b.Top*res.Width : (b.Top+b.Rows)*res.Width]
	}

	errs := make([]error, len(bands))
	var wg sync.WaitGroup
	for i, b := range bands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("band %d (rows %d-%d): %v", i, b.Top, b.Top+b.Rows, r)
				}
			}()
			parallelBand(parts[i], res, vp, b)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
