package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/internal/imgfile"
)

// imgWorkScheduler hands out bands of one image to any number of renderers
// and copies finished bands into the shared buffer.
type imgWorkScheduler struct {
	res    mandel.Resolution
	vp     mandel.Viewport
	pixels []byte
	total  int // bands

	ctx       context.Context // canceled when every band is finished
	ctxCancel context.CancelFunc

	m        sync.Mutex
	queue    []mandel.Band       // never handed out, top to bottom
	pending  map[mandel.Band]int // handed out but not finished -> renderers currently on it
	finished int                 // bands
	workers  int
}

func newImgWorkScheduler(res mandel.Resolution, vp mandel.Viewport, bands int) *imgWorkScheduler {
	queue := mandel.Bands(res.Height, bands)
	ctx, cancel := context.WithCancel(context.Background())
	return &imgWorkScheduler{
		res:       res,
		vp:        vp,
		pixels:    make([]byte, res.Pixels()),
		total:     len(queue),
		queue:     queue,
		pending:   make(map[mandel.Band]int, len(queue)),
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

// nextBand returns the topmost band no renderer has seen yet.
// Once the queue is drained, the unfinished band with the fewest renderers
// is handed out again, so a stalled or disconnected worker cannot hold the image back.
func (iws *imgWorkScheduler) nextBand() (mandel.Band, bool) {
	iws.m.Lock()
	defer iws.m.Unlock()

	if len(iws.queue) > 0 {
		b := iws.queue[0]
		iws.queue = iws.queue[1:]
		iws.pending[b]++
		return b, true
	}

	var (
		next  mandel.Band
		found bool
	)
	for b, n := range iws.pending {
		if !found || n < iws.pending[next] || (n == iws.pending[next] && b.Top < next.Top) {
			next, found = b, true
		}
	}
	if found {
		iws.pending[next]++
	}
	return next, found
}

// bandAbandoned takes a renderer off the band after a failed render.
// The band stays unfinished and goes out again once the queue is drained,
// ahead of bands other renderers are still working on.
func (iws *imgWorkScheduler) bandAbandoned(b mandel.Band) {
	iws.m.Lock()
	defer iws.m.Unlock()

	if n, ok := iws.pending[b]; ok && n > 0 {
		iws.pending[b] = n - 1
	}
}

// bandFinished copies a rendered band into the image.
// A re-issued band may come back more than once, only the first copy is kept.
func (iws *imgWorkScheduler) bandFinished(res mandel.BandResult) {
	iws.m.Lock()
	defer iws.m.Unlock()

	b := res.Band
	if _, ok := iws.pending[b]; !ok {
		return
	}
	copy(iws.pixels[b.Top*iws.res.Width:(b.Top+b.Rows)*iws.res.Width], res.Pixels)
	delete(iws.pending, b)
	iws.finished++
	log.Printf("band %d-%d finished, %d/%d", b.Top, b.Top+b.Rows-1, iws.finished, iws.total)

	if iws.finished == iws.total {
		iws.ctxCancel()
	}
}

// GetImage implements mandel.ImgProvider. It blocks until every band is rendered.
func (iws *imgWorkScheduler) GetImage(ctx context.Context) (*image.Gray, error) {
	select {
	case <-iws.ctx.Done():
		// finished bands are never written again
		return imgfile.Gray(iws.pixels, iws.res), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ mandel.ImgProvider = (*imgWorkScheduler)(nil)

type progress struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TotalBands    int     `json:"total_bands"`
	FinishedBands int     `json:"finished_bands"`
	Finished      float32 `json:"finished"`
	Workers       int     `json:"workers"`
}

func (iws *imgWorkScheduler) progress() progress {
	iws.m.Lock()
	defer iws.m.Unlock()

	finishedRows := iws.res.Height
	for _, b := range iws.queue {
		finishedRows -= b.Rows
	}
	for b := range iws.pending {
		finishedRows -= b.Rows
	}
	return progress{
		Width:         iws.res.Width,
		Height:        iws.res.Height,
		TotalBands:    iws.total,
		FinishedBands: iws.finished,
		Finished:      float32(finishedRows) / float32(iws.res.Height),
		Workers:       iws.workers,
	}
}

// join counts a renderer in until the returned func is called.
func (iws *imgWorkScheduler) join(name string) (leave func()) {
	iws.m.Lock()
	iws.workers++
	n := iws.workers
	iws.m.Unlock()
	log.Printf("renderer %s joined, %d rendering", name, n)

	return func() {
		iws.m.Lock()
		iws.workers--
		n := iws.workers
		iws.m.Unlock()
		log.Printf("renderer %s left, %d rendering", name, n)
	}
}

// render renders unfinished bands on the provided Renderer until none is left.
// Can be called from multiple goroutines in parallel.
func (iws *imgWorkScheduler) render(ctx context.Context, name string, renderer mandel.Renderer) error {
	defer iws.join(name)()

	for {
		band, found := iws.nextBand()
		if !found {
			return nil
		}
		job := mandel.BandJob{Resolution: iws.res, Viewport: iws.vp, Band: band}
		res, err := renderer.RenderBand(ctx, job)
		if err == nil && (res.Band != band || len(res.Pixels) != iws.res.Width*band.Rows) {
			err = fmt.Errorf("got band %+v with %d pixels", res.Band, len(res.Pixels))
		}
		if err != nil {
			iws.bandAbandoned(band)
			return fmt.Errorf("render of band %+v failed: %w", band, err)
		}
		iws.bandFinished(res)
	}
}
