package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mandel "github.com/marben/bandmandel"
)

var (
	testRes = mandel.Resolution{Width: 40, Height: 64}
	testVP  = mandel.Viewport{TopLeft: complex(-2, 1.25), BottomRight: complex(0.5, -1.25)}
)

func fullRender(res mandel.Resolution, vp mandel.Viewport) []byte {
	pixels := make([]byte, res.Pixels())
	mandel.Render(pixels, res, vp)
	return pixels
}

func TestSchedulerLocalWorkers(t *testing.T) {
	iws := newImgWorkScheduler(testRes, testVP, 7)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := iws.render(context.Background(), "local", mandel.LocalRenderer{}); err != nil {
				t.Error(err)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	img, err := iws.GetImage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if !bytes.Equal(img.Pix, fullRender(testRes, testVP)) {
		t.Error("scheduled image differs from single-threaded render")
	}

	p := iws.progress()
	if p.FinishedBands != 7 || p.TotalBands != 7 || p.Finished != 1 || p.Workers != 0 {
		t.Errorf("progress = %+v", p)
	}
}

func TestSchedulerGetImageCanceled(t *testing.T) {
	iws := newImgWorkScheduler(testRes, testVP, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := iws.GetImage(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type failingRenderer struct{}

func (failingRenderer) RenderBand(context.Context, mandel.BandJob) (mandel.BandResult, error) {
	return mandel.BandResult{}, errors.New("worker gone")
}

// shortRenderer answers with one row too few.
type shortRenderer struct{}

func (shortRenderer) RenderBand(_ context.Context, job mandel.BandJob) (mandel.BandResult, error) {
	return mandel.BandResult{Band: job.Band, Pixels: make([]byte, job.Resolution.Width*(job.Band.Rows-1))}, nil
}

func TestSchedulerReissuesFailedBand(t *testing.T) {
	for name, bad := range map[string]mandel.Renderer{"error": failingRenderer{}, "short": shortRenderer{}} {
		t.Run(name, func(t *testing.T) {
			iws := newImgWorkScheduler(testRes, testVP, 2)

			if err := iws.render(context.Background(), "bad", bad); err == nil {
				t.Fatal("expected error from bad renderer")
			}
			if p := iws.progress(); p.FinishedBands != 0 || p.Finished != 0 {
				t.Fatalf("progress after failure = %+v", p)
			}

			// the failed band is handed out again once the queue is drained
			for _, want := range []int{32, 0} {
				if b, ok := iws.nextBand(); !ok || b.Top != want {
					t.Fatalf("next band = %+v %v, want top %d", b, ok, want)
				}
			}

			if err := iws.render(context.Background(), "local", mandel.LocalRenderer{}); err != nil {
				t.Fatal(err)
			}
			img, err := iws.GetImage(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(img.Pix, fullRender(testRes, testVP)) {
				t.Error("image differs from single-threaded render")
			}
		})
	}
}

func TestNextBandOrder(t *testing.T) {
	iws := newImgWorkScheduler(testRes, testVP, 4) // 16 rows each

	for _, want := range []int{0, 16, 32, 48} {
		if b, ok := iws.nextBand(); !ok || b.Top != want {
			t.Fatalf("band = %+v %v, want top %d", b, ok, want)
		}
	}

	// queue drained: bands in flight are re-issued, least covered first
	iws.bandFinished(mandel.BandResult{Band: mandel.Band{Top: 0, Rows: 16}, Pixels: make([]byte, 16*testRes.Width)})
	iws.bandAbandoned(mandel.Band{Top: 32, Rows: 16})
	for _, want := range []int{32, 16, 32, 48} {
		if b, ok := iws.nextBand(); !ok || b.Top != want {
			t.Fatalf("re-issued band = %+v %v, want top %d", b, ok, want)
		}
	}
}

func TestBandFinishedTwice(t *testing.T) {
	iws := newImgWorkScheduler(testRes, testVP, 1)
	b, ok := iws.nextBand()
	if !ok {
		t.Fatal("no band")
	}
	if again, ok := iws.nextBand(); !ok || again != b {
		t.Fatalf("in process band not re-issued: %+v %v", again, ok)
	}

	first := mandel.RenderBand(testRes, testVP, b)
	iws.bandFinished(mandel.BandResult{Band: b, Pixels: first})
	iws.bandFinished(mandel.BandResult{Band: b, Pixels: make([]byte, len(first))})

	if !bytes.Equal(iws.pixels, first) {
		t.Error("late duplicate result overwrote finished band")
	}
	if _, ok := iws.nextBand(); ok {
		t.Error("band handed out after the image was finished")
	}
}

func TestJoin(t *testing.T) {
	iws := newImgWorkScheduler(testRes, testVP, 1)
	leaveA := iws.join("a")
	leaveB := iws.join("b")
	if w := iws.progress().Workers; w != 2 {
		t.Errorf("workers = %d, want 2", w)
	}
	leaveA()
	leaveB()
	if w := iws.progress().Workers; w != 0 {
		t.Errorf("workers = %d, want 0", w)
	}
}
