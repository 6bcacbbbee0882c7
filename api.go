package mandel

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"math"
)

type ImgProvider interface {
	GetImage(ctx context.Context) (*image.Gray, error)
}

type Renderer interface {
	RenderBand(ctx context.Context, job BandJob) (BandResult, error)
}

// BandJob asks a Renderer for one band of the full image.
type BandJob struct {
	Resolution Resolution // of the full image
	Viewport   Viewport   // of the full image
	Band       Band
}

type BandResult struct {
	Band   Band
	Pixels []byte // Resolution.Width * Band.Rows gray levels
}

const viewportBinaryLen = 4 * 8

// MarshalBinary writes the corners as four little endian float64s: re, im of TopLeft, then of BottomRight.
func (vp Viewport) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, viewportBinaryLen)
	for _, f := range []float64{real(vp.TopLeft), imag(vp.TopLeft), real(vp.BottomRight), imag(vp.BottomRight)} {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	return b, nil
}

func (vp *Viewport) UnmarshalBinary(b []byte) error {
	if len(b) != viewportBinaryLen {
		return fmt.Errorf("viewport: expected %d bytes, got %d", viewportBinaryLen, len(b))
	}
	f := func(i int) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:])) }
	vp.TopLeft = complex(f(0), f(1))
	vp.BottomRight = complex(f(2), f(3))
	return nil
}

// LocalRenderer renders bands on this machine.
type LocalRenderer struct {
	OnBandRender func(b Band) // optional
}

func (lr LocalRenderer) RenderBand(ctx context.Context, job BandJob) (res BandResult, err error) {
	if err := ctx.Err(); err != nil {
		return BandResult{}, err
	}
	if job.Band.Rows <= 0 || job.Band.Top < 0 || job.Band.Top+job.Band.Rows > job.Resolution.Height || job.Resolution.Width <= 0 {
		return BandResult{}, fmt.Errorf("band %+v outside %dx%d image", job.Band, job.Resolution.Width, job.Resolution.Height)
	}
	if lr.OnBandRender != nil {
		lr.OnBandRender(job.Band)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render band %+v: %v", job.Band, r)
		}
	}()

	return BandResult{
		Band:   job.Band,
		Pixels: RenderBand(job.Resolution, job.Viewport, job.Band),
	}, nil
}

var _ Renderer = LocalRenderer{}
