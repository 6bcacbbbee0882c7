package mandel

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net"
	"strings"
	"testing"

	"github.com/marben/irpc"
	"github.com/marben/irpc/irpcgen"
)

func TestLocalRenderer(t *testing.T) {
	var rendered []Band
	lr := LocalRenderer{OnBandRender: func(b Band) { rendered = append(rendered, b) }}

	job := BandJob{Resolution: testRes, Viewport: testVP, Band: Band{Top: 8, Rows: 16}}
	res, err := lr.RenderBand(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if res.Band != job.Band {
		t.Errorf("result band = %+v, want %+v", res.Band, job.Band)
	}
	if !bytes.Equal(res.Pixels, RenderBand(testRes, testVP, job.Band)) {
		t.Error("pixels differ from RenderBand")
	}
	if len(rendered) != 1 || rendered[0] != job.Band {
		t.Errorf("OnBandRender calls = %v", rendered)
	}
}

func TestLocalRendererRejectsBadBand(t *testing.T) {
	for _, b := range []Band{{Top: -1, Rows: 2}, {Top: 60, Rows: 10}, {Top: 0, Rows: 0}} {
		_, err := LocalRenderer{}.RenderBand(context.Background(), BandJob{Resolution: testRes, Viewport: testVP, Band: b})
		if err == nil {
			t.Errorf("band %+v: expected error", b)
		}
	}
}

func TestLocalRendererCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LocalRenderer{}.RenderBand(ctx, BandJob{Resolution: testRes, Viewport: testVP, Band: Band{Rows: 1}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestViewportBinary(t *testing.T) {
	b, err := SpiralMinibrot.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Viewport
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if got != SpiralMinibrot {
		t.Errorf("decoded %+v, want %+v", got, SpiralMinibrot)
	}
	if err := got.UnmarshalBinary(b[:len(b)-1]); err == nil {
		t.Error("short input accepted")
	}
}

// endpoints returns two irpc endpoints connected by a pipe, the first one serving services.
func endpoints(t *testing.T, services ...irpcgen.Service) (serving, calling *irpc.Endpoint) {
	c1, c2 := net.Pipe()
	serving = irpc.NewEndpoint(c1, irpc.WithEndpointServices(services...))
	calling = irpc.NewEndpoint(c2)
	t.Cleanup(func() {
		calling.Close()
		serving.Close()
	})
	return serving, calling
}

func TestRendererIrpc(t *testing.T) {
	_, ep := endpoints(t, NewRendererIrpcService(LocalRenderer{}))
	client, err := NewRendererIrpcClient(ep)
	if err != nil {
		t.Fatal(err)
	}

	// a viewport that only survives the trip bit for bit
	vp := Viewport{TopLeft: complex(-0.7453, 0.1127), BottomRight: complex(-0.7433, 0.1107)}
	job := BandJob{Resolution: Resolution{Width: 30, Height: 20}, Viewport: vp, Band: Band{Top: 7, Rows: 6}}
	res, err := client.RenderBand(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if res.Band != job.Band || !bytes.Equal(res.Pixels, RenderBand(job.Resolution, vp, job.Band)) {
		t.Errorf("remote band %+v differs from local render", res.Band)
	}

	// errors come back as values, the endpoint stays usable
	job.Band = Band{Top: 18, Rows: 6}
	if _, err := client.RenderBand(context.Background(), job); err == nil || !strings.Contains(err.Error(), "outside 30x20 image") {
		t.Errorf("err = %v, want band outside image", err)
	}
	job.Band = Band{Top: 0, Rows: 1}
	if _, err := client.RenderBand(context.Background(), job); err != nil {
		t.Errorf("endpoint unusable after remote error: %v", err)
	}
}

type imgProviderFunc func(ctx context.Context) (*image.Gray, error)

func (f imgProviderFunc) GetImage(ctx context.Context) (*image.Gray, error) { return f(ctx) }

func TestImgProviderIrpc(t *testing.T) {
	res := Resolution{Width: 24, Height: 16}
	want := image.NewGray(image.Rect(0, 0, res.Width, res.Height))
	Render(want.Pix, res, FullSet)

	var fail bool
	provider := imgProviderFunc(func(ctx context.Context) (*image.Gray, error) {
		if fail {
			return nil, errors.New("not rendered yet")
		}
		return want, nil
	})
	_, ep := endpoints(t, NewImgProviderIrpcService(provider))
	client, err := NewImgProviderIrpcClient(ep)
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.GetImage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Rect != want.Rect || got.Stride != want.Stride || !bytes.Equal(got.Pix, want.Pix) {
		t.Errorf("received %v image, want %v", got.Rect, want.Rect)
	}

	fail = true
	if img, err := client.GetImage(context.Background()); err == nil || err.Error() != "not rendered yet" || img != nil {
		t.Errorf("GetImage = %v, %v", img, err)
	}
}
