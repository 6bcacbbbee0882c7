package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/marben/irpc"
	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/internal/args"
)

// main is the entry point for the Mandelbrot server.
// Rendering is performed by connected clients and by the optional local workers;
// the server only coordinates and distributes bands.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

const (
	maxSide   = 1 << 16
	maxPixels = 1 << 28 // the whole image is kept in memory
)

type config struct {
	res   mandel.Resolution
	vp    mandel.Viewport
	bands int
}

func parseConfig(size, region string, bands int) (config, error) {
	res, ok := args.ParseResolution(size)
	if !ok {
		return config{}, fmt.Errorf("invalid -size %q", size)
	}
	if res.Width > maxSide || res.Height > maxSide || res.Pixels() > maxPixels {
		return config{}, fmt.Errorf("-size %q too big, max %d pixels with sides up to %d", size, maxPixels, maxSide)
	}
	vp, ok := mandel.Regions[region]
	if !ok {
		return config{}, fmt.Errorf("unknown -region %q", region)
	}
	if bands < 1 || bands > res.Height {
		return config{}, fmt.Errorf("-bands %d out of range 1..%d", bands, res.Height)
	}
	return config{res: res, vp: vp, bands: bands}, nil
}

func run() error {
	addr := flag.String("addr", ":8080", "http listen address, irpc over websocket is served on /ws")
	tcpAddr := flag.String("tcp", ":8081", "irpc tcp listen address")
	size := flag.String("size", "1920x1080", "image resolution")
	region := flag.String("region", "seahorse", "rendered region, one of: full, seahorse, elephant, spiral, triple, dragon, minibrot")
	bands := flag.Int("bands", 64, "number of bands the image is split into")
	local := flag.Int("local", 0, "number of in-process render workers")
	flag.Parse()

	cfg, err := parseConfig(*size, *region, *bands)
	if err != nil {
		return err
	}
	imgWorkScheduler := newImgWorkScheduler(cfg.res, cfg.vp, cfg.bands)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// every client gets the finished image through ImgProvider and lends us its Renderer
	irpcServer := newIrpcServer(imgWorkScheduler)

	// TCP
	log.Printf("tcp listening on %s", *tcpAddr)
	tcpListener, err := net.Listen("tcp", *tcpAddr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}

	// WEBSOCKET
	// the listener is closed along with irpcServer
	websocketListener, httpServer := webServer(context.Background(), *addr, imgWorkScheduler)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer: %w", err)
		}
		return nil
	})

	// irpcServer serves both tcp and websocket clients
	for name, l := range map[string]net.Listener{"tcp": tcpListener, "ws": websocketListener} {
		g.Go(func() error {
			if err := irpcServer.Serve(l); !errors.Is(err, irpc.ErrServerClosed) {
				return fmt.Errorf("irpcServer.Serve %s: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(irpcServer.Close(), httpServer.Shutdown(shutdownCtx))
	})

	for i := range *local {
		renderer := mandel.LocalRenderer{OnBandRender: func(b mandel.Band) {
			log.Printf("local worker %d rendering band: %+v", i, b)
		}}
		g.Go(func() error {
			return imgWorkScheduler.render(ctx, fmt.Sprintf("local-%d", i), renderer)
		})
	}

	log.Printf("mb server waiting for tcp and websocket clients, %d bands of %s in region %q", imgWorkScheduler.total, *size, *region)
	return g.Wait()
}

// newIrpcServer creates the irpc server with onConnect hook to plug clients into rendering.
func newIrpcServer(iws *imgWorkScheduler) *irpc.Server {
	s := irpc.NewServer(irpc.WithOnConnect(func(ep *irpc.Endpoint) {
		go plugRenderer(iws, ep)
	}))
	s.AddService(mandel.NewImgProviderIrpcService(iws))
	return s
}

// plugRenderer uses the mandel.Renderer every client provides as a worker,
// until the image is done or the client disconnects.
func plugRenderer(iws *imgWorkScheduler, ep *irpc.Endpoint) {
	name := fmt.Sprint(ep.RemoteAddr())
	log.Printf("got connection from: %s", name)

	rendererIrpcClient, err := mandel.NewRendererIrpcClient(ep)
	if err != nil {
		log.Printf("err: new Rendering client: %v", err)
		return
	}

	if err := iws.render(ep.Context(), name, rendererIrpcClient); err != nil {
		log.Printf("err: render on client %q: %v", name, err)
	}
}
