// cliclient is a CLI client for the distributed Mandelbrot renderer.
// It connects to the Mandelbrot server, lends its CPU for rendering bands,
// then receives the fully rendered image and saves it.

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/internal/imgfile"
)

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	log.Printf("Starting CLI client...")
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	server := flag.String("server", "ws://localhost:8080/ws", "Mandelbrot server, tcp://host:port or ws://host:port/ws")
	output := flag.String("o", "mandel.png", "output file, format is chosen by extension (png, bmp, tiff)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 1: Connect to the server, it calls our renderer to render bands while we wait for the image
	log.Printf("Connecting to Mandelbrot server on %s...", *server)
	renderer := mandel.LocalRenderer{OnBandRender: func(b mandel.Band) { log.Printf("Rendering band: %+v", b) }}

	// Step 2: Request the fully rendered image from the server, blocks until the render is complete
	log.Printf("Requesting fully rendered image from server...")
	gray, err := fetchImage(ctx, *server, renderer)
	if err != nil {
		return err
	}

	// Step 3: Save the rendered image
	log.Printf("Saving rendered image to %q...", *output)
	if err := imgfile.Write(*output, gray); err != nil {
		return err
	}
	log.Printf("Fully rendered %dx%d image saved to %q", gray.Rect.Dx(), gray.Rect.Dy(), *output)
	return nil
}
