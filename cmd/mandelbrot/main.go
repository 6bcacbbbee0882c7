// mandelbrot renders a grayscale escape-time image of a region of the complex plane into a file.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/internal/args"
	"github.com/marben/bandmandel/internal/imgfile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("FATAL: %v", err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, args.Usage)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg, err := args.Parse(argv)
	if err != nil {
		return err
	}

	pixels := make([]byte, cfg.Resolution.Pixels())
	if err := render(pixels, cfg); err != nil {
		return err
	}

	if err := imgfile.Write(cfg.Output, imgfile.Gray(pixels, cfg.Resolution)); err != nil {
		return fmt.Errorf("error writing %s: %w", cfg.Output, err)
	}
	log.Printf("image saved to %q", cfg.Output)
	return nil
}

func render(pixels []byte, cfg args.Config) error {
	if cfg.SingleThreaded {
		log.Printf("performing single-threaded computations")
		mandel.Render(pixels, cfg.Resolution, cfg.Viewport)
		return nil
	}

	workers := runtime.NumCPU()
	log.Printf("performing multi-threaded computations across %d goroutines", workers)
	if err := mandel.RenderParallel(pixels, cfg.Resolution, cfg.Viewport, workers); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
