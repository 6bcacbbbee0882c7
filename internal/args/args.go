// Package args parses the command line of the mandelbrot tool.
package args

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mandel "github.com/marben/bandmandel"
)

// SingleThreadedFlag selects single-threaded rendering when it is the last argument.
const SingleThreadedFlag = "-st"

const Usage = `Usage: mandelbrot <file name> <resolution> <top left> <bottom right> [-st]
Example: mandelbrot mandel.png 4000x3000 -1.20,0.35 -1,0.20`

var ErrUsage = errors.New("invalid arguments")

type Config struct {
	Output         string
	Resolution     mandel.Resolution
	Viewport       mandel.Viewport
	SingleThreaded bool
}

// ParsePair splits s at the first sep and parses both halves with parse.
// ok is false when sep is missing or either half fails to parse.
func ParsePair[T any](s string, sep byte, parse func(string) (T, error)) (l, r T, ok bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return l, r, false
	}

	l, errL := parse(s[:i])
	r, errR := parse(s[i+1:])
	if errL != nil || errR != nil {
		return l, r, false
	}
	return l, r, true
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ParseResolution parses "<width>x<height>" with both dimensions positive.
func ParseResolution(s string) (mandel.Resolution, bool) {
	w, h, ok := ParsePair(s, 'x', strconv.Atoi)
	if !ok || w <= 0 || h <= 0 {
		return mandel.Resolution{}, false
	}
	return mandel.Resolution{Width: w, Height: h}, true
}

// ParseComplex parses "<real>,<imag>".
func ParseComplex(s string) (complex128, bool) {
	re, im, ok := ParsePair(s, ',', parseFloat)
	if !ok {
		return 0, false
	}
	return complex(re, im), true
}

// Parse parses the arguments following the program name.
func Parse(argv []string) (Config, error) {
	var cfg Config
	switch len(argv) {
	case 4:
	case 5:
		// any other mode flag falls back to multi-threaded rendering
		cfg.SingleThreaded = argv[4] == SingleThreadedFlag
		argv = argv[:4]
	default:
		return Config{}, fmt.Errorf("%w: expected 4 or 5 arguments, got %d", ErrUsage, len(argv))
	}

	cfg.Output = argv[0]
	if cfg.Output == "" {
		return Config{}, fmt.Errorf("%w: empty file name", ErrUsage)
	}

	var ok bool
	if cfg.Resolution, ok = ParseResolution(argv[1]); !ok {
		return Config{}, fmt.Errorf("%w: error parsing image dimensions %q", ErrUsage, argv[1])
	}
	if cfg.Viewport.TopLeft, ok = ParseComplex(argv[2]); !ok {
		return Config{}, fmt.Errorf("%w: error parsing top left corner point %q", ErrUsage, argv[2])
	}
	if cfg.Viewport.BottomRight, ok = ParseComplex(argv[3]); !ok {
		return Config{}, fmt.Errorf("%w: error parsing bottom right corner point %q", ErrUsage, argv[3])
	}
	if !cfg.Viewport.Valid() {
		return Config{}, fmt.Errorf("%w: corner %q is not below and right of %q", ErrUsage, argv[3], argv[2])
	}

	return cfg, nil
}
