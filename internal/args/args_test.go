package args

import (
	"errors"
	"strconv"
	"testing"

	mandel "github.com/marben/bandmandel"
)

func TestParsePairInt(t *testing.T) {
	tests := []struct {
		in     string
		l, r   int
		wantOK bool
	}{
		{"", 0, 0, false},
		{"10", 0, 0, false},
		{",10", 0, 0, false},
		{"10,20", 10, 20, true},
		{"10,20xy", 0, 0, false},
		{"-3,7", -3, 7, true},
	}
	for _, tt := range tests {
		l, r, ok := ParsePair(tt.in, ',', strconv.Atoi)
		if ok != tt.wantOK || (ok && (l != tt.l || r != tt.r)) {
			t.Errorf("ParsePair(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.in, l, r, ok, tt.l, tt.r, tt.wantOK)
		}
	}
}

func TestParsePairFloat(t *testing.T) {
	if _, _, ok := ParsePair("0.5x", 'x', parseFloat); ok {
		t.Error(`ParsePair("0.5x") succeeded`)
	}
	l, r, ok := ParsePair("0.5x1.5", 'x', parseFloat)
	if !ok || l != 0.5 || r != 1.5 {
		t.Errorf(`ParsePair("0.5x1.5") = (%v, %v, %v)`, l, r, ok)
	}
}

func TestParseComplex(t *testing.T) {
	c, ok := ParseComplex("1.25,-0.0625")
	if !ok || c != complex(1.25, -0.0625) {
		t.Errorf("ParseComplex = (%v, %v)", c, ok)
	}
	if _, ok := ParseComplex(",-0.0625"); ok {
		t.Error("ParseComplex accepted missing real part")
	}
}

func TestParseResolution(t *testing.T) {
	if res, ok := ParseResolution("4000x3000"); !ok || res != (mandel.Resolution{Width: 4000, Height: 3000}) {
		t.Errorf("ParseResolution = (%v, %v)", res, ok)
	}
	for _, in := range []string{"0x10", "10x0", "-1x5", "10x", "10,10", "1.5x2"} {
		if _, ok := ParseResolution(in); ok {
			t.Errorf("ParseResolution(%q) succeeded", in)
		}
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]string{"mandel.png", "4000x3000", "-1.20,0.35", "-1,0.20"})
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Output:     "mandel.png",
		Resolution: mandel.Resolution{Width: 4000, Height: 3000},
		Viewport:   mandel.Viewport{TopLeft: complex(-1.20, 0.35), BottomRight: complex(-1, 0.20)},
	}
	if cfg != want {
		t.Errorf("Parse = %+v, want %+v", cfg, want)
	}

	cfg, err = Parse([]string{"mandel.png", "40x30", "-1.20,0.35", "-1,0.20", "-st"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SingleThreaded {
		t.Error("-st not recognized")
	}

	cfg, err = Parse([]string{"mandel.png", "40x30", "-1.20,0.35", "-1,0.20", "-mt"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SingleThreaded {
		t.Error("unknown mode flag selected single-threaded rendering")
	}
}

func TestParseErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"mandel.png", "40x30", "-1.20,0.35"},
		{"mandel.png", "40x30", "-1.20,0.35", "-1,0.20", "-st", "extra"},
		{"", "40x30", "-1.20,0.35", "-1,0.20"},
		{"mandel.png", "40*30", "-1.20,0.35", "-1,0.20"},
		{"mandel.png", "40x30", "-1.20;0.35", "-1,0.20"},
		{"mandel.png", "40x30", "-1.20,0.35", "-1,"},
		{"mandel.png", "40x30", "-1,0.20", "-1.20,0.35"},
		{"mandel.png", "40x30", "-1.20,0.20", "-1,0.35"},
		{"mandel.png", "1x1", "0.5,0.5", "0.5,0.5"},
	}
	for _, argv := range tests {
		if _, err := Parse(argv); !errors.Is(err, ErrUsage) {
			t.Errorf("Parse(%q) err = %v, want ErrUsage", argv, err)
		}
	}
}
