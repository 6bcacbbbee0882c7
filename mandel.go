package mandel

// Viewport is the rectangle of the complex plane being rasterized.
// The imaginary axis decreases downwards, so TopLeft has the larger imaginary part.
type Viewport struct {
	TopLeft     complex128
	BottomRight complex128
}

// Valid reports whether the corners describe a non-empty rectangle in screen orientation.
func (vp Viewport) Valid() bool {
	return real(vp.BottomRight) > real(vp.TopLeft) && imag(vp.TopLeft) > imag(vp.BottomRight)
}

// Resolution in pixels
type Resolution struct {
	Width, Height int
}

func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// PixelToPoint maps the pixel (column, row) of an image with resolution res onto vp.
// column and row may equal Width and Height, which addresses the bottom right corner.
func PixelToPoint(res Resolution, column, row int, vp Viewport) complex128 {
	planeW := real(vp.BottomRight) - real(vp.TopLeft)
	planeH := imag(vp.TopLeft) - imag(vp.BottomRight)
	return complex(
		real(vp.TopLeft)+float64(column)*planeW/float64(res.Width),
		imag(vp.TopLeft)-float64(row)*planeH/float64(res.Height),
	)
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Whole set
	FullSet = Viewport{TopLeft: complex(-2.0, 1.2), BottomRight: complex(0.6, -1.2)}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Viewport{TopLeft: complex(-0.8, 0.15), BottomRight: complex(-0.7, 0.05)}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Viewport{TopLeft: complex(-1.85, -0.02), BottomRight: complex(-1.75, -0.10)}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Viewport{TopLeft: complex(-0.7435, 0.1325), BottomRight: complex(-0.7420, 0.1310)}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Viewport{TopLeft: complex(-0.7480, 0.0980), BottomRight: complex(-0.7450, 0.0950)}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Viewport{TopLeft: complex(-0.7400, 0.1850), BottomRight: complex(-0.7350, 0.1800)}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Viewport{TopLeft: complex(-1.7390, -0.0220), BottomRight: complex(-1.7375, -0.0235)}
)

// Regions indexes the landmarks by the names accepted on command lines.
var Regions = map[string]Viewport{
	"full":     FullSet,
	"seahorse": SeahorseValley,
	"elephant": ElephantValley,
	"spiral":   SpiralMinibrot,
	"triple":   TripleSpiral,
	"dragon":   ValleyOfTheDragon,
	"minibrot": MinibrotInMiniSpiral,
}
