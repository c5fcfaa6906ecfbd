package systems

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// RiverBarrier builds the default barrier: a sinusoidal river of the given
// thickness centred on column width/2 (integer division), swinging by
// amplitude cells over one period of the grid height. A crossing gap of max(3, height/6) rows centred
// on height/3 is cleared, one cell wider than the river on each side.
// The result is indexed [x][y].
func RiverBarrier(width, height, thickness int, amplitude float64) [][]bool {
	grid := newBoolGrid(width, height)

	cx := float64(width / 2)
	span := func(y int) (int, int) {
		rx := int(cx + amplitude*math.Sin(2*math.Pi*float64(y)/float64(max(1, height))))
		return max(0, rx-thickness/2), min(width, rx+(thickness+1)/2)
	}

	for y := 0; y < height; y++ {
		x0, x1 := span(y)
		for x := x0; x < x1; x++ {
			grid[x][y] = true
		}
	}

	gapLen := max(3, height/6)
	g0 := max(0, height/3-gapLen/2)
	g1 := min(height, g0+gapLen)
	for y := g0; y < g1; y++ {
		x0, x1 := span(y)
		for x := max(0, x0-1); x < min(width, x1+1); x++ {
			grid[x][y] = false
		}
	}

	return grid
}

// OpenBarrier returns a barrier mask with no blocked cells.
func OpenBarrier(width, height int) [][]bool {
	return newBoolGrid(width, height)
}

// RandomVegetation draws each cell's level from the categorical weights
// over levels 0..MaxVegetation. Cells are drawn in row-major order.
func RandomVegetation(rng *rand.Rand, width, height int, weights []float64) [][]int {
	grid := newIntGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			grid[x][y] = weightedIndex(rng, weights)
		}
	}
	return grid
}

// NoiseVegetation quantises multi-octave simplex noise into levels
// 0..MaxVegetation, giving patchy cover.
func NoiseVegetation(seed int64, width, height int, scale float64, octaves int) [][]int {
	noise := opensimplex.NewNormalized(seed)
	grid := newIntGrid(width, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			v := octaveNoise(noise, float64(x), float64(y), max(1, octaves), scale, 0.5)
			level := int(v * (MaxVegetation + 1))
			grid[x][y] = clampInt(level, 0, MaxVegetation)
		}
	}
	return grid
}

// octaveNoise layers several frequencies of noise, normalised to [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func newBoolGrid(width, height int) [][]bool {
	grid := make([][]bool, width)
	for x := range grid {
		grid[x] = make([]bool, height)
	}
	return grid
}

func newIntGrid(width, height int) [][]int {
	grid := make([][]int, width)
	for x := range grid {
		grid[x] = make([]int, height)
	}
	return grid
}
