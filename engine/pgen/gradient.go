package pgen

// Gradients4 are the 32 gradient directions used by the 4D lattice. Every vector
// has exactly one zero component, the rest are +1 or -1.
var Gradients4 = [32][4]int8{
	{1, 1, 1, 0}, {1, 1, 0, 1}, {1, 0, 1, 1}, {0, 1, 1, 1},
	{1, 1, -1, 0}, {1, 1, 0, -1}, {1, 0, 1, -1}, {0, 1, 1, -1},
	{1, -1, 1, 0}, {1, -1, 0, 1}, {1, 0, -1, 1}, {0, 1, -1, 1},
	{1, -1, -1, 0}, {1, -1, 0, -1}, {1, 0, -1, -1}, {0, 1, -1, -1},
	{-1, 1, 1, 0}, {-1, 1, 0, 1}, {-1, 0, 1, 1}, {0, -1, 1, 1},
	{-1, 1, -1, 0}, {-1, 1, 0, -1}, {-1, 0, 1, -1}, {0, -1, 1, -1},
	{-1, -1, 1, 0}, {-1, -1, 0, 1}, {-1, 0, -1, 1}, {0, -1, -1, 1},
	{-1, -1, -1, 0}, {-1, -1, 0, -1}, {-1, 0, -1, -1}, {0, -1, -1, -1},
}

// Gradients2 holds the four diagonal directions, repeated so that the same 5 bit
// hash selects a gradient in both dimensionalities.
var Gradients2 = [32][2]int8{
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// gradient returns component a of gradient g for an n dimensional lattice
func gradient(n, g, a int) int8 {
	if n == 2 {
		return Gradients2[g][a]
	}
	return Gradients4[g][a]
}

func axisContribution(offset float64, g int8) float64 {
	if g > 0 {
		return offset
	}
	if g < 0 {
		return -offset
	}
	return 0
}

// dotProduct of the gradient selected by hash g against the first n offsets
func dotProduct(n, g int, offsets *[4]float64) float64 {
	sum := 0.0
	for a := 0; a < n; a++ {
		sum += axisContribution(offsets[a], gradient(n, g, a))
	}
	return sum
}
