package motion

// Vector is a motion vector in half-pel units of the plane it applies to.
type Vector struct {
	X, Y int
}

// Zero is the null vector.
var Zero = Vector{}

// IsZero reports whether v is the null vector.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

// FullPel reports whether v has no half-pel component.
func (v Vector) FullPel() bool { return v.X&1 == 0 && v.Y&1 == 0 }

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Offsets returns the buffer offsets of the two prediction pointers of a
// block at base displaced by v in a plane with the given stride. The first
// pointer is the whole-pel part (truncated toward zero); the second is
// moved one sample further along every odd component. For full-pel vectors
// both offsets are equal.
func Offsets(base, stride int, v Vector) (int, int) {
	p1 := base + (v.Y/2)*stride + v.X/2
	p2 := p1
	if v.X&1 != 0 {
		p2 += sign(v.X)
	}
	if v.Y&1 != 0 {
		p2 += sign(v.Y) * stride
	}
	return p1, p2
}

// chromaComponent halves a luma component, rounding away from zero.
func chromaComponent(v int) int {
	if v&1 != 0 {
		return (v + sign(v)) / 2
	}
	return v / 2
}

// ChromaVector converts a luma vector into the chroma planes' half-pel
// units.
func ChromaVector(v Vector) Vector {
	return Vector{chromaComponent(v.X), chromaComponent(v.Y)}
}

func roundedAverage(sum int) int {
	return (sum + 2*sign(sum)) / 4
}

// AverageVector returns the rounded average of four luma vectors, the luma
// equivalent of a four-vector macroblock's shared chroma vector.
func AverageVector(mvs [4]Vector) Vector {
	var sx, sy int
	for _, v := range mvs {
		sx += v.X
		sy += v.Y
	}
	return Vector{roundedAverage(sx), roundedAverage(sy)}
}

// FourChromaVector returns the chroma vector of a four-vector macroblock.
func FourChromaVector(mvs [4]Vector) Vector {
	return ChromaVector(AverageVector(mvs))
}

// Valid reports whether v is within the codable range.
func (v Vector) Valid() bool {
	return v.X >= -MaxExtent && v.X <= MaxExtent && v.Y >= -MaxExtent && v.Y <= MaxExtent
}
