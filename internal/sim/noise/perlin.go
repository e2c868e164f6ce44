package noise

import "math"

// Sampler is a deterministic 3-D scalar field.
type Sampler interface {
	Sample(x, y, z float64) float64
}

// Perlin is seeded 3-D improved Perlin noise. Samples lie in [-1, 1].
type Perlin struct {
	perm [512]int
}

func NewPerlin(seed int64) *Perlin {
	p := &Perlin{}
	p.SetSeed(seed)
	return p
}

// SetSeed reshuffles the permutation table with a java-compatible generator
// so the same seed yields the same field on every platform.
func (p *Perlin) SetSeed(seed int64) {
	var base [256]int
	for i := range base {
		base[i] = i
	}
	rnd := NewRandom(seed)
	for i := 255; i > 0; i-- {
		j := rnd.NextInt(i + 1)
		base[i], base[j] = base[j], base[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = base[i]
		p.perm[i+256] = base[i]
	}
}

func fade(t float64) float64 {
	inner := float64(t*float64(float64(t*6)-15)) + 10
	return t * t * t * inner
}

// lerp keeps every product in its own rounded step; fused multiply-add would
// change results between architectures.
func lerp(t, a, b float64) float64 {
	return a + float64(t*float64(b-a))
}

func grad(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func (p *Perlin) Sample(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi := int(int64(fx) & 255)
	yi := int(int64(fy) & 255)
	zi := int(int64(fz) & 255)
	xf, yf, zf := x-fx, y-fy, z-fz

	u, v, w := fade(xf), fade(yf), fade(zf)

	a := p.perm[xi] + yi
	aa := p.perm[a] + zi
	ab := p.perm[a+1] + zi
	b := p.perm[xi+1] + yi
	ba := p.perm[b] + zi
	bb := p.perm[b+1] + zi

	x1 := lerp(u, grad(p.perm[aa], xf, yf, zf), grad(p.perm[ba], xf-1, yf, zf))
	x2 := lerp(u, grad(p.perm[ab], xf, yf-1, zf), grad(p.perm[bb], xf-1, yf-1, zf))
	y1 := lerp(v, x1, x2)

	x1 = lerp(u, grad(p.perm[aa+1], xf, yf, zf-1), grad(p.perm[ba+1], xf-1, yf, zf-1))
	x2 = lerp(u, grad(p.perm[ab+1], xf, yf-1, zf-1), grad(p.perm[bb+1], xf-1, yf-1, zf-1))
	y2 := lerp(v, x1, x2)

	return clamp(lerp(w, y1, y2), -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
