package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir  mgl64.Vec3
	RimDir    mgl64.Vec3
	HalfMain  mgl64.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns a key light above and to the right of a camera
// looking down -Z, plus a cool rim light from behind.
func DefaultLightConfig(viewDir mgl64.Vec3) LightConfig {
	lightDir := mgl64.Vec3{0.45, 0.65, 0.6}.Normalize()
	rimDir := mgl64.Vec3{-0.4, 0.3, -0.85}.Normalize()
	if viewDir.Len() < 1e-9 {
		viewDir = mgl64.Vec3{0, 0, -1}
	}
	halfMain := lightDir.Sub(viewDir.Normalize()).Normalize()

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		HalfMain:  halfMain,
		Ambient:   0.35,
		Hemi:      0.30,
		Direct:    0.90,
		Rim:       0.35,
		SpecInt:   0.30,
		SpecPow:   16.0,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit face normal.
func (lc *LightConfig) ComputeShade(normal mgl64.Vec3) float64 {
	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Hemisphere fill
	hemi := (1.0-math.Abs(normal[1]))*0.5 + 0.5
	hemiLight := hemi * lc.Hemi

	// Blinn-Phong specular
	ndh := normal.Dot(lc.HalfMain)
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// shadePixel lights an sRGB color and maps it back to sRGB bytes.
func (lc *LightConfig) shadePixel(cr, cg, cb uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	r := math.Pow(ACESTonemap(srgbToLinear[cr]*k), lc.InvGamma)
	g := math.Pow(ACESTonemap(srgbToLinear[cg]*k), lc.InvGamma)
	b := math.Pow(ACESTonemap(srgbToLinear[cb]*k), lc.InvGamma)
	return clamp255(r * 255), clamp255(g * 255), clamp255(b * 255)
}
