// Package lighting holds the viewer's light setup: three fixed point lights
// and a configurable ambient term.
package lighting

// PointLightCount is the number of point lights the shader declares.
const PointLightCount = 3

// PointLight is a point light source in world space.
type PointLight struct {
	Position [3]float32
	Color    [3]float32
}

// Material coefficients shared by every object.
const (
	Kd        = 0.6
	Ks        = 0.4
	Shininess = 20.0
)

// Fixed are the pipeline's point lights. They are not user-configurable.
var Fixed = [PointLightCount]PointLight{
	{Position: [3]float32{-6, 4, 6}, Color: [3]float32{1.0, 0.85, 0.7}},
	{Position: [3]float32{6, 4, 6}, Color: [3]float32{0.6, 0.7, 1.0}},
	{Position: [3]float32{0, -6, 3}, Color: [3]float32{0.5, 0.5, 0.5}},
}

// Ambient is the one configurable light term.
type Ambient struct {
	Color [3]float32
	Ka    float32
}

// DefaultAmbient returns a dim white ambient light.
func DefaultAmbient() Ambient {
	return Ambient{Color: [3]float32{1, 1, 1}, Ka: 0.15}
}

// Term returns Color * Ka, the value the shader adds.
func (a Ambient) Term() [3]float32 {
	return [3]float32{a.Color[0] * a.Ka, a.Color[1] * a.Ka, a.Color[2] * a.Ka}
}

// Clamp keeps color channels and Ka in [0, 1].
func (a Ambient) Clamp() Ambient {
	for i := range a.Color {
		a.Color[i] = clamp01(a.Color[i])
	}
	a.Ka = clamp01(a.Ka)
	return a
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Flatten packs the fixed lights into position and color arrays for
// glUniform3fv.
func Flatten(lights [PointLightCount]PointLight) (positions, colors [PointLightCount * 3]float32) {
	for i, l := range lights {
		copy(positions[i*3:], l.Position[:])
		copy(colors[i*3:], l.Color[:])
	}
	return positions, colors
}
