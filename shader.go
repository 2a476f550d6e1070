package pointlab

import "math"

// Shader shader interface
type Shader interface {
	Vertex(Vertex) Vertex
	Fragment(Vertex) Color
}

// PhongShader lights mesh fragments with ambient + diffuse + optional
// specular terms. Per-vertex colors take precedence over BaseColor.
type PhongShader struct {
	Matrix         Matrix
	LightDirection Vector
	CameraPosition Vector
	AmbientColor   Color
	DiffuseColor   Color
	SpecularColor  Color
	SpecularPower  float64
	BaseColor      Color
}

func NewPhongShader(matrix Matrix, lightDirection, cameraPosition Vector) *PhongShader {
	return &PhongShader{
		Matrix:         matrix,
		LightDirection: lightDirection,
		CameraPosition: cameraPosition,
		AmbientColor:   Color{0.4, 0.4, 0.4, 1},
		DiffuseColor:   Color{0.7, 0.7, 0.7, 1},
		SpecularColor:  White,
		SpecularPower:  0,
		BaseColor:      Color{0.75, 0.75, 0.75, 1},
	}
}

func (shader *PhongShader) Vertex(v Vertex) Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *PhongShader) Fragment(v Vertex) Color {
	color := v.Color
	if color.A == 0 {
		color = shader.BaseColor
	}
	light := shader.AmbientColor
	// Reconstructed surfaces are viewed from both sides, so light the
	// back faces too.
	diffuse := math.Abs(v.Normal.Dot(shader.LightDirection))
	light = light.Add(shader.DiffuseColor.MulScalar(diffuse))
	if diffuse > 0 && shader.SpecularPower > 0 {
		camera := shader.CameraPosition.Sub(v.Position).Normalize()
		reflected := shader.LightDirection.Negate().Reflect(v.Normal)
		specular := math.Max(camera.Dot(reflected), 0)
		if specular > 0 {
			specular = math.Pow(specular, shader.SpecularPower)
			light = light.Add(shader.SpecularColor.MulScalar(specular))
		}
	}
	return color.Mul(light).Min(White).Alpha(color.A)
}

// SolidColorShader projects vertexes and emits their color unlit;
// point splats use it so clouds keep their exact colors.
type SolidColorShader struct {
	Matrix Matrix
	Color  Color
}

func NewSolidColorShader(matrix Matrix, color Color) *SolidColorShader {
	return &SolidColorShader{matrix, color}
}

func (shader *SolidColorShader) Vertex(v Vertex) Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *SolidColorShader) Fragment(v Vertex) Color {
	if v.Color.A > 0 {
		return v.Color
	}
	return shader.Color
}
