package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/gx"
	"github.com/Faultbox/lyt/pkg/math"
)

// Indices into MaterialParams.Colors.
const (
	ColorC0 = iota
	ColorC1
	ColorC2
	ColorK0
	ColorK1
	ColorK2
	ColorK3
	ColorMat0
	colorCount
)

// TextureBinding is a material texture slot resolved for one draw.
type TextureBinding struct {
	Name     string
	Handle   TextureHandle
	Resolved bool
	Sampler  formats.Sampler
}

// MaterialParams are the per-draw shader inputs of a material.
type MaterialParams struct {
	Colors         [colorCount]formats.Color
	TexMatrices    []math.Mat4
	IndTexMatrices []math.Mat4
	Textures       []TextureBinding
}

// Material is a runtime material. The exported fields are its animatable
// state; the shader description is shared with the document.
type Material struct {
	Name           string
	Visible        bool
	ColorRegisters [3]formats.Color
	ConstantColors [4]formats.Color
	MaterialColor  formats.Color
	TexMatrices    []formats.TexMatrix
	IndTexMatrices []formats.TexMatrix
	TextureNames   []string

	src     *formats.Material
	log     *zap.Logger
	missing map[string]bool
}

func newMaterial(src *formats.Material, bindings []formats.TextureBinding, log *zap.Logger) (*Material, error) {
	if src.Shader == nil {
		return nil, fmt.Errorf("%w: material %q has no shader description", ErrInvalidLayout, src.Name)
	}

	m := &Material{
		Name:           src.Name,
		Visible:        true,
		ColorRegisters: src.ColorRegisters,
		ConstantColors: src.ConstantColors,
		MaterialColor:  src.MaterialColor,
		TexMatrices:    append([]formats.TexMatrix(nil), src.TexMatrices...),
		IndTexMatrices: append([]formats.TexMatrix(nil), src.IndTexMatrices...),
		TextureNames:   make([]string, len(src.Samplers)),
		src:            src,
		log:            log,
		missing:        make(map[string]bool),
	}

	for i, s := range src.Samplers {
		if int(s.TextureIndex) >= len(bindings) {
			return nil, fmt.Errorf("%w: material %q sampler %d references texture %d of %d",
				ErrInvalidLayout, src.Name, i, s.TextureIndex, len(bindings))
		}
		m.TextureNames[i] = bindings[s.TextureIndex].Filename
	}
	return m, nil
}

// Shader returns the fixed-function description built at decode time.
func (m *Material) Shader() *gx.Material {
	return m.src.Shader
}

// VertexColorEnabled reports whether picture vertex colors feed this material.
func (m *Material) VertexColorEnabled() bool {
	return m.src.VertexColorEnabled
}

// Samplers returns the sampler state of each texture slot.
func (m *Material) Samplers() []formats.Sampler {
	return m.src.Samplers
}

func texMatrix(t formats.TexMatrix) math.Mat4 {
	return math.TextureMatrix(t.ScaleS, t.ScaleT, t.Rotation, t.TranslationS, t.TranslationT)
}

// FillParams writes the current animated state into dst, resolving each
// texture slot through textures.
func (m *Material) FillParams(dst *MaterialParams, textures TextureResolver) {
	dst.Colors[ColorC0] = m.ColorRegisters[0]
	dst.Colors[ColorC1] = m.ColorRegisters[1]
	dst.Colors[ColorC2] = m.ColorRegisters[2]
	dst.Colors[ColorK0] = m.ConstantColors[0]
	dst.Colors[ColorK1] = m.ConstantColors[1]
	dst.Colors[ColorK2] = m.ConstantColors[2]
	dst.Colors[ColorK3] = m.ConstantColors[3]
	dst.Colors[ColorMat0] = m.MaterialColor

	dst.TexMatrices = dst.TexMatrices[:0]
	for _, t := range m.TexMatrices {
		dst.TexMatrices = append(dst.TexMatrices, texMatrix(t))
	}
	dst.IndTexMatrices = dst.IndTexMatrices[:0]
	for _, t := range m.IndTexMatrices {
		dst.IndTexMatrices = append(dst.IndTexMatrices, texMatrix(t))
	}

	dst.Textures = dst.Textures[:0]
	for i, name := range m.TextureNames {
		h, ok := textures.Texture(name)
		if !ok && !m.missing[name] {
			m.missing[name] = true
			m.log.Warn("texture not found", zap.String("material", m.Name), zap.String("texture", name))
		}
		dst.Textures = append(dst.Textures, TextureBinding{
			Name:     name,
			Handle:   h,
			Resolved: ok,
			Sampler:  m.src.Samplers[i],
		})
	}
}
