package formats

import (
	"fmt"

	"github.com/Faultbox/lyt/pkg/encoding"
	"github.com/Faultbox/lyt/pkg/gx"
)

// Sampler binds a texture from the txl1 table to a material texture slot.
type Sampler struct {
	TextureIndex uint16
	WrapS        gx.WrapMode
	WrapT        gx.WrapMode
	MinFilter    gx.TexFilter
	MagFilter    gx.TexFilter
	MinLOD       float32
	MaxLOD       float32
}

// TexMatrix is a texture coordinate transform. Rotation is in degrees.
type TexMatrix struct {
	TranslationS float32
	TranslationT float32
	Rotation     float32
	ScaleS       float32
	ScaleT       float32
}

// Material is a decoded mat1 record.
type Material struct {
	Name               string
	ColorRegisters     [3]Color
	ConstantColors     [4]Color
	MaterialColor      Color
	Samplers           []Sampler
	TexMatrices        []TexMatrix
	IndTexMatrices     []TexMatrix
	VertexColorEnabled bool
	Shader             *gx.Material
}

const (
	materialNameSize    = 0x14
	samplerRecordSize   = 0x04
	texMatrixRecordSize = 0x14
	texGenRecordSize    = 0x04
	chanCtrlRecordSize  = 0x04
	swapTableCount      = 4
	indStageRecordSize  = 0x04
	tevStageRecordSize  = 0x10
	alphaCmpRecordSize  = 0x04
	blendRecordSize     = 0x04
)

// materialFlags is the section presence word of a material record.
type materialFlags uint32

func (f materialFlags) samplers() int      { return int(f & 0x0F) }
func (f materialFlags) texMatrices() int   { return int(f >> 4 & 0x0F) }
func (f materialFlags) texGens() int       { return int(f >> 8 & 0x0F) }
func (f materialFlags) hasSwapTable() bool { return f>>12&0x01 != 0 }
func (f materialFlags) indMatrices() int   { return int(f >> 13 & 0x03) }
func (f materialFlags) indStages() int     { return int(f >> 15 & 0x07) }
func (f materialFlags) tevStages() int     { return int(f >> 18 & 0x1F) }
func (f materialFlags) hasAlphaTest() bool { return f>>23&0x01 != 0 }
func (f materialFlags) hasBlend() bool     { return f>>24&0x01 != 0 }
func (f materialFlags) hasChanCtrl() bool  { return f>>25&0x01 != 0 }
func (f materialFlags) hasMatColor() bool  { return f>>27&0x01 != 0 }

// materialDecoder walks one material record. offs is the cursor into the
// record; every step that consumes a section advances it.
type materialDecoder struct {
	r     *encoding.Reader
	offs  int
	flags materialFlags
	mat   *Material
	mb    gx.Builder
	swaps [gx.MaxSwapTables]gx.SwapTable
}

// materialSteps is the decode plan. Order matches the record layout; steps
// for absent sections only apply defaults.
var materialSteps = []struct {
	name string
	fn   func(*materialDecoder) error
}{
	{"samplers", (*materialDecoder).samplers},
	{"texture matrices", (*materialDecoder).texMatrices},
	{"texgens", (*materialDecoder).texGens},
	{"channel control", (*materialDecoder).chanCtrl},
	{"material color", (*materialDecoder).matColor},
	{"swap tables", (*materialDecoder).swapTables},
	{"indirect matrices", (*materialDecoder).indMatrices},
	{"indirect stages", (*materialDecoder).indStages},
	{"tev stages", (*materialDecoder).tevStages},
	{"fallback combiner", (*materialDecoder).fallback},
	{"alpha compare", (*materialDecoder).alphaCompare},
	{"blend mode", (*materialDecoder).blend},
}

// parseMaterials reads a mat1 block. Record offsets are block-relative.
func (p *layoutParser) parseMaterials(b Block) ([]Material, error) {
	r := p.r
	count := int(r.U16(b.ContentOffset()))
	listOffs := b.ContentOffset() + 0x04

	starts := make([]int, count)
	for i := range starts {
		starts[i] = b.Offset + int(r.U32(listOffs+i*0x04))
	}
	if err := r.Err(); err != nil {
		return nil, corrupt(err)
	}

	materials := make([]Material, 0, count)
	for i, start := range starts {
		limit := b.End()
		if i+1 < count && starts[i+1] > start && starts[i+1] < limit {
			limit = starts[i+1]
		}

		mat, err := parseMaterial(r, start, limit)
		if err != nil {
			return nil, fmt.Errorf("parsing material %d: %w", i, err)
		}
		materials = append(materials, *mat)
	}
	return materials, nil
}

// parseMaterial decodes the record at start, which must end at or before limit.
func parseMaterial(r *encoding.Reader, start, limit int) (*Material, error) {
	mat := &Material{Name: r.FixedString(start, materialNameSize)}
	offs := start + materialNameSize

	for i := range mat.ColorRegisters {
		mat.ColorRegisters[i] = Color{
			R: float32(r.S16(offs+0x00)) / 0xFF,
			G: float32(r.S16(offs+0x02)) / 0xFF,
			B: float32(r.S16(offs+0x04)) / 0xFF,
			A: float32(r.S16(offs+0x06)) / 0xFF,
		}
		offs += 0x08
	}
	for i := range mat.ConstantColors {
		mat.ConstantColors[i] = ColorFromRGBA8(r.U32(offs))
		offs += 0x04
	}

	d := &materialDecoder{
		r:     r,
		offs:  offs + 0x04,
		flags: materialFlags(r.U32(offs)),
		mat:   mat,
		mb:    gx.NewMaterialBuilder(mat.Name),
	}

	// Layout materials are drawn flat, in submission order.
	d.mb.SetZMode(false, gx.CompareAlways, false)
	d.mb.SetCullMode(gx.CullNone)

	for _, step := range materialSteps {
		if err := step.fn(d); err != nil {
			return nil, fmt.Errorf("material %q %s: %w", mat.Name, step.name, err)
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("material %q %s: %w", mat.Name, step.name, corrupt(err))
		}
	}

	if d.offs > limit {
		return nil, fmt.Errorf("%w: material %q consumed 0x%X bytes, record has 0x%X",
			ErrCorruptRecord, mat.Name, d.offs-start, limit-start)
	}

	d.mb.SetUsePnMtxIdx(false)
	shader, err := d.mb.Finish()
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", mat.Name, corrupt(err))
	}
	mat.Shader = shader
	return mat, nil
}

func (d *materialDecoder) samplers() error {
	n := d.flags.samplers()
	d.mat.Samplers = make([]Sampler, 0, n)
	for i := 0; i < n; i++ {
		flags := d.r.U16(d.offs + 0x02)
		d.mat.Samplers = append(d.mat.Samplers, Sampler{
			TextureIndex: d.r.U16(d.offs + 0x00),
			WrapS:        gx.WrapMode(flags & 0x03),
			WrapT:        gx.WrapMode(flags >> 8 & 0x03),
			MinFilter:    gx.TexFilter(flags>>2&0x03) + 1,
			MagFilter:    gx.TexFilter(flags>>10&0x03) + 1,
			MinLOD:       gx.DefaultMinLOD,
			MaxLOD:       gx.DefaultMaxLOD,
		})
		d.offs += samplerRecordSize
	}
	return nil
}

func (d *materialDecoder) texMatrix() TexMatrix {
	m := TexMatrix{
		TranslationS: d.r.F32(d.offs + 0x00),
		TranslationT: d.r.F32(d.offs + 0x04),
		Rotation:     d.r.F32(d.offs + 0x08),
		ScaleS:       d.r.F32(d.offs + 0x0C),
		ScaleT:       d.r.F32(d.offs + 0x10),
	}
	d.offs += texMatrixRecordSize
	return m
}

func (d *materialDecoder) texMatrices() error {
	n := d.flags.texMatrices()
	d.mat.TexMatrices = make([]TexMatrix, 0, n)
	for i := 0; i < n; i++ {
		d.mat.TexMatrices = append(d.mat.TexMatrices, d.texMatrix())
	}
	return nil
}

func (d *materialDecoder) texGens() error {
	for i := 0; i < d.flags.texGens(); i++ {
		d.mb.SetTexCoordGen(i,
			gx.TexGenType(d.r.U8(d.offs+0x00)),
			gx.TexGenSrc(d.r.U8(d.offs+0x01)),
			gx.TexGenMatrix(d.r.U8(d.offs+0x02)))
		d.offs += texGenRecordSize
	}
	return nil
}

func (d *materialDecoder) chanCtrl() error {
	if !d.flags.hasChanCtrl() {
		d.mb.SetChanCtrl(gx.Color0A0, false, gx.ColorSrcReg, gx.ColorSrcVtx, 0, gx.DiffuseNone, gx.AttenuationNone)
		return nil
	}

	srcColor := gx.ColorSrc(d.r.U8(d.offs + 0x00))
	srcAlpha := gx.ColorSrc(d.r.U8(d.offs + 0x01))
	d.mb.SetChanCtrl(gx.Color0, false, gx.ColorSrcReg, srcColor, 0, gx.DiffuseNone, gx.AttenuationNone)
	d.mb.SetChanCtrl(gx.Alpha0, false, gx.ColorSrcReg, srcAlpha, 0, gx.DiffuseNone, gx.AttenuationNone)
	d.mat.VertexColorEnabled = srcColor == gx.ColorSrcVtx || srcAlpha == gx.ColorSrcVtx
	d.offs += chanCtrlRecordSize
	return nil
}

func (d *materialDecoder) matColor() error {
	if !d.flags.hasMatColor() {
		d.mat.MaterialColor = White
		return nil
	}
	d.mat.MaterialColor = ColorFromRGBA8(d.r.U32(d.offs))
	d.offs += 0x04
	return nil
}

func (d *materialDecoder) swapTables() error {
	if !d.flags.hasSwapTable() {
		d.swaps = gx.DefaultSwapTables
		return nil
	}
	for i := 0; i < swapTableCount; i++ {
		v := d.r.U8(d.offs)
		d.swaps[i] = gx.SwapTable{
			gx.TevColorChan(v >> 0 & 0x03),
			gx.TevColorChan(v >> 2 & 0x03),
			gx.TevColorChan(v >> 4 & 0x03),
			gx.TevColorChan(v >> 6 & 0x03),
		}
		d.offs++
	}
	return nil
}

func (d *materialDecoder) indMatrices() error {
	n := d.flags.indMatrices()
	d.mat.IndTexMatrices = make([]TexMatrix, 0, n)
	for i := 0; i < n; i++ {
		d.mat.IndTexMatrices = append(d.mat.IndTexMatrices, d.texMatrix())
	}
	return nil
}

func (d *materialDecoder) indStages() error {
	for i := 0; i < d.flags.indStages(); i++ {
		d.mb.SetIndTexOrder(i, gx.TexCoordID(d.r.U8(d.offs+0x00)), gx.TexMapID(d.r.U8(d.offs+0x01)))
		d.mb.SetIndTexScale(i, gx.IndTexScale(d.r.U8(d.offs+0x02)), gx.IndTexScale(d.r.U8(d.offs+0x03)))
		d.offs += indStageRecordSize
	}
	return nil
}

func (d *materialDecoder) tevStages() error {
	r := d.r
	for i := 0; i < d.flags.tevStages(); i++ {
		o := d.offs
		d.mb.SetTevOrder(i, gx.TexCoordID(r.U8(o+0x00)), gx.TexMapID(r.U8(o+0x02)), gx.RasChannelID(r.U8(o+0x01)))

		swapSel := r.U8(o + 0x03)
		d.mb.SetTevSwapMode(i, d.swaps[swapSel>>1&0x03], d.swaps[swapSel>>3&0x03])

		c0, c1, c2, c3 := r.U8(o+0x04), r.U8(o+0x05), r.U8(o+0x06), r.U8(o+0x07)
		d.mb.SetTevColorIn(i, gx.CC(c0&0x0F), gx.CC(c0>>4), gx.CC(c1&0x0F), gx.CC(c1>>4))
		d.mb.SetTevColorOp(i, gx.TevOp(c2&0x0F), gx.TevBias(c2>>4&0x03), gx.TevScale(c2>>6&0x03), c3&0x01 != 0, gx.Register(c3>>1&0x03))
		d.mb.SetTevKColorSel(i, gx.KonstColorSel(c3>>3&0x1F))

		a0, a1, a2, a3 := r.U8(o+0x08), r.U8(o+0x09), r.U8(o+0x0A), r.U8(o+0x0B)
		d.mb.SetTevAlphaIn(i, gx.CA(a0&0x0F), gx.CA(a0>>4), gx.CA(a1&0x0F), gx.CA(a1>>4))
		d.mb.SetTevAlphaOp(i, gx.TevOp(a2&0x0F), gx.TevBias(a2>>4&0x03), gx.TevScale(a2>>6&0x03), a3&0x01 != 0, gx.Register(a3>>1&0x03))
		d.mb.SetTevKAlphaSel(i, gx.KonstAlphaSel(a3>>3&0x1F))

		i0, i1, i2, i3 := r.U8(o+0x0C), r.U8(o+0x0D), r.U8(o+0x0E), r.U8(o+0x0F)
		d.mb.SetTevIndirect(i, gx.Indirect{
			Stage:   i0,
			Format:  gx.IndTexFormat(i3 & 0x03),
			Bias:    gx.IndTexBiasSel(i1 & 0x07),
			Matrix:  gx.IndTexMtxID(i1 >> 3 & 0x0F),
			WrapS:   gx.IndTexWrap(i2 & 0x07),
			WrapT:   gx.IndTexWrap(i2 >> 3 & 0x07),
			AddPrev: i3>>2&0x01 != 0,
			UTCLod:  i3>>3&0x01 != 0,
			Alpha:   gx.IndTexAlpha(i3 >> 4 & 0x03),
		})

		d.offs += tevStageRecordSize
	}
	return nil
}

// fallback installs a combiner for records without TEV stages, followed by a
// stage that modulates the result with the rasterized vertex color.
func (d *materialDecoder) fallback() error {
	if d.flags.tevStages() != 0 {
		return nil
	}

	stage := 0
	switch n := d.flags.samplers(); n {
	case 0:
		// C1/A1
		d.mb.SetTevOrder(stage, gx.TexCoordNull, gx.TexMapNull, gx.RasColorZero)
		d.mb.SetTevColorIn(stage, gx.CCZero, gx.CCZero, gx.CCZero, gx.CCC1)
		d.mb.SetTevAlphaIn(stage, gx.CAZero, gx.CAZero, gx.CAZero, gx.CAA1)
		d.mat.VertexColorEnabled = true
	case 1:
		// lerp(C0, C1, TEX)
		d.mb.SetTevOrder(stage, gx.TexCoord0, gx.TexMap0, gx.RasColorZero)
		d.mb.SetTevColorIn(stage, gx.CCC0, gx.CCC1, gx.CCTexC, gx.CCZero)
		d.mb.SetTevAlphaIn(stage, gx.CAA0, gx.CAA1, gx.CATexA, gx.CAZero)
	default:
		return fmt.Errorf("%w: unimplemented fallback combiner for %d samplers", ErrCorruptRecord, n)
	}
	stage++

	d.mb.SetTevOrder(stage, gx.TexCoordNull, gx.TexMapNull, gx.RasColor0A0)
	d.mb.SetTevColorIn(stage, gx.CCZero, gx.CCCPrev, gx.CCRasC, gx.CCZero)
	d.mb.SetTevAlphaIn(stage, gx.CAZero, gx.CAAPrev, gx.CARasA, gx.CAZero)
	return nil
}

func (d *materialDecoder) alphaCompare() error {
	if !d.flags.hasAlphaTest() {
		return nil
	}
	cmp := d.r.U8(d.offs + 0x00)
	d.mb.SetAlphaCompare(
		gx.CompareType(cmp&0x0F),
		float32(d.r.U8(d.offs+0x02))/0xFF,
		gx.AlphaOp(d.r.U8(d.offs+0x01)),
		gx.CompareType(cmp>>4&0x0F),
		float32(d.r.U8(d.offs+0x03))/0xFF,
	)
	d.offs += alphaCmpRecordSize
	return nil
}

func (d *materialDecoder) blend() error {
	if !d.flags.hasBlend() {
		d.mb.SetBlendMode(gx.BlendBlend, gx.BlendSrcAlpha, gx.BlendInvSrcAlpha, gx.LogicCopy)
		return nil
	}
	d.mb.SetBlendMode(
		gx.BlendMode(d.r.U8(d.offs+0x00)),
		gx.BlendFactor(d.r.U8(d.offs+0x01)),
		gx.BlendFactor(d.r.U8(d.offs+0x02)),
		gx.LogicOp(d.r.U8(d.offs+0x03)),
	)
	d.offs += blendRecordSize
	return nil
}
