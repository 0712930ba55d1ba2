package gx

import (
	"errors"
	"fmt"
)

// ErrSparseStages is returned by Finish when stage or texgen slots were left unset
// between configured ones.
var ErrSparseStages = errors.New("gx: sparse stage configuration")

// TexGen configures one texture coordinate generator.
type TexGen struct {
	Type   TexGenType
	Source TexGenSrc
	Matrix TexGenMatrix
}

// ChanCtrl configures a lighting channel.
type ChanCtrl struct {
	LightingEnabled bool
	AmbientSource   ColorSrc
	MaterialSource  ColorSrc
	LightMask       uint8
	Diffuse         DiffuseFn
	Attenuation     AttenuationFn
}

// ColorCombine is the color half of a TEV stage: out = clamp((D + (A*(1-C) + B*C) op) * scale).
type ColorCombine struct {
	A, B, C, D CC
	Op         TevOp
	Bias       TevBias
	Scale      TevScale
	Clamp      bool
	Out        Register
}

// AlphaCombine is the alpha half of a TEV stage.
type AlphaCombine struct {
	A, B, C, D CA
	Op         TevOp
	Bias       TevBias
	Scale      TevScale
	Clamp      bool
	Out        Register
}

// Indirect configures indirect texturing for a TEV stage.
type Indirect struct {
	Stage   uint8
	Format  IndTexFormat
	Bias    IndTexBiasSel
	Matrix  IndTexMtxID
	WrapS   IndTexWrap
	WrapT   IndTexWrap
	AddPrev bool
	UTCLod  bool
	Alpha   IndTexAlpha
}

// TevStage is one color/alpha combiner stage.
type TevStage struct {
	TexCoord  TexCoordID
	TexMap    TexMapID
	Channel   RasChannel
	RasSwap   SwapTable
	TexSwap   SwapTable
	Color     ColorCombine
	Alpha     AlphaCombine
	KColorSel KonstColorSel
	KAlphaSel KonstAlphaSel
	Indirect  Indirect
}

// IndTexStage binds an indirect texture lookup.
type IndTexStage struct {
	TexCoord TexCoordID
	TexMap   TexMapID
	ScaleS   IndTexScale
	ScaleT   IndTexScale
}

// AlphaTest is the per-pixel alpha compare: (alpha CompareA RefA) Op (alpha CompareB RefB).
type AlphaTest struct {
	CompareA CompareType
	RefA     float32
	Op       AlphaOp
	CompareB CompareType
	RefB     float32
}

// Blend is the framebuffer blend configuration.
type Blend struct {
	Mode    BlendMode
	Src     BlendFactor
	Dst     BlendFactor
	LogicOp LogicOp
}

// ZMode is the depth test configuration.
type ZMode struct {
	Test    bool
	Compare CompareType
	Write   bool
}

// Material is a finished, immutable shader-stage description.
type Material struct {
	Name         string
	CullMode     CullMode
	ZMode        ZMode
	TexGens      []TexGen
	ColorChannel ChanCtrl
	AlphaChannel ChanCtrl
	TevStages    []TevStage
	IndTexStages []IndTexStage
	AlphaTest    AlphaTest
	Blend        Blend
	UsePnMtxIdx  bool
}

// Builder accumulates shader-stage state. Setters take a stage or slot index;
// Finish returns the description once every used slot is contiguous.
type Builder interface {
	SetZMode(test bool, compare CompareType, write bool)
	SetCullMode(mode CullMode)
	SetTexCoordGen(idx int, typ TexGenType, src TexGenSrc, mtx TexGenMatrix)
	SetChanCtrl(ch ColorChannel, lighting bool, ambSrc, matSrc ColorSrc, lightMask uint8, diffuse DiffuseFn, atten AttenuationFn)
	SetTevOrder(idx int, texCoord TexCoordID, texMap TexMapID, channel RasChannel)
	SetTevSwapMode(idx int, rasSwap, texSwap SwapTable)
	SetTevColorIn(idx int, a, b, c, d CC)
	SetTevColorOp(idx int, op TevOp, bias TevBias, scale TevScale, clamp bool, out Register)
	SetTevAlphaIn(idx int, a, b, c, d CA)
	SetTevAlphaOp(idx int, op TevOp, bias TevBias, scale TevScale, clamp bool, out Register)
	SetTevKColorSel(idx int, sel KonstColorSel)
	SetTevKAlphaSel(idx int, sel KonstAlphaSel)
	SetTevIndirect(idx int, ind Indirect)
	SetIndTexOrder(idx int, texCoord TexCoordID, texMap TexMapID)
	SetIndTexScale(idx int, scaleS, scaleT IndTexScale)
	SetAlphaCompare(compareA CompareType, refA float32, op AlphaOp, compareB CompareType, refB float32)
	SetBlendMode(mode BlendMode, src, dst BlendFactor, logicOp LogicOp)
	SetUsePnMtxIdx(use bool)
	Finish() (*Material, error)
}

var _ Builder = (*MaterialBuilder)(nil)

// MaterialBuilder is the default Builder implementation.
type MaterialBuilder struct {
	mat      Material
	texGens  [MaxTexCoordGens]*TexGen
	stages   [MaxTevStages]*TevStage
	indTex   [MaxIndTexStages]*IndTexStage
	outRange error
}

// NewMaterialBuilder returns a builder holding the default state for everything
// a material record can omit: no alpha test, src-alpha blending and
// register-sourced color channels.
func NewMaterialBuilder(name string) *MaterialBuilder {
	return &MaterialBuilder{
		mat: Material{
			Name:         name,
			CullMode:     CullBack,
			ZMode:        ZMode{Test: true, Compare: CompareLEqual, Write: true},
			ColorChannel: defaultChanCtrl(),
			AlphaChannel: defaultChanCtrl(),
			AlphaTest: AlphaTest{
				CompareA: CompareAlways,
				Op:       AlphaOpAnd,
				CompareB: CompareAlways,
			},
			Blend: Blend{
				Mode:    BlendBlend,
				Src:     BlendSrcAlpha,
				Dst:     BlendInvSrcAlpha,
				LogicOp: LogicCopy,
			},
			UsePnMtxIdx: true,
		},
	}
}

func defaultChanCtrl() ChanCtrl {
	return ChanCtrl{
		AmbientSource:  ColorSrcReg,
		MaterialSource: ColorSrcReg,
		Diffuse:        DiffuseNone,
		Attenuation:    AttenuationNone,
	}
}

func defaultTevStage() TevStage {
	return TevStage{
		TexCoord: TexCoordNull,
		TexMap:   TexMapNull,
		Channel:  RasColorNull,
		RasSwap:  DefaultSwapTables[0],
		TexSwap:  DefaultSwapTables[0],
		Color: ColorCombine{
			A: CCZero, B: CCZero, C: CCZero, D: CCCPrev,
			Op: TevAdd, Bias: TevBiasZero, Scale: TevScale1, Clamp: true, Out: RegPrev,
		},
		Alpha: AlphaCombine{
			A: CAZero, B: CAZero, C: CAZero, D: CAAPrev,
			Op: TevAdd, Bias: TevBiasZero, Scale: TevScale1, Clamp: true, Out: RegPrev,
		},
		KColorSel: KColor1,
		KAlphaSel: KAlpha1,
	}
}

func (b *MaterialBuilder) stage(idx int) *TevStage {
	if idx < 0 || idx >= MaxTevStages {
		b.fail("tev stage", idx)
		return &TevStage{}
	}
	if b.stages[idx] == nil {
		s := defaultTevStage()
		b.stages[idx] = &s
	}
	return b.stages[idx]
}

func (b *MaterialBuilder) indTexStage(idx int) *IndTexStage {
	if idx < 0 || idx >= MaxIndTexStages {
		b.fail("indirect stage", idx)
		return &IndTexStage{}
	}
	if b.indTex[idx] == nil {
		b.indTex[idx] = &IndTexStage{TexCoord: TexCoordNull, TexMap: TexMapNull}
	}
	return b.indTex[idx]
}

func (b *MaterialBuilder) fail(what string, idx int) {
	if b.outRange == nil {
		b.outRange = fmt.Errorf("gx: %s index %d out of range", what, idx)
	}
}

// SetZMode sets the depth test.
func (b *MaterialBuilder) SetZMode(test bool, compare CompareType, write bool) {
	b.mat.ZMode = ZMode{Test: test, Compare: compare, Write: write}
}

// SetCullMode sets face culling.
func (b *MaterialBuilder) SetCullMode(mode CullMode) {
	b.mat.CullMode = mode
}

// SetTexCoordGen configures texture coordinate generator idx.
func (b *MaterialBuilder) SetTexCoordGen(idx int, typ TexGenType, src TexGenSrc, mtx TexGenMatrix) {
	if idx < 0 || idx >= MaxTexCoordGens {
		b.fail("texgen", idx)
		return
	}
	b.texGens[idx] = &TexGen{Type: typ, Source: src, Matrix: mtx}
}

// SetChanCtrl configures a lighting channel. Color0A0 sets both halves.
func (b *MaterialBuilder) SetChanCtrl(ch ColorChannel, lighting bool, ambSrc, matSrc ColorSrc, lightMask uint8, diffuse DiffuseFn, atten AttenuationFn) {
	ctrl := ChanCtrl{
		LightingEnabled: lighting,
		AmbientSource:   ambSrc,
		MaterialSource:  matSrc,
		LightMask:       lightMask,
		Diffuse:         diffuse,
		Attenuation:     atten,
	}
	switch ch {
	case Color0:
		b.mat.ColorChannel = ctrl
	case Alpha0:
		b.mat.AlphaChannel = ctrl
	case Color0A0:
		b.mat.ColorChannel = ctrl
		b.mat.AlphaChannel = ctrl
	default:
		b.fail("color channel", int(ch))
	}
}

// SetTevOrder binds inputs to TEV stage idx.
func (b *MaterialBuilder) SetTevOrder(idx int, texCoord TexCoordID, texMap TexMapID, channel RasChannel) {
	s := b.stage(idx)
	s.TexCoord, s.TexMap, s.Channel = texCoord, texMap, channel
}

// SetTevSwapMode sets the rasterized and texture swap tables of stage idx.
func (b *MaterialBuilder) SetTevSwapMode(idx int, rasSwap, texSwap SwapTable) {
	s := b.stage(idx)
	s.RasSwap, s.TexSwap = rasSwap, texSwap
}

// SetTevColorIn sets the color combiner inputs of stage idx.
func (b *MaterialBuilder) SetTevColorIn(idx int, a, bb, c, d CC) {
	s := b.stage(idx)
	s.Color.A, s.Color.B, s.Color.C, s.Color.D = a, bb, c, d
}

// SetTevColorOp sets the color combiner operation of stage idx.
func (b *MaterialBuilder) SetTevColorOp(idx int, op TevOp, bias TevBias, scale TevScale, clamp bool, out Register) {
	s := b.stage(idx)
	s.Color.Op, s.Color.Bias, s.Color.Scale, s.Color.Clamp, s.Color.Out = op, bias, scale, clamp, out
}

// SetTevAlphaIn sets the alpha combiner inputs of stage idx.
func (b *MaterialBuilder) SetTevAlphaIn(idx int, a, bb, c, d CA) {
	s := b.stage(idx)
	s.Alpha.A, s.Alpha.B, s.Alpha.C, s.Alpha.D = a, bb, c, d
}

// SetTevAlphaOp sets the alpha combiner operation of stage idx.
func (b *MaterialBuilder) SetTevAlphaOp(idx int, op TevOp, bias TevBias, scale TevScale, clamp bool, out Register) {
	s := b.stage(idx)
	s.Alpha.Op, s.Alpha.Bias, s.Alpha.Scale, s.Alpha.Clamp, s.Alpha.Out = op, bias, scale, clamp, out
}

// SetTevKColorSel sets the konst color selector of stage idx.
func (b *MaterialBuilder) SetTevKColorSel(idx int, sel KonstColorSel) {
	b.stage(idx).KColorSel = sel
}

// SetTevKAlphaSel sets the konst alpha selector of stage idx.
func (b *MaterialBuilder) SetTevKAlphaSel(idx int, sel KonstAlphaSel) {
	b.stage(idx).KAlphaSel = sel
}

// SetTevIndirect sets the indirect configuration of stage idx.
func (b *MaterialBuilder) SetTevIndirect(idx int, ind Indirect) {
	b.stage(idx).Indirect = ind
}

// SetIndTexOrder binds the inputs of indirect stage idx.
func (b *MaterialBuilder) SetIndTexOrder(idx int, texCoord TexCoordID, texMap TexMapID) {
	s := b.indTexStage(idx)
	s.TexCoord, s.TexMap = texCoord, texMap
}

// SetIndTexScale sets the coordinate scale of indirect stage idx.
func (b *MaterialBuilder) SetIndTexScale(idx int, scaleS, scaleT IndTexScale) {
	s := b.indTexStage(idx)
	s.ScaleS, s.ScaleT = scaleS, scaleT
}

// SetAlphaCompare sets the alpha test.
func (b *MaterialBuilder) SetAlphaCompare(compareA CompareType, refA float32, op AlphaOp, compareB CompareType, refB float32) {
	b.mat.AlphaTest = AlphaTest{CompareA: compareA, RefA: refA, Op: op, CompareB: compareB, RefB: refB}
}

// SetBlendMode sets framebuffer blending.
func (b *MaterialBuilder) SetBlendMode(mode BlendMode, src, dst BlendFactor, logicOp LogicOp) {
	b.mat.Blend = Blend{Mode: mode, Src: src, Dst: dst, LogicOp: logicOp}
}

// SetUsePnMtxIdx toggles per-vertex position matrix indices.
func (b *MaterialBuilder) SetUsePnMtxIdx(use bool) {
	b.mat.UsePnMtxIdx = use
}

// Finish returns the accumulated description. Stage, texgen and indirect
// slots must be filled from index 0 without gaps.
func (b *MaterialBuilder) Finish() (*Material, error) {
	if b.outRange != nil {
		return nil, b.outRange
	}

	mat := b.mat

	texGens, err := dense(b.texGens[:], "texgen")
	if err != nil {
		return nil, err
	}
	mat.TexGens = texGens

	stages, err := dense(b.stages[:], "tev stage")
	if err != nil {
		return nil, err
	}
	mat.TevStages = stages

	indTex, err := dense(b.indTex[:], "indirect stage")
	if err != nil {
		return nil, err
	}
	mat.IndTexStages = indTex

	return &mat, nil
}

func dense[T any](slots []*T, what string) ([]T, error) {
	n := 0
	for i, s := range slots {
		if s != nil {
			n = i + 1
		}
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		if slots[i] == nil {
			return nil, fmt.Errorf("%w: %s %d unset", ErrSparseStages, what, i)
		}
		out = append(out, *slots[i])
	}
	return out, nil
}
