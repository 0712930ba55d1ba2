package formats

import (
	"fmt"
	"os"

	"github.com/Faultbox/lyt/pkg/curve"
	"github.com/Faultbox/lyt/pkg/encoding"
)

// RLANMagic is the magic of animation resources.
const RLANMagic = "RLAN"

// LoopMode is the playback discipline of an animation.
type LoopMode uint8

const (
	LoopOnce LoopMode = iota
	LoopRepeat
)

// String returns a human-readable loop mode name.
func (m LoopMode) String() string {
	if m == LoopRepeat {
		return "Repeat"
	}
	return "Once"
}

// TargetKind says whether an animation drives a pane or a material.
type TargetKind uint8

const (
	TargetPane     TargetKind = 0
	TargetMaterial TargetKind = 1
)

// String returns a human-readable target kind name.
func (k TargetKind) String() string {
	switch k {
	case TargetPane:
		return "Pane"
	case TargetMaterial:
		return "Material"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// TrackCategory groups track fields by what they animate.
type TrackCategory uint8

const (
	CategoryPaneTransform TrackCategory = iota
	CategoryPaneVisibility
	CategoryPaneVertexColor
	CategoryMaterialColor
	CategoryTextureTransform
	CategoryTexturePattern
	CategoryIndirectMatrix
)

var trackCategoryFourcc = map[string]TrackCategory{
	"RLPA": CategoryPaneTransform,
	"RLVI": CategoryPaneVisibility,
	"RLVC": CategoryPaneVertexColor,
	"RLMC": CategoryMaterialColor,
	"RLTS": CategoryTextureTransform,
	"RLTP": CategoryTexturePattern,
	"RLIM": CategoryIndirectMatrix,
}

var trackCategoryInfo = [...]struct {
	name   string
	fields int
	curve  curve.Type
}{
	CategoryPaneTransform:    {"PaneTransform", 10, curve.Hermite},
	CategoryPaneVisibility:   {"PaneVisibility", 1, curve.Step},
	CategoryPaneVertexColor:  {"PaneVertexColor", 17, curve.Hermite},
	CategoryMaterialColor:    {"MaterialColor", 32, curve.Hermite},
	CategoryTextureTransform: {"TextureTransform", 5, curve.Hermite},
	CategoryTexturePattern:   {"TexturePattern", 1, curve.Step},
	CategoryIndirectMatrix:   {"IndirectMatrix", 5, curve.Hermite},
}

func (c TrackCategory) valid() bool { return int(c) < len(trackCategoryInfo) }

// FieldCount returns the number of fields a category can address.
func (c TrackCategory) FieldCount() int {
	if !c.valid() {
		return 0
	}
	return trackCategoryInfo[c].fields
}

// Curve returns the only curve discipline a category accepts.
func (c TrackCategory) Curve() curve.Type {
	if !c.valid() {
		return curve.Constant
	}
	return trackCategoryInfo[c].curve
}

func (c TrackCategory) String() string {
	if !c.valid() {
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
	return trackCategoryInfo[c].name
}

// PaneTransform fields.
const (
	PaneTransformTranslateX uint8 = iota
	PaneTransformTranslateY
	PaneTransformTranslateZ
	PaneTransformRotateX
	PaneTransformRotateY
	PaneTransformRotateZ
	PaneTransformScaleX
	PaneTransformScaleY
	PaneTransformWidth
	PaneTransformHeight
)

// PaneVisibility fields.
const PaneVisibilityVisible uint8 = 0

// PaneVertexColor fields. Corners are ordered TL, TR, BL, BR with four
// components each, followed by the pane alpha.
const (
	PaneVertexColorTLR uint8 = iota
	PaneVertexColorTLG
	PaneVertexColorTLB
	PaneVertexColorTLA
	PaneVertexColorTRR
	PaneVertexColorTRG
	PaneVertexColorTRB
	PaneVertexColorTRA
	PaneVertexColorBLR
	PaneVertexColorBLG
	PaneVertexColorBLB
	PaneVertexColorBLA
	PaneVertexColorBRR
	PaneVertexColorBRG
	PaneVertexColorBRB
	PaneVertexColorBRA
	PaneVertexColorAlpha
)

// MaterialColor fields: material color, then color registers 0-2, then
// constant colors 0-3, four components each.
const (
	MaterialColorMatR uint8 = iota
	MaterialColorMatG
	MaterialColorMatB
	MaterialColorMatA
	MaterialColorRegister0R
	MaterialColorRegister0G
	MaterialColorRegister0B
	MaterialColorRegister0A
	MaterialColorRegister1R
	MaterialColorRegister1G
	MaterialColorRegister1B
	MaterialColorRegister1A
	MaterialColorRegister2R
	MaterialColorRegister2G
	MaterialColorRegister2B
	MaterialColorRegister2A
	MaterialColorConstant0R
	MaterialColorConstant0G
	MaterialColorConstant0B
	MaterialColorConstant0A
	MaterialColorConstant1R
	MaterialColorConstant1G
	MaterialColorConstant1B
	MaterialColorConstant1A
	MaterialColorConstant2R
	MaterialColorConstant2G
	MaterialColorConstant2B
	MaterialColorConstant2A
	MaterialColorConstant3R
	MaterialColorConstant3G
	MaterialColorConstant3B
	MaterialColorConstant3A
)

// TextureTransform and IndirectMatrix fields.
const (
	TexMatrixTranslateS uint8 = iota
	TexMatrixTranslateT
	TexMatrixRotation
	TexMatrixScaleS
	TexMatrixScaleT
)

// TexturePattern fields.
const TexturePatternIndex uint8 = 0

// TrackType identifies the field a track drives: a category and an offset
// within it.
type TrackType struct {
	Category TrackCategory
	Offset   uint8
}

// NewTrackType validates offset against the category's field count.
func NewTrackType(category TrackCategory, offset uint8) (TrackType, error) {
	if !category.valid() {
		return TrackType{}, fmt.Errorf("%w: unknown track category %d", ErrCorruptRecord, category)
	}
	if int(offset) >= category.FieldCount() {
		return TrackType{}, fmt.Errorf("%w: %s track offset %d out of range (%d fields)",
			ErrCorruptRecord, category, offset, category.FieldCount())
	}
	return TrackType{Category: category, Offset: offset}, nil
}

func (t TrackType) String() string {
	return fmt.Sprintf("%s[%d]", t.Category, t.Offset)
}

// Track is one keyframed field. SubIndex selects a texture slot or matrix for
// material categories.
type Track struct {
	Type     TrackType
	SubIndex uint8
	Curve    curve.Type
	Frames   []curve.Keyframe
}

// Animation drives one named pane or material.
type Animation struct {
	Duration   uint16
	LoopMode   LoopMode
	TargetKind TargetKind
	TargetName string
	Tracks     []Track
}

// RLAN is a decoded animation resource.
type RLAN struct {
	Version      uint16
	Animations   []Animation
	TextureNames []string
}

const (
	stepKeySize    = 0x08
	hermiteKeySize = 0x0C
)

// ParseBRLAN parses an animation resource from raw bytes.
func ParseBRLAN(data []byte) (*RLAN, error) {
	r := encoding.NewReader(data)
	h, err := ReadHeader(r, RLANMagic)
	if err != nil {
		return nil, err
	}

	res := &RLAN{Version: h.Version}
	w := NewBlockWalker(r, h)
	for w.Next() {
		b := w.Block()
		if b.Tag != "pai1" {
			continue
		}
		if err := parseAnimationBlock(r, b, res); err != nil {
			return nil, fmt.Errorf("parsing pai1 block: %w", err)
		}
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseBRLANFile parses an animation resource from disk.
func ParseBRLANFile(path string) (*RLAN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RLAN file: %w", err)
	}
	return ParseBRLAN(data)
}

func parseAnimationBlock(r *encoding.Reader, b Block, res *RLAN) error {
	offs := b.ContentOffset()

	duration := r.U16(offs + 0x00)
	loopMode := LoopOnce
	if r.U8(offs+0x02) != 0 {
		loopMode = LoopRepeat
	}
	textureCount := int(r.U16(offs + 0x04))
	bindingCount := int(r.U16(offs + 0x06))
	bindingTable := b.Offset + int(r.U32(offs+0x08))

	for i := 0; i < bindingCount; i++ {
		bindingOffs := b.Offset + int(r.U32(bindingTable+i*0x04))
		anim, err := parseAnimationBinding(r, bindingOffs)
		if err != nil {
			return fmt.Errorf("animation %d: %w", i, err)
		}
		anim.Duration = duration
		anim.LoopMode = loopMode
		res.Animations = append(res.Animations, *anim)
	}

	// Texture name offsets are relative to the start of the table.
	textureTable := offs + 0x0C
	for i := 0; i < textureCount; i++ {
		res.TextureNames = append(res.TextureNames, r.CString(textureTable+int(r.U32(textureTable+i*0x04))))
	}
	return corrupt(r.Err())
}

// parseAnimationBinding reads one target binding. Kind block offsets are
// relative to the binding, track offsets to the kind block and key offsets to
// the track.
func parseAnimationBinding(r *encoding.Reader, offs int) (*Animation, error) {
	anim := &Animation{
		TargetName: r.FixedString(offs+0x00, 0x14),
		TargetKind: TargetKind(r.U8(offs + 0x15)),
	}
	if anim.TargetKind != TargetPane && anim.TargetKind != TargetMaterial {
		return nil, fmt.Errorf("%w: %q has target kind %d", ErrCorruptRecord, anim.TargetName, anim.TargetKind)
	}

	kindCount := int(r.U8(offs + 0x14))
	for i := 0; i < kindCount; i++ {
		kindOffs := offs + int(r.U32(offs+0x18+i*0x04))

		fourcc := r.Fourcc(kindOffs)
		if err := r.Err(); err != nil {
			return nil, corrupt(err)
		}
		category, ok := trackCategoryFourcc[fourcc]
		if !ok {
			return nil, fmt.Errorf("%w: animation kind %q in %q", ErrUnexpectedBlock, fourcc, anim.TargetName)
		}

		trackCount := int(r.U8(kindOffs + 0x04))
		for j := 0; j < trackCount; j++ {
			trackOffs := kindOffs + int(r.U32(kindOffs+0x08+j*0x04))
			track, err := parseTrack(r, trackOffs, category)
			if err != nil {
				return nil, fmt.Errorf("%q %s track %d: %w", anim.TargetName, fourcc, j, err)
			}
			anim.Tracks = append(anim.Tracks, *track)
		}
	}
	return anim, corrupt(r.Err())
}

func parseTrack(r *encoding.Reader, offs int, category TrackCategory) (*Track, error) {
	subIndex, field, curveType := r.U8(offs+0x00), r.U8(offs+0x01), curve.Type(r.U8(offs+0x02))
	if err := r.Err(); err != nil {
		return nil, corrupt(err)
	}

	typ, err := NewTrackType(category, field)
	if err != nil {
		return nil, err
	}

	t := &Track{Type: typ, SubIndex: subIndex, Curve: curveType}
	if want := category.Curve(); t.Curve != want {
		return nil, fmt.Errorf("%w: %s track uses %s curve, want %s", ErrCorruptRecord, category, t.Curve, want)
	}

	frameCount := int(r.U16(offs + 0x04))
	if frameCount == 0 {
		return nil, fmt.Errorf("%w: %s track has no keyframes", ErrCorruptRecord, category)
	}
	keys := offs + int(r.U32(offs+0x08))

	t.Frames = make([]curve.Keyframe, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		switch t.Curve {
		case curve.Step:
			k := keys + i*stepKeySize
			t.Frames = append(t.Frames, curve.Keyframe{
				Frame: r.F32(k + 0x00),
				Value: float32(r.U16(k + 0x04)),
			})
		case curve.Hermite:
			k := keys + i*hermiteKeySize
			t.Frames = append(t.Frames, curve.Keyframe{
				Frame:   r.F32(k + 0x00),
				Value:   r.F32(k + 0x04),
				Tangent: r.F32(k + 0x08),
			})
		}
	}
	return t, corrupt(r.Err())
}
