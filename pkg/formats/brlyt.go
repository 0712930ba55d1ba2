package formats

import (
	"fmt"
	"os"

	"github.com/Faultbox/lyt/pkg/encoding"
	"github.com/Faultbox/lyt/pkg/math"
)

// RLYTMagic is the magic of layout resources.
const RLYTMagic = "RLYT"

// maxTexCoordSets is the number of texture coordinate channels a quad can carry.
const maxTexCoordSets = 2

// Color is an RGBA color with float components, nominally 0.0 to 1.0.
type Color struct {
	R, G, B, A float32
}

// White is opaque white.
var White = Color{1, 1, 1, 1}

// ColorFromRGBA8 unpacks a 0xRRGGBBAA word.
func ColorFromRGBA8(v uint32) Color {
	return Color{
		R: float32(v>>24&0xFF) / 255.0,
		G: float32(v>>16&0xFF) / 255.0,
		B: float32(v>>8&0xFF) / 255.0,
		A: float32(v&0xFF) / 255.0,
	}
}

// PaneKind identifies the payload variant of a pane.
type PaneKind uint8

const (
	PaneKindPlain PaneKind = iota
	PaneKindBounding
	PaneKindPicture
	PaneKindTextbox
	PaneKindWindow
)

var paneKindTags = map[string]PaneKind{
	"pan1": PaneKindPlain,
	"bnd1": PaneKindBounding,
	"pic1": PaneKindPicture,
	"txt1": PaneKindTextbox,
	"wnd1": PaneKindWindow,
}

// String returns a human-readable pane kind name.
func (k PaneKind) String() string {
	switch k {
	case PaneKindPlain:
		return "Pane"
	case PaneKindBounding:
		return "Bounding"
	case PaneKindPicture:
		return "Picture"
	case PaneKindTextbox:
		return "Textbox"
	case PaneKindWindow:
		return "Window"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// PaneFlags holds the pane flag bits.
type PaneFlags uint8

const (
	PaneFlagVisible        PaneFlags = 1 << 0
	PaneFlagPropagateAlpha PaneFlags = 1 << 1
	PaneFlagAspectAdjust   PaneFlags = 1 << 2
)

// Visible reports whether the pane starts visible.
func (f PaneFlags) Visible() bool { return f&PaneFlagVisible != 0 }

// PropagateAlpha reports whether the pane's alpha multiplies into its children.
func (f PaneFlags) PropagateAlpha() bool { return f&PaneFlagPropagateAlpha != 0 }

// AspectAdjust reports whether the pane is adjusted for widescreen.
func (f PaneFlags) AspectAdjust() bool { return f&PaneFlagAspectAdjust != 0 }

// BasePosition is the anchor of a pane's local origin on a 3x3 grid.
type BasePosition uint8

const (
	BaseTopLeft BasePosition = iota
	BaseTopMiddle
	BaseTopRight
	BaseCenterLeft
	BaseCenterMiddle
	BaseCenterRight
	BaseBottomLeft
	BaseBottomMiddle
	BaseBottomRight
)

// Column returns 0 (left), 1 (center) or 2 (right).
func (p BasePosition) Column() int { return int(p) % 3 }

// Row returns 0 (top), 1 (middle) or 2 (bottom).
func (p BasePosition) Row() int { return int(p) / 3 }

// TextAlignment is the horizontal alignment of textbox lines.
type TextAlignment uint8

const (
	TextAlignJustify TextAlignment = iota
	TextAlignLeft
	TextAlignCenter
	TextAlignRight
)

// TextureFlip is the orientation of a window frame texture.
type TextureFlip uint16

const (
	TextureFlipNone TextureFlip = iota
	TextureFlipH
	TextureFlipV
	TextureRotate90
	TextureRotate180
	TextureRotate270
)

// TextureBinding is an entry of the texture (txl1) or font (fnl1) table.
type TextureBinding struct {
	Filename string
	Kind     uint8
}

// WindowContent is the quad payload shared by pictures and windows.
// Colors and texture coordinate corners are ordered TL, TR, BL, BR.
type WindowContent struct {
	Colors        [4]Color
	MaterialIndex uint16
	TexCoords     [][4]math.Vec2
}

// WindowFrame is one border frame of a window pane.
type WindowFrame struct {
	MaterialIndex uint16
	TextureFlip   TextureFlip
}

// WindowPane is the payload of a window pane.
type WindowPane struct {
	PaddingLeft   float32
	PaddingRight  float32
	PaddingTop    float32
	PaddingBottom float32
	Content       WindowContent
	Frames        []WindowFrame
}

// TextboxPane is the payload of a textbox pane. Glyph layout is not performed here.
type TextboxPane struct {
	MaxLength     uint16
	MaterialIndex uint16
	FontIndex     uint16
	TextPosition  uint8
	TextAlignment TextAlignment
	ColorTop      Color
	ColorBottom   Color
	FontWidth     float32
	FontHeight    float32
	CharWidth     float32
	CharHeight    float32
	Text          string
}

// Pane is a node of the layout tree. Exactly one of Picture, Window and
// Textbox is set for the matching Kind; Plain and Bounding panes carry none.
type Pane struct {
	Kind         PaneKind
	Flags        PaneFlags
	BasePosition BasePosition
	Alpha        float32
	Name         string
	UserData     string
	Translation  math.Vec3
	Rotation     math.Vec3 // degrees
	Scale        math.Vec2
	Width        float32
	Height       float32

	Picture *WindowContent
	Window  *WindowPane
	Textbox *TextboxPane

	Children []*Pane
}

// Walk calls fn for p and every descendant, depth first, parents before children.
// Returning false from fn skips that pane's children.
func (p *Pane) Walk(fn func(p *Pane, depth int) bool) {
	p.walk(fn, 0)
}

func (p *Pane) walk(fn func(p *Pane, depth int) bool, depth int) {
	if !fn(p, depth) {
		return
	}
	for _, c := range p.Children {
		c.walk(fn, depth+1)
	}
}

// Group is a named set of pane references, independent of the pane tree.
type Group struct {
	Name     string
	Panes    []string
	Children []*Group
}

// Walk calls fn for g and every descendant group, depth first.
func (g *Group) Walk(fn func(g *Group, depth int)) {
	g.walk(fn, 0)
}

func (g *Group) walk(fn func(g *Group, depth int), depth int) {
	fn(g, depth)
	for _, c := range g.Children {
		c.walk(fn, depth+1)
	}
}

// RLYT is a decoded layout resource. It is not modified after parsing and can
// be shared by any number of runtime layouts.
type RLYT struct {
	Version         uint16
	TextureBindings []TextureBinding
	FontBindings    []TextureBinding
	Materials       []Material
	RootPane        *Pane
	RootGroup       *Group
}

// FindPane returns the first pane named name in depth-first order, or nil.
func (l *RLYT) FindPane(name string) *Pane {
	if l.RootPane == nil {
		return nil
	}
	var found *Pane
	l.RootPane.Walk(func(p *Pane, _ int) bool {
		if found == nil && p.Name == name {
			found = p
		}
		return found == nil
	})
	return found
}

// FindGroup returns the first group named name, or nil.
func (l *RLYT) FindGroup(name string) *Group {
	if l.RootGroup == nil {
		return nil
	}
	var found *Group
	l.RootGroup.Walk(func(g *Group, _ int) {
		if found == nil && g.Name == name {
			found = g
		}
	})
	return found
}

// ParseBRLYT parses a layout resource from raw bytes.
func ParseBRLYT(data []byte) (*RLYT, error) {
	r := encoding.NewReader(data)
	h, err := ReadHeader(r, RLYTMagic)
	if err != nil {
		return nil, err
	}

	p := &layoutParser{
		r:      r,
		layout: &RLYT{Version: h.Version},
	}

	w := NewBlockWalker(r, h)
	for w.Next() {
		if err := p.parseBlock(w.Block()); err != nil {
			return nil, err
		}
	}
	if err := w.Err(); err != nil {
		return nil, err
	}

	return p.finish()
}

// ParseBRLYTFile parses a layout resource from disk.
func ParseBRLYTFile(path string) (*RLYT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RLYT file: %w", err)
	}
	return ParseBRLYT(data)
}

// layoutParser holds the decode-time nesting state. current is the most
// recently decoded node; parents is the stack pushed by pas1/grs1.
type layoutParser struct {
	r      *encoding.Reader
	layout *RLYT

	currentPane  *Pane
	paneParents  []*Pane
	currentGroup *Group
	groupParents []*Group
}

func (p *layoutParser) parseBlock(b Block) error {
	var err error
	switch b.Tag {
	case "lyt1":
		// Layout metadata (centering, canvas size); no payload of interest
	case "txl1":
		p.layout.TextureBindings, err = p.parseBindingTable(b)
	case "fnl1":
		p.layout.FontBindings, err = p.parseBindingTable(b)
	case "mat1":
		p.layout.Materials, err = p.parseMaterials(b)
	case "pan1", "bnd1", "pic1", "txt1", "wnd1":
		err = p.parsePane(b, paneKindTags[b.Tag])
	case "pas1":
		if p.currentPane == nil {
			return fmt.Errorf("%w: pas1 at 0x%X with no current pane", ErrCorruptRecord, b.Offset)
		}
		p.paneParents = append(p.paneParents, p.currentPane)
	case "pae1":
		if len(p.paneParents) == 0 {
			return fmt.Errorf("%w: unbalanced pae1 at 0x%X", ErrCorruptRecord, b.Offset)
		}
		p.currentPane = p.paneParents[len(p.paneParents)-1]
		p.paneParents = p.paneParents[:len(p.paneParents)-1]
	case "grp1":
		err = p.parseGroup(b)
	case "grs1":
		if p.currentGroup == nil {
			return fmt.Errorf("%w: grs1 at 0x%X with no current group", ErrCorruptRecord, b.Offset)
		}
		p.groupParents = append(p.groupParents, p.currentGroup)
	case "gre1":
		if len(p.groupParents) == 0 {
			return fmt.Errorf("%w: unbalanced gre1 at 0x%X", ErrCorruptRecord, b.Offset)
		}
		p.currentGroup = p.groupParents[len(p.groupParents)-1]
		p.groupParents = p.groupParents[:len(p.groupParents)-1]
	default:
		return fmt.Errorf("%w: %q at 0x%X", ErrUnexpectedBlock, b.Tag, b.Offset)
	}
	if err != nil {
		return fmt.Errorf("parsing %s block: %w", b.Tag, err)
	}
	return nil
}

func (p *layoutParser) finish() (*RLYT, error) {
	l := p.layout
	if l.RootPane == nil {
		return nil, fmt.Errorf("%w: layout has no root pane", ErrCorruptRecord)
	}
	if l.RootGroup == nil {
		return nil, fmt.Errorf("%w: layout has no root group", ErrCorruptRecord)
	}

	for i := range l.Materials {
		for j, s := range l.Materials[i].Samplers {
			if int(s.TextureIndex) >= len(l.TextureBindings) {
				return nil, fmt.Errorf("%w: material %q sampler %d references texture %d of %d",
					ErrCorruptRecord, l.Materials[i].Name, j, s.TextureIndex, len(l.TextureBindings))
			}
		}
	}
	return l, nil
}

// parseBindingTable reads a txl1/fnl1 table. Name offsets are relative to the
// start of the entry table, not the block.
func (p *layoutParser) parseBindingTable(b Block) ([]TextureBinding, error) {
	r := p.r
	count := int(r.U16(b.ContentOffset()))
	listOffs := b.ContentOffset() + 0x04

	bindings := make([]TextureBinding, 0, count)
	for i, entry := 0, listOffs; i < count; i, entry = i+1, entry+0x08 {
		name := r.CString(listOffs + int(r.U32(entry)))
		kind := r.U8(entry + 0x04)
		bindings = append(bindings, TextureBinding{Filename: name, Kind: kind})
	}
	return bindings, corrupt(r.Err())
}

func (p *layoutParser) parsePane(b Block, kind PaneKind) error {
	r := p.r
	offs := b.ContentOffset()

	pane := &Pane{
		Kind:         kind,
		Flags:        PaneFlags(r.U8(offs + 0x00)),
		BasePosition: BasePosition(r.U8(offs + 0x01)),
		Alpha:        float32(r.U8(offs+0x02)) / 0xFF,
		Name:         r.FixedString(offs+0x04, 0x10),
		UserData:     r.FixedString(offs+0x14, 0x08),
		Translation:  math.Vec3{X: r.F32(offs + 0x1C), Y: r.F32(offs + 0x20), Z: r.F32(offs + 0x24)},
		Rotation:     math.Vec3{X: r.F32(offs + 0x28), Y: r.F32(offs + 0x2C), Z: r.F32(offs + 0x30)},
		Scale:        math.Vec2{X: r.F32(offs + 0x34), Y: r.F32(offs + 0x38)},
		Width:        r.F32(offs + 0x3C),
		Height:       r.F32(offs + 0x40),
	}
	if pane.BasePosition > BaseBottomRight {
		return fmt.Errorf("%w: pane %q has base position %d", ErrCorruptRecord, pane.Name, pane.BasePosition)
	}
	offs += 0x44

	var err error
	switch kind {
	case PaneKindPicture:
		pane.Picture = new(WindowContent)
		err = p.parseWindowContent(pane.Picture, offs)
	case PaneKindWindow:
		pane.Window, err = p.parseWindow(b, offs)
	case PaneKindTextbox:
		pane.Textbox = p.parseTextbox(b, offs)
	}
	if err == nil {
		err = r.Err()
	}
	if err != nil {
		return fmt.Errorf("pane %q: %w", pane.Name, corrupt(err))
	}

	if n := len(p.paneParents); n > 0 {
		parent := p.paneParents[n-1]
		parent.Children = append(parent.Children, pane)
	} else if p.layout.RootPane != nil {
		return fmt.Errorf("%w: pane %q at root level besides %q", ErrMultipleRoots, pane.Name, p.layout.RootPane.Name)
	} else {
		p.layout.RootPane = pane
	}

	p.currentPane = pane
	return nil
}

func (p *layoutParser) parseWindowContent(dst *WindowContent, offs int) error {
	r := p.r
	for i := range dst.Colors {
		dst.Colors[i] = ColorFromRGBA8(r.U32(offs + i*0x04))
	}
	dst.MaterialIndex = r.U16(offs + 0x10)

	texCoordCount := int(r.U8(offs + 0x12))
	if texCoordCount > maxTexCoordSets {
		return fmt.Errorf("%w: %d texture coordinate sets (max %d)", ErrCorruptRecord, texCoordCount, maxTexCoordSets)
	}

	dst.TexCoords = make([][4]math.Vec2, texCoordCount)
	for i, set := 0, offs+0x14; i < texCoordCount; i, set = i+1, set+0x20 {
		for corner := 0; corner < 4; corner++ {
			dst.TexCoords[i][corner] = math.Vec2{
				X: r.F32(set + corner*0x08),
				Y: r.F32(set + corner*0x08 + 0x04),
			}
		}
	}
	return r.Err()
}

// parseWindow reads a wnd1 payload. Content and frame table offsets are block-relative.
func (p *layoutParser) parseWindow(b Block, offs int) (*WindowPane, error) {
	r := p.r
	w := &WindowPane{
		PaddingLeft:   r.F32(offs + 0x00),
		PaddingRight:  r.F32(offs + 0x04),
		PaddingTop:    r.F32(offs + 0x08),
		PaddingBottom: r.F32(offs + 0x0C),
	}

	frameCount := int(r.U8(offs + 0x10))
	contentOffs := b.Offset + int(r.U32(offs+0x14))
	if err := p.parseWindowContent(&w.Content, contentOffs); err != nil {
		return nil, err
	}

	w.Frames = make([]WindowFrame, 0, frameCount)
	frameTable := b.Offset + int(r.U32(offs+0x18))
	for i := 0; i < frameCount; i++ {
		frameOffs := b.Offset + int(r.U32(frameTable+i*0x04))
		w.Frames = append(w.Frames, WindowFrame{
			MaterialIndex: r.U16(frameOffs + 0x00),
			TextureFlip:   TextureFlip(r.U16(frameOffs + 0x02)),
		})
	}
	return w, r.Err()
}

// parseTextbox reads a txt1 payload. The string offset is block-relative and
// the text is UTF-16BE.
func (p *layoutParser) parseTextbox(b Block, offs int) *TextboxPane {
	r := p.r
	strLength := int(r.U16(offs + 0x02))
	strOffs := b.Offset + int(r.U32(offs+0x0C))

	return &TextboxPane{
		MaxLength:     r.U16(offs + 0x00),
		MaterialIndex: r.U16(offs + 0x04),
		FontIndex:     r.U16(offs + 0x06),
		TextPosition:  r.U8(offs + 0x08),
		TextAlignment: TextAlignment(r.U8(offs + 0x09)),
		ColorTop:      ColorFromRGBA8(r.U32(offs + 0x10)),
		ColorBottom:   ColorFromRGBA8(r.U32(offs + 0x14)),
		FontWidth:     r.F32(offs + 0x18),
		FontHeight:    r.F32(offs + 0x1C),
		CharWidth:     r.F32(offs + 0x20),
		CharHeight:    r.F32(offs + 0x24),
		Text:          r.UTF16String(strOffs, strLength),
	}
}

func (p *layoutParser) parseGroup(b Block) error {
	r := p.r
	offs := b.ContentOffset()

	group := &Group{Name: r.FixedString(offs, 0x10)}
	paneCount := int(r.U16(offs + 0x10))
	group.Panes = make([]string, 0, paneCount)
	for i, entry := 0, offs+0x14; i < paneCount; i, entry = i+1, entry+0x10 {
		group.Panes = append(group.Panes, r.FixedString(entry, 0x10))
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("group %q: %w", group.Name, corrupt(err))
	}

	if n := len(p.groupParents); n > 0 {
		parent := p.groupParents[n-1]
		parent.Children = append(parent.Children, group)
	} else if p.layout.RootGroup != nil {
		return fmt.Errorf("%w: group %q at root level besides %q", ErrMultipleRoots, group.Name, p.layout.RootGroup.Name)
	} else {
		p.layout.RootGroup = group
	}

	p.currentGroup = group
	return nil
}
