package layout

import (
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/math"
)

// Pane is a runtime pane. The exported fields are its animatable state.
type Pane struct {
	Name         string
	UserData     string
	Kind         formats.PaneKind
	BasePosition formats.BasePosition

	Visible        bool
	Alpha          float32
	PropagateAlpha bool
	Translation    math.Vec3
	Rotation       math.Vec3 // degrees
	Scale          math.Vec2
	Width          float32
	Height         float32

	Children []*Pane

	picture     *picture
	worldMatrix math.Mat4
}

// picture is the quad payload of a Picture pane.
type picture struct {
	vertexColors  [4]formats.Color // TL, TR, BL, BR
	texCoords     [][4]math.Vec2
	materialIndex int
}

func newPane(src *formats.Pane) *Pane {
	p := &Pane{
		Name:           src.Name,
		UserData:       src.UserData,
		Kind:           src.Kind,
		BasePosition:   src.BasePosition,
		Visible:        src.Flags.Visible(),
		Alpha:          src.Alpha,
		PropagateAlpha: src.Flags.PropagateAlpha(),
		Translation:    src.Translation,
		Rotation:       src.Rotation,
		Scale:          src.Scale,
		Width:          src.Width,
		Height:         src.Height,
		worldMatrix:    math.Identity(),
	}

	if src.Kind == formats.PaneKindPicture && src.Picture != nil {
		texCoords := src.Picture.TexCoords
		if len(texCoords) > MaxTexCoordSets {
			texCoords = texCoords[:MaxTexCoordSets]
		}
		p.picture = &picture{
			vertexColors:  src.Picture.Colors,
			texCoords:     append([][4]math.Vec2(nil), texCoords...),
			materialIndex: int(src.Picture.MaterialIndex),
		}
	}

	p.Children = make([]*Pane, 0, len(src.Children))
	for _, c := range src.Children {
		p.Children = append(p.Children, newPane(c))
	}
	return p
}

// Find returns p or the first descendant named name, or nil.
func (p *Pane) Find(name string) *Pane {
	if p.Name == name {
		return p
	}
	for _, c := range p.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// VertexColors returns the animatable corner colors of a picture, ordered
// TL, TR, BL, BR. It returns nil for other pane kinds.
func (p *Pane) VertexColors() *[4]formats.Color {
	if p.picture == nil {
		return nil
	}
	return &p.picture.vertexColors
}

// MaterialIndex returns the material of a picture, or -1 for other pane kinds.
func (p *Pane) MaterialIndex() int {
	if p.picture == nil {
		return -1
	}
	return p.picture.materialIndex
}

// WorldMatrix returns the matrix computed by the last draw. Panes that were
// invisible at that time keep their previous matrix.
func (p *Pane) WorldMatrix() math.Mat4 {
	return p.worldMatrix
}

func (p *Pane) localMatrix() math.Mat4 {
	return math.ModelMatrixSRT(
		p.Scale.X, p.Scale.Y, 1.0,
		math.DegToRad(p.Rotation.X), math.DegToRad(p.Rotation.Y), math.DegToRad(p.Rotation.Z),
		p.Translation.X, p.Translation.Y, p.Translation.Z,
	)
}

func (p *Pane) calcMatrix(parent math.Mat4) {
	if !p.Visible {
		return
	}
	p.worldMatrix = parent.Mul(p.localMatrix())
	for _, c := range p.Children {
		c.calcMatrix(p.worldMatrix)
	}
}

func (p *Pane) draw(l *Layout, dst *DrawList, parentAlpha float32) {
	if !p.Visible {
		return
	}

	alpha := parentAlpha * p.Alpha
	p.drawSelf(l, dst, alpha)

	childAlpha := parentAlpha
	if p.PropagateAlpha {
		childAlpha = alpha
	}
	for _, c := range p.Children {
		c.draw(l, dst, childAlpha)
	}
}

// baseOffset returns the quad origin for the pane's anchor. Y grows upwards,
// so the quad extends down from the origin.
func (p *Pane) baseOffset() (x, y float32) {
	switch p.BasePosition.Column() {
	case 1:
		x = -p.Width / 2
	case 2:
		x = -p.Width
	}
	switch p.BasePosition.Row() {
	case 1:
		y = p.Height / 2
	case 2:
		y = p.Height
	}
	return x, y
}

// quadOrder maps emitted vertices (TL, TR, BR, BL) to stored corners (TL, TR, BL, BR).
var quadOrder = [4]int{0, 1, 3, 2}

func (p *Pane) drawSelf(l *Layout, dst *DrawList, alpha float32) {
	if p.picture == nil {
		return
	}

	idx := p.picture.materialIndex
	if idx >= len(l.materials) {
		return
	}
	mat := l.materials[idx]
	if !mat.Visible {
		return
	}

	baseX, baseY := p.baseOffset()
	w, h := p.Width, -p.Height

	cmd := DrawCommand{
		Pane:          p.Name,
		Material:      mat,
		WorldMatrix:   p.worldMatrix,
		TexCoordCount: len(p.picture.texCoords),
	}
	for v, corner := range quadOrder {
		pos := math.Vec3{X: baseX, Y: baseY}
		if corner&1 != 0 {
			pos.X += w
		}
		if corner&2 != 0 {
			pos.Y += h
		}

		color := formats.White
		if mat.VertexColorEnabled() {
			color = p.picture.vertexColors[corner]
		}
		color.A *= alpha

		vert := Vertex{Position: pos, Color: color}
		for j, set := range p.picture.texCoords {
			vert.TexCoords[j] = set[corner]
		}
		cmd.Vertices[v] = vert
	}

	mat.FillParams(&cmd.Params, l.textures)
	dst.Commands = append(dst.Commands, cmd)
}
