package layout

import (
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/gx"
	"github.com/Faultbox/lyt/pkg/math"
)

// MaxTexCoordSets is the number of texture coordinate channels per vertex.
const MaxTexCoordSets = 2

// DrawInfo is the per-frame input to Layout.Draw.
type DrawInfo struct {
	ViewMatrix math.Mat4
	Alpha      float32
}

// NewDrawInfo returns an identity view with full opacity.
func NewDrawInfo() DrawInfo {
	return DrawInfo{ViewMatrix: math.Identity(), Alpha: 1.0}
}

// Vertex is one corner of a picture quad in pane-local space.
type Vertex struct {
	Position  math.Vec3
	Color     formats.Color
	TexCoords [MaxTexCoordSets]math.Vec2
}

// DrawCommand is one textured quad ready for submission. Vertices are
// ordered TL, TR, BR, BL; only the first TexCoordCount texture coordinates
// of each vertex are meaningful.
type DrawCommand struct {
	Pane          string
	Material      *Material
	WorldMatrix   math.Mat4
	Vertices      [4]Vertex
	TexCoordCount int
	Params        MaterialParams
}

// Shader returns the fixed-function description of the command's material.
func (c *DrawCommand) Shader() *gx.Material {
	return c.Material.Shader()
}

// DrawList collects draw commands in submission order.
type DrawList struct {
	Commands []DrawCommand
}

// Reset empties the list, keeping its storage.
func (d *DrawList) Reset() {
	d.Commands = d.Commands[:0]
}

// Len returns the number of commands.
func (d *DrawList) Len() int {
	return len(d.Commands)
}
