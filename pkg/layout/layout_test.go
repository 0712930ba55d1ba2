package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/gx"
	"github.com/Faultbox/lyt/pkg/math"
)

var (
	red   = formats.Color{R: 1, A: 1}
	green = formats.Color{G: 1, A: 1}
	blue  = formats.Color{B: 1, A: 1}
)

func testShader(t *testing.T, name string) *gx.Material {
	t.Helper()
	m, err := gx.NewMaterialBuilder(name).Finish()
	require.NoError(t, err)
	return m
}

func testPicture(name string, materialIndex uint16) *formats.Pane {
	return &formats.Pane{
		Kind:         formats.PaneKindPicture,
		Flags:        formats.PaneFlagVisible,
		BasePosition: formats.BaseTopLeft,
		Alpha:        1,
		Name:         name,
		Scale:        math.Vec2{X: 1, Y: 1},
		Width:        10,
		Height:       20,
		Picture: &formats.WindowContent{
			Colors:        [4]formats.Color{red, green, blue, formats.White},
			MaterialIndex: materialIndex,
			TexCoords: [][4]math.Vec2{{
				{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
			}},
		},
	}
}

// testDocument builds RootPane -> {Pic (mat_vc), Group -> Plain (mat_plain)}.
func testDocument(t *testing.T) *formats.RLYT {
	t.Helper()

	plain := testPicture("Plain", 1)
	group := &formats.Pane{
		Kind:     formats.PaneKindPlain,
		Flags:    formats.PaneFlagVisible,
		Alpha:    1,
		Name:     "Group",
		Scale:    math.Vec2{X: 1, Y: 1},
		Children: []*formats.Pane{plain},
	}
	root := &formats.Pane{
		Kind:     formats.PaneKindPlain,
		Flags:    formats.PaneFlagVisible,
		Alpha:    1,
		Name:     "RootPane",
		Scale:    math.Vec2{X: 1, Y: 1},
		Children: []*formats.Pane{testPicture("Pic", 0), group},
	}

	return &formats.RLYT{
		TextureBindings: []formats.TextureBinding{{Filename: "a.tpl"}, {Filename: "b.tpl"}},
		Materials: []formats.Material{
			{
				Name:               "mat_vc",
				ColorRegisters:     [3]formats.Color{red, green, blue},
				ConstantColors:     [4]formats.Color{red, green, blue, formats.White},
				MaterialColor:      formats.White,
				Samplers:           []formats.Sampler{{TextureIndex: 0, MaxLOD: 100}},
				TexMatrices:        []formats.TexMatrix{{ScaleS: 1, ScaleT: 1}},
				IndTexMatrices:     []formats.TexMatrix{{ScaleS: 1, ScaleT: 1}},
				VertexColorEnabled: true,
				Shader:             testShader(t, "mat_vc"),
			},
			{
				Name:          "mat_plain",
				MaterialColor: formats.White,
				Shader:        testShader(t, "mat_plain"),
			},
		},
		RootPane: root,
		RootGroup: &formats.Group{
			Name: "RootGroup",
			Children: []*formats.Group{
				{Name: "Buttons", Panes: []string{"Pic", "Missing", "Plain"}},
			},
		},
	}
}

func newTestLayout(t *testing.T, doc *formats.RLYT) (*Layout, *TextureCollection) {
	t.Helper()
	textures := NewTextureCollection()
	textures.Add("a.tpl", "handle-a")
	l, err := New(doc, textures, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return l, textures
}

func draw(l *Layout, alpha float32) *DrawList {
	info := NewDrawInfo()
	info.Alpha = alpha
	var list DrawList
	l.Draw(info, &list)
	return &list
}

func TestNew_CopiesDocumentState(t *testing.T) {
	doc := testDocument(t)
	l, _ := newTestLayout(t, doc)

	pic := l.FindPane("Pic")
	require.NotNil(t, pic)
	pic.Translation.X = 99
	pic.VertexColors()[0].R = 0

	mat := l.FindMaterial("mat_vc")
	require.NotNil(t, mat)
	mat.TexMatrices[0].Rotation = 45
	mat.ColorRegisters[0].G = 1

	docPic := doc.FindPane("Pic")
	assert.Equal(t, float32(0), docPic.Translation.X)
	assert.Equal(t, red, docPic.Picture.Colors[0])
	assert.Equal(t, float32(0), doc.Materials[0].TexMatrices[0].Rotation)
	assert.Equal(t, red, doc.Materials[0].ColorRegisters[0])

	// A second layout from the same document starts from the original values
	l2, _ := newTestLayout(t, doc)
	assert.Equal(t, float32(0), l2.FindPane("Pic").Translation.X)
	assert.Same(t, doc, l2.Document())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidLayout)

	doc := testDocument(t)
	doc.Materials[0].Samplers[0].TextureIndex = 5
	_, err = New(doc, nil)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestLayout_FindMissing(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))
	assert.Nil(t, l.FindPane("nope"))
	assert.Nil(t, l.FindMaterial("nope"))
	assert.Equal(t, "RootPane", l.RootPane().Name)
	assert.Len(t, l.Materials(), 2)
	assert.Equal(t, -1, l.RootPane().MaterialIndex())
	assert.Nil(t, l.RootPane().VertexColors())
}

func TestLayout_Groups(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))

	panes := l.Group("Buttons")
	require.Len(t, panes, 2)
	assert.Equal(t, "Pic", panes[0].Name)
	assert.Equal(t, "Plain", panes[1].Name)
	assert.Nil(t, l.Group("Nope"))

	assert.True(t, l.SetGroupVisible("Buttons", false))
	assert.False(t, l.FindPane("Pic").Visible)
	assert.False(t, l.FindPane("Plain").Visible)
	assert.True(t, l.FindPane("Group").Visible)
	assert.False(t, l.SetGroupVisible("Nope", true))

	assert.Equal(t, 0, draw(l, 1).Len())
}

func TestDraw_QuadGeometry(t *testing.T) {
	tests := []struct {
		name string
		base formats.BasePosition
		want [4]math.Vec3
	}{
		{"top left", formats.BaseTopLeft, [4]math.Vec3{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: -20}, {X: 0, Y: -20}}},
		{"center", formats.BaseCenterMiddle, [4]math.Vec3{{X: -5, Y: 10}, {X: 5, Y: 10}, {X: 5, Y: -10}, {X: -5, Y: -10}}},
		{"bottom right", formats.BaseBottomRight, [4]math.Vec3{{X: -10, Y: 20}, {X: 0, Y: 20}, {X: 0, Y: 0}, {X: -10, Y: 0}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, _ := newTestLayout(t, testDocument(t))
			l.FindPane("Pic").BasePosition = tc.base

			list := draw(l, 1)
			require.Equal(t, 2, list.Len())

			cmd := list.Commands[0]
			assert.Equal(t, "Pic", cmd.Pane)
			for i, v := range cmd.Vertices {
				assert.Equal(t, tc.want[i], v.Position, "vertex %d", i)
			}
		})
	}
}

func TestDraw_VertexOrderColorsAndTexCoords(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))
	list := draw(l, 1)
	require.Equal(t, 2, list.Len())

	// Stored TL, TR, BL, BR; emitted TL, TR, BR, BL
	cmd := list.Commands[0]
	assert.Equal(t, []formats.Color{red, green, formats.White, blue}, []formats.Color{
		cmd.Vertices[0].Color, cmd.Vertices[1].Color, cmd.Vertices[2].Color, cmd.Vertices[3].Color,
	})
	assert.Equal(t, math.Vec2{X: 1, Y: 1}, cmd.Vertices[2].TexCoords[0])
	assert.Equal(t, math.Vec2{X: 0, Y: 1}, cmd.Vertices[3].TexCoords[0])
	assert.Equal(t, 1, cmd.TexCoordCount)
	assert.Same(t, l.FindMaterial("mat_vc").Shader(), cmd.Shader())

	// mat_plain does not take vertex colors
	for _, v := range list.Commands[1].Vertices {
		assert.Equal(t, formats.White, v.Color)
	}
}

func TestDraw_AlphaPropagation(t *testing.T) {
	tests := []struct {
		name      string
		propagate bool
		want      float32
	}{
		{"propagate", true, 0.8 * 0.5 * 0.25},
		{"isolated", false, 0.8 * 0.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, _ := newTestLayout(t, testDocument(t))
			root := l.RootPane()
			root.Alpha = 0.5
			root.PropagateAlpha = tc.propagate
			l.FindPane("Pic").Alpha = 0.25

			list := draw(l, 0.8)
			require.Equal(t, 2, list.Len())
			for _, v := range list.Commands[0].Vertices {
				assert.InDelta(t, tc.want, v.Color.A, 1e-6)
			}
		})
	}
}

func TestDraw_OwnAlphaAlwaysApplies(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))
	group := l.FindPane("Group")
	group.Alpha = 0.5
	group.PropagateAlpha = true
	l.FindPane("Plain").Alpha = 0.5

	list := draw(l, 1)
	require.Equal(t, 2, list.Len())
	assert.InDelta(t, 0.25, list.Commands[1].Vertices[0].Color.A, 1e-6)
}

func TestDraw_InvisibleSubtreePruned(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))
	draw(l, 1)

	group := l.FindPane("Group")
	plain := l.FindPane("Plain")
	before := plain.WorldMatrix()

	group.Visible = false
	group.Translation.X = 100

	list := draw(l, 1)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "Pic", list.Commands[0].Pane)
	assert.Equal(t, before, plain.WorldMatrix())
}

func TestDraw_WorldMatrix(t *testing.T) {
	l, _ := newTestLayout(t, testDocument(t))
	l.RootPane().Translation = math.Vec3{X: 10, Y: 5}
	group := l.FindPane("Group")
	group.Translation = math.Vec3{X: 3}
	group.Scale = math.Vec2{X: 2, Y: 2}
	l.FindPane("Plain").Translation = math.Vec3{X: 1, Y: 1}

	info := NewDrawInfo()
	info.ViewMatrix = math.Translate(0, 0, -1)
	var list DrawList
	l.Draw(info, &list)

	m := l.FindPane("Plain").WorldMatrix()
	p := m.TransformPoint(math.Vec3{})
	assert.InDelta(t, 15, p.X, 1e-5) // 10 + 3 + 2*1
	assert.InDelta(t, 7, p.Y, 1e-5)  // 5 + 2*1
	assert.InDelta(t, -1, p.Z, 1e-5)
	assert.Equal(t, m, list.Commands[1].WorldMatrix)

	list.Reset()
	assert.Equal(t, 0, list.Len())
}

func TestDraw_MaterialGuards(t *testing.T) {
	doc := testDocument(t)
	doc.FindPane("Plain").Picture.MaterialIndex = 9
	l, _ := newTestLayout(t, doc)

	list := draw(l, 1)
	require.Equal(t, 1, list.Len())

	l.FindMaterial("mat_vc").Visible = false
	assert.Equal(t, 0, draw(l, 1).Len())
}

func TestMaterial_FillParams(t *testing.T) {
	l, textures := newTestLayout(t, testDocument(t))
	mat := l.FindMaterial("mat_vc")
	mat.MaterialColor = blue

	var params MaterialParams
	mat.FillParams(&params, textures)

	assert.Equal(t, red, params.Colors[ColorC0])
	assert.Equal(t, blue, params.Colors[ColorC2])
	assert.Equal(t, green, params.Colors[ColorK1])
	assert.Equal(t, formats.White, params.Colors[ColorK3])
	assert.Equal(t, blue, params.Colors[ColorMat0])

	require.Len(t, params.TexMatrices, 1)
	assert.Equal(t, math.Identity(), params.TexMatrices[0])
	require.Len(t, params.IndTexMatrices, 1)

	require.Len(t, params.Textures, 1)
	assert.True(t, params.Textures[0].Resolved)
	assert.Equal(t, "handle-a", params.Textures[0].Handle)
	assert.Equal(t, float32(100), params.Textures[0].Sampler.MaxLOD)

	mat.TextureNames[0] = "b.tpl"
	mat.FillParams(&params, textures)
	require.Len(t, params.Textures, 1)
	assert.False(t, params.Textures[0].Resolved)
	assert.Nil(t, params.Textures[0].Handle)
}

func TestTextureCollection(t *testing.T) {
	c := NewTextureCollection()
	c.Add("b.tpl", 2)
	c.Add("a.tpl", 1)
	c.Add("a.tpl", 3)

	h, ok := c.Texture("a.tpl")
	assert.True(t, ok)
	assert.Equal(t, 3, h)
	_, ok = c.Texture("c.tpl")
	assert.False(t, ok)
	assert.Equal(t, []string{"a.tpl", "b.tpl"}, c.Names())
}
