package layout

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/lyt/pkg/curve"
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/math"
)

// node is the target of one bound animation: exactly one field is set.
type node struct {
	pane     *Pane
	material *Material
}

type animationEntry struct {
	node node
	anim *formats.Animation
}

// Animation drives a layout from an animation resource.
//
//	anim, err := layout.NewAnimation(l, res)
//	for !anim.IsOver() {
//		anim.Update(1)
//		l.Draw(info, &list)
//	}
type Animation struct {
	res          *formats.RLAN
	entries      []animationEntry
	currentFrame float32
	duration     float32
	log          *zap.Logger
	ignored      map[*formats.Track]bool
}

// NewAnimation binds every animation of res to its pane or material in l.
func NewAnimation(l *Layout, res *formats.RLAN) (*Animation, error) {
	a := &Animation{
		res:     res,
		log:     l.log,
		ignored: make(map[*formats.Track]bool),
	}

	var duration float32
	for i := range res.Animations {
		anim := &res.Animations[i]

		n, err := findNode(l, anim)
		if err != nil {
			return nil, err
		}
		a.entries = append(a.entries, animationEntry{node: n, anim: anim})

		if duration >= 0 {
			if anim.LoopMode == formats.LoopRepeat {
				duration = -1
			} else if d := float32(anim.Duration); d > duration {
				duration = d
			}
		}

		a.log.Debug("animation bound",
			zap.String("target", anim.TargetName),
			zap.Stringer("kind", anim.TargetKind),
			zap.Int("tracks", len(anim.Tracks)),
			zap.Stringer("loop", anim.LoopMode))
	}
	a.duration = duration
	return a, nil
}

func findNode(l *Layout, anim *formats.Animation) (node, error) {
	switch anim.TargetKind {
	case formats.TargetPane:
		if p := l.FindPane(anim.TargetName); p != nil {
			return node{pane: p}, nil
		}
	case formats.TargetMaterial:
		if m := l.FindMaterial(anim.TargetName); m != nil {
			return node{material: m}, nil
		}
	}
	return node{}, fmt.Errorf("%w: %s %q", ErrUnresolvedAnimationTarget, anim.TargetKind, anim.TargetName)
}

// Update advances the cursor by deltaFrames and applies every track at the
// new frame.
func (a *Animation) Update(deltaFrames float32) {
	a.currentFrame += deltaFrames
	a.apply()
}

// Advance is an alias for Update.
func (a *Animation) Advance(deltaFrames float32) {
	a.Update(deltaFrames)
}

// Reset rewinds the cursor to frame 0 and applies it.
func (a *Animation) Reset() {
	a.currentFrame = 0
	a.apply()
}

// CurrentFrame returns the unwrapped cursor.
func (a *Animation) CurrentFrame() float32 {
	return a.currentFrame
}

// Duration returns the longest duration of the bound animations, or -1 if
// any of them repeats.
func (a *Animation) Duration() float32 {
	return a.duration
}

// IsOver reports whether a finite animation has run past its duration.
// Repeating animations are never over.
func (a *Animation) IsOver() bool {
	return a.duration >= 0 && a.currentFrame > a.duration
}

func (a *Animation) apply() {
	for i := range a.entries {
		e := &a.entries[i]
		frame := animFrame(e.anim, a.currentFrame)
		for j := range e.anim.Tracks {
			t := &e.anim.Tracks[j]
			a.applyTrack(e.node, t, curve.Sample(t.Curve, t.Frames, frame))
		}
	}
}

// animFrame maps the cursor into the animation's frame range.
func animFrame(anim *formats.Animation, frame float32) float32 {
	last := float32(anim.Duration)
	if anim.LoopMode == formats.LoopOnce {
		if frame > last {
			frame = last
		}
		return frame
	}
	if last <= 0 {
		return 0
	}
	if frame > last {
		// Whole multiples of the duration land on the last frame.
		if frame = math32.Mod(frame, last); frame == 0 {
			frame = last
		}
	}
	return frame
}

func (a *Animation) applyTrack(n node, t *formats.Track, value float32) {
	var applied bool
	switch {
	case n.pane != nil:
		applied = applyPaneTrack(n.pane, t.Type, value)
	case n.material != nil:
		applied = a.applyMaterialTrack(n.material, t, value)
	}
	if !applied && !a.ignored[t] {
		a.ignored[t] = true
		a.log.Debug("track ignored", zap.Stringer("type", t.Type), zap.Int("sub_index", int(t.SubIndex)))
	}
}

func applyPaneTrack(p *Pane, typ formats.TrackType, value float32) bool {
	switch typ.Category {
	case formats.CategoryPaneTransform:
		switch typ.Offset {
		case formats.PaneTransformTranslateX:
			p.Translation.X = value
		case formats.PaneTransformTranslateY:
			p.Translation.Y = value
		case formats.PaneTransformTranslateZ:
			p.Translation.Z = value
		case formats.PaneTransformRotateX:
			p.Rotation.X = value
		case formats.PaneTransformRotateY:
			p.Rotation.Y = value
		case formats.PaneTransformRotateZ:
			p.Rotation.Z = value
		case formats.PaneTransformScaleX:
			p.Scale.X = value
		case formats.PaneTransformScaleY:
			p.Scale.Y = value
		case formats.PaneTransformWidth:
			p.Width = value
		case formats.PaneTransformHeight:
			p.Height = value
		default:
			return false
		}
		return true

	case formats.CategoryPaneVisibility:
		p.Visible = value != 0
		return true

	case formats.CategoryPaneVertexColor:
		if typ.Offset == formats.PaneVertexColorAlpha {
			p.Alpha = math.Saturate(value / 0xFF)
			return true
		}
		colors := p.VertexColors()
		if colors == nil || typ.Offset > formats.PaneVertexColorBRA {
			return false
		}
		setComponent(&colors[typ.Offset/4], typ.Offset%4, value/0xFF)
		return true
	}
	return false
}

func (a *Animation) applyMaterialTrack(m *Material, t *formats.Track, value float32) bool {
	typ := t.Type
	switch typ.Category {
	case formats.CategoryMaterialColor:
		switch o := typ.Offset; {
		case o <= formats.MaterialColorMatA:
			setComponent(&m.MaterialColor, o%4, value/0xFF)
		case o <= formats.MaterialColorRegister2A:
			setComponent(&m.ColorRegisters[(o-formats.MaterialColorRegister0R)/4], o%4, value/0xFF)
		case o <= formats.MaterialColorConstant3A:
			setComponent(&m.ConstantColors[(o-formats.MaterialColorConstant0R)/4], o%4, value/0xFF)
		default:
			return false
		}
		return true

	case formats.CategoryTextureTransform:
		if int(t.SubIndex) >= len(m.TexMatrices) {
			return false
		}
		return setTexMatrixField(&m.TexMatrices[t.SubIndex], typ.Offset, value)

	case formats.CategoryIndirectMatrix:
		if int(t.SubIndex) >= len(m.IndTexMatrices) {
			return false
		}
		return setTexMatrixField(&m.IndTexMatrices[t.SubIndex], typ.Offset, value)

	case formats.CategoryTexturePattern:
		idx := int(value)
		if int(t.SubIndex) >= len(m.TextureNames) || idx < 0 || idx >= len(a.res.TextureNames) {
			if !a.ignored[t] {
				a.log.Warn("texture pattern index ignored",
					zap.String("material", m.Name),
					zap.Int("slot", int(t.SubIndex)),
					zap.Int("index", idx),
					zap.Int("names", len(a.res.TextureNames)))
			}
			return false
		}
		m.TextureNames[t.SubIndex] = a.res.TextureNames[idx]
		return true
	}
	return false
}

func setTexMatrixField(m *formats.TexMatrix, offset uint8, value float32) bool {
	switch offset {
	case formats.TexMatrixTranslateS:
		m.TranslationS = value
	case formats.TexMatrixTranslateT:
		m.TranslationT = value
	case formats.TexMatrixRotation:
		m.Rotation = value
	case formats.TexMatrixScaleS:
		m.ScaleS = value
	case formats.TexMatrixScaleT:
		m.ScaleT = value
	default:
		return false
	}
	return true
}

// setComponent sets component i (R, G, B, A) of c.
func setComponent(c *formats.Color, i uint8, v float32) {
	switch i {
	case 0:
		c.R = v
	case 1:
		c.G = v
	case 2:
		c.B = v
	case 3:
		c.A = v
	}
}
