// Package layout is the runtime for decoded layout resources.
//
// A Layout is built from a shared, read-only formats.RLYT and holds its own
// copy of every animatable value, so any number of layouts can be driven from
// the same document. Layouts are not safe for concurrent use.
package layout

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/lyt/pkg/formats"
)

var (
	// ErrInvalidLayout is returned by New for documents the runtime cannot bind.
	ErrInvalidLayout = errors.New("invalid layout document")

	// ErrUnresolvedAnimationTarget is returned when an animation names a pane
	// or material the layout does not have.
	ErrUnresolvedAnimationTarget = errors.New("unresolved animation target")
)

// TextureHandle is an opaque texture object owned by the renderer.
type TextureHandle any

// TextureResolver looks textures up by file name.
type TextureResolver interface {
	Texture(name string) (TextureHandle, bool)
}

// TextureCollection is a map-backed TextureResolver. It is safe for
// concurrent use.
type TextureCollection struct {
	mu       sync.RWMutex
	textures map[string]TextureHandle
}

// NewTextureCollection returns an empty collection.
func NewTextureCollection() *TextureCollection {
	return &TextureCollection{textures: make(map[string]TextureHandle)}
}

// Add registers a texture, replacing any previous one with the same name.
func (c *TextureCollection) Add(name string, h TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textures[name] = h
}

// Texture implements TextureResolver.
func (c *TextureCollection) Texture(name string) (TextureHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.textures[name]
	return h, ok
}

// Names returns the registered texture names, sorted.
func (c *TextureCollection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.textures))
	for n := range c.textures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Option configures a Layout.
type Option func(*Layout)

// WithLogger sets the logger used for binding and ignored-data diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(l *Layout) {
		if log != nil {
			l.log = log
		}
	}
}

// Layout is a live instance of a layout document.
type Layout struct {
	doc       *formats.RLYT
	root      *Pane
	materials []*Material
	textures  TextureResolver
	log       *zap.Logger
}

// New builds a runtime layout. textures may be nil, in which case no texture
// resolves.
func New(doc *formats.RLYT, textures TextureResolver, opts ...Option) (*Layout, error) {
	if doc == nil || doc.RootPane == nil {
		return nil, fmt.Errorf("%w: document has no root pane", ErrInvalidLayout)
	}
	if textures == nil {
		textures = NewTextureCollection()
	}

	l := &Layout{
		doc:      doc,
		textures: textures,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.materials = make([]*Material, 0, len(doc.Materials))
	for i := range doc.Materials {
		m, err := newMaterial(&doc.Materials[i], doc.TextureBindings, l.log)
		if err != nil {
			return nil, fmt.Errorf("binding material %d: %w", i, err)
		}
		l.materials = append(l.materials, m)
	}

	l.root = newPane(doc.RootPane)

	l.log.Debug("layout created",
		zap.String("root", l.root.Name),
		zap.Int("materials", len(l.materials)),
		zap.Int("textures", len(doc.TextureBindings)))
	return l, nil
}

// Document returns the shared document the layout was built from.
func (l *Layout) Document() *formats.RLYT {
	return l.doc
}

// RootPane returns the root of the runtime pane tree.
func (l *Layout) RootPane() *Pane {
	return l.root
}

// Materials returns the runtime materials in document order.
func (l *Layout) Materials() []*Material {
	return l.materials
}

// FindPane returns the first pane named name in depth-first order, or nil.
func (l *Layout) FindPane(name string) *Pane {
	return l.root.Find(name)
}

// FindMaterial returns the first material named name, or nil.
func (l *Layout) FindMaterial(name string) *Material {
	for _, m := range l.materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Group returns the panes referenced by the named group. Names that do not
// resolve are skipped. It returns nil if the group does not exist.
func (l *Layout) Group(name string) []*Pane {
	g := l.doc.FindGroup(name)
	if g == nil {
		return nil
	}

	panes := make([]*Pane, 0, len(g.Panes))
	for _, pn := range g.Panes {
		if p := l.FindPane(pn); p != nil {
			panes = append(panes, p)
		} else {
			l.log.Debug("group references unknown pane", zap.String("group", name), zap.String("pane", pn))
		}
	}
	return panes
}

// SetGroupVisible sets the visibility of every pane of the named group. It
// reports whether the group exists.
func (l *Layout) SetGroupVisible(name string, visible bool) bool {
	if l.doc.FindGroup(name) == nil {
		return false
	}
	for _, p := range l.Group(name) {
		p.Visible = visible
	}
	return true
}

// Draw computes world matrices from info.ViewMatrix and appends one command
// per visible picture to dst. Invisible panes are skipped with their subtree.
func (l *Layout) Draw(info DrawInfo, dst *DrawList) {
	l.root.calcMatrix(info.ViewMatrix)
	l.root.draw(l, dst, info.Alpha)
}
