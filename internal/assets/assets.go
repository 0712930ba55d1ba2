// Package assets loads layout resources from U8 archives and directories and
// caches both raw bytes and decoded documents.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/lyt/pkg/arc"
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/layout"
)

// ErrNotFound is returned when no archive or directory has the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager handles resource loading. Archives and directories are searched
// in reverse order (last added = highest priority). Decoded documents are
// immutable and shared by every caller.
type Manager struct {
	archives []*arc.Archive
	dirs     []string
	cache    *Cache
	log      *zap.Logger

	mu         sync.RWMutex
	layouts    map[string]*formats.RLYT
	animations map[string]*formats.RLAN
}

// NewManager creates a new asset manager. log may be nil.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache:      NewCache(),
		log:        log,
		layouts:    make(map[string]*formats.RLYT),
		animations: make(map[string]*formats.RLAN),
	}
}

// AddArchive adds a U8 archive to the search path.
func (m *Manager) AddArchive(path string) error {
	archive, err := arc.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()

	m.log.Debug("archive added", zap.String("path", path), zap.Int("files", len(archive.List())))
	return nil
}

// AddDir adds a directory to the search path.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// Load loads a file. Absolute paths are read from disk as is.
func (m *Manager) Load(name string) ([]byte, error) {
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	data, err := m.load(name)
	if err != nil {
		return nil, err
	}
	m.cache.Set(name, data)
	return data, nil
}

func (m *Manager) load(name string) ([]byte, error) {
	if filepath.IsAbs(name) {
		return os.ReadFile(name)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		if m.archives[i].Contains(name) {
			return m.archives[i].Read(name)
		}
	}
	for i := len(m.dirs) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.dirs[i], filepath.FromSlash(name)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether Load would find name.
func (m *Manager) Exists(name string) bool {
	if _, ok := m.cache.Get(name); ok {
		return true
	}
	if filepath.IsAbs(name) {
		_, err := os.Stat(name)
		return err == nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.archives {
		if a.Contains(name) {
			return true
		}
	}
	for _, d := range m.dirs {
		if _, err := os.Stat(filepath.Join(d, filepath.FromSlash(name))); err == nil {
			return true
		}
	}
	return false
}

// Layout loads and decodes a layout resource, once per path.
func (m *Manager) Layout(name string) (*formats.RLYT, error) {
	m.mu.RLock()
	doc, ok := m.layouts[name]
	m.mu.RUnlock()
	if ok {
		return doc, nil
	}

	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	doc, err = formats.ParseBRLYT(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	m.mu.Lock()
	m.layouts[name] = doc
	m.mu.Unlock()

	m.log.Debug("layout decoded", zap.String("path", name), zap.Int("materials", len(doc.Materials)))
	return doc, nil
}

// Animation loads and decodes an animation resource, once per path.
func (m *Manager) Animation(name string) (*formats.RLAN, error) {
	m.mu.RLock()
	res, ok := m.animations[name]
	m.mu.RUnlock()
	if ok {
		return res, nil
	}

	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	res, err = formats.ParseBRLAN(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	m.mu.Lock()
	m.animations[name] = res
	m.mu.Unlock()

	m.log.Debug("animation decoded", zap.String("path", name), zap.Int("bindings", len(res.Animations)))
	return res, nil
}

// Textures returns a collection with every texture of doc that can be found
// in a sibling timg directory, next to the layout, or under timg/. A layout
// at the root has no sibling directory. Handles are the resolved asset
// paths; textures that cannot be found are left out and surface as
// unresolved bindings at draw time.
func (m *Manager) Textures(layoutPath string, doc *formats.RLYT) *layout.TextureCollection {
	c := layout.NewTextureCollection()
	dir := path.Dir(filepath.ToSlash(layoutPath))
	for _, b := range doc.TextureBindings {
		candidates := []string{path.Join(dir, b.Filename), path.Join("timg", b.Filename)}
		if dir != "." && dir != "/" {
			candidates = append([]string{path.Join(dir, "..", "timg", b.Filename)}, candidates...)
		}
		for _, candidate := range candidates {
			if m.Exists(candidate) {
				c.Add(b.Filename, candidate)
				break
			}
		}
	}
	return c
}

// Close closes all archives and drops every cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, archive := range m.archives {
		archive.Close()
	}
	m.archives = nil
	m.dirs = nil
	m.layouts = make(map[string]*formats.RLYT)
	m.animations = make(map[string]*formats.RLAN)
	m.cache.Clear()
}

// Stats returns raw byte cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Cache is a simple in-memory cache for loaded file contents.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
