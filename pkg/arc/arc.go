// Package arc provides reading functionality for U8 archives (.arc), the
// packed container layout and animation resources usually ship in.
package arc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

const (
	u8Magic    = 0x55AA382D
	headerSize = 0x20
	nodeSize   = 0x0C
)

var (
	// ErrInvalidArchive is returned for data that is not a well-formed U8 archive.
	ErrInvalidArchive = errors.New("invalid U8 archive")

	// ErrNotFound is returned by Read for paths the archive does not contain.
	ErrNotFound = errors.New("file not found")
)

// Header is the fixed archive header.
type Header struct {
	Magic      uint32
	RootOffset uint32
	NodesSize  uint32 // node table plus string table
	DataOffset uint32
	Reserved   [16]byte
}

// Entry is a file in the archive.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Archive represents an opened U8 archive.
type Archive struct {
	r        io.ReaderAt
	closer   io.Closer
	size     int64
	header   Header
	fileList map[string]*Entry
}

type readerAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Open opens a U8 archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	a, err := open(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	return a, nil
}

// OpenBytes opens an archive held in memory. The buffer is not copied.
func OpenBytes(data []byte) (*Archive, error) {
	return open(nopCloser{bytes.NewReader(data)}, int64(len(data)))
}

type nopCloser struct{ io.ReaderAt }

func (nopCloser) Close() error { return nil }

func open(r readerAtCloser, size int64) (*Archive, error) {
	a := &Archive{
		r:        r,
		closer:   r,
		size:     size,
		fileList: make(map[string]*Entry),
	}

	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readNodes(); err != nil {
		return nil, fmt.Errorf("reading node table: %w", err)
	}
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if err := binary.Read(io.NewSectionReader(a.r, 0, headerSize), binary.BigEndian, &a.header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if a.header.Magic != u8Magic {
		return fmt.Errorf("%w: bad magic 0x%08X", ErrInvalidArchive, a.header.Magic)
	}
	if int64(a.header.RootOffset)+int64(a.header.NodesSize) > a.size {
		return fmt.Errorf("%w: node table at 0x%X (0x%X bytes) past end of file",
			ErrInvalidArchive, a.header.RootOffset, a.header.NodesSize)
	}
	return nil
}

func (a *Archive) readNodes() error {
	if a.header.NodesSize < nodeSize {
		return fmt.Errorf("%w: no root node", ErrInvalidArchive)
	}
	table := make([]byte, a.header.NodesSize)
	if _, err := a.r.ReadAt(table, int64(a.header.RootOffset)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	// The root directory's size field is the total node count; names follow the nodes.
	count := int(binary.BigEndian.Uint32(table[8:]))
	if table[0] != 1 || count == 0 || count*nodeSize > len(table) {
		return fmt.Errorf("%w: bad root node (%d nodes)", ErrInvalidArchive, count)
	}
	names := table[count*nodeSize:]

	type dir struct {
		path string
		end  int
	}
	stack := []dir{{path: "", end: count}}

	for i := 1; i < count; i++ {
		for len(stack) > 1 && i >= stack[len(stack)-1].end {
			stack = stack[:len(stack)-1]
		}

		node := table[i*nodeSize:]
		nameOffs := int(binary.BigEndian.Uint32(node) & 0x00FFFFFF)
		if nameOffs >= len(names) {
			return fmt.Errorf("%w: node %d name offset 0x%X out of range", ErrInvalidArchive, i, nameOffs)
		}
		name := names[nameOffs:]
		if end := bytes.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}
		full := path.Join(stack[len(stack)-1].path, string(name))

		dataOffs := binary.BigEndian.Uint32(node[4:])
		size := binary.BigEndian.Uint32(node[8:])

		if node[0] == 1 {
			if int(size) <= i || int(size) > count {
				return fmt.Errorf("%w: directory %q ends at node %d of %d", ErrInvalidArchive, full, size, count)
			}
			stack = append(stack, dir{path: full, end: int(size)})
			continue
		}

		if int64(dataOffs)+int64(size) > a.size {
			return fmt.Errorf("%w: file %q data past end of archive", ErrInvalidArchive, full)
		}
		entry := &Entry{Name: normalizePath(full), Offset: dataOffs, Size: size}
		a.fileList[entry.Name] = entry
	}
	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[normalizePath(path)]
	return ok
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (*Entry, bool) {
	e, ok := a.fileList[normalizePath(path)]
	return e, ok
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data := make([]byte, entry.Size)
	if len(data) == 0 {
		return data, nil
	}
	if _, err := a.r.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// normalizePath lower-cases p, uses forward slashes and drops any leading
// "./" or "/".
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
	return strings.ToLower(p)
}
