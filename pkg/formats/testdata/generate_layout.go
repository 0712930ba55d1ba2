//go:build ignore

// This program generates a test BRLYT/BRLAN pair for unit tests.
// Run with: go run generate_layout.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

type block struct {
	tag  string
	body []byte
}

func resource(magic string, blocks ...block) []byte {
	var body bytes.Buffer
	for _, b := range blocks {
		body.WriteString(b.tag)
		binary.Write(&body, binary.BigEndian, uint32(8+len(b.body)))
		body.Write(b.body)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.BigEndian, uint16(0xFEFF))          // byte order mark
	binary.Write(&buf, binary.BigEndian, uint16(0x000A))          // version
	binary.Write(&buf, binary.BigEndian, uint32(0x10+body.Len())) // file length
	binary.Write(&buf, binary.BigEndian, uint16(0x10))            // root section offset
	binary.Write(&buf, binary.BigEndian, uint16(len(blocks)))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func fixed(s string, size int) []byte {
	b := make([]byte, size)
	copy(b, s)
	return b
}

func pane(name string, base uint8, w, h float32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x01) // visible
	buf.WriteByte(base)
	buf.WriteByte(0xFF) // alpha
	buf.WriteByte(0)
	buf.Write(fixed(name, 0x10))
	buf.Write(fixed("", 0x08))
	binary.Write(&buf, binary.BigEndian, [3]float32{0, 0, 0}) // translation
	binary.Write(&buf, binary.BigEndian, [3]float32{0, 0, 0}) // rotation
	binary.Write(&buf, binary.BigEndian, [2]float32{1, 1})    // scale
	binary.Write(&buf, binary.BigEndian, w)
	binary.Write(&buf, binary.BigEndian, h)
	return buf.Bytes()
}

func layout() []byte {
	// Texture table: one name, offsets relative to the table
	var txl bytes.Buffer
	binary.Write(&txl, binary.BigEndian, uint16(1))
	binary.Write(&txl, binary.BigEndian, uint16(0))
	binary.Write(&txl, binary.BigEndian, uint32(0x08))
	binary.Write(&txl, binary.BigEndian, uint32(0))
	txl.WriteString("button.tpl\x00")
	for txl.Len()%4 != 0 {
		txl.WriteByte(0)
	}

	// One material: 1 sampler, 1 texture matrix, 1 texgen, no TEV stages
	var mat bytes.Buffer
	mat.Write(fixed("ButtonMat", 0x14))
	binary.Write(&mat, binary.BigEndian, [4]int16{0, 0, 0, 255})       // C0
	binary.Write(&mat, binary.BigEndian, [4]int16{255, 255, 255, 255}) // C1
	binary.Write(&mat, binary.BigEndian, [4]int16{0, 0, 0, 0})         // C2
	binary.Write(&mat, binary.BigEndian, [4]uint32{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF})
	binary.Write(&mat, binary.BigEndian, uint32(0x00000111)) // flags
	binary.Write(&mat, binary.BigEndian, uint16(0))          // texture index
	binary.Write(&mat, binary.BigEndian, uint16(0x0000))     // clamp, no filter bits
	binary.Write(&mat, binary.BigEndian, [5]float32{0, 0, 0, 1, 1})
	mat.Write([]byte{1, 4, 30, 0}) // MTX2x4, TEX0, TEXMTX0

	var mat1 bytes.Buffer
	binary.Write(&mat1, binary.BigEndian, uint16(1))
	binary.Write(&mat1, binary.BigEndian, uint16(0))
	binary.Write(&mat1, binary.BigEndian, uint32(0x10)) // block-relative record offset
	mat1.Write(mat.Bytes())

	pic := pane("Button", 4, 128, 64)
	var content bytes.Buffer
	binary.Write(&content, binary.BigEndian, [4]uint32{0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF})
	binary.Write(&content, binary.BigEndian, uint16(0)) // material index
	content.WriteByte(1)                                // texcoord sets
	content.WriteByte(0)
	binary.Write(&content, binary.BigEndian, [8]float32{0, 0, 1, 0, 0, 1, 1, 1})
	pic = append(pic, content.Bytes()...)

	group := func(name string, panes ...string) []byte {
		var buf bytes.Buffer
		buf.Write(fixed(name, 0x10))
		binary.Write(&buf, binary.BigEndian, uint16(len(panes)))
		binary.Write(&buf, binary.BigEndian, uint16(0))
		for _, p := range panes {
			buf.Write(fixed(p, 0x10))
		}
		return buf.Bytes()
	}

	var lyt bytes.Buffer
	lyt.WriteByte(1) // centered
	lyt.Write([]byte{0, 0, 0})
	binary.Write(&lyt, binary.BigEndian, [2]float32{608, 456})

	return resource("RLYT",
		block{"lyt1", lyt.Bytes()},
		block{"txl1", txl.Bytes()},
		block{"mat1", mat1.Bytes()},
		block{"pan1", pane("RootPane", 4, 608, 456)},
		block{"pas1", nil},
		block{"pic1", pic},
		block{"pae1", nil},
		block{"grp1", group("RootGroup")},
		block{"grs1", nil},
		block{"grp1", group("Buttons", "Button")},
		block{"gre1", nil},
	)
}

func animation() []byte {
	// Track: RLPA translate X, Hermite, 0 -> 100 over 30 frames
	var track bytes.Buffer
	track.Write([]byte{0, 0, 2, 0})
	binary.Write(&track, binary.BigEndian, uint16(2))
	binary.Write(&track, binary.BigEndian, uint16(0))
	binary.Write(&track, binary.BigEndian, uint32(0x0C))
	binary.Write(&track, binary.BigEndian, [3]float32{0, 0, 0})
	binary.Write(&track, binary.BigEndian, [3]float32{30, 100, 0})

	var kind bytes.Buffer
	kind.WriteString("RLPA")
	kind.Write([]byte{1, 0, 0, 0})
	binary.Write(&kind, binary.BigEndian, uint32(0x0C)) // kind-relative track offset
	kind.Write(track.Bytes())

	var binding bytes.Buffer
	binding.Write(fixed("Button", 0x14))
	binding.Write([]byte{1, 0, 0, 0})                      // one kind, pane target
	binary.Write(&binding, binary.BigEndian, uint32(0x1C)) // binding-relative kind offset
	binding.Write(kind.Bytes())

	// Header 0x0C, no texture names, binding table at block offset 0x14
	var pai bytes.Buffer
	binary.Write(&pai, binary.BigEndian, uint16(30)) // duration
	pai.WriteByte(0)                                 // once
	pai.WriteByte(0)
	binary.Write(&pai, binary.BigEndian, uint16(0))    // texture names
	binary.Write(&pai, binary.BigEndian, uint16(1))    // bindings
	binary.Write(&pai, binary.BigEndian, uint32(0x14)) // binding table
	binary.Write(&pai, binary.BigEndian, uint32(0x18)) // block-relative binding offset
	pai.Write(binding.Bytes())

	return resource("RLAN", block{"pai1", pai.Bytes()})
}

func main() {
	if err := os.WriteFile("test.brlyt", layout(), 0644); err != nil {
		panic(err)
	}
	if err := os.WriteFile("test.brlan", animation(), 0644); err != nil {
		panic(err)
	}
}
