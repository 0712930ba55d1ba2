//go:build ignore

// This program generates a small test U8 archive for unit tests.
// Run with: go run generate.go
//
// If ../../formats/testdata/test.brlyt and test.brlan exist they are packed
// as is, otherwise placeholder contents are used.
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

func load(path, fallback string) []byte {
	if data, err := os.ReadFile(path); err == nil {
		return data
	}
	return []byte(fallback)
}

func main() {
	files := []struct {
		dir, name string
		content   []byte
	}{
		{"blyt", "test.brlyt", load("../../formats/testdata/test.brlyt", "RLYT")},
		{"anim", "test.brlan", load("../../formats/testdata/test.brlan", "RLAN")},
	}

	// Nodes: root, ".", then each directory followed by its file
	count := 2 + 2*len(files)

	var names bytes.Buffer
	addName := func(s string) uint32 {
		offs := uint32(names.Len())
		names.WriteString(s)
		names.WriteByte(0)
		return offs
	}

	type node struct{ a, b, c uint32 }
	nodes := []node{
		{1<<24 | addName(""), 0, uint32(count)},
		{1<<24 | addName("."), 0, uint32(count)},
	}
	fileNodes := make([]int, len(files))
	for i, f := range files {
		dirIdx := len(nodes)
		nodes = append(nodes, node{1<<24 | addName(f.dir), 1, uint32(dirIdx + 2)})
		fileNodes[i] = len(nodes)
		nodes = append(nodes, node{addName(f.name), 0, uint32(len(f.content))})
	}

	nodesSize := len(nodes)*12 + names.Len()
	dataOffset := (0x20 + nodesSize + 0x1F) &^ 0x1F

	var data bytes.Buffer
	for i, f := range files {
		for (dataOffset+data.Len())%0x20 != 0 {
			data.WriteByte(0)
		}
		nodes[fileNodes[i]].b = uint32(dataOffset + data.Len())
		data.Write(f.content)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0x55AA382D))
	binary.Write(&buf, binary.BigEndian, uint32(0x20))
	binary.Write(&buf, binary.BigEndian, uint32(nodesSize))
	binary.Write(&buf, binary.BigEndian, uint32(dataOffset))
	buf.Write(make([]byte, 16))
	for _, n := range nodes {
		binary.Write(&buf, binary.BigEndian, n.a)
		binary.Write(&buf, binary.BigEndian, n.b)
		binary.Write(&buf, binary.BigEndian, n.c)
	}
	buf.Write(names.Bytes())
	for buf.Len() < dataOffset {
		buf.WriteByte(0)
	}
	buf.Write(data.Bytes())

	if err := os.WriteFile("test.arc", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}
