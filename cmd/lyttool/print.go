package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/lyt/pkg/arc"
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/layout"
)

func printArchive(w io.Writer, path string, a *arc.Archive) {
	files := a.List()

	extCount := make(map[string]int)
	var totalSize uint64
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		if e, ok := a.Stat(f); ok {
			totalSize += uint64(e.Size)
		}
	}

	fmt.Fprintf(w, "Archive: %s\n", path)
	fmt.Fprintf(w, "Files:   %d\n", len(files))
	fmt.Fprintf(w, "Size:    %.1f KB\n", float64(totalSize)/1024)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})
	for _, s := range stats {
		fmt.Fprintf(w, "  %-10s %d\n", s.ext, s.count)
	}

	fmt.Fprintln(w)
	for _, f := range files {
		e, _ := a.Stat(f)
		fmt.Fprintf(w, "  %8d  %s\n", e.Size, f)
	}
}

func printLayoutInfo(w io.Writer, path string, doc *formats.RLYT) {
	panes := 0
	kinds := make(map[formats.PaneKind]int)
	doc.RootPane.Walk(func(p *formats.Pane, _ int) bool {
		panes++
		kinds[p.Kind]++
		return true
	})
	groups := 0
	doc.RootGroup.Walk(func(*formats.Group, int) { groups++ })

	fmt.Fprintf(w, "Layout:    %s\n", path)
	fmt.Fprintf(w, "Version:   0x%04X\n", doc.Version)
	fmt.Fprintf(w, "Panes:     %d", panes)
	for k := formats.PaneKindPlain; k <= formats.PaneKindWindow; k++ {
		if kinds[k] > 0 {
			fmt.Fprintf(w, " %s=%d", k, kinds[k])
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Groups:    %d\n", groups)
	fmt.Fprintf(w, "Materials: %d\n", len(doc.Materials))
	fmt.Fprintf(w, "Textures:  %d\n", len(doc.TextureBindings))
	for _, t := range doc.TextureBindings {
		fmt.Fprintf(w, "  %s\n", t.Filename)
	}
	fmt.Fprintf(w, "Fonts:     %d\n", len(doc.FontBindings))
	for _, f := range doc.FontBindings {
		fmt.Fprintf(w, "  %s\n", f.Filename)
	}
}

func printAnimationInfo(w io.Writer, path string, res *formats.RLAN) {
	tracks := 0
	for _, a := range res.Animations {
		tracks += len(a.Tracks)
	}
	fmt.Fprintf(w, "Animation: %s\n", path)
	fmt.Fprintf(w, "Version:   0x%04X\n", res.Version)
	fmt.Fprintf(w, "Bindings:  %d\n", len(res.Animations))
	fmt.Fprintf(w, "Tracks:    %d\n", tracks)
	if len(res.Animations) > 0 {
		a := res.Animations[0]
		fmt.Fprintf(w, "Duration:  %d frames (%s)\n", a.Duration, a.LoopMode)
	}
	if len(res.TextureNames) > 0 {
		fmt.Fprintf(w, "Textures:  %s\n", strings.Join(res.TextureNames, ", "))
	}
}

func printTree(w io.Writer, doc *formats.RLYT) {
	fmt.Fprintln(w, "Panes:")
	doc.RootPane.Walk(func(p *formats.Pane, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		flags := ""
		if !p.Flags.Visible() {
			flags += " hidden"
		}
		if p.Flags.PropagateAlpha() {
			flags += " propagate-alpha"
		}
		fmt.Fprintf(w, "%s%s [%s] %gx%g at (%g, %g, %g) alpha %.2f%s",
			indent, p.Name, p.Kind, p.Width, p.Height,
			p.Translation.X, p.Translation.Y, p.Translation.Z, p.Alpha, flags)
		if p.Picture != nil {
			fmt.Fprintf(w, " mat %d", p.Picture.MaterialIndex)
		}
		if p.Textbox != nil {
			fmt.Fprintf(w, " text %q", p.Textbox.Text)
		}
		fmt.Fprintln(w)
		return true
	})

	fmt.Fprintln(w, "Groups:")
	doc.RootGroup.Walk(func(g *formats.Group, depth int) {
		indent := strings.Repeat("  ", depth+1)
		if len(g.Panes) == 0 {
			fmt.Fprintf(w, "%s%s\n", indent, g.Name)
			return
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, g.Name, strings.Join(g.Panes, ", "))
	})
}

func printMaterials(w io.Writer, doc *formats.RLYT) {
	for i, m := range doc.Materials {
		fmt.Fprintf(w, "[%d] %s\n", i, m.Name)
		if m.VertexColorEnabled {
			fmt.Fprintln(w, "    vertex colors")
		}
		for j, s := range m.Samplers {
			name := "?"
			if int(s.TextureIndex) < len(doc.TextureBindings) {
				name = doc.TextureBindings[s.TextureIndex].Filename
			}
			fmt.Fprintf(w, "    sampler %d: %s wrap %d/%d\n", j, name, s.WrapS, s.WrapT)
		}
		for j, t := range m.TexMatrices {
			fmt.Fprintf(w, "    texmtx %d: t(%g, %g) r %g s(%g, %g)\n",
				j, t.TranslationS, t.TranslationT, t.Rotation, t.ScaleS, t.ScaleT)
		}
		if sh := m.Shader; sh != nil {
			fmt.Fprintf(w, "    texgens %d, tev stages %d, indirect stages %d\n",
				len(sh.TexGens), len(sh.TevStages), len(sh.IndTexStages))
		}
	}
}

func printAnims(w io.Writer, res *formats.RLAN) {
	for _, a := range res.Animations {
		fmt.Fprintf(w, "%s %q: %d frames, %s\n", a.TargetKind, a.TargetName, a.Duration, a.LoopMode)
		for _, t := range a.Tracks {
			first, last := t.Frames[0], t.Frames[len(t.Frames)-1]
			fmt.Fprintf(w, "  %-22s sub %d %-8s %d keys  %g@%g .. %g@%g\n",
				t.Type, t.SubIndex, t.Curve, len(t.Frames),
				first.Value, first.Frame, last.Value, last.Frame)
		}
	}
}

func printDrawList(w io.Writer, list *layout.DrawList) {
	fmt.Fprintf(w, "Draws:  %d\n", list.Len())
	for _, c := range list.Commands {
		resolved := 0
		for _, t := range c.Params.Textures {
			if t.Resolved {
				resolved++
			}
		}
		tl := c.WorldMatrix.TransformPoint(c.Vertices[0].Position)
		br := c.WorldMatrix.TransformPoint(c.Vertices[2].Position)
		fmt.Fprintf(w, "  %-16s %-16s (%.1f, %.1f)-(%.1f, %.1f) alpha %.3f textures %d/%d\n",
			c.Pane, c.Material.Name, tl.X, tl.Y, br.X, br.Y,
			c.Vertices[0].Color.A, resolved, len(c.Params.Textures))
	}
}
