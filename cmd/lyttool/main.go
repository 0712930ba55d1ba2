// lyttool is a CLI utility for inspecting and playing layout resources.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/lyt/internal/assets"
	"github.com/Faultbox/lyt/internal/config"
	"github.com/Faultbox/lyt/internal/logger"
	"github.com/Faultbox/lyt/pkg/arc"
	"github.com/Faultbox/lyt/pkg/encoding"
	"github.com/Faultbox/lyt/pkg/formats"
	"github.com/Faultbox/lyt/pkg/layout"
	"github.com/Faultbox/lyt/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "tree":
		err = cmdTree(args)
	case "materials", "mat":
		err = cmdMaterials(args)
	case "anims", "anim":
		err = cmdAnims(args)
	case "play":
		err = cmdPlay(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lyttool - layout and animation resource utility

Usage:
  lyttool <command> [options] [files]

Commands:
  info <file>                        Show resource or archive information
  tree <file.brlyt>                  Print the pane and group hierarchy
  materials <file.brlyt>             Print materials and their shader stages
  anims <file.brlan>                 Print animation bindings and tracks
  play <file.brlyt> <file.brlan>...  Run animations and print the draw list

Options (all commands):
  -config <path>   Config file (default ./lyt.yaml or the user config dir)
  -arc <file.arc>  Read resources from a U8 archive
  -debug           Enable debug logging
  -log-file <path> Also write logs to a rotated file
  -frames <n>      Updates to simulate (play)
  -step <f>        Frames advanced per update (play)
  -width, -height  View size (play)

Examples:
  lyttool info menu.arc
  lyttool tree -arc menu.arc blyt/menu.brlyt
  lyttool play blyt/menu.brlyt anim/menu_in.brlan -frames 120`)
}

// setup parses the shared flags for a command, loads the config and
// initializes logging. It returns the config and the positional arguments.
func setup(name string, args []string) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(interleave(fs, args))

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, err
	}
	logger.Debug("config loaded",
		zap.String("command", name),
		zap.String("archive", cfg.Data.Archive),
		zap.String("level", cfg.Logging.Level))
	return cfg, fs.Args(), nil
}

// interleave moves flags after positional arguments to the front so
// "lyttool tree menu.brlyt -debug" works like the flag-first form.
func interleave(fs *flag.FlagSet, args []string) []string {
	var flagArgs, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flagArgs = append(flagArgs, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil {
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				continue
			}
			if i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		}
	}
	return append(flagArgs, positional...)
}

// openAssets creates an asset manager over the working directory and, when
// configured, the archive. The archive takes priority.
func openAssets(cfg *config.Config) (*assets.Manager, error) {
	m := assets.NewManager(logger.Named("assets"))
	m.AddDir(".")
	if cfg.Data.Archive != "" {
		if err := m.AddArchive(cfg.Data.Archive); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// layoutArg returns the layout path from the arguments or the config.
func layoutArg(cfg *config.Config, args []string) (string, []string, error) {
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	if cfg.Data.Layout != "" {
		return cfg.Data.Layout, nil, nil
	}
	return "", nil, fmt.Errorf("no layout given (pass a .brlyt path or set data.layout)")
}

func cmdInfo(args []string) error {
	cfg, args, err := setup("info", args)
	if err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: lyttool info <file>")
	}
	path := args[0]

	if strings.EqualFold(filepath.Ext(path), ".arc") && cfg.Data.Archive == "" {
		a, err := arc.Open(path)
		if err != nil {
			return err
		}
		defer a.Close()
		printArchive(os.Stdout, path, a)
		return nil
	}

	m, err := openAssets(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	data, err := m.Load(path)
	if err != nil {
		return err
	}
	switch magic := encoding.NewReader(data).Fourcc(0); magic {
	case formats.RLYTMagic:
		doc, err := formats.ParseBRLYT(data)
		if err != nil {
			return err
		}
		printLayoutInfo(os.Stdout, path, doc)
	case formats.RLANMagic:
		res, err := formats.ParseBRLAN(data)
		if err != nil {
			return err
		}
		printAnimationInfo(os.Stdout, path, res)
	default:
		return fmt.Errorf("%s: unsupported resource %q", path, magic)
	}
	return nil
}

func cmdTree(args []string) error {
	cfg, args, err := setup("tree", args)
	if err != nil {
		return err
	}
	path, _, err := layoutArg(cfg, args)
	if err != nil {
		return err
	}

	m, err := openAssets(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	doc, err := m.Layout(path)
	if err != nil {
		return err
	}
	printTree(os.Stdout, doc)
	return nil
}

func cmdMaterials(args []string) error {
	cfg, args, err := setup("materials", args)
	if err != nil {
		return err
	}
	path, _, err := layoutArg(cfg, args)
	if err != nil {
		return err
	}

	m, err := openAssets(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	doc, err := m.Layout(path)
	if err != nil {
		return err
	}
	printMaterials(os.Stdout, doc)
	return nil
}

func cmdAnims(args []string) error {
	cfg, args, err := setup("anims", args)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = cfg.Data.Animations
	}
	if len(paths) == 0 {
		return fmt.Errorf("usage: lyttool anims <file.brlan>...")
	}

	m, err := openAssets(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	for _, p := range paths {
		res, err := m.Animation(p)
		if err != nil {
			return err
		}
		fmt.Printf("== %s\n", p)
		printAnims(os.Stdout, res)
	}
	return nil
}

func cmdPlay(args []string) error {
	cfg, args, err := setup("play", args)
	if err != nil {
		return err
	}
	path, animPaths, err := layoutArg(cfg, args)
	if err != nil {
		return err
	}
	if len(animPaths) == 0 {
		animPaths = cfg.Data.Animations
	}

	m, err := openAssets(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	doc, err := m.Layout(path)
	if err != nil {
		return err
	}

	l, err := layout.New(doc, m.Textures(path, doc), layout.WithLogger(logger.Named("layout")))
	if err != nil {
		return err
	}

	var anims []*layout.Animation
	for _, p := range animPaths {
		res, err := m.Animation(p)
		if err != nil {
			return err
		}
		a, err := layout.NewAnimation(l, res)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		logger.Info("animation loaded", zap.String("path", p), zap.Float32("duration", a.Duration()))
		anims = append(anims, a)
	}

	w, h := cfg.View.Width, cfg.View.Height
	info := layout.NewDrawInfo()
	info.ViewMatrix = math.Ortho(-w/2, w/2, -h/2, h/2, -1000, 1000)

	var list layout.DrawList
	for frame := 0; frame < cfg.Playback.Frames; frame++ {
		done := len(anims) > 0
		for _, a := range anims {
			a.Update(cfg.Playback.Step)
			done = done && a.IsOver()
		}
		list.Reset()
		l.Draw(info, &list)
		if done {
			logger.Debug("all animations finished", zap.Int("update", frame+1))
			break
		}
	}

	var cursor float32
	if len(anims) > 0 {
		cursor = anims[0].CurrentFrame()
	}
	fmt.Printf("Layout: %s\n", path)
	fmt.Printf("Frame:  %.1f (%.2fs at %.0f fps)\n", cursor, cursor/cfg.Playback.FrameRate, cfg.Playback.FrameRate)
	printDrawList(os.Stdout, &list)
	return nil
}
