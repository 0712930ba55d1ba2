package config

import "flag"

// Flags are the command-line overrides shared by every lyttool command.
type Flags struct {
	Config  *string
	Debug   *bool
	LogFile *string
	Archive *string
	Frames  *int
	Step    *float64
	Width   *float64
	Height  *float64
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:  fs.String("config", "", "Path to config file"),
		Debug:   fs.Bool("debug", false, "Enable debug logging"),
		LogFile: fs.String("log-file", "", "Also write logs to this file"),
		Archive: fs.String("arc", "", "Read resources from this U8 archive"),
		Frames:  fs.Int("frames", 0, "Number of updates to simulate"),
		Step:    fs.Float64("step", 0, "Frames advanced per update"),
		Width:   fs.Float64("width", 0, "View width"),
		Height:  fs.Float64("height", 0, "View height"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// apply applies flag overrides to the config. Zero values leave it untouched.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.Archive != "" {
		cfg.Data.Archive = *f.Archive
	}
	if *f.Frames > 0 {
		cfg.Playback.Frames = *f.Frames
	}
	if *f.Step > 0 {
		cfg.Playback.Step = float32(*f.Step)
	}
	if *f.Width > 0 {
		cfg.View.Width = float32(*f.Width)
	}
	if *f.Height > 0 {
		cfg.View.Height = float32(*f.Height)
	}
}
