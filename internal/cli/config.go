package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/gen-priv/internal/version"
)

// DefaultStructs are the tracked typedefs when no list is configured.
var DefaultStructs = []string{
	"GdkWindow",
	"GdkWindowImplWayland",
	"GdkWindowImplWaylandClass",
	"GdkWindowImpl",
	"GdkWindowImplClass",
	"GdkWaylandSeat",
	"GdkWaylandPointerData",
	"GdkWaylandPointerFrameData",
	"GdkWaylandTouchData",
	"GdkWaylandTabletData",
}

// Config stores options for a single generation run. The yaml keys are the
// ones accepted in a --config file.
type Config struct {
	Structs     []string `yaml:"structs"`
	MinVersion  string   `yaml:"min_version"`
	MaxVersion  string   `yaml:"max_version"`
	Denylist    []string `yaml:"denylist"`
	RepoURL     string   `yaml:"repo_url"`
	RepoDir     string   `yaml:"repo_dir"`
	OutDir      string   `yaml:"output_dir"`
	ProjectName string   `yaml:"project_name"`
	Attribution string   `yaml:"attribution"`
	DiffCommand string   `yaml:"diff_command"`

	ConfigFile  string `yaml:"-"`
	NoFetch     bool   `yaml:"-"`
	ShowVersion bool   `yaml:"-"`
}

// DefaultConfig returns the configuration used for the GTK 3 Wayland headers.
func DefaultConfig() *Config {
	return &Config{
		Structs:     append([]string(nil), DefaultStructs...),
		MinVersion:  version.DefaultMin,
		MaxVersion:  version.DefaultMax,
		Denylist:    []string{version.DefaultDenied},
		RepoURL:     "https://gitlab.gnome.org/GNOME/gtk.git",
		RepoDir:     "build/gtk",
		OutDir:      "h",
		ProjectName: "gtk-layer-shell",
		Attribution: "gen-priv",
	}
}

// OutputDir returns destination directory for generator layer.
func (c *Config) OutputDir() string {
	return c.OutDir
}

// LoadFile overlays the keys present in a YAML file onto c. Unknown keys are
// rejected; an empty file changes nothing.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}
