package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

var typedefRe = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// ParseArgs parses command line arguments into Config. Values come from the
// defaults, then the --config file, then explicitly set flags.
func ParseArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()
	flags := &Config{}
	var structsRaw, denylistRaw string

	fs := pflag.NewFlagSet("gen-priv", pflag.ContinueOnError)
	fs.StringVarP(&cfg.ConfigFile, "config", "c", "", "YAML config file")
	fs.StringVarP(&structsRaw, "structs", "s", "", "comma-separated typedef names to track")
	fs.StringVar(&flags.MinVersion, "min-version", cfg.MinVersion, "oldest supported release")
	fs.StringVar(&flags.MaxVersion, "max-version", cfg.MaxVersion, "newest supported release")
	fs.StringVar(&denylistRaw, "denylist", strings.Join(cfg.Denylist, ","), "comma-separated releases never supported")
	fs.StringVar(&flags.RepoURL, "repo-url", cfg.RepoURL, "git URL of the toolkit sources")
	fs.StringVar(&flags.RepoDir, "repo-dir", cfg.RepoDir, "local clone of the toolkit sources")
	fs.StringVarP(&flags.OutDir, "output-dir", "o", cfg.OutDir, "directory the headers are written to")
	fs.StringVar(&flags.ProjectName, "project-name", cfg.ProjectName, "project named in the header comment")
	fs.StringVar(&flags.Attribution, "attribution", cfg.Attribution, "copyright holder of the generated code")
	fs.StringVar(&flags.DiffCommand, "diff-command", "", "external diff program for layout diffs")
	fs.BoolVar(&cfg.NoFetch, "no-fetch", false, "use the existing clone without fetching")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if fs.Changed("structs") {
		cfg.Structs = splitCommaList(structsRaw)
	}
	if fs.Changed("denylist") {
		cfg.Denylist = splitCommaList(denylistRaw)
	}
	overrides := map[string]struct{ dst, src *string }{
		"min-version":  {&cfg.MinVersion, &flags.MinVersion},
		"max-version":  {&cfg.MaxVersion, &flags.MaxVersion},
		"repo-url":     {&cfg.RepoURL, &flags.RepoURL},
		"repo-dir":     {&cfg.RepoDir, &flags.RepoDir},
		"output-dir":   {&cfg.OutDir, &flags.OutDir},
		"project-name": {&cfg.ProjectName, &flags.ProjectName},
		"attribution":  {&cfg.Attribution, &flags.Attribution},
		"diff-command": {&cfg.DiffCommand, &flags.DiffCommand},
	}
	for name, o := range overrides {
		if fs.Changed(name) {
			*o.dst = *o.src
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Structs) == 0 {
		return fmt.Errorf("--structs must name at least one typedef")
	}
	seen := map[string]bool{}
	for _, s := range cfg.Structs {
		if !typedefRe.MatchString(s) {
			return fmt.Errorf("invalid typedef name %q", s)
		}
		if seen[s] {
			return fmt.Errorf("typedef %s listed twice", s)
		}
		seen[s] = true
	}
	if strings.TrimSpace(cfg.RepoDir) == "" {
		return fmt.Errorf("--repo-dir is required")
	}
	if strings.TrimSpace(cfg.OutDir) == "" {
		return fmt.Errorf("--output-dir is required")
	}
	if strings.TrimSpace(cfg.RepoURL) == "" && !cfg.NoFetch {
		return fmt.Errorf("--repo-url is required unless --no-fetch is set")
	}
	return nil
}

func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
