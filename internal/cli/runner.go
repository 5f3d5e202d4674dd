package cli

import (
	"fmt"
	"log"

	"github.com/seitarof/gen-priv/internal/generator"
	"github.com/seitarof/gen-priv/internal/project"
	"github.com/seitarof/gen-priv/internal/version"
)

// Source is the working tree the releases are checked out into.
type Source interface {
	Dir() string
	Tags() ([]string, error)
	Branches() ([]string, error)
	Checkout(name string) error
}

// Runner orchestrates source/project/generator layers.
type Runner interface {
	Run(cfg *Config) error
}

type runnerImpl struct {
	source    Source
	generator generator.Generator
	logger    *log.Logger
}

// NewRunner creates a default runner implementation.
func NewRunner(src Source, g generator.Generator, logger *log.Logger) Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &runnerImpl{source: src, generator: g, logger: logger}
}

// Run checks out every supported release in order, reads the tracked structs
// from each, then merges identical layouts and writes the headers.
func (r *runnerImpl) Run(cfg *Config) error {
	rng, err := version.NewRange(cfg.MinVersion, cfg.MaxVersion, cfg.Denylist...)
	if err != nil {
		return fmt.Errorf("version range: %w", err)
	}
	tags, err := r.source.Tags()
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	branches, err := r.source.Branches()
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	versions := version.SupportedVersions(tags, branches, rng, r.logger)
	if len(versions) == 0 {
		return fmt.Errorf("no supported versions between %s and %s", rng.Min(), rng.Max())
	}

	proj := project.New(r.source.Dir(), cfg.Structs, project.WithLogger(r.logger))
	for i, v := range versions {
		r.logger.Printf("gen-priv: [%.1f%%] Checking out %s", progress(i+1, len(versions)), v.CheckoutName())
		if err := r.source.Checkout(v.CheckoutName()); err != nil {
			return fmt.Errorf("checkout %s: %w", v.CheckoutName(), err)
		}
		if err := proj.Update(v); err != nil {
			return err
		}
	}

	proj.Simplify()
	return r.generator.Generate(cfg, proj)
}

// progress is done/total as a percentage truncated to one decimal.
func progress(done, total int) float64 {
	return float64(done*1000/total) / 10
}
