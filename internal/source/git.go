// Package source drives the git working tree the toolkit sources are read
// from.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// ErrCommand is returned when a git invocation exits unsuccessfully.
var ErrCommand = errors.New("git command failed")

// Repo is a local clone whose working tree is switched between releases in
// place.
type Repo struct {
	dir    string
	git    string
	logger *log.Logger
}

// Open clones url into dir when dir does not exist yet, and fetches otherwise.
// With fetch false an existing clone is used as is.
func Open(url, dir string, fetch bool, logger *log.Logger) (*Repo, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Repo{dir: dir, git: "git", logger: logger}

	_, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Printf("gen-priv: cloning %s into %s", url, dir)
		if _, err := r.run("", "clone", url, dir); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("repo dir: %w", err)
	case fetch:
		logger.Printf("gen-priv: fetching %s", dir)
		if _, err := r.run(dir, "fetch"); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Dir is the working tree root.
func (r *Repo) Dir() string { return r.dir }

// Tags lists every tag of the clone.
func (r *Repo) Tags() ([]string, error) {
	out, err := r.run(r.dir, "tag", "-l")
	if err != nil {
		return nil, err
	}
	tags := splitLines(out)
	r.logger.Printf("gen-priv: found %d git tags", len(tags))
	return tags, nil
}

// Branches lists the remote branches with the remote name stripped.
func (r *Repo) Branches() ([]string, error) {
	out, err := r.run(r.dir, "branch", "-r")
	if err != nil {
		return nil, err
	}
	branches := parseBranches(out)
	r.logger.Printf("gen-priv: found %d git branches", len(branches))
	return branches, nil
}

// Checkout switches the working tree to a tag or branch.
func (r *Repo) Checkout(name string) error {
	_, err := r.run(r.dir, "checkout", "--quiet", name)
	return err
}

func (r *Repo) run(dir string, args ...string) (string, error) {
	cmd := exec.Command(r.git, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: git %s: %v: %s", ErrCommand, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseBranches keeps the last path element of each "git branch -r" line, so
// "origin/gtk-3-24" becomes "gtk-3-24". Symbolic refs are skipped.
func parseBranches(out string) []string {
	var branches []string
	for _, line := range splitLines(out) {
		if strings.Contains(line, " -> ") {
			continue
		}
		if i := strings.LastIndex(line, "/"); i >= 0 {
			line = line[i+1:]
		}
		branches = append(branches, line)
	}
	return branches
}
