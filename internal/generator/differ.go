package generator

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/seitarof/gen-priv/internal/cdecl"
)

// Differ compares two layout definitions. It returns the changed lines as C
// comments, "// - " for removed and "// + " for added lines, in the order a
// normal-format diff lists them.
type Differ interface {
	Diff(before, after string) ([]string, error)
}

type lineDiffer struct{}

type commandDiffer struct {
	command string
}

// NewDiffer returns command when set, else the diff program on PATH. Without
// one it falls back to the in-process differ, whose hunks can be aligned
// differently from diff(1) when lines repeat or move.
func NewDiffer(command string, logger *log.Logger) Differ {
	if command != "" {
		return NewCommandDiffer(command)
	}
	if path, err := exec.LookPath("diff"); err == nil {
		return NewCommandDiffer(path)
	}
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("gen-priv: warning: diff not found on PATH, using the built-in differ")
	return NewLineDiffer()
}

// NewLineDiffer creates an in-process line differ.
func NewLineDiffer() Differ {
	return lineDiffer{}
}

// NewCommandDiffer runs an external diff program, which must print a
// normal-format diff of its two file arguments.
func NewCommandDiffer(command string) Differ {
	return commandDiffer{command: command}
}

func (lineDiffer) Diff(before, after string) ([]string, error) {
	a, b := cdecl.SplitLines(before), cdecl.SplitLines(after)
	var out []string
	for _, op := range difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes() {
		if op.Tag == 'r' || op.Tag == 'd' {
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "// - "+line)
			}
		}
		if op.Tag == 'r' || op.Tag == 'i' {
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "// + "+line)
			}
		}
	}
	return out, nil
}

func (d commandDiffer) Diff(before, after string) ([]string, error) {
	oldPath, err := writeTemp(before)
	if err != nil {
		return nil, err
	}
	defer os.Remove(oldPath)
	newPath, err := writeTemp(after)
	if err != nil {
		return nil, err
	}
	defer os.Remove(newPath)

	cmd := exec.Command(d.command, oldPath, newPath)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	var exitErr *exec.ExitError
	// Exit status 1 only means the inputs differ.
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		return nil, fmt.Errorf("%s: %w: %s", d.command, err, strings.TrimSpace(stderr.String()))
	}

	var out []string
	sc := bufio.NewScanner(strings.NewReader(string(stdout)))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "<"):
			out = append(out, "// -"+line[1:])
		case strings.HasPrefix(line, ">"):
			out = append(out, "// +"+line[1:])
		}
	}
	return out, sc.Err()
}

func writeTemp(text string) (string, error) {
	f, err := os.CreateTemp("", "gen-priv-diff-*")
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("diff: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("diff: %w", err)
	}
	return f.Name(), nil
}
