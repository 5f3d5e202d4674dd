package project

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/seitarof/gen-priv/internal/matcher"
	"github.com/seitarof/gen-priv/internal/version"
)

var fixtureReleases = []struct {
	checkout string
	version  version.Version
}{
	{"3.22.0", version.MustParse("3.22.0")},
	{"3.22.1", version.MustParse("3.22.1")},
	{"3.24.0", version.MustParse("3.24.0")},
	{"gtk-3-24", version.Unreleased("gtk-3-24", 24, 0)},
}

// checkout replaces dir with the files of release from the archive.
func checkout(t *testing.T, ar *txtar.Archive, release, dir string) {
	t.Helper()
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	prefix := release + "/"
	found := false
	for _, f := range ar.Files {
		name, ok := strings.CutPrefix(f.Name, prefix)
		if !ok {
			continue
		}
		found = true
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	if !found {
		t.Fatalf("fixture has no files for %s", release)
	}
}

func newFixtureProject(t *testing.T) (*Project, *bytes.Buffer) {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", "releases.txtar"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	root := filepath.Join(t.TempDir(), "gtk")
	var logs bytes.Buffer
	proj := New(root, []string{"GdkFoo", "GdkFooImpl"}, WithLogger(log.New(&logs, "", 0)))
	for _, r := range fixtureReleases {
		checkout(t, ar, r.checkout, root)
		if err := proj.Update(r.version); err != nil {
			t.Fatalf("Update(%s) error = %v", r.version, err)
		}
	}
	return proj, &logs
}

func layoutNames(s *Struct) []string {
	names := make([]string, 0, len(s.Versions))
	for _, sv := range s.Versions {
		names = append(names, sv.Name())
	}
	return names
}

func TestUpdate_RecordsEveryRelease(t *testing.T) {
	proj, _ := newFixtureProject(t)

	foo := proj.Struct("GdkFoo")
	if len(foo.Versions) != len(fixtureReleases) {
		t.Fatalf("GdkFoo has %d layouts before Simplify, want %d", len(foo.Versions), len(fixtureReleases))
	}
	if len(foo.Ingested) != len(fixtureReleases) {
		t.Fatalf("GdkFoo ingested %d releases, want %d", len(foo.Ingested), len(fixtureReleases))
	}

	impl := proj.Struct("GdkFooImpl")
	if got := impl.CodePath(); !strings.HasSuffix(got, filepath.Join("wayland", "gdkfooimpl-wayland.c")) {
		t.Fatalf("GdkFooImpl CodePath() = %s, want the moved file", got)
	}

	wantCopyrights := []string{
		"Copyright (C) 2010 Alice Example",
	}
	if got := foo.Copyrights(); strings.Join(got, "|") != strings.Join(wantCopyrights, "|") {
		t.Fatalf("GdkFoo Copyrights() = %q, want %q", got, wantCopyrights)
	}
	wantImpl := []string{
		"Copyright (C) 2011 Bob Example",
		"Copyright (C) 2014 Carol Example",
	}
	if got := impl.Copyrights(); strings.Join(got, "|") != strings.Join(wantImpl, "|") {
		t.Fatalf("GdkFooImpl Copyrights() = %q, want %q", got, wantImpl)
	}
}

func TestSimplify_MergesIdenticalLayouts(t *testing.T) {
	proj, logs := newFixtureProject(t)

	dropped := proj.Simplify()
	// GdkFooImpl: 3.22.1 and 3.24.1 merge. GdkFoo: 3.22.1 merges one round later.
	if dropped != 3 {
		t.Fatalf("Simplify() = %d, want 3", dropped)
	}
	if !strings.Contains(logs.String(), "round 3") {
		t.Fatalf("cascading merge should take three rounds, log:\n%s", logs.String())
	}

	impl := proj.Struct("GdkFooImpl")
	if got, want := strings.Join(layoutNames(impl), " "), "_GdkFooImpl_v3_22_0 _GdkFooImpl_v3_24_0"; got != want {
		t.Fatalf("GdkFooImpl layouts = %s, want %s", got, want)
	}
	if got, want := impl.Versions[1].RangeString(), "v3.24.0 - v3.24.1 (unreleased)"; got != want {
		t.Fatalf("RangeString() = %q, want %q", got, want)
	}

	foo := proj.Struct("GdkFoo")
	if got, want := strings.Join(layoutNames(foo), " "), "_GdkFoo_v3_22_0 _GdkFoo_v3_24_0 _GdkFoo_v3_24_1"; got != want {
		t.Fatalf("GdkFoo layouts = %s, want %s", got, want)
	}
	if got, want := foo.Versions[0].RangeString(), "v3.22.0 - v3.22.1"; got != want {
		t.Fatalf("RangeString() = %q, want %q", got, want)
	}

	want := "struct _GdkFooImpl_v3_22_0 parent_instance;\nGdkWindow *window;\ngint count;\n"
	if got := proj.Printer().Node(foo.Versions[0].AST); got != want {
		t.Fatalf("layout 0 = %q, want %q", got, want)
	}
	if got := proj.Printer().Node(foo.Versions[1].AST); !strings.HasPrefix(got, "struct _GdkFooImpl_v3_24_0 parent_instance;\n") {
		t.Fatalf("layout 1 should embed the 3.24 impl, got %q", got)
	}

	if again := proj.Simplify(); again != 0 {
		t.Fatalf("second Simplify() = %d, want 0", again)
	}
}

func TestSimplify_RangesAreContiguous(t *testing.T) {
	proj, _ := newFixtureProject(t)
	proj.Simplify()

	for _, s := range proj.Structs() {
		if !s.Versions[0].First.Equal(fixtureReleases[0].version) {
			t.Fatalf("%s starts at %s", s.Typedef, s.Versions[0].First)
		}
		if last := s.Versions[len(s.Versions)-1].Last; !last.Equal(fixtureReleases[len(fixtureReleases)-1].version) {
			t.Fatalf("%s ends at %s", s.Typedef, last)
		}
		for i := 1; i < len(s.Versions); i++ {
			prev, cur := s.Versions[i-1], s.Versions[i]
			next := -1
			for j, r := range fixtureReleases {
				if r.version.Equal(prev.Last) {
					next = j + 1
				}
			}
			if next < 0 || next >= len(fixtureReleases) || !fixtureReleases[next].version.Equal(cur.First) {
				t.Fatalf("%s: layout %d ends at %s but layout %d starts at %s", s.Typedef, i-1, prev.Last, i, cur.First)
			}
		}
		for _, r := range fixtureReleases {
			if s.Lookup(r.version) == nil {
				t.Fatalf("%s has no layout for %s", s.Typedef, r.version)
			}
		}
	}
}

func TestSimplify_SetsUpProperties(t *testing.T) {
	proj, logs := newFixtureProject(t)
	proj.Simplify()

	type want struct {
		name      string
		typ       string
		supported []bool
	}
	wants := []want{
		{"parent_instance", "GdkFooImpl", []bool{true, true, true}},
		{"window", "GdkWindow *", []bool{true, true, true}},
		{"foo", "gboolean", []bool{false, true, true}},
		{"count", "guint", []bool{false, false, true}},
		{"point.x", "int", []bool{false, false, true}},
		{"point.y", "int", []bool{false, false, true}},
	}

	foo := proj.Struct("GdkFoo")
	if len(foo.Properties) != len(wants) {
		t.Fatalf("GdkFoo has %d properties, want %d", len(foo.Properties), len(wants))
	}
	for i, w := range wants {
		p := foo.Properties[i]
		if p.Name != w.name {
			t.Fatalf("property %d = %s, want %s", i, p.Name, w.name)
		}
		if got := proj.Printer().Type(p.Type); got != w.typ {
			t.Fatalf("%s type = %q, want %q", p.Name, got, w.typ)
		}
		for id, ok := range w.supported {
			if p.Supported[id] != ok {
				t.Fatalf("%s supported on layout %d = %t, want %t", p.Name, id, p.Supported[id], ok)
			}
		}
	}
	if foo.Properties[3].IDName() != "count" || foo.Properties[4].IDName() != "point_x" {
		t.Fatalf("IDName() = %s, %s", foo.Properties[3].IDName(), foo.Properties[4].IDName())
	}
	if !foo.Properties[0].AllSupported() || foo.Properties[2].AllSupported() {
		t.Fatal("AllSupported() mismatch")
	}
	if !strings.Contains(logs.String(), "gen-priv: warning: property count changes type from gint to guint") {
		t.Fatalf("missing type change warning, log:\n%s", logs.String())
	}
}

func TestUpdate_Errors(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.c")
	b := filepath.Join(root, "sub", "b.c")
	for _, path := range []string{a, b} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte("struct _GdkSeat\n{\n  int a;\n};\n"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	v := version.MustParse("3.22.0")
	err := New(root, []string{"GdkSeat"}).Update(v)
	if !errors.Is(err, matcher.ErrAmbiguous) {
		t.Fatalf("Update() error = %v, want ErrAmbiguous", err)
	}
	if !strings.Contains(err.Error(), a) || !strings.Contains(err.Error(), b) {
		t.Fatalf("error should name both paths: %v", err)
	}

	if err := os.Remove(b); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	proj := New(root, []string{"GdkSeat"})
	if err := proj.Update(v); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := proj.Update(v); err == nil {
		t.Fatal("Update() with a repeated release should fail")
	}
	proj.Simplify()
	if err := proj.Update(version.MustParse("3.22.1")); err == nil {
		t.Fatal("Update() after Simplify should fail")
	}

	err = New(root, []string{"GdkMissing"}).Update(v)
	if !errors.Is(err, matcher.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ResolvesRegardlessOfOrder(t *testing.T) {
	root := t.TempDir()
	src := "struct _GdkOuter\n{\n  GdkInner inner;\n  struct _GdkInner *next;\n};\n\nstruct _GdkInner\n{\n  int a;\n};\n"
	if err := os.WriteFile(filepath.Join(root, "gdk.c"), []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	proj := New(root, []string{"GdkOuter", "GdkInner"})
	if err := proj.Update(version.MustParse("3.22.0")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := "struct _GdkInner_v3_22_0 inner;\nstruct _GdkInner *next;\n"
	if got := proj.Printer().Node(proj.Struct("GdkOuter").Versions[0].AST); got != want {
		t.Fatalf("Node() = %q, want %q", got, want)
	}
}

func TestStructNaming(t *testing.T) {
	s := NewStruct("GdkWindowImplWayland")
	if s.StructName != "_GdkWindowImplWayland" {
		t.Fatalf("StructName = %s", s.StructName)
	}
	if got := s.SnakeName(); got != "gdk_window_impl_wayland" {
		t.Fatalf("SnakeName() = %s", got)
	}
	if got := s.HeaderName(); got != "gdk_window_impl_wayland_priv.h" {
		t.Fatalf("HeaderName() = %s", got)
	}
	if got := s.GuardName(); got != "GDK_WINDOW_IMPL_WAYLAND_PRIV_H" {
		t.Fatalf("GuardName() = %s", got)
	}
	if got := s.FuncPrefix(); got != "gdk_window_impl_wayland_priv_" {
		t.Fatalf("FuncPrefix() = %s", got)
	}
}
