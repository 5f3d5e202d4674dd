package version

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		tag   string
		ok    bool
		minor int
		micro int
	}{
		{tag: "3.24.5", ok: true, minor: 24, micro: 5},
		{tag: "3.22.0", ok: true, minor: 22, micro: 0},
		{tag: "4.0.0"},
		{tag: "3.24"},
		{tag: "v3.24.5"},
		{tag: "3.24.5-rc1"},
		{tag: "gtk-3-24"},
		{tag: "GTK_3_24_5"},
	}
	for _, tt := range tests {
		v, ok := Parse(tt.tag)
		if ok != tt.ok {
			t.Fatalf("Parse(%q) ok = %v, want %v", tt.tag, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if v.Minor() != tt.minor || v.Micro() != tt.micro {
			t.Fatalf("Parse(%q) = %d.%d, want %d.%d", tt.tag, v.Minor(), v.Micro(), tt.minor, tt.micro)
		}
		if !v.Released() || v.CheckoutName() != tt.tag {
			t.Fatalf("Parse(%q) = %#v, want released tag", tt.tag, v)
		}
	}
}

func TestVersion_Formatting(t *testing.T) {
	v := MustParse("3.24.5")
	if got := v.String(); got != "v3.24.5" {
		t.Fatalf("String() = %q", got)
	}
	if got := v.CID(); got != "v3_24_5" {
		t.Fatalf("CID() = %q", got)
	}
	if got := v.Combo(); got != 24005 {
		t.Fatalf("Combo() = %d", got)
	}

	u := Unreleased("gtk-3-24", 24, 35)
	if got := u.String(); got != "v3.24.36 (unreleased)" {
		t.Fatalf("String() = %q", got)
	}
	if u.Released() {
		t.Fatal("branch tip should be unreleased")
	}
}

func TestCompare_IgnoresReleaseFlagAndName(t *testing.T) {
	a := New("3.24.5", 24, 5, true)
	b := New("gtk-3-24", 24, 5, false)
	if !a.Equal(b) {
		t.Fatal("versions with the same ordinals should be equal")
	}
	if !MustParse("3.22.30").Less(MustParse("3.24.0")) {
		t.Fatal("3.22.30 should sort before 3.24.0")
	}
	if !MustParse("3.24.2").Less(MustParse("3.24.10")) {
		t.Fatal("micro should compare numerically")
	}
}

func TestRange_IsSupported(t *testing.T) {
	r := DefaultRange()
	tests := []struct {
		v    Version
		want bool
	}{
		{MustParse("3.22.0"), true},
		{MustParse("3.20.10"), false},
		{MustParse("3.24.19"), false},
		{MustParse("3.24.20"), true},
		{MustParse("3.70.0"), true},
		{MustParse("3.89.1"), false},
		{Unreleased("gtk-3-24", 24, 35), true},
	}
	for _, tt := range tests {
		if got := r.IsSupported(tt.v); got != tt.want {
			t.Fatalf("IsSupported(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNewRange_RejectsInvalidBounds(t *testing.T) {
	if _, err := NewRange("3.22", "3.70.0"); err == nil {
		t.Fatal("expected error for malformed minimum")
	}
	if _, err := NewRange("3.24.0", "3.22.0"); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, err := NewRange("3.22.0", "3.70.0", "nope"); err == nil {
		t.Fatal("expected error for malformed denied version")
	}
}

func TestParseBranch(t *testing.T) {
	if minor, ok := ParseBranch("gtk-3-24"); !ok || minor != 24 {
		t.Fatalf("ParseBranch(gtk-3-24) = %d, %v", minor, ok)
	}
	for _, b := range []string{"master", "gtk-4-0", "gtk-3-24-wayland"} {
		if _, ok := ParseBranch(b); ok {
			t.Fatalf("ParseBranch(%q) should fail", b)
		}
	}
}

func TestSupportedVersions(t *testing.T) {
	tags := []string{"3.24.1", "3.22.0", "3.24.0", "3.24.19", "3.20.0", "4.0.0", "random"}
	branches := []string{"gtk-3-24", "gtk-3-22", "gtk-3-23", "master"}
	logger := log.New(io.Discard, "", 0)

	got := SupportedVersions(tags, branches, DefaultRange(), logger)
	want := []string{
		"v3.22.0",
		"v3.22.1 (unreleased)",
		"v3.23.0 (unreleased)",
		"v3.24.0",
		"v3.24.1",
		"v3.24.2 (unreleased)",
	}
	if len(got) != len(want) {
		t.Fatalf("SupportedVersions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("SupportedVersions()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if got[2].CheckoutName() != "gtk-3-23" {
		t.Fatalf("checkout name = %q, want gtk-3-23", got[2].CheckoutName())
	}
}

func TestSupportedVersions_LogsDeniedReleases(t *testing.T) {
	var logs bytes.Buffer
	got := SupportedVersions([]string{"3.24.18", "3.24.19", "3.24.20"}, nil, DefaultRange(), log.New(&logs, "", 0))
	if len(got) != 2 || got[0].String() != "v3.24.18" || got[1].String() != "v3.24.20" {
		t.Fatalf("SupportedVersions() = %v", got)
	}
	if !strings.Contains(logs.String(), "gen-priv: skipping denied release v3.24.19") {
		t.Fatalf("missing denied log:\n%s", logs.String())
	}
}

func TestRange_IsDenied(t *testing.T) {
	r, err := NewRange("3.22.0", "3.24.30", "3.24.19", "3.24.7")
	if err != nil {
		t.Fatalf("NewRange() error = %v", err)
	}
	for _, tag := range []string{"3.24.19", "3.24.7"} {
		v, _ := Parse(tag)
		if !r.IsDenied(v) || r.IsSupported(v) {
			t.Fatalf("%s should be denied", tag)
		}
	}
	v, _ := Parse("3.24.8")
	if r.IsDenied(v) {
		t.Fatal("3.24.8 should not be denied")
	}
}
