package loom

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Target describes the platform a pipeline is compiled for. The zero
// value is the unset placeholder target used when only schema emission
// is requested.
type Target struct {
	Arch     string
	Bits     int
	OS       string
	Features []string
}

// HostTarget returns the target describing the running process.
func HostTarget() Target {
	arch := "x86"
	bits := 64
	switch runtime.GOARCH {
	case "amd64":
		arch, bits = "x86", 64
	case "386":
		arch, bits = "x86", 32
	case "arm64":
		arch, bits = "arm", 64
	case "arm":
		arch, bits = "arm", 32
	default:
		arch = runtime.GOARCH
	}
	return Target{Arch: arch, Bits: bits, OS: runtime.GOOS}
}

// ParseTarget parses a target string of the form
// "arch-bits-os[-feature[-feature...]]", e.g. "x86-64-linux-avx2".
func ParseTarget(s string) (Target, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return Target{}, fmt.Errorf("loom: malformed target %q: want arch-bits-os[-features]", s)
	}
	var t Target
	t.Arch = parts[0]
	if _, err := fmt.Sscanf(parts[1], "%d", &t.Bits); err != nil {
		return Target{}, fmt.Errorf("loom: malformed target %q: bad bit width %q", s, parts[1])
	}
	t.OS = parts[2]
	if len(parts) > 3 {
		t.Features = parts[3:]
	}
	return t, nil
}

// Defined reports whether t is a real target rather than the placeholder.
func (t Target) Defined() bool {
	return t.Arch != "" || t.OS != "" || t.Bits != 0
}

// HasFeature reports whether the target carries the named feature.
func (t Target) HasFeature(name string) bool {
	return slices.Contains(t.Features, name)
}

// String renders the target in its parseable form.
func (t Target) String() string {
	if !t.Defined() {
		return ""
	}
	parts := []string{t.Arch, fmt.Sprintf("%d", t.Bits), t.OS}
	parts = append(parts, t.Features...)
	return strings.Join(parts, "-")
}
