package core

import (
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
)

func TestParseOverrideSuffixArchitectureOnly(t *testing.T) {
	in := parseOverrideSuffix("https://example.com/tool.exe|x64")
	if in.URL != "https://example.com/tool.exe" {
		t.Errorf("URL = %q", in.URL)
	}
	if in.OverrideArchitecture != manifest.ArchX64 {
		t.Errorf("OverrideArchitecture = %q, want x64", in.OverrideArchitecture)
	}
	if in.OverrideScope != "" {
		t.Errorf("OverrideScope = %q, want empty", in.OverrideScope)
	}
}

func TestParseOverrideSuffixArchitectureAndScope(t *testing.T) {
	in := parseOverrideSuffix("https://example.com/tool.exe|arm64|machine")
	if in.OverrideArchitecture != manifest.ArchArm64 {
		t.Errorf("OverrideArchitecture = %q, want arm64", in.OverrideArchitecture)
	}
	if in.OverrideScope != manifest.ScopeMachine {
		t.Errorf("OverrideScope = %q, want machine", in.OverrideScope)
	}
}

func TestParseOverrideSuffixDisplayVersion(t *testing.T) {
	in := parseOverrideSuffix("https://example.com/tool.exe|2.0.1-beta")
	if in.DisplayVersion != "2.0.1-beta" {
		t.Errorf("DisplayVersion = %q, want 2.0.1-beta", in.DisplayVersion)
	}
	if in.OverrideArchitecture != "" {
		t.Errorf("OverrideArchitecture = %q, want empty", in.OverrideArchitecture)
	}
}

func TestParseOverrideSuffixNoOverride(t *testing.T) {
	in := parseOverrideSuffix("https://example.com/tool.exe")
	if in.URL != "https://example.com/tool.exe" || in.OverrideArchitecture != "" || in.DisplayVersion != "" {
		t.Errorf("unexpected parse of bare URL: %+v", in)
	}
}

func TestParseURLInputs(t *testing.T) {
	out := ParseURLInputs([]string{
		"https://example.com/a.exe|x86",
		"https://example.com/b.exe",
	})
	if len(out) != 2 {
		t.Fatalf("got %d inputs, want 2", len(out))
	}
	if out[0].OverrideArchitecture != manifest.ArchX86 {
		t.Errorf("out[0].OverrideArchitecture = %q, want x86", out[0].OverrideArchitecture)
	}
	if out[1].OverrideArchitecture != "" {
		t.Errorf("out[1].OverrideArchitecture = %q, want empty", out[1].OverrideArchitecture)
	}
}
