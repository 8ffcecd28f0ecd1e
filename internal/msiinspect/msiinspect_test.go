package msiinspect

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
)

// buildStringPool encodes strs (index 0 is always "") into the _StringPool
// / _StringData stream pair, mirroring parseStringPool's expected layout.
func buildStringPool(strs []string) (pool, data []byte) {
	pool = make([]byte, 4) // entry 0: codepage placeholder, unused by the parser
	for _, s := range strs {
		rec := make([]byte, 4)
		binary.LittleEndian.PutUint16(rec[0:2], uint16(len(s)))
		binary.LittleEndian.PutUint16(rec[2:4], 1)
		pool = append(pool, rec...)
		data = append(data, []byte(s)...)
	}
	return pool, data
}

// buildTwoColumnTable lays out rows as two string-pool-indexed columns,
// column-major, matching decodeTwoColumnStringTable's expectations.
func buildTwoColumnTable(idxPairs [][2]uint16) []byte {
	n := len(idxPairs)
	out := make([]byte, n*4)
	for i, pair := range idxPairs {
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], pair[0])
		binary.LittleEndian.PutUint16(out[n*2+i*2:n*2+i*2+2], pair[1])
	}
	return out
}

func TestParseStringPoolAndTableRoundTrip(t *testing.T) {
	strs := []string{"ProductVersion", "1.2.3", "ProductName", "Example App", "Manufacturer", "Example Corp"}
	pool, data := buildStringPool(strs)
	parsed := parseStringPool(pool, data)

	// index 0 is always "", then strs in order starting at index 1.
	for i, want := range strs {
		if got := parsed[i+1]; got != want {
			t.Fatalf("parsed[%d] = %q, want %q", i+1, got, want)
		}
	}

	table := buildTwoColumnTable([][2]uint16{{1, 2}, {3, 4}, {5, 6}})
	rows := decodeTwoColumnStringTable(table, parsed)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0] != (twoColRow{"ProductVersion", "1.2.3"}) {
		t.Errorf("row0 = %+v", rows[0])
	}
	if rows[1] != (twoColRow{"ProductName", "Example App"}) {
		t.Errorf("row1 = %+v", rows[1])
	}
	if rows[2] != (twoColRow{"Manufacturer", "Example Corp"}) {
		t.Errorf("row2 = %+v", rows[2])
	}
}

func TestApplyPropertyTableFillsFields(t *testing.T) {
	rawStrs := []string{"ProductVersion", "2.0.0", "ProductCode", "{11111111-1111-1111-1111-111111111111}", "ProductLanguage", "1033"}
	p, d := buildStringPool(rawStrs)
	parsed := parseStringPool(p, d)
	table := buildTwoColumnTable([][2]uint16{{1, 2}, {3, 4}, {5, 6}})

	res := &Result{Architecture: manifest.ArchNeutral}
	applyPropertyTable(table, parsed, res)

	if res.ProductVersion != "2.0.0" {
		t.Errorf("ProductVersion = %q", res.ProductVersion)
	}
	if res.ProductCode != "{11111111-1111-1111-1111-111111111111}" {
		t.Errorf("ProductCode = %q", res.ProductCode)
	}
	if res.Locale != "en-US" {
		t.Errorf("Locale = %q, want en-US", res.Locale)
	}
}

func TestApplyPropertyTableDetectsWixMarker(t *testing.T) {
	rawStrs := []string{"WixUI_Mode", "Minimal"}
	p, d := buildStringPool(rawStrs)
	parsed := parseStringPool(p, d)
	table := buildTwoColumnTable([][2]uint16{{1, 2}})

	res := &Result{Architecture: manifest.ArchNeutral}
	applyPropertyTable(table, parsed, res)
	if !res.IsWixAuthored {
		t.Error("expected IsWixAuthored to be true from a Wix-prefixed property name")
	}
}

func TestApplyTemplateMapsKnownPlatforms(t *testing.T) {
	cases := map[string]manifest.Architecture{
		"Intel;1033":   manifest.ArchX86,
		"Intel64;1033": manifest.ArchX64,
		"x64;1033":     manifest.ArchX64,
		"Arm;1033":     manifest.ArchArm,
		"Arm64;1033":   manifest.ArchArm64,
		"Sparc;1033":   manifest.ArchNeutral,
	}
	for template, want := range cases {
		res := &Result{}
		applyTemplate(template, res)
		if res.Architecture != want {
			t.Errorf("applyTemplate(%q) = %q, want %q", template, res.Architecture, want)
		}
	}
}

func TestIsWixAppName(t *testing.T) {
	if !isWixAppName("Windows Installer XML Toolset") {
		t.Error("expected WiX toolset app name to be detected")
	}
	if !isWixAppName("WiX Toolset") {
		t.Error("expected WiX app name to be detected")
	}
	if isWixAppName("InstallShield") {
		t.Error("did not expect InstallShield to be flagged as WiX")
	}
}

func TestInspectRejectsNonCompoundFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-msi.msi")
	if err := os.WriteFile(path, []byte("this is definitely not an OLE compound file"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Inspect(path)
	if _, ok := err.(*NotMsi); !ok {
		t.Fatalf("expected *NotMsi, got %T (%v)", err, err)
	}
}
