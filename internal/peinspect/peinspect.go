// Package peinspect reads a portable-executable header to obtain the
// machine type and, from the embedded RT_MANIFEST resource, an installer
// family hint (spec.md §4.C). It is grounded on the teacher corpus's own
// use of debug/pe for "read machine type, walk sections"
// (other_examples: wiwaszko-intel-os-image-composer's bootloader_pe.go)
// but reads the MZ/PE signature at the literal byte offsets the spec
// prescribes, so a truncated or non-PE file fails at the exact stage
// spec.md describes rather than wherever debug/pe happens to give up.
package peinspect

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkgsmith/wecore/internal/manifest"
)

// Result is what Inspect extracts from a PE file.
type Result struct {
	Architecture manifest.Architecture

	// Family is the detected installer family: one of "wix" (mapped by
	// the caller to InstallerBurn), "inno", "nullsoft", or "" (plain exe).
	Family string
}

const (
	rtManifest = 24 // RT_MANIFEST resource type ID
)

var machineToArch = map[uint16]manifest.Architecture{
	0x014C: manifest.ArchX86,
	0x8664: manifest.ArchX64,
	0x01C0: manifest.ArchArm,
	0x01C4: manifest.ArchArm,
	0xAA64: manifest.ArchArm64,
}

// Inspect reads path as a PE file. It returns *NotPE when the MZ or PE
// signature does not match, never wrapped — the orchestrator checks for
// this concrete type.
func Inspect(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, 64)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, &NotPE{Reason: "file shorter than DOS header"}
	}
	if binary.LittleEndian.Uint16(header[0:2]) != 0x5A4D {
		return nil, &NotPE{Reason: "missing MZ signature"}
	}

	peOffset := binary.LittleEndian.Uint32(header[60:64])
	if _, err := f.Seek(int64(peOffset), io.SeekStart); err != nil {
		return nil, &NotPE{Reason: "e_lfanew out of range"}
	}

	sigAndMachine := make([]byte, 6)
	if _, err := io.ReadFull(f, sigAndMachine); err != nil {
		return nil, &NotPE{Reason: "truncated PE signature"}
	}
	if binary.LittleEndian.Uint32(sigAndMachine[0:4]) != 0x00004550 {
		return nil, &NotPE{Reason: "missing PE signature"}
	}
	machine := binary.LittleEndian.Uint16(sigAndMachine[4:6])

	arch, ok := machineToArch[machine]
	if !ok {
		arch = manifest.ArchNeutral
	}

	res := &Result{Architecture: arch}
	res.Family = detectFamily(f)
	return res, nil
}

// detectFamily best-effort parses the RT_MANIFEST resource (if any) as an
// XML assembly manifest and classifies the first-space-delimited, lowered
// token of the root element's first <description> child text.
func detectFamily(f *os.File) string {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	pf, err := pe.NewFile(f)
	if err != nil {
		return ""
	}
	defer pf.Close()

	data := readManifestResource(pf)
	if data == nil {
		return ""
	}

	desc := firstDescription(data)
	if desc == "" {
		return ""
	}
	token := strings.ToLower(strings.Fields(desc)[0])
	switch {
	case token == "wix":
		return "wix"
	case token == "inno":
		return "inno"
	case token == "nullsoft":
		return "nullsoft"
	default:
		return ""
	}
}

// firstDescription returns the text of the first "description" element
// found anywhere under the document root (namespace-agnostic: assembly
// manifests commonly qualify it as asm:description).
func firstDescription(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth >= 2 && localName(t.Name.Local) == "description" {
				return readElementText(dec, t)
			}
		}
	}
}

func localName(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// readElementText accumulates character data until the matching end tag
// for start, which the decoder has already consumed the start tag of.
func readElementText(dec *xml.Decoder, start xml.StartElement) string {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if localName(t.Name.Local) == localName(start.Name.Local) {
				return strings.TrimSpace(sb.String())
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// readManifestResource walks the .rsrc directory tree looking for an
// RT_MANIFEST entry and returns its raw bytes, or nil if absent.
func readManifestResource(pf *pe.File) []byte {
	sec := pf.Section(".rsrc")
	if sec == nil {
		return nil
	}
	raw, err := sec.Data()
	if err != nil || len(raw) < 16 {
		return nil
	}

	typeEntries := directoryEntries(raw, 0)
	for _, te := range typeEntries {
		if te.id != rtManifest {
			continue
		}
		if !te.isSubdir {
			continue
		}
		nameEntries := directoryEntries(raw, te.offset)
		for _, ne := range nameEntries {
			if !ne.isSubdir {
				continue
			}
			langEntries := directoryEntries(raw, ne.offset)
			for _, le := range langEntries {
				if le.isSubdir {
					continue
				}
				data := dataEntryBytes(raw, le.offset, sec.VirtualAddress)
				if data != nil {
					return data
				}
			}
		}
	}
	return nil
}

type resDirEntry struct {
	id       uint32
	offset   uint32
	isSubdir bool
}

func directoryEntries(raw []byte, dirOffset uint32) []resDirEntry {
	if int(dirOffset)+16 > len(raw) {
		return nil
	}
	named := binary.LittleEndian.Uint16(raw[dirOffset+12 : dirOffset+14])
	ids := binary.LittleEndian.Uint16(raw[dirOffset+14 : dirOffset+16])
	total := int(named) + int(ids)

	entries := make([]resDirEntry, 0, total)
	base := dirOffset + 16
	for i := 0; i < total; i++ {
		off := base + uint32(i*8)
		if int(off)+8 > len(raw) {
			break
		}
		nameOrID := binary.LittleEndian.Uint32(raw[off : off+4])
		offsetToData := binary.LittleEndian.Uint32(raw[off+4 : off+8])
		entries = append(entries, resDirEntry{
			id:       nameOrID &^ 0x80000000,
			offset:   offsetToData &^ 0x80000000,
			isSubdir: offsetToData&0x80000000 != 0,
		})
	}
	return entries
}

func dataEntryBytes(raw []byte, entryOffset, sectionRVA uint32) []byte {
	if int(entryOffset)+16 > len(raw) {
		return nil
	}
	dataRVA := binary.LittleEndian.Uint32(raw[entryOffset : entryOffset+4])
	size := binary.LittleEndian.Uint32(raw[entryOffset+4 : entryOffset+8])
	if dataRVA < sectionRVA {
		return nil
	}
	start := dataRVA - sectionRVA
	if int(start)+int(size) > len(raw) || int(size) == 0 {
		return nil
	}
	return raw[start : start+size]
}
