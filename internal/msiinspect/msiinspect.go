// Package msiinspect reads a Windows Installer (MSI) compound-file database
// to recover the installer's architecture, product metadata, and whether it
// was authored by the WiX toolset (spec.md §4.D). It is grounded on the
// mscfb/msoleps pairing used by other_examples/manifests' own MSI tooling
// (michelbragaguimaraes-LetsGoIntunePackager) for reading the OLE compound
// file and its SummaryInformation property-set stream; the Property table's
// column-major binary row layout is not exposed by either library, so this
// package decodes it directly against the documented Windows Installer
// string-pool/table format (see namemangle.go and stringpool.go).
package msiinspect

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	"github.com/pkgsmith/wecore/internal/manifest"
)

// Result is what Inspect extracts from an MSI database.
type Result struct {
	Architecture   manifest.Architecture
	ProductVersion string
	ProductName    string
	Manufacturer   string
	ProductCode    string
	Locale         string // BCP-47, empty if ProductLanguage is absent or unrecognized
	IsWixAuthored  bool
}

// summary information property-set IDs (PropertySet 0, the "SummaryInformation"
// stream format shared by every OLE compound document, not MSI-specific).
const (
	pidTemplate = 7
	pidAppName  = 18
)

var templateToArch = map[string]manifest.Architecture{
	"intel":   manifest.ArchX86,
	"intel64": manifest.ArchX64,
	"x64":     manifest.ArchX64,
	"arm":     manifest.ArchArm,
	"arm64":   manifest.ArchArm64,
}

// Inspect opens path as an OLE compound file and reads it as an MSI
// database. It returns *NotMsi, never wrapped, when the file is not a
// compound file at all; a compound file missing the streams this package
// needs degrades to a Result with empty/neutral fields rather than failing,
// since a truncated or unusual MSI is still evidence the file is an MSI.
func Inspect(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, &NotMsi{Reason: err.Error()}
	}

	res := &Result{Architecture: manifest.ArchNeutral}
	streams := map[string][]byte{}
	var wixTableSeen bool

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := decodeStreamName(entry.Name)
		if strings.Contains(strings.ToLower(name), "wix") {
			wixTableSeen = true
		}
		if entry.Size == 0 {
			continue
		}
		switch name {
		case "\x05SummaryInformation", "SummaryInformation":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err == nil {
				streams["summary"] = buf
			}
		case "Property":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err == nil {
				streams["Property"] = buf
			}
		case "!Property", encodeStreamName("Property"):
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err == nil {
				streams["Property"] = buf
			}
		case "_StringPool", "!_StringPool":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err == nil {
				streams["_StringPool"] = buf
			}
		case "_StringData", "!_StringData":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err == nil {
				streams["_StringData"] = buf
			}
		}
	}

	res.IsWixAuthored = wixTableSeen

	if raw, ok := streams["summary"]; ok {
		applySummaryInformation(raw, res)
	}

	if pool, ok := streams["_StringPool"]; ok {
		strs := parseStringPool(pool, streams["_StringData"])
		if prop, ok := streams["Property"]; ok {
			applyPropertyTable(prop, strs, res)
		}
	}

	return res, nil
}

// applySummaryInformation reads the SummaryInformation property set for the
// PIDSI_TEMPLATE (platform;langid) and PIDSI_APPNAME (creating application)
// properties. Any other property, or a stream msoleps cannot parse, is
// silently ignored — the Property table is authoritative for everything
// else msiinspect reports.
func applySummaryInformation(raw []byte, res *Result) {
	doc, err := msoleps.New(bytesReaderCloser(raw))
	if err != nil || len(doc.PropertySets) == 0 {
		return
	}
	for _, prop := range doc.PropertySets[0].Properties {
		switch prop.ID {
		case pidTemplate:
			applyTemplate(prop.String(), res)
		case pidAppName:
			if isWixAppName(prop.String()) {
				res.IsWixAuthored = true
			}
		}
	}
}

func applyTemplate(template string, res *Result) {
	token := strings.ToLower(strings.TrimSpace(strings.SplitN(template, ";", 2)[0]))
	if token == "" {
		return
	}
	if arch, ok := templateToArch[token]; ok {
		res.Architecture = arch
		return
	}
	switch manifest.Architecture(token) {
	case manifest.ArchX86, manifest.ArchX64, manifest.ArchArm, manifest.ArchArm64:
		res.Architecture = manifest.Architecture(token)
	default:
		res.Architecture = manifest.ArchNeutral
	}
}

func isWixAppName(appName string) bool {
	lower := strings.ToLower(appName)
	return strings.Contains(lower, "wix") || strings.Contains(lower, "windows installer xml")
}

// applyPropertyTable walks the decoded Property/Value rows and fills in the
// fields the Property table, rather than SummaryInformation, is the source
// of truth for.
func applyPropertyTable(propStream []byte, strs []string, res *Result) {
	rows := decodeTwoColumnStringTable(propStream, strs)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.a), "wix") || strings.Contains(strings.ToLower(row.b), "wix") {
			res.IsWixAuthored = true
		}
		switch row.a {
		case "ProductVersion":
			res.ProductVersion = row.b
		case "ProductName":
			res.ProductName = row.b
		case "Manufacturer":
			res.Manufacturer = row.b
		case "ProductCode":
			res.ProductCode = row.b
		case "ProductLanguage":
			if lcid, err := strconv.Atoi(row.b); err == nil {
				if tag, ok := lcidToBCP47[lcid]; ok {
					res.Locale = tag
				}
			}
		}
	}
}

// bytesReaderCloser adapts a byte slice to the io.ReadCloser msoleps.New
// expects.
func bytesReaderCloser(raw []byte) io.ReadCloser {
	return nopCloseReader{r: bytes.NewReader(raw)}
}

type nopCloseReader struct{ r io.Reader }

func (n nopCloseReader) Read(p []byte) (int, error) { return n.r.Read(p) }
func (n nopCloseReader) Close() error                { return nil }
