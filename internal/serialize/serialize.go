// Package serialize renders a manifest tree's individual documents to and
// from the two textual formats spec.md §4.J defines: flow-style YAML (the
// format written to the community repository) and structural JSON (the
// format the validator and most tooling consume). Both directions are
// driven by the same five document types; there is no per-type duplicate
// encoder.
package serialize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkgsmith/wecore/internal/manifest"
	"gopkg.in/yaml.v3"
)

// Format selects the output text shape of EncodeTo.
type Format int

const (
	FormatFlow Format = iota
	FormatStructural
)

// Producer is the banner's "Created using" value.
const Producer = "pkgsmith"

// langServer names the editor tooling the schema banner addresses, mirroring
// the comment convention consumers of the community repository look for.
const langServer = "yaml-language-server"

// schemaTemplate maps a manifest's wire-level type token to its $schema URL
// template; SchemaURL fills in ManifestVersion to build the full URL.
var schemaTemplate = map[string]string{
	"version":       "https://aka.ms/winget-manifest.version.%s.schema.json",
	"installer":     "https://aka.ms/winget-manifest.installer.%s.schema.json",
	"defaultLocale": "https://aka.ms/winget-manifest.defaultLocale.%s.schema.json",
	"locale":        "https://aka.ms/winget-manifest.locale.%s.schema.json",
	"singleton":     "https://aka.ms/winget-manifest.singleton.%s.schema.json",
}

// commonOf extracts the embedded Common fields shared by every document
// type, since EncodeTo and the banner logic operate on it without caring
// which concrete manifest type it was handed.
func commonOf(v interface{}) (manifest.Common, bool) {
	switch t := v.(type) {
	case *manifest.VersionManifest:
		return t.Common, true
	case *manifest.InstallerManifest:
		return t.Common, true
	case *manifest.DefaultLocaleManifest:
		return t.Common, true
	case *manifest.AdditionalLocaleManifest:
		return t.Common, true
	case *manifest.Singleton:
		return t.Common, true
	default:
		return manifest.Common{}, false
	}
}

// SchemaURL returns the $schema value for a document of the given type and
// manifest version.
func SchemaURL(c manifest.Common) (string, error) {
	tmpl, ok := schemaTemplate[c.ManifestType]
	if !ok {
		return "", fmt.Errorf("serialize: unknown manifest type %q", c.ManifestType)
	}
	return fmt.Sprintf(tmpl, c.ManifestVersion), nil
}

// EncodeTo renders v (a pointer to one of the five document types) in the
// requested format.
func EncodeTo(v interface{}, format Format) ([]byte, error) {
	c, ok := commonOf(v)
	if !ok {
		return nil, fmt.Errorf("serialize: %T is not a manifest document", v)
	}
	schemaURL, err := SchemaURL(c)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatFlow:
		return encodeFlow(v, schemaURL)
	case FormatStructural:
		return encodeStructural(v, schemaURL)
	default:
		return nil, fmt.Errorf("serialize: unknown format %d", format)
	}
}

func encodeFlow(v interface{}, schemaURL string) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("serialize: encode flow: %w", err)
	}
	styleMultilineStrings(&node)

	var body bytes.Buffer
	enc := yaml.NewEncoder(&body)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("serialize: marshal flow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serialize: marshal flow: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "# Created using %s\n", Producer)
	fmt.Fprintf(&out, "# %s: $schema=%s\n", langServer, schemaURL)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// styleMultilineStrings walks an encoded yaml.Node tree and switches any
// scalar string node containing a line-break character to literal block
// style (§4.J), independent of which field it came from.
func styleMultilineStrings(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" && containsLineBreak(node.Value) {
		node.Style = yaml.LiteralStyle
	}
	for _, child := range node.Content {
		styleMultilineStrings(child)
	}
}

func containsLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n  ")
}

func encodeStructural(v interface{}, schemaURL string) ([]byte, error) {
	wrapped, err := wrapWithSchema(v, schemaURL)
	if err != nil {
		return nil, err
	}
	out, err := marshalIndentedJSON(wrapped)
	if err != nil {
		return nil, fmt.Errorf("serialize: marshal structural: %w", err)
	}
	return out, nil
}
