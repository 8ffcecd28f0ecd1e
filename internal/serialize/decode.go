package serialize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkgsmith/wecore/internal/manifest"
	"gopkg.in/yaml.v3"
)

// Decode parses one manifest document, discovering its concrete type from
// its ManifestType field. The format is sniffed per §4.J/REDESIGN FLAGS:
// if the first non-whitespace character is `{` or `[`, the structural
// (JSON) reader is attempted unconditionally; otherwise the flow (YAML)
// reader is used. Both readers silently discard unknown properties.
func Decode(data []byte) (interface{}, error) {
	structural := looksStructural(data)

	var probe manifest.Common
	if err := unmarshal(data, &probe, structural); err != nil {
		return nil, fmt.Errorf("serialize: decode: %w", err)
	}

	target, err := newForType(probe.ManifestType)
	if err != nil {
		return nil, err
	}
	if err := unmarshal(data, target, structural); err != nil {
		return nil, fmt.Errorf("serialize: decode: %w", err)
	}
	return target, nil
}

func looksStructural(data []byte) bool {
	for _, r := range string(data) {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			continue
		}
		return r == '{' || r == '['
	}
	return false
}

func unmarshal(data []byte, v interface{}, structural bool) error {
	if structural {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(stripBanner(data), v)
}

// stripBanner removes the leading `# Created using` / `$schema=` comment
// lines a flow-style document carries; yaml.v3 ignores comment lines on its
// own, so this is only here for symmetry with structural decoding and costs
// nothing when absent.
func stripBanner(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	i := 0
	for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "#") {
		i++
	}
	return []byte(strings.Join(lines[i:], "\n"))
}

func newForType(manifestType string) (interface{}, error) {
	switch manifestType {
	case "version":
		return &manifest.VersionManifest{}, nil
	case "installer":
		return &manifest.InstallerManifest{}, nil
	case "defaultLocale":
		return &manifest.DefaultLocaleManifest{}, nil
	case "locale":
		return &manifest.AdditionalLocaleManifest{}, nil
	case "singleton":
		return &manifest.Singleton{}, nil
	default:
		return nil, fmt.Errorf("serialize: unknown manifest type %q", manifestType)
	}
}
