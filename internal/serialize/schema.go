package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkgsmith/wecore/internal/manifest"
)

// wrapWithSchema embeds v in a struct whose only named field is $schema, so
// that JSON field promotion from the anonymous embedded document places
// $schema first in encoding order (§4.J: "always places a $schema key
// first at the root").
func wrapWithSchema(v interface{}, schemaURL string) (interface{}, error) {
	switch t := v.(type) {
	case *manifest.VersionManifest:
		return &struct {
			Schema string `json:"$schema"`
			*manifest.VersionManifest
		}{schemaURL, t}, nil
	case *manifest.InstallerManifest:
		return &struct {
			Schema string `json:"$schema"`
			*manifest.InstallerManifest
		}{schemaURL, t}, nil
	case *manifest.DefaultLocaleManifest:
		return &struct {
			Schema string `json:"$schema"`
			*manifest.DefaultLocaleManifest
		}{schemaURL, t}, nil
	case *manifest.AdditionalLocaleManifest:
		return &struct {
			Schema string `json:"$schema"`
			*manifest.AdditionalLocaleManifest
		}{schemaURL, t}, nil
	case *manifest.Singleton:
		return &struct {
			Schema string `json:"$schema"`
			*manifest.Singleton
		}{schemaURL, t}, nil
	default:
		return nil, fmt.Errorf("serialize: %T is not a manifest document", v)
	}
}

// marshalIndentedJSON renders v with two-space indentation and without
// HTML-escaping, matching the plain structural text §4.J describes (no
// reason for a manifest document to carry `<`, `>` or `&`, but escaping
// them would be surprising to a human reader of the file).
func marshalIndentedJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
