package msixinspect

import (
	"crypto/sha256"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// crockfordAlphabet is the 32-character alphabet Windows uses to encode a
// package family name's hashed-publisher suffix: i, l, o, u are dropped to
// avoid visual confusion with 1/1/0/v. The official Microsoft derivation
// and the observed public-repository manifests both render this uppercase;
// only one known source implementation renders it lowercase (spec.md's own
// Open Questions call this out), so the alphabet here is uppercase to match
// what ships in practice.
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// packageFamilyName derives the `<name>_<13-char-id>` package family name
// from a package's Name and Publisher identity attributes (spec.md §4.E).
func packageFamilyName(name, publisher string) string {
	return name + "_" + packageFamilyNameSuffix(publisher)
}

// packageFamilyNameSuffix implements the 5-bit-group encoding: UTF-16LE
// (no BOM) encode the publisher string, SHA-256 it, take the first 8
// bytes (64 bits), append a single 0 bit to round out to 65 bits (thirteen
// 5-bit groups), and encode each group MSB-first.
func packageFamilyNameSuffix(publisher string) string {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	utf16le, err := enc.String(publisher)
	if err != nil {
		utf16le = publisher
	}

	sum := sha256.Sum256([]byte(utf16le))
	first8 := sum[:8]

	var bits strings.Builder
	for _, b := range first8 {
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) != 0 {
				bits.WriteByte('1')
			} else {
				bits.WriteByte('0')
			}
		}
	}
	bits.WriteByte('0') // pad 64 bits to 65 with a trailing zero

	bitString := bits.String()
	var out strings.Builder
	for i := 0; i < 65; i += 5 {
		group := bitString[i : i+5]
		var v int
		for _, c := range group {
			v <<= 1
			if c == '1' {
				v |= 1
			}
		}
		out.WriteByte(crockfordAlphabet[v])
	}
	return out.String()
}
