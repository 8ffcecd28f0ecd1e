package msiinspect

// Windows Installer compound-file storage names cannot contain arbitrary
// characters, so table and stream names are mangled into a private range
// of Unicode code points (0x3800-0x483F) that happens to overlap the CJK
// Unified Ideographs Extension A block — which is why MSI table names show
// up as Han characters in a raw hex/OLE viewer. Each source character is
// drawn from a fixed 64-character alphabet and packed two-to-a-codepoint;
// a single odd trailing character gets its own codepoint in the 0x4800
// sub-range. This is the same scheme implemented by msitools and other
// independent MSI readers.
const mangleAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz._"

var mangleIndex = func() map[rune]int {
	m := make(map[rune]int, len(mangleAlphabet))
	for i, c := range mangleAlphabet {
		m[c] = i
	}
	return m
}()

// decodeStreamName reverses the mangling described above. Characters
// outside the mangled ranges (e.g. a literal "!" prefix marking a
// persisted-but-not-yet-committed table stream) pass through unchanged.
func decodeStreamName(name string) string {
	var out []rune
	for _, r := range name {
		switch {
		case r >= 0x4800 && r < 0x4840:
			out = append(out, rune(mangleAlphabet[r-0x4800]))
		case r >= 0x3800 && r < 0x4840:
			code := int(r - 0x3800)
			out = append(out, rune(mangleAlphabet[code&0x3f]))
			out = append(out, rune(mangleAlphabet[code>>6]))
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// encodeStreamName mangles a plain ASCII table/column name into its
// on-disk storage-name form. Only used by tests to build synthetic
// fixtures; the inspector itself only ever decodes.
func encodeStreamName(name string) string {
	runes := []rune(name)
	var out []rune
	for i := 0; i < len(runes); i += 2 {
		c1, ok1 := mangleIndex[runes[i]]
		if !ok1 {
			out = append(out, runes[i])
			continue
		}
		if i+1 < len(runes) {
			c2, ok2 := mangleIndex[runes[i+1]]
			if !ok2 {
				out = append(out, rune(0x4800+c1))
				out = append(out, runes[i+1])
				continue
			}
			out = append(out, rune(0x3800+c1+(c2<<6)))
		} else {
			out = append(out, rune(0x4800+c1))
		}
	}
	return string(out)
}
