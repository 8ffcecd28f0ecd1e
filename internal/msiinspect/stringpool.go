package msiinspect

import "encoding/binary"

// parseStringPool decodes the _StringPool/_StringData stream pair into the
// table's string array. _StringPool is a sequence of 4-byte (length,
// refcount) records; _StringData is the concatenated raw bytes those
// lengths slice into. Entry 0 is reserved (its "length" field carries the
// database codepage, not a string length) and always decodes to the empty
// string, matching every table's column-index convention that 0 means "no
// value". Strings whose length does not fit in 16 bits spill into a
// following zero-length, nonzero-refcount marker entry; that overflow case
// is rare enough in practice (author names and product titles are short)
// that it is treated here as an empty continuation rather than chased down.
func parseStringPool(pool, data []byte) []string {
	strs := []string{""}
	offset := 0
	for i := 4; i+4 <= len(pool); i += 4 {
		length := binary.LittleEndian.Uint16(pool[i : i+2])
		refcount := binary.LittleEndian.Uint16(pool[i+2 : i+4])
		if length == 0 && refcount != 0 {
			strs = append(strs, "")
			continue
		}
		end := offset + int(length)
		if end > len(data) {
			end = len(data)
		}
		if offset > len(data) {
			offset = len(data)
		}
		strs = append(strs, string(data[offset:end]))
		offset = end
	}
	return strs
}

type twoColRow struct{ a, b string }

// decodeTwoColumnStringTable decodes a table stream laid out as two
// string-pool-indexed columns, stored column-major (every row's first
// column, then every row's second column) as Windows Installer persists
// non-integer table columns. The Property table is the only table
// msiinspect reads, and it has exactly two string columns, so no column
// type information from the _Columns system table is needed here.
func decodeTwoColumnStringTable(stream []byte, strs []string) []twoColRow {
	const colWidth = 2
	rowCount := len(stream) / (2 * colWidth)
	if rowCount == 0 {
		return nil
	}
	rows := make([]twoColRow, rowCount)
	col1 := stream[:rowCount*colWidth]
	col2 := stream[rowCount*colWidth : rowCount*2*colWidth]
	for i := 0; i < rowCount; i++ {
		idx1 := binary.LittleEndian.Uint16(col1[i*colWidth : i*colWidth+2])
		idx2 := binary.LittleEndian.Uint16(col2[i*colWidth : i*colWidth+2])
		rows[i] = twoColRow{a: lookupString(strs, idx1), b: lookupString(strs, idx2)}
	}
	return rows
}

func lookupString(strs []string, idx uint16) string {
	if int(idx) >= len(strs) {
		return ""
	}
	return strs[idx]
}

// lcidToBCP47 maps the decimal Windows LCIDs found in the Property table's
// ProductLanguage row to BCP-47 language tags. Values absent here are
// dropped silently rather than guessed at, matching spec.md's treatment of
// unresolved locale data.
var lcidToBCP47 = map[int]string{
	1033: "en-US",
	2057: "en-GB",
	3081: "en-AU",
	4105: "en-CA",
	1036: "fr-FR",
	3084: "fr-CA",
	1031: "de-DE",
	3082: "es-ES",
	1034: "es-ES",
	1040: "it-IT",
	1041: "ja-JP",
	2052: "zh-CN",
	1028: "zh-TW",
	1042: "ko-KR",
	1046: "pt-BR",
	2070: "pt-PT",
	1043: "nl-NL",
	1049: "ru-RU",
	1045: "pl-PL",
	1053: "sv-SE",
	1030: "da-DK",
	1044: "nb-NO",
	1035: "fi-FI",
	1038: "hu-HU",
	1029: "cs-CZ",
	1055: "tr-TR",
	1032: "el-GR",
	1037: "he-IL",
	1025: "ar-SA",
	1081: "hi-IN",
	1054: "th-TH",
	1066: "vi-VN",
	1026: "bg-BG",
	1048: "ro-RO",
	1051: "sk-SK",
	1060: "sl-SI",
	1061: "et-EE",
	1062: "lv-LV",
	1063: "lt-LT",
	1086: "ms-MY",
	1057: "id-ID",
	1058: "uk-UA",
	0:    "",
}
