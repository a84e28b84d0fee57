package dvbtext

// accentEntry is one of the 13 combining-diacritic prefixes a DVB text
// string can latch (ETSI EN 300 468 Annex A.2). base holds the ASCII
// letters that may carry the accent; composed holds the corresponding
// precomposed rune at the same index. A base letter with no listed accent
// index is emitted unchanged.
type accentEntry struct {
	base     string
	composed []rune
}

// accentTable is a read-only, initialized-once global: the only state this
// package carries across calls.
var accentTable = map[byte]accentEntry{
	0xC1: { // grave
		base:     "AEIOUaeiou",
		composed: []rune("ÀÈÌÒÙàèìòù"),
	},
	0xC4: { // tilde
		base:     "AINOUainou",
		composed: []rune("ÃĨÑÕŨãĩñõũ"),
	},
	0xC5: { // macron
		base:     "AEIOUaeiou",
		composed: []rune("ĀĒĪŌŪāēīōū"),
	},
	0xC6: { // breve
		base:     "AGUagu",
		composed: []rune("ĂĞŬăğŭ"),
	},
	0xC7: { // dot above
		base:     "CEGIZcegz",
		composed: []rune("ĊĖĠİŻċėġż"),
	},
	0xC8: { // diaeresis
		base:     "AEIOUYaeiouy",
		composed: []rune("ÄËÏÖÜŸäëïöüÿ"),
	},
	0xCA: { // ring above
		base:     "AUau",
		composed: []rune("ÅŮåů"),
	},
	0xCB: { // cedilla
		base:     "CGKLNRSTcgklnrst",
		composed: []rune("ÇĢĶĻŅŖŞŢçģķļņŗşţ"),
	},
	0xCD: { // double acute
		base:     "OUou",
		composed: []rune("ŐŰőű"),
	},
	0xCE: { // ogonek
		base:     "AEIUaeiu",
		composed: []rune("ĄĘĮŲąęįų"),
	},
	0xCF: { // caron
		base:     "CDELNRSTZcdelnrstz",
		composed: []rune("ČĎĚĽŇŘŠŤŽčďěľňřšťž"),
	},
}

func init() {
	// Acute and circumflex carry enough letters that a plain string literal
	// risks silent rune-count mismatches; built with explicit rune literals
	// so the table stays auditable against EN 300 468 Annex A.2.
	accentTable[0xC2] = accentEntry{
		base: "ACEGILNORSUWYZacegilnorsuwyz",
		composed: []rune{
			'Á', 'Ć', 'É', 'Ǵ', 'Í', 'Ĺ', 'Ń', 'Ó', 'Ŕ', 'Ś', 'Ú', 'Ẃ', 'Ý', 'Ź',
			'á', 'ć', 'é', 'ǵ', 'í', 'ĺ', 'ń', 'ó', 'ŕ', 'ś', 'ú', 'ẃ', 'ý', 'ź',
		},
	}
	accentTable[0xC3] = accentEntry{
		base: "ACEGHIJOSUWYacehijosuwy",
		composed: []rune{
			'Â', 'Ĉ', 'Ê', 'Ĝ', 'Ĥ', 'Î', 'Ĵ', 'Ô', 'Ŝ', 'Û', 'Ŵ', 'Ŷ',
			'â', 'ĉ', 'ê', 'ĥ', 'î', 'ĵ', 'ô', 'ŝ', 'û', 'ŵ', 'ŷ',
		},
	}
}

// accentLookup reports whether the accent registered under prefix has a
// composed rune for base, returning the precomposed rune and true, or the
// zero rune and false when base is not one of the letters that prefix
// accent can attach to (the caller then emits the base letter unchanged).
func accentLookup(prefix byte, base byte) (rune, bool) {
	entry, ok := accentTable[prefix]
	if !ok {
		return 0, false
	}
	idx := indexByte(entry.base, base)
	if idx < 0 || idx >= len(entry.composed) {
		return 0, false
	}
	return entry.composed[idx], true
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
