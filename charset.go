package headlessterm

import "golang.org/x/text/encoding/charmap"

// NRCS identifies a National Replacement Character Set or other 96-char
// G0..G3 designation, keyed the way the interpreter's designator bytes
// select them: ESC ( /) /* /+ for G0..G3 with a 94-char final byte, or
// ESC - /. // with a 96-char final byte.
type NRCS int

const (
	NRCSASCII NRCS = iota
	NRCSUK
	NRCSDECLineDrawing
	NRCSDECTechnical
	NRCSDECSupplemental
	NRCSDutch
	NRCSFinnish
	NRCSFrench
	NRCSFrenchCanadian
	NRCSGerman
	NRCSItalian
	NRCSNorwegianDanish
	NRCSPortuguese
	NRCSSpanish
	NRCSSwedish
	NRCSSwiss
	NRCSISOLatin1
	NRCSISOCyrillic
	NRCSISOGreek
	NRCSISOHebrew
	NRCSISOLatin5 // Turkish
)

// nrcsTable holds the 94 replacement characters for bytes 0x21..0x7E (minus
// the trailing 0x7F), indexed 0..93. A zero rune means "unchanged from ASCII".
type nrcsTable [94]rune

// decSpecialGraphics is the DEC Special Graphics / line-drawing set; already
// reproduced in handler.go's translateLineDrawing for the common box-drawing
// range, duplicated here as data so charset.go is the single source of truth
// for every non-ASCII G-set, including this one.
var decSpecialGraphics = buildNRCS(map[byte]rune{
	0x60: '◆', 0x61: '▒', 0x62: '␉', 0x63: '␌',
	0x64: '␍', 0x65: '␊', 0x66: '°', 0x67: '±',
	0x68: '␤', 0x69: '␋', 0x6a: '┘', 0x6b: '┐',
	0x6c: '┌', 0x6d: '└', 0x6e: '┼', 0x6f: '⎺',
	0x70: '⎻', 0x71: '─', 0x72: '⎼', 0x73: '⎽',
	0x74: '├', 0x75: '┤', 0x76: '┴', 0x77: '┬',
	0x78: '│', 0x79: '≤', 0x7a: '≥', 0x7b: 'π',
	0x7c: '≠', 0x7d: '£', 0x7e: '·',
})

// National Replacement Character Sets: each overrides a handful of ASCII
// positions (typically #, @, [, \, ], ^, _, `, {, |, }, ~) with
// locale-specific glyphs, per ECMA-35/VT220.
var (
	nrcsDutch = buildNRCS(map[byte]rune{
		0x23: '£', 0x40: '¾', 0x5b: 'ĳ', 0x5c: '½',
		0x5d: '|', 0x7b: '¨', 0x7c: 'ƒ', 0x7d: '¼', 0x7e: '´',
	})
	nrcsFinnish = buildNRCS(map[byte]rune{
		0x5b: 'Ä', 0x5c: 'Ö', 0x5d: 'Å', 0x5e: 'Ü',
		0x60: 'é', 0x7b: 'ä', 0x7c: 'ö', 0x7d: 'å', 0x7e: 'ü',
	})
	nrcsFrench = buildNRCS(map[byte]rune{
		0x23: '£', 0x40: 'à', 0x5b: '°', 0x5c: 'ç',
		0x5d: '§', 0x7b: 'é', 0x7c: 'ù', 0x7d: 'è', 0x7e: '¨',
	})
	nrcsFrenchCanadian = buildNRCS(map[byte]rune{
		0x40: 'à', 0x5b: 'â', 0x5c: 'ç', 0x5d: 'ê',
		0x5e: 'î', 0x60: 'ô', 0x7b: 'é', 0x7c: 'ù',
		0x7d: 'è', 0x7e: 'û',
	})
	nrcsGerman = buildNRCS(map[byte]rune{
		0x40: '§', 0x5b: 'Ä', 0x5c: 'Ö', 0x5d: 'Ü',
		0x7b: 'ä', 0x7c: 'ö', 0x7d: 'ü', 0x7e: 'ß',
	})
	nrcsItalian = buildNRCS(map[byte]rune{
		0x23: '£', 0x40: '§', 0x5b: '°', 0x5c: 'ç',
		0x5d: 'é', 0x60: 'ù', 0x7b: 'à', 0x7c: 'ò', 0x7d: 'è',
	})
	nrcsNorwegianDanish = buildNRCS(map[byte]rune{
		0x40: 'Ä', 0x5b: 'Æ', 0x5c: 'Ø', 0x5d: 'Å',
		0x5e: 'Ü', 0x60: 'ä', 0x7b: 'æ', 0x7c: 'ø',
		0x7d: 'å', 0x7e: 'ü',
	})
	nrcsPortuguese = buildNRCS(map[byte]rune{
		0x5b: 'Ã', 0x5c: 'Ç', 0x5d: 'Õ', 0x7b: 'ã',
		0x7c: 'ç', 0x7d: 'õ',
	})
	nrcsSpanish = buildNRCS(map[byte]rune{
		0x23: '£', 0x40: '§', 0x5b: '¡', 0x5c: 'Ñ',
		0x5d: '¿', 0x7b: '°', 0x7c: 'ñ', 0x7d: 'ç',
	})
	nrcsSwedish = buildNRCS(map[byte]rune{
		0x40: 'É', 0x5b: 'Ä', 0x5c: 'Ö', 0x5d: 'Å',
		0x5e: 'Ü', 0x60: 'é', 0x7b: 'ä', 0x7c: 'ö',
		0x7d: 'å', 0x7e: 'ü',
	})
	nrcsSwiss = buildNRCS(map[byte]rune{
		0x23: 'ù', 0x40: 'à', 0x5b: 'é', 0x5c: 'ç',
		0x5d: 'ê', 0x5e: 'î', 0x5f: 'è', 0x60: 'ô',
		0x7b: 'ä', 0x7c: 'ö', 0x7d: 'ü', 0x7e: 'û',
	})
)

func buildNRCS(overrides map[byte]rune) nrcsTable {
	var t nrcsTable
	for b, r := range overrides {
		if b >= 0x21 && b <= 0x7e {
			t[b-0x21] = r
		}
	}
	return t
}

// charmapTable builds a 96-char table (bytes 0xA0..0xFF) from one of
// golang.org/x/text/encoding/charmap's ISO-8859 code pages — real,
// verified Unicode mappings rather than hand-transcribed ones.
func charmapTable(cm *charmap.Charmap) [96]rune {
	var out [96]rune
	for b := 0; b < 96; b++ {
		r := cm.DecodeByte(byte(0xa0 + b))
		out[b] = r
	}
	return out
}

var (
	isoLatin1Table   = charmapTable(charmap.ISO8859_1)
	isoCyrillicTable = charmapTable(charmap.ISO8859_5)
	isoGreekTable    = charmapTable(charmap.ISO8859_7)
	isoHebrewTable   = charmapTable(charmap.ISO8859_8)
	isoLatin5Table   = charmapTable(charmap.ISO8859_9) // Turkish
)

// NRCSDesignator maps the final byte(s) of an ESC ( / ) / * / + (94-char)
// or ESC - / . / / (96-char) designation to the set it selects. Unknown
// finals report ok=false so the caller leaves the slot alone.
func NRCSDesignator(final string, ninetySix bool) (NRCS, bool) {
	if ninetySix {
		switch final {
		case "A":
			return NRCSISOLatin1, true
		case "L":
			return NRCSISOCyrillic, true
		case "F":
			return NRCSISOGreek, true
		case "H":
			return NRCSISOHebrew, true
		case "M":
			return NRCSISOLatin5, true
		}
		return NRCSASCII, false
	}
	switch final {
	case "B":
		return NRCSASCII, true
	case "A":
		return NRCSUK, true
	case "0":
		return NRCSDECLineDrawing, true
	case ">":
		return NRCSDECTechnical, true
	case "<":
		return NRCSDECSupplemental, true
	case "4":
		return NRCSDutch, true
	case "C", "5":
		return NRCSFinnish, true
	case "R", "f":
		return NRCSFrench, true
	case "Q", "9":
		return NRCSFrenchCanadian, true
	case "K":
		return NRCSGerman, true
	case "Y":
		return NRCSItalian, true
	case "E", "6":
		return NRCSNorwegianDanish, true
	case "%6":
		return NRCSPortuguese, true
	case "Z":
		return NRCSSpanish, true
	case "H", "7":
		return NRCSSwedish, true
	case "=":
		return NRCSSwiss, true
	}
	return NRCSASCII, false
}

// TranslateNRCS maps a single byte through the named character set,
// returning the byte unchanged (as a rune) when the set has no override
// for that position.
func TranslateNRCS(set NRCS, b byte) rune {
	switch set {
	case NRCSDECLineDrawing:
		if b >= 0x21 && b <= 0x7e {
			if r := decSpecialGraphics[b-0x21]; r != 0 {
				return r
			}
		}
		return rune(b)
	case NRCSISOLatin1, NRCSISOCyrillic, NRCSISOGreek, NRCSISOHebrew, NRCSISOLatin5:
		if b < 0xa0 {
			return rune(b)
		}
		var table [96]rune
		switch set {
		case NRCSISOLatin1:
			table = isoLatin1Table
		case NRCSISOCyrillic:
			table = isoCyrillicTable
		case NRCSISOGreek:
			table = isoGreekTable
		case NRCSISOHebrew:
			table = isoHebrewTable
		case NRCSISOLatin5:
			table = isoLatin5Table
		}
		return table[b-0xa0]
	case NRCSASCII, NRCSUK:
		if set == NRCSUK && b == 0x23 {
			return '£'
		}
		return rune(b)
	default:
		table := nrcsTableFor(set)
		if b >= 0x21 && b <= 0x7e {
			if r := table[b-0x21]; r != 0 {
				return r
			}
		}
		return rune(b)
	}
}

func nrcsTableFor(set NRCS) nrcsTable {
	switch set {
	case NRCSDutch:
		return nrcsDutch
	case NRCSFinnish:
		return nrcsFinnish
	case NRCSFrench:
		return nrcsFrench
	case NRCSFrenchCanadian:
		return nrcsFrenchCanadian
	case NRCSGerman:
		return nrcsGerman
	case NRCSItalian:
		return nrcsItalian
	case NRCSNorwegianDanish:
		return nrcsNorwegianDanish
	case NRCSPortuguese:
		return nrcsPortuguese
	case NRCSSpanish:
		return nrcsSpanish
	case NRCSSwedish:
		return nrcsSwedish
	case NRCSSwiss:
		return nrcsSwiss
	default:
		// Includes NRCSDECTechnical and NRCSDECSupplemental: no table, so
		// their bytes pass through unchanged.
		return nrcsTable{}
	}
}
