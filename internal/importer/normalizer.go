package importer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/vietanh2810/sorteo-api/internal/domain"
)

// RawRow maps normalized header names to the raw values of one CSV row.
// Columns missing from a short row are absent from the map.
type RawRow map[string]string

// Accepted header spellings per canonical field, tried in order. Every alias
// goes through NormalizeHeader so accented and dotted variants collapse.
var (
	dniAliases       = aliases("dni")
	firstNameAliases = aliases("nombre")
	lastNameAliases  = aliases("apellido")
	phoneAliases     = aliases("tel", "telefono")
	locationAliases  = aliases("localidad")
	provinceAliases  = aliases("provincia")
	cardAliases      = aliases("nro_carton", "Nro. Carton", "Nro. Cartón", "carton")
)

// Legacy single-byte encodings tried when a value is not valid UTF-8.
var fallbackEncodings = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

func aliases(names ...string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := NormalizeHeader(n)
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}

	return out
}

// NormalizeHeader canonicalizes one header token: lower case, spaces become
// underscores, periods are dropped and "ó" becomes "o".
func NormalizeHeader(token string) string {
	h := strings.ToLower(strings.TrimSpace(Sanitize(token)))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, ".", "")
	h = strings.ReplaceAll(h, "ó", "o")

	return h
}

// Sanitize returns value as UTF-8. Valid UTF-8 is kept as is; otherwise the
// first legacy encoding whose decoding has no C1 control characters wins.
func Sanitize(value string) string {
	if utf8.ValidString(value) {
		return value
	}

	var decoded string
	for _, enc := range fallbackEncodings {
		s, err := enc.NewDecoder().String(value)
		if err != nil {
			continue
		}

		decoded = s
		if !hasC1Controls(s) {
			return s
		}
	}

	if decoded == "" {
		return strings.ToValidUTF8(value, "\uFFFD")
	}

	return decoded
}

func hasC1Controls(s string) bool {
	for _, r := range s {
		if r >= 0x80 && r <= 0x9f {
			return true
		}
	}

	return false
}

func lookup(row RawRow, keys []string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return strings.TrimSpace(Sanitize(v))
		}
	}

	return ""
}

// NormalizeRow maps one raw row onto the canonical participant record. It never
// fails: absent fields become empty strings.
func NormalizeRow(row RawRow, raffleID uint) domain.ParticipantRecord {
	fullName := lookup(row, firstNameAliases) + " " + lookup(row, lastNameAliases)

	return domain.ParticipantRecord{
		RaffleID:   raffleID,
		DNI:        strings.ReplaceAll(lookup(row, dniAliases), ".", ""),
		FullName:   strings.TrimSpace(fullName),
		Phone:      lookup(row, phoneAliases),
		Location:   lookup(row, locationAliases),
		Province:   lookup(row, provinceAliases),
		CardNumber: lookup(row, cardAliases),
	}
}
