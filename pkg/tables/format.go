package tables

import (
	"strings"
)

const identifierWidth = 8

// CleanCell trims surrounding whitespace and maps the NaN artifacts of
// upstream numeric parsing to the empty string.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "nan" || s == "NaN" {
		return ""
	}
	return s
}

// FormatIdentifier normalizes an identifier-like cell: strips a trailing
// ".0" introduced by numeric parsing, and left-pads purely-numeric values
// shorter than 8 digits with zeros. Registration numbers are 8 digits and
// must round-trip exactly, leading zeros included.
func FormatIdentifier(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, ".0")
	if isDigits(s) && len(s) < identifierWidth {
		s = strings.Repeat("0", identifierWidth-len(s)) + s
	}
	return strings.TrimSpace(s)
}

// NormalizeIdentifiers returns a copy of the table with the first column
// cleaned and the second column identifier-formatted. Applied before any
// persisted write so round-tripping never reintroduces numeric ambiguity.
func (t *Table) NormalizeIdentifiers() *Table {
	out := t.Clone()
	if len(out.Columns) == 0 {
		return out
	}
	first := out.Columns[0]
	for _, row := range out.Rows {
		row[first] = CleanCell(row.Get(first))
	}
	if len(out.Columns) >= 2 {
		second := out.Columns[1]
		for _, row := range out.Rows {
			row[second] = FormatIdentifier(row.Get(second))
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
