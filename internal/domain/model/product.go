package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Product is one spreadsheet row, keyed by the raw column header.
// No field is guaranteed present; every consumer must go through Value.
type Product map[string]string

// Field identifies a logical product field independent of the
// column spelling used in the sheet.
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldBrand
	FieldPrice
	FieldDiscount
	FieldDiscountPrice
	FieldDescription
	FieldCategory
	FieldObjective
	FieldImage
)

// fieldAliases maps each logical field to its accepted column names, in
// priority order. Matching is case-insensitive, so "Nombre"/"nombre"/"NOMBRE"
// all resolve through a single entry.
var fieldAliases = map[Field][]string{
	FieldID:            {"id"},
	FieldName:          {"nombre"},
	FieldBrand:         {"marca"},
	FieldPrice:         {"precio"},
	FieldDiscount:      {"descuento"},
	FieldDiscountPrice: {"precio_descuento"},
	FieldDescription:   {"descripcion", "descripción"},
	FieldCategory:      {"categoria", "categoría"},
	FieldObjective:     {"objetivo"},
	FieldImage:         {"imagen"},
}

// Value resolves a logical field on the product: the first alias whose cell
// normalizes to a present value wins. Casing duplicates of one alias (a sheet
// carrying both "Nombre" and "NOMBRE") resolve in sorted key order, so the
// winner never depends on map iteration. Returns ("", false) when every alias
// is missing or empty-after-normalization.
func (p Product) Value(f Field) (string, bool) {
	for _, alias := range fieldAliases[f] {
		var keys []string
		for key := range p {
			if strings.EqualFold(key, alias) {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			if v, ok := NormalizeValue(p[key]); ok {
				return v, true
			}
		}
	}
	return "", false
}

// ID returns the trimmed product identifier, or "" when the row has none.
// Rows without an ID are excluded from change detection.
func (p Product) ID() string {
	id, _ := p.Value(FieldID)
	return id
}

// NormalizeValue coerces a raw cell into a clean display string.
// Missing, blank and NaN-like cells are reported as absent. Numeric cells
// that are mathematically integral ("5.0") render without a decimal point,
// so 5, "5" and 5.0 compare equal wherever values are matched.
func NormalizeValue(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		// Guard the int64 conversion; sheet values never get near this.
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10), true
		}
		return s, true
	}
	switch strings.ToLower(s) {
	case "none", "null":
		return "", false
	}
	return s, true
}
