package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// VariantKey is the canonical identity of a (product, size, color) selection.
// It indexes both the variant stock matrix and the session cart. The key is
// always the tuple itself; the encoded string form exists only for map keys
// and session serialization.
type VariantKey struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// placeholder values the storefront sends when a product has no real size or
// color to choose. They all collapse to the empty string so a size-less
// product and an explicitly empty size produce the same key.
var noSelectionValues = map[string]bool{
	"":      true,
	"única": true,
	"único": true,
	"none":  true,
}

// NormalizeOption trims a size/color value and folds the "no selection"
// placeholders (Única, Único, None, empty) to the empty string.
func NormalizeOption(value string) string {
	trimmed := strings.TrimSpace(value)
	if noSelectionValues[strings.ToLower(trimmed)] {
		return ""
	}
	return trimmed
}

// ResolveVariantKey builds the canonical key for a selection. Size/color
// combinations outside the product's configured lists are NOT rejected here;
// the stock ledger reports zero availability for unknown combinations.
func ResolveVariantKey(productID int64, size, color string) VariantKey {
	return VariantKey{
		ProductID: productID,
		Size:      NormalizeOption(size),
		Color:     NormalizeOption(color),
	}
}

// HasVariant reports whether the key carries a real size or color selection.
func (k VariantKey) HasVariant() bool {
	return k.Size != "" || k.Color != ""
}

// Encode returns the serialized form "productId|size|color" used as the cart
// map key. Normalized sizes/colors never contain '|'.
func (k VariantKey) Encode() string {
	return fmt.Sprintf("%d|%s|%s", k.ProductID, k.Size, k.Color)
}

// ParseVariantKey is the inverse of Encode.
func ParseVariantKey(encoded string) (VariantKey, error) {
	parts := strings.SplitN(encoded, "|", 3)
	if len(parts) != 3 {
		return VariantKey{}, fmt.Errorf("invalid variant key: %q", encoded)
	}

	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return VariantKey{}, fmt.Errorf("invalid product id in variant key %q: %w", encoded, err)
	}

	return VariantKey{
		ProductID: productID,
		Size:      parts[1],
		Color:     parts[2],
	}, nil
}

// Label returns a human-readable variant description for logs and order
// summaries, e.g. "Talla: M | Color: Negro". Empty for no-variant keys.
func (k VariantKey) Label() string {
	var parts []string
	if k.Size != "" {
		parts = append(parts, "Talla: "+k.Size)
	}
	if k.Color != "" {
		parts = append(parts, "Color: "+k.Color)
	}
	return strings.Join(parts, " | ")
}

// SplitOptionList parses a comma-separated option list from the catalog
// ("S, M, L" or "Negro,Blanco") into trimmed, non-empty values.
func SplitOptionList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var options []string
	for _, raw := range strings.Split(list, ",") {
		option := strings.TrimSpace(raw)
		if option != "" {
			options = append(options, option)
		}
	}
	return options
}
