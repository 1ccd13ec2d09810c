package product

import "strings"

// ResolveVariant picks the variant a cart or order line refers to. variants
// must be ordered by id.
//
// A line without a size resolves to the FREESIZE variant when the product
// has one, and to the first variant (lowest id) otherwise. A line with a size
// matches case-insensitively; its colour, when present, must also match
// case-insensitively.
func ResolveVariant(variants []Variant, size, color *string) (Variant, bool) {
	if size == nil || *size == "" {
		for _, v := range variants {
			if v.Size == FreeSize {
				return v, true
			}
		}
		if len(variants) == 0 {
			return Variant{}, false
		}
		return variants[0], true
	}

	for _, v := range variants {
		if !strings.EqualFold(v.Size, *size) {
			continue
		}
		if color != nil && *color != "" {
			if v.Color == nil || !strings.EqualFold(*v.Color, *color) {
				continue
			}
		}
		return v, true
	}

	return Variant{}, false
}
