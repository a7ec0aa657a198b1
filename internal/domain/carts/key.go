package carts

import (
	"fmt"
	"sort"
	"strings"
)

// LineKey derives the composite key that identifies a cart line:
// product id, then "-<variation id>" when present, then a canonicalized
// "-attr:value|attr:value" suffix when attributes were selected.
//
// The same product + variation + attributes always yield the same key, which
// is what lets AddItem merge duplicate adds instead of appending a new line.
func LineKey(productID int64, variationID *int64, attrs map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", productID)

	if variationID != nil && *variationID > 0 {
		fmt.Fprintf(&b, "-%d", *variationID)
	}

	if len(attrs) > 0 {
		// Canonicalize names before ordering: sorting on the raw names would
		// let stray whitespace produce distinct keys for the same selection.
		raw := make([]string, 0, len(attrs))
		for k := range attrs {
			raw = append(raw, k)
		}
		sort.Strings(raw)

		canon := make(map[string]string, len(attrs))
		keys := make([]string, 0, len(attrs))
		for _, k := range raw {
			name := strings.TrimSpace(k)
			if name == "" {
				continue
			}
			if _, seen := canon[name]; !seen {
				keys = append(keys, name)
			}
			canon[name] = strings.TrimSpace(attrs[k])
		}
		sort.Strings(keys)

		if len(keys) > 0 {
			b.WriteByte('-')
			for i, name := range keys {
				if i > 0 {
					b.WriteByte('|')
				}
				fmt.Fprintf(&b, "%s:%s", name, canon[name])
			}
		}
	}

	return b.String()
}
