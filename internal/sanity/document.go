package sanity

// Document is a raw content-store document as sent in a create mutation.
type Document map[string]any

// ImageField builds an image field pointing at an uploaded asset.
func ImageField(assetID string) map[string]any {
	return map[string]any{
		"_type": "image",
		"asset": map[string]any{
			"_type": "reference",
			"_ref":  assetID,
		},
	}
}

// SlugField builds a slug field.
func SlugField(current string) map[string]any {
	return map[string]any{
		"_type":   "slug",
		"current": current,
	}
}

// TextBlocks builds a portable-text body holding a single normal paragraph.
func TextBlocks(text string) []map[string]any {
	return []map[string]any{
		{
			"_type": "block",
			"style": "normal",
			"children": []map[string]any{
				{"_type": "span", "text": text},
			},
		},
	}
}
