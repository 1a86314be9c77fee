package models

// UnknownCategory is returned for labels absent from a CategoryMap.
const UnknownCategory = "Unknown"

// CategoryMap maps class labels to human-readable category names. It is built
// once at startup and never modified afterwards.
type CategoryMap struct {
	names map[ClassLabel]string
}

// NewCategoryMap copies names into a new CategoryMap.
func NewCategoryMap(names map[string]string) CategoryMap {
	m := make(map[ClassLabel]string, len(names))
	for k, v := range names {
		m[ClassLabel(k)] = v
	}
	return CategoryMap{names: m}
}

// Lookup returns the category name for label, or UnknownCategory.
func (c CategoryMap) Lookup(label ClassLabel) string {
	if name, ok := c.names[label]; ok {
		return name
	}
	return UnknownCategory
}

// Names returns a copy of the mapping keyed by label string.
func (c CategoryMap) Names() map[string]string {
	out := make(map[string]string, len(c.names))
	for k, v := range c.names {
		out[string(k)] = v
	}
	return out
}

// Len returns the number of known categories.
func (c CategoryMap) Len() int {
	return len(c.names)
}
