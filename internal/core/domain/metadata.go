package domain

import "strconv"

// MetadataDocument is the provider-shaped metadata tree for one token.
// Providers return structurally inconsistent documents depending on the
// minting pipeline, so the tree is kept untyped. An absent or mistyped
// field is valid and yields the zero value, never an error.
//
// The document is read-only input to the core. It is never mutated.
type MetadataDocument map[string]any

// GetString returns the string at the given key path, walking nested
// objects. Missing or non-string values yield "".
func (d MetadataDocument) GetString(path ...string) string {
	v := d.get(path...)
	s, _ := v.(string)
	return s
}

// GetMap returns the nested object at the given key path, or nil.
func (d MetadataDocument) GetMap(path ...string) map[string]any {
	v := d.get(path...)
	m, _ := v.(map[string]any)
	return m
}

// GetSlice returns the array at the given key path, or nil.
func (d MetadataDocument) GetSlice(path ...string) []any {
	v := d.get(path...)
	s, _ := v.([]any)
	return s
}

// Has reports whether a non-nil value exists at the given key path.
func (d MetadataDocument) Has(path ...string) bool {
	return d.get(path...) != nil
}

func (d MetadataDocument) get(path ...string) any {
	var current any = map[string]any(d)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

// SimplifiedMetadata is the lossy projection of a MetadataDocument kept
// alongside the media artifacts. Every field is optional; absent fields
// are omitted from the serialised form.
type SimplifiedMetadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedBy   string   `json:"createdBy,omitempty"`
	YearCreated string   `json:"yearCreated,omitempty"`
}

// Simplify projects the fixed metadata fields out of the document.
// Fields are read from the "metadata" section when present, otherwise
// from the top level.
func (d MetadataDocument) Simplify() SimplifiedMetadata {
	section := d.GetMap("metadata")
	if section == nil {
		section = map[string]any(d)
	}
	doc := MetadataDocument(section)

	simplified := SimplifiedMetadata{
		Name:        doc.GetString("name"),
		Description: doc.GetString("description"),
		CreatedBy:   doc.GetString("createdBy"),
		YearCreated: stringify(doc.get("yearCreated")),
	}
	for _, tag := range doc.GetSlice("tags") {
		if s, ok := tag.(string); ok && s != "" {
			simplified.Tags = append(simplified.Tags, s)
		}
	}
	return simplified
}

// stringify renders scalar values that providers encode inconsistently
// (yearCreated appears as both string and number in the wild).
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64. Years are integral.
		n := int64(val)
		if float64(n) != val {
			return ""
		}
		return strconv.FormatInt(n, 10)
	default:
		return ""
	}
}
