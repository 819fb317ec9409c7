package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// CategorySeparator joins tags in the stored and transmitted form of a category list.
const CategorySeparator = ", "

// Categories is the ordered tag list of a product. Storage and the JSON API both
// carry it as one ", "-joined string; every split and join goes through this type.
type Categories []string

// ParseCategories splits a stored category string on ", " into tags. Pieces are trimmed,
// empty pieces are dropped and repeated tags keep their first position.
func ParseCategories(s string) Categories {
	parts := strings.Split(s, CategorySeparator)
	tags := make(Categories, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// String returns the canonical joined form.
func (c Categories) String() string {
	return strings.Join(c, CategorySeparator)
}

// Contains reports whether tag is one of c.
func (c Categories) Contains(tag string) bool {
	for _, t := range c {
		if t == tag {
			return true
		}
	}
	return false
}

// Toggle adds tag when it is absent and removes it otherwise.
func (c Categories) Toggle(tag string) Categories {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return c
	}
	out := make(Categories, 0, len(c)+1)
	removed := false
	for _, t := range c {
		if t == tag {
			removed = true
			continue
		}
		out = append(out, t)
	}
	if !removed {
		out = append(out, tag)
	}
	return out
}

// MarshalJSON writes the joined string form.
func (c Categories) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the joined string or an array of tags.
func (c *Categories) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*c = ParseCategories(joined)
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("category must be a string or an array of strings: %w", err)
	}
	*c = ParseCategories(strings.Join(tags, CategorySeparator))
	return nil
}

// Value stores the joined string form.
func (c Categories) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan reads the joined string form.
func (c *Categories) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
	case string:
		*c = ParseCategories(v)
	case []byte:
		*c = ParseCategories(string(v))
	default:
		return fmt.Errorf("unsupported category column type %T", value)
	}
	return nil
}
