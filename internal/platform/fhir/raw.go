// Package fhir provides shared plumbing for working with raw FHIR R4
// resources decoded as map[string]interface{}. National systems disagree
// on which optional fields they populate, so every accessor here is
// nil-safe and type-checked.
package fhir

import (
	"fmt"
	"strings"
	"unicode"
)

// Raw is a decoded FHIR resource or fragment.
type Raw = map[string]interface{}

// GetString safely extracts a string field.
func GetString(m Raw, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Str is GetString without the presence flag.
func Str(m Raw, key string) string {
	s, _ := GetString(m, key)
	return s
}

// GetMap safely extracts a nested object field.
func GetMap(m Raw, key string) (Raw, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	nested, ok := v.(Raw)
	return nested, ok
}

// GetArray safely extracts an array field.
func GetArray(m Raw, key string) ([]interface{}, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	return arr, ok
}

// GetMaps extracts an array field and filters it down to its object elements.
func GetMaps(m Raw, key string) []Raw {
	arr, ok := GetArray(m, key)
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(arr))
	for _, el := range arr {
		if em, ok := el.(Raw); ok {
			out = append(out, em)
		}
	}
	return out
}

// FirstMap returns the first object element of an array field.
func FirstMap(m Raw, key string) (Raw, bool) {
	maps := GetMaps(m, key)
	if len(maps) == 0 {
		return nil, false
	}
	return maps[0], true
}

// GetBool safely extracts a boolean field.
func GetBool(m Raw, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetFloat safely extracts a numeric field. JSON numbers decode as float64;
// integer-typed values are accepted too for robustness against re-encoded
// bundles.
func GetFloat(m Raw, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// FormatNumber renders a JSON number without a trailing ".0" for whole values.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// ResourceID returns the logical id of a resource, if present.
func ResourceID(resource Raw) string {
	return Str(resource, "id")
}

// ResourceType returns the resourceType of a resource, if present.
func ResourceType(resource Raw) string {
	return Str(resource, "resourceType")
}

// Capitalize upper-cases the first rune of s. Used when falling back from a
// coded value (e.g. "active") to display text ("Active").
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// StripReferencePrefix reduces "Medication/med1", "urn:uuid:med1" or
// "#med1" to the bare id "med1".
func StripReferencePrefix(ref string) string {
	ref = strings.TrimPrefix(ref, "urn:uuid:")
	ref = strings.TrimPrefix(ref, "#")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

// IsURNReference reports whether ref uses the urn:uuid scheme.
func IsURNReference(ref string) bool {
	return strings.HasPrefix(ref, "urn:uuid:")
}
