package fhir

import (
	"fmt"
	"strconv"
)

// ValidationError reports a document that does not satisfy minimal FHIR
// Bundle shape. It is the only fatal error class in the pipeline.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid bundle: " + e.Reason
}

// ValidateBundle verifies that doc is a Bundle with a list-shaped entry
// field. A Bundle with no entry at all is accepted (empty document).
func ValidateBundle(doc Raw) error {
	if doc == nil {
		return &ValidationError{Reason: "document is empty"}
	}
	rt, ok := GetString(doc, "resourceType")
	if !ok || rt != "Bundle" {
		return &ValidationError{Reason: fmt.Sprintf("resourceType is %q, expected Bundle", rt)}
	}
	if raw, present := doc["entry"]; present {
		if _, ok := raw.([]interface{}); !ok {
			return &ValidationError{Reason: "entry is not a list"}
		}
	}
	return nil
}

// EntryResources walks bundle.entry and returns every contained resource.
// Some national gateways emit entries whose value is itself an array of
// entry objects; those are flattened one level. Entries without a resource
// object are skipped.
func EntryResources(doc Raw) []Raw {
	entries, ok := GetArray(doc, "entry")
	if !ok {
		return nil
	}
	var resources []Raw
	for _, e := range entries {
		switch entry := e.(type) {
		case Raw:
			if r, ok := GetMap(entry, "resource"); ok {
				resources = append(resources, r)
			}
		case []interface{}:
			for _, nested := range entry {
				if em, ok := nested.(Raw); ok {
					if r, ok := GetMap(em, "resource"); ok {
						resources = append(resources, r)
					}
				}
			}
		}
	}
	return resources
}

// VersionID returns meta.versionId as an integer, defaulting to 0 when the
// field is absent or non-numeric.
func VersionID(resource Raw) int {
	meta, ok := GetMap(resource, "meta")
	if !ok {
		return 0
	}
	v, ok := GetString(meta, "versionId")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// LastUpdated returns meta.lastUpdated as the raw RFC3339 string, or "".
func LastUpdated(resource Raw) string {
	meta, ok := GetMap(resource, "meta")
	if !ok {
		return ""
	}
	return Str(meta, "lastUpdated")
}
