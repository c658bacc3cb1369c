package fhir

import "testing"

func TestStr(t *testing.T) {
	m := Raw{"status": "active", "count": 3.0}

	if got := Str(m, "status"); got != "active" {
		t.Errorf("expected active, got %q", got)
	}
	if got := Str(m, "count"); got != "" {
		t.Errorf("expected empty string for non-string field, got %q", got)
	}
	if got := Str(m, "missing"); got != "" {
		t.Errorf("expected empty string for missing field, got %q", got)
	}
}

func TestGetMaps_FiltersNonObjects(t *testing.T) {
	m := Raw{
		"coding": []interface{}{
			Raw{"code": "a"},
			"stray string",
			Raw{"code": "b"},
		},
	}

	maps := GetMaps(m, "coding")
	if len(maps) != 2 {
		t.Fatalf("expected 2 object elements, got %d", len(maps))
	}
	if Str(maps[1], "code") != "b" {
		t.Errorf("expected second element code b, got %q", Str(maps[1], "code"))
	}
}

func TestGetFloat(t *testing.T) {
	m := Raw{"value": 37.5, "count": 3}

	if v, ok := GetFloat(m, "value"); !ok || v != 37.5 {
		t.Errorf("expected 37.5, got %v (%v)", v, ok)
	}
	if v, ok := GetFloat(m, "count"); !ok || v != 3 {
		t.Errorf("expected int-typed value accepted, got %v (%v)", v, ok)
	}
	if _, ok := GetFloat(m, "missing"); ok {
		t.Error("expected miss for absent field")
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(120); got != "120" {
		t.Errorf("expected 120, got %q", got)
	}
	if got := FormatNumber(37.5); got != "37.5" {
		t.Errorf("expected 37.5, got %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	if got := Capitalize("active"); got != "Active" {
		t.Errorf("expected Active, got %q", got)
	}
	if got := Capitalize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStripReferencePrefix(t *testing.T) {
	cases := map[string]string{
		"Medication/med1": "med1",
		"urn:uuid:abc-12": "abc-12",
		"#contained1":     "contained1",
		"plain-id":        "plain-id",
	}
	for ref, want := range cases {
		if got := StripReferencePrefix(ref); got != want {
			t.Errorf("StripReferencePrefix(%q) = %q, want %q", ref, got, want)
		}
	}
}
