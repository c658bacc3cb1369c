package fhir

import "testing"

func TestSystemToOID(t *testing.T) {
	cases := map[string]string{
		"http://www.whocc.no/atc":  OIDATC,
		"http://snomed.info/sct":   OIDSNOMED,
		"http://loinc.org":         OIDLOINC,
		"http://unitsofmeasure.org": OIDUCUM,
		"http://example.org/local": "http://example.org/local",
	}
	for system, want := range cases {
		if got := SystemToOID(system); got != want {
			t.Errorf("SystemToOID(%q) = %q, want %q", system, got, want)
		}
	}
}

func TestFirstCoding(t *testing.T) {
	resource := Raw{
		"code": Raw{
			"coding": []interface{}{
				Raw{"system": "http://snomed.info/sct", "code": "38341003", "display": "Hypertension"},
				Raw{"system": "http://loinc.org", "code": "other"},
			},
		},
	}

	coding := FirstCoding(resource, "code")
	if coding.System != OIDSNOMED {
		t.Errorf("expected SNOMED OID, got %q", coding.System)
	}
	if coding.Code != "38341003" || coding.Display != "Hypertension" {
		t.Errorf("unexpected coding: %+v", coding)
	}
}

func TestFirstCoding_TextOnly(t *testing.T) {
	resource := Raw{"code": Raw{"text": "Free text diagnosis"}}

	coding := FirstCoding(resource, "code")
	if coding.Code != "" {
		t.Errorf("expected empty code, got %q", coding.Code)
	}
	if coding.Display != "Free text diagnosis" {
		t.Errorf("expected text carried into display, got %q", coding.Display)
	}
}

func TestCodingBySystem(t *testing.T) {
	resource := Raw{
		"code": Raw{
			"coding": []interface{}{
				Raw{"system": "http://snomed.info/sct", "code": "111"},
				Raw{"system": "http://www.whocc.no/atc", "code": "H03AA01"},
			},
		},
	}

	coding := CodingBySystem(resource, "code", OIDATC)
	if coding.Code != "H03AA01" {
		t.Errorf("expected ATC coding, got %+v", coding)
	}
	if c := CodingBySystem(resource, "code", OIDEDQM); !c.IsZero() {
		t.Errorf("expected zero coding for absent system, got %+v", c)
	}
}

func TestConceptText(t *testing.T) {
	withText := Raw{"code": Raw{
		"text":   "Explicit text",
		"coding": []interface{}{Raw{"display": "Coding display"}},
	}}
	if got := ConceptText(withText, "code"); got != "Explicit text" {
		t.Errorf("expected explicit text preferred, got %q", got)
	}

	codeOnly := Raw{"code": Raw{
		"coding": []interface{}{Raw{"code": "active"}},
	}}
	if got := ConceptText(codeOnly, "code"); got != "Active" {
		t.Errorf("expected capitalized code fallback, got %q", got)
	}
}

func TestAllCodes(t *testing.T) {
	resource := Raw{
		"code": Raw{
			"coding": []interface{}{
				Raw{"code": "a"},
				Raw{"display": "no code"},
				Raw{"code": "b"},
			},
		},
	}
	codes := AllCodes(resource, "code")
	if len(codes) != 2 || codes[0] != "a" || codes[1] != "b" {
		t.Errorf("unexpected codes: %v", codes)
	}
}
