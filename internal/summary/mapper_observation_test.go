package summary

import (
	"testing"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

func TestObservationValue_Quantity(t *testing.T) {
	pc := testContext(ResourceGroup{})
	got := observationValue(pc, fhir.Raw{
		"valueQuantity": fhir.Raw{"value": 128.0, "unit": "mmHg"},
	})
	if got != "128 mmHg" {
		t.Errorf("expected 128 mmHg, got %q", got)
	}
}

func TestObservationValue_Boolean(t *testing.T) {
	pc := testContext(ResourceGroup{})
	if got := observationValue(pc, fhir.Raw{"valueBoolean": true}); got != "Yes" {
		t.Errorf("expected Yes, got %q", got)
	}
	if got := observationValue(pc, fhir.Raw{"valueBoolean": false}); got != "No" {
		t.Errorf("expected No, got %q", got)
	}
}

func TestObservationValue_Range(t *testing.T) {
	pc := testContext(ResourceGroup{})
	got := observationValue(pc, fhir.Raw{
		"valueRange": fhir.Raw{
			"low":  fhir.Raw{"value": 4.0, "unit": "mmol/l"},
			"high": fhir.Raw{"value": 6.0, "unit": "mmol/l"},
		},
	})
	if got != "4 mmol/l - 6 mmol/l" {
		t.Errorf("unexpected range rendering: %q", got)
	}

	openEnded := observationValue(pc, fhir.Raw{
		"valueRange": fhir.Raw{"high": fhir.Raw{"value": 6.0, "unit": "mmol/l"}},
	})
	if openEnded != "<= 6 mmol/l" {
		t.Errorf("unexpected open range rendering: %q", openEnded)
	}
}

func TestObservationValue_CodeableConcept(t *testing.T) {
	pc := testContext(ResourceGroup{})
	got := observationValue(pc, fhir.Raw{
		"valueCodeableConcept": fhir.Raw{
			"coding": []interface{}{fhir.Raw{
				"system": "http://snomed.info/sct", "code": "281050002", "display": "Livebirth",
			}},
		},
	})
	if got != "Livebirth" {
		t.Errorf("expected Livebirth, got %q", got)
	}
}

func TestClinicalSignificance_Interpretation(t *testing.T) {
	got := clinicalSignificance(fhir.Raw{
		"interpretation": []interface{}{fhir.Raw{"text": "High"}},
	})
	if got != "Above reference range" {
		t.Errorf("expected interpretation mapping, got %q", got)
	}

	critical := clinicalSignificance(fhir.Raw{
		"interpretation": []interface{}{fhir.Raw{
			"coding": []interface{}{fhir.Raw{"code": "HH", "display": "Critical high"}},
		}},
	})
	if critical != "Critical value" {
		t.Errorf("expected critical label, got %q", critical)
	}
}

func TestClinicalSignificance_ReferenceRange(t *testing.T) {
	low := clinicalSignificance(fhir.Raw{
		"valueQuantity": fhir.Raw{"value": 3.1},
		"referenceRange": []interface{}{fhir.Raw{
			"low":  fhir.Raw{"value": 4.0},
			"high": fhir.Raw{"value": 6.0},
		}},
	})
	if low != "Below reference range" {
		t.Errorf("expected below, got %q", low)
	}

	within := clinicalSignificance(fhir.Raw{
		"valueQuantity": fhir.Raw{"value": 5.0},
		"referenceRange": []interface{}{fhir.Raw{
			"low":  fhir.Raw{"value": 4.0},
			"high": fhir.Raw{"value": 6.0},
		}},
	})
	if within != "Within reference range" {
		t.Errorf("expected within, got %q", within)
	}
}

func TestClinicalSignificance_StatusFallback(t *testing.T) {
	if got := clinicalSignificance(fhir.Raw{"status": "preliminary"}); got != "Preliminary result" {
		t.Errorf("expected preliminary label, got %q", got)
	}
	if got := clinicalSignificance(fhir.Raw{"status": "final"}); got != NotSpecified {
		t.Errorf("expected %q for plain final result, got %q", NotSpecified, got)
	}
}

func TestClassifyObservation_CategoryBeatsKeyword(t *testing.T) {
	// Category says laboratory even though the name smells like a vital sign.
	detail := &ObservationDetail{
		Name:          "Blood pressure panel reagent check",
		CategoryCodes: []string{"laboratory"},
	}
	if got := ClassifyObservation(detail); got != ClassLaboratory {
		t.Errorf("expected category to win, got %q", got)
	}
}

func TestClassifyObservation_LOINCBeatsKeyword(t *testing.T) {
	detail := &ObservationDetail{Name: "Glucose in serum", Code: "8867-4"}
	if got := ClassifyObservation(detail); got != ClassVitalSign {
		t.Errorf("expected LOINC heart-rate code to win, got %q", got)
	}
}

func TestClassifyObservation_KeywordFallbackAndUnclassified(t *testing.T) {
	if got := ClassifyObservation(&ObservationDetail{Name: "Tobacco use status"}); got != ClassSocialHistory {
		t.Errorf("expected keyword match, got %q", got)
	}
	if got := ClassifyObservation(&ObservationDetail{Name: "Completely opaque"}); got != ClassUnclassified {
		t.Errorf("expected unclassified, got %q", got)
	}
}
