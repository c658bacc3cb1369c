package summary

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

func TestGroupResources_SplitsConditionsByStatus(t *testing.T) {
	resources := []fhir.Raw{
		{"resourceType": "Condition", "id": "c1", "clinicalStatus": fhir.Raw{
			"coding": []interface{}{fhir.Raw{"code": "active"}},
		}},
		{"resourceType": "Condition", "id": "c2", "clinicalStatus": fhir.Raw{
			"coding": []interface{}{fhir.Raw{"code": "resolved"}},
		}},
		{"resourceType": "Condition", "id": "c3", "clinicalStatus": fhir.Raw{
			"coding": []interface{}{fhir.Raw{"code": "remission"}},
		}},
		{"resourceType": "Condition", "id": "c4"}, // no status: active
	}

	group := GroupResources(resources, zerolog.Nop())

	if len(group[groupConditionActive]) != 2 {
		t.Errorf("expected 2 active conditions, got %d", len(group[groupConditionActive]))
	}
	if len(group[groupConditionResolved]) != 2 {
		t.Errorf("expected 2 resolved conditions, got %d", len(group[groupConditionResolved]))
	}
	if len(group["Condition"]) != 0 {
		t.Errorf("expected no plain Condition tag, got %d", len(group["Condition"]))
	}
}

func TestGroupResources_DropsUnsupportedKinds(t *testing.T) {
	resources := []fhir.Raw{
		{"resourceType": "Patient", "id": "p1"},
		{"resourceType": "ExplanationOfBenefit", "id": "x1"},
		{"resourceType": "Appointment", "id": "x2"},
	}

	group := GroupResources(resources, zerolog.Nop())

	if len(group) != 1 {
		t.Errorf("expected only Patient to survive, got %d tags", len(group))
	}
	if len(group["Patient"]) != 1 {
		t.Errorf("expected 1 patient, got %d", len(group["Patient"]))
	}
}
