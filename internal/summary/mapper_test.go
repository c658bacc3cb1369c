package summary

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/terminology"
)

// testContext builds a ParseContext backed by the offline resolver (static
// table and echo only) over the given group.
func testContext(group ResourceGroup) *ParseContext {
	resolver := terminology.NewResolver(nil, terminology.NewCache(), "en-GB", zerolog.Nop())
	return newParseContext(context.Background(), resolver, group, zerolog.Nop())
}

func TestMapAllergy(t *testing.T) {
	pc := testContext(ResourceGroup{})
	rec := mapAllergy(pc, fhir.Raw{
		"resourceType": "AllergyIntolerance",
		"id":           "a1",
		"code": fhir.Raw{
			"coding": []interface{}{fhir.Raw{
				"system": "http://snomed.info/sct", "code": "91936005", "display": "Penicillin allergy",
			}},
		},
		"clinicalStatus": fhir.Raw{"coding": []interface{}{fhir.Raw{"code": "active"}}},
		"criticality":    "high",
		"category":       []interface{}{"medication"},
		"onsetDateTime":  "2015-06-01T00:00:00Z",
		"reaction": []interface{}{fhir.Raw{
			"manifestation": []interface{}{fhir.Raw{"text": "Anaphylaxis"}},
			"severity":      "severe",
		}},
	})

	if rec.Kind != KindAllergy || rec.IsNegativeAssertion {
		t.Fatalf("unexpected record: %+v", rec)
	}
	d := rec.Allergy
	if d.Allergen != "Penicillin allergy" {
		t.Errorf("expected display-first allergen, got %q", d.Allergen)
	}
	if d.ClinicalStatus != "Active" {
		t.Errorf("expected capitalized status, got %q", d.ClinicalStatus)
	}
	if d.Criticality != "High" || d.Category != "Medication" {
		t.Errorf("unexpected criticality/category: %q / %q", d.Criticality, d.Category)
	}
	if d.OnsetDate != "2015-06-01" {
		t.Errorf("expected date-only onset, got %q", d.OnsetDate)
	}
	if len(d.Reactions) != 1 || d.Reactions[0].Manifestation != "Anaphylaxis" || d.Reactions[0].Severity != "Severe" {
		t.Errorf("unexpected reactions: %+v", d.Reactions)
	}
}

func TestMapAllergy_NegativeAssertion(t *testing.T) {
	pc := testContext(ResourceGroup{})
	rec := mapAllergy(pc, fhir.Raw{
		"resourceType": "AllergyIntolerance",
		"id":           "a2",
		"code": fhir.Raw{
			"text":   "No known allergies",
			"coding": []interface{}{fhir.Raw{"code": "no-known-allergies"}},
		},
	})

	if !rec.IsNegativeAssertion {
		t.Fatal("expected negative assertion")
	}
	d := rec.Allergy
	if d.Allergen != "No known allergies" {
		t.Errorf("expected sentinel text kept, got %q", d.Allergen)
	}
	if d.ClinicalStatus != NotApplicable || d.Criticality != NotApplicable || d.OnsetDate != NotApplicable {
		t.Errorf("expected dependent fields forced to %q, got %+v", NotApplicable, d)
	}
	if len(d.Reactions) != 0 {
		t.Errorf("expected no reactions, got %d", len(d.Reactions))
	}
}

func TestMapMedication_ResolvesNameFromATC(t *testing.T) {
	// The source text is Danish; the name must come from the ATC resolution
	// and the strength from the numeric pattern in that text.
	pc := testContext(ResourceGroup{})
	rec := mapMedicationStatement(pc, fhir.Raw{
		"resourceType": "MedicationStatement",
		"id":           "m1",
		"status":       "active",
		"medicationCodeableConcept": fhir.Raw{
			"text": "Eltroxin tabletter 50 mikrogram, 0,05 mg",
			"coding": []interface{}{fhir.Raw{
				"system": "http://www.whocc.no/atc", "code": "H03AA01",
			}},
		},
	})

	d := rec.Medication
	if d.Name != "Levothyroxine" {
		t.Errorf("expected ATC-resolved name, got %q", d.Name)
	}
	if d.ATCCode != "H03AA01" {
		t.Errorf("expected ATC code carried, got %q", d.ATCCode)
	}
	if d.Strength != "0,05 mg" {
		t.Errorf("expected strength captured from source text, got %q", d.Strength)
	}
	if rec.Provenance.System != fhir.OIDATC {
		t.Errorf("expected ATC provenance, got %+v", rec.Provenance)
	}
}

func TestMapMedication_ReferencedMedicationResource(t *testing.T) {
	med := fhir.Raw{
		"resourceType": "Medication",
		"id":           "med1",
		"code": fhir.Raw{"coding": []interface{}{fhir.Raw{
			"system": "http://www.whocc.no/atc", "code": "N02BE01",
		}}},
		"form": fhir.Raw{"text": "Tablet"},
		"ingredient": []interface{}{fhir.Raw{
			"strength": fhir.Raw{
				"numerator":   fhir.Raw{"value": 500.0, "unit": "mg"},
				"denominator": fhir.Raw{"value": 1.0},
			},
		}},
	}
	pc := testContext(ResourceGroup{"Medication": {med}})

	rec := mapMedicationStatement(pc, fhir.Raw{
		"resourceType":        "MedicationStatement",
		"id":                  "m2",
		"status":              "active",
		"medicationReference": fhir.Raw{"reference": "Medication/med1"},
		"dosage": []interface{}{fhir.Raw{
			"route": fhir.Raw{"text": "Oral"},
			"doseAndRate": []interface{}{fhir.Raw{
				"doseQuantity": fhir.Raw{"value": 1.0, "unit": "tablet"},
			}},
			"timing": fhir.Raw{"repeat": fhir.Raw{
				"when":      []interface{}{"MORN", "EVE"},
				"frequency": 2.0, "period": 1.0, "periodUnit": "d",
			}},
		}},
	})

	d := rec.Medication
	if d.Name != "Paracetamol" {
		t.Errorf("expected name from referenced Medication's ATC code, got %q", d.Name)
	}
	if d.PharmaceuticalForm != "Tablet" {
		t.Errorf("expected form from Medication resource, got %q", d.PharmaceuticalForm)
	}
	if d.Strength != "500 mg" {
		t.Errorf("expected ingredient ratio strength, got %q", d.Strength)
	}
	if d.Dosage != "1 tablet" {
		t.Errorf("unexpected dosage: %q", d.Dosage)
	}
	if d.Route != "Oral" {
		t.Errorf("unexpected route: %q", d.Route)
	}
	if d.Schedule != "Morning, Evening, 2 time(s) per 1 d" {
		t.Errorf("unexpected schedule: %q", d.Schedule)
	}
}

func TestMapMedication_TextStrengthBeatsCodedStrength(t *testing.T) {
	// Ingredient strength with a coded numerator but no value cannot render a
	// ratio; the numeric pattern in the source text takes precedence over
	// resolving the dose-form code.
	med := fhir.Raw{
		"resourceType": "Medication",
		"id":           "med2",
		"code": fhir.Raw{"coding": []interface{}{fhir.Raw{
			"system": "http://www.whocc.no/atc", "code": "H03AA01",
		}}},
		"ingredient": []interface{}{fhir.Raw{
			"strength": fhir.Raw{
				"numerator": fhir.Raw{
					"system": "urn:oid:0.4.0.127.0.16.1.1.2.1",
					"code":   "15054000",
				},
			},
		}},
	}
	pc := testContext(ResourceGroup{"Medication": {med}})

	rec := mapMedicationStatement(pc, fhir.Raw{
		"resourceType":        "MedicationStatement",
		"id":                  "m4",
		"status":              "active",
		"medicationReference": fhir.Raw{"reference": "Medication/med2"},
		"medicationCodeableConcept": fhir.Raw{
			"text": "Eltroxin tabletter 0,05 mg",
		},
	})

	if got := rec.Medication.Strength; got != "0,05 mg" {
		t.Errorf("expected text-pattern strength preferred, got %q", got)
	}
}

func TestMapMedication_NegativeAssertion(t *testing.T) {
	pc := testContext(ResourceGroup{})
	rec := mapMedicationStatement(pc, fhir.Raw{
		"resourceType": "MedicationStatement",
		"id":           "m3",
		"medicationCodeableConcept": fhir.Raw{
			"coding": []interface{}{fhir.Raw{"code": "787481004"}},
		},
	})

	if !rec.IsNegativeAssertion {
		t.Fatal("expected negative assertion")
	}
	if rec.Medication.Strength != NotApplicable || rec.Medication.Route != NotApplicable {
		t.Errorf("expected dependent fields forced to %q, got %+v", NotApplicable, rec.Medication)
	}
}

func TestMapCondition(t *testing.T) {
	pc := testContext(ResourceGroup{})
	rec := mapCondition(pc, fhir.Raw{
		"resourceType": "Condition",
		"id":           "c1",
		"code": fhir.Raw{"coding": []interface{}{fhir.Raw{
			"system": "http://snomed.info/sct", "code": "38341003", "display": "Hypertensive disorder",
		}}},
		"clinicalStatus":     fhir.Raw{"coding": []interface{}{fhir.Raw{"code": "active"}}},
		"verificationStatus": fhir.Raw{"coding": []interface{}{fhir.Raw{"code": "confirmed"}}},
		"severity":           fhir.Raw{"coding": []interface{}{fhir.Raw{"display": "Moderate"}}},
		"onsetDateTime":      "2019-11-20",
	})

	d := rec.Condition
	if d.Name != "Hypertensive disorder" {
		t.Errorf("unexpected name: %q", d.Name)
	}
	if d.ClinicalStatus != "Active" || d.VerificationStatus != "Confirmed" || d.Severity != "Moderate" {
		t.Errorf("unexpected statuses: %+v", d)
	}
	if d.OnsetDate != "2019-11-20" {
		t.Errorf("unexpected onset: %q", d.OnsetDate)
	}
}

func TestMapOne_RecoversMapperPanic(t *testing.T) {
	pc := testContext(ResourceGroup{})
	panicking := func(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
		panic("malformed resource")
	}

	_, ok := mapOne(pc, "Observation", panicking, fhir.Raw{"id": "bad"})
	if ok {
		t.Error("expected panicking mapper to be reported as a skip")
	}

	rec, ok := mapOne(pc, "Observation", mapObservation, fhir.Raw{
		"resourceType": "Observation", "id": "good", "code": fhir.Raw{"text": "Heart rate"},
	})
	if !ok || rec.ID != "good" {
		t.Errorf("expected healthy resource mapped, got %+v (%v)", rec, ok)
	}
}
