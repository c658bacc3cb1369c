package summary

import (
	"testing"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

func obsRecord(code, name, value, effective string, valueCodes ...string) ClinicalRecord {
	detail := &ObservationDetail{
		Name:          name,
		Code:          code,
		Value:         orZero(value, NotSpecified),
		EffectiveDate: orZero(effective, NotSpecified),
	}
	for _, vc := range valueCodes {
		detail.ValueCodes = append(detail.ValueCodes, fhir.Coding{System: fhir.OIDSNOMED, Code: vc})
	}
	return ClinicalRecord{Kind: KindObservation, Observation: detail}
}

func TestBuildPregnancyHistory_GroupsByDateAndOutcome(t *testing.T) {
	// Two past episodes: a livebirth and a termination, each reported through
	// several observations. A twin livebirth and a termination on the same
	// date must stay separate episodes.
	records := BuildPregnancyHistory([]ClinicalRecord{
		obsRecord(loincDeliveryDate, "Date of delivery", "2018-05-12", "2018-05-12", snomedLivebirth),
		obsRecord(loincBirthWeight, "Birth weight", "3200 g", "2018-05-12"),
		obsRecord(loincDeliveryDate, "Date of delivery", "2021-02-03", "2021-02-03", snomedTermination),
	})

	if len(records) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(records))
	}

	first := records[0]
	if first.PregnancyType != "past" || first.Outcome != "Livebirth" || first.DeliveryDate != "2018-05-12" {
		t.Errorf("unexpected first episode: %+v", first)
	}
	if first.BirthWeight != "3200 g" {
		t.Errorf("expected birth weight folded into the livebirth episode, got %q", first.BirthWeight)
	}

	second := records[1]
	if second.Outcome != "Termination of pregnancy" || second.DeliveryDate != "2021-02-03" {
		t.Errorf("unexpected second episode: %+v", second)
	}
}

func TestBuildPregnancyHistory_SameDateDifferentOutcomes(t *testing.T) {
	records := BuildPregnancyHistory([]ClinicalRecord{
		obsRecord(loincDeliveryDate, "Date of delivery", "2020-01-01", "2020-01-01", snomedLivebirth),
		obsRecord(loincDeliveryDate, "Date of delivery", "2020-01-01", "2020-01-01", snomedTermination),
	})

	if len(records) != 2 {
		t.Errorf("expected outcomes on the same date kept apart, got %d episodes", len(records))
	}
}

func TestBuildPregnancyHistory_CurrentLeadsHistory(t *testing.T) {
	records := BuildPregnancyHistory([]ClinicalRecord{
		obsRecord(loincDeliveryDate, "Date of delivery", "2018-05-12", "2018-05-12", snomedLivebirth),
		obsRecord(loincGestationalAge, "Gestational age", "22 wk", "2024-04-01"),
		obsRecord(loincEDD, "Delivery date estimated", "2024-08-15", "2024-04-01"),
	})

	if len(records) != 2 {
		t.Fatalf("expected current plus one past episode, got %d", len(records))
	}
	current := records[0]
	if current.PregnancyType != "current" {
		t.Fatalf("expected current episode first, got %+v", current)
	}
	if current.GestationalAge != "22 wk" || current.DeliveryDate != "2024-08-15" {
		t.Errorf("unexpected current episode: %+v", current)
	}
	if current.Outcome != "Pregnant" {
		t.Errorf("expected Pregnant outcome, got %q", current.Outcome)
	}
}

func TestBuildPregnancyHistory_OutcomelessObservationJoinsDateGroup(t *testing.T) {
	records := BuildPregnancyHistory([]ClinicalRecord{
		obsRecord(loincDeliveryDate, "Date of delivery", "2018-05-12", "2018-05-12", snomedLivebirth),
		obsRecord("", "Pregnancy complication", "Gestational diabetes", "2018-05-12"),
	})

	if len(records) != 1 {
		t.Fatalf("expected single episode, got %d", len(records))
	}
	if len(records[0].Complications) != 1 || records[0].Complications[0] != "Gestational diabetes" {
		t.Errorf("expected complication joined to the dated episode, got %+v", records[0])
	}
}

func TestBuildPregnancyHistory_IgnoresUnrelatedObservations(t *testing.T) {
	records := BuildPregnancyHistory([]ClinicalRecord{
		obsRecord("8867-4", "Heart rate", "72 /min", "2024-01-01"),
	})
	if len(records) != 0 {
		t.Errorf("expected no episodes, got %d", len(records))
	}
}
