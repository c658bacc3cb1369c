// Package summary normalizes a FHIR R4 document bundle into a canonical,
// de-duplicated, code-resolved clinical summary. Input bundles come from
// 28+ independent national systems, so every stage tolerates partial or
// malformed resources and degrades to explicit placeholders instead of
// failing the parse.
package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// RecordKind identifies the variant carried by a ClinicalRecord.
type RecordKind string

const (
	KindAllergy          RecordKind = "allergy"
	KindMedication       RecordKind = "medication"
	KindCondition        RecordKind = "condition"
	KindProcedure        RecordKind = "procedure"
	KindObservation      RecordKind = "observation"
	KindImmunization     RecordKind = "immunization"
	KindDiagnosticReport RecordKind = "diagnostic_report"
	KindDevice           RecordKind = "device"
	KindConsent          RecordKind = "consent"
	KindGeneric          RecordKind = "generic"
)

// Display placeholders. Partial data degrades to these instead of erroring.
const (
	NotApplicable = "Not applicable"
	NotSpecified  = "Not specified"
	Unknown       = "Unknown"
)

// ClinicalRecord is the normalized form of one clinical resource. Exactly
// one of the detail pointers matching Kind is set.
type ClinicalRecord struct {
	Kind                RecordKind  `json:"kind"`
	ID                  string      `json:"id"`
	DisplayText         string      `json:"display_text"`
	IsNegativeAssertion bool        `json:"is_negative_assertion"`
	Provenance          fhir.Coding `json:"provenance"`

	Allergy      *AllergyDetail      `json:"allergy,omitempty"`
	Medication   *MedicationDetail   `json:"medication,omitempty"`
	Condition    *ConditionDetail    `json:"condition,omitempty"`
	Procedure    *ProcedureDetail    `json:"procedure,omitempty"`
	Observation  *ObservationDetail  `json:"observation,omitempty"`
	Immunization *ImmunizationDetail `json:"immunization,omitempty"`
	Report       *ReportDetail       `json:"report,omitempty"`
	Device       *DeviceDetail       `json:"device,omitempty"`
	Consent      *ConsentDetail      `json:"consent,omitempty"`
}

// AllergyReaction is one reaction entry of an allergy record.
type AllergyReaction struct {
	Manifestation string `json:"manifestation"`
	Severity      string `json:"severity"`
	Onset         string `json:"onset,omitempty"`
	ExposureRoute string `json:"exposure_route,omitempty"`
}

type AllergyDetail struct {
	Allergen           string            `json:"allergen"`
	ClinicalStatus     string            `json:"clinical_status"`
	VerificationStatus string            `json:"verification_status"`
	Criticality        string            `json:"criticality"`
	Type               string            `json:"type"`
	Category           string            `json:"category"`
	OnsetDate          string            `json:"onset_date"`
	Reactions          []AllergyReaction `json:"reactions"`
}

type MedicationDetail struct {
	Name               string `json:"name"`
	ATCCode            string `json:"atc_code,omitempty"`
	PharmaceuticalForm string `json:"pharmaceutical_form"`
	Strength           string `json:"strength"`
	Dosage             string `json:"dosage"`
	Route              string `json:"route"`
	Schedule           string `json:"schedule"`
	Status             string `json:"status"`
	StartDate          string `json:"start_date,omitempty"`
	EndDate            string `json:"end_date,omitempty"`
}

type ConditionDetail struct {
	Name               string `json:"name"`
	ClinicalStatus     string `json:"clinical_status"`
	VerificationStatus string `json:"verification_status"`
	Category           string `json:"category"`
	Severity           string `json:"severity"`
	OnsetDate          string `json:"onset_date"`
	AbatementDate      string `json:"abatement_date,omitempty"`
}

type ProcedureDetail struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	BodySite string `json:"body_site,omitempty"`
}

// ObservationDetail keeps the fields later stages need: the classifier reads
// CategoryCodes, CategoryText, Code and Name; the pregnancy grouper reads
// Code, Value, ValueCodes and EffectiveDate.
type ObservationDetail struct {
	Name                 string        `json:"name"`
	Code                 string        `json:"code,omitempty"`
	CodeSystem           string        `json:"code_system,omitempty"`
	Status               string        `json:"status"`
	Value                string        `json:"value"`
	EffectiveDate        string        `json:"effective_date"`
	ClinicalSignificance string        `json:"clinical_significance"`
	CategoryCodes        []string      `json:"-"`
	CategoryText         string        `json:"-"`
	ValueCodes           []fhir.Coding `json:"-"`
}

type ImmunizationDetail struct {
	Vaccine       string `json:"vaccine"`
	TargetDisease string `json:"target_disease"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	DoseNumber    string `json:"dose_number,omitempty"`
	Route         string `json:"route,omitempty"`
}

type ReportDetail struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Date       string `json:"date"`
	Category   string `json:"category"`
	Conclusion string `json:"conclusion,omitempty"`
}

type DeviceDetail struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Manufacturer   string `json:"manufacturer,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	UDI            string `json:"udi,omitempty"`
}

type ConsentDetail struct {
	Scope         string `json:"scope"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Decision      string `json:"decision"`
	EffectiveTime string `json:"effective_time"`
}

// PregnancyRecord aggregates one or more pregnancy observations that share a
// (delivery date, outcome) key into a single episode.
type PregnancyRecord struct {
	PregnancyType  string   `json:"pregnancy_type"` // "current" or "past"
	Outcome        string   `json:"outcome"`
	OutcomeCode    string   `json:"outcome_code,omitempty"`
	DeliveryDate   string   `json:"delivery_date,omitempty"`
	GestationalAge string   `json:"gestational_age,omitempty"`
	BirthWeight    string   `json:"birth_weight,omitempty"`
	Complications  []string `json:"complications,omitempty"`
}

// orZero returns s, or the placeholder when s is empty.
func orZero(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// isPlaceholder reports whether s carries no clinical information.
func isPlaceholder(s string) bool {
	switch s {
	case "", NotApplicable, NotSpecified, Unknown:
		return true
	}
	return false
}
