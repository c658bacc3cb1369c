package summary

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/platform/metrics"
	"github.com/ncp/patient-summary/internal/terminology"
)

// Engine parses document bundles into clinical summaries. It is safe for
// concurrent use; all per-parse state lives in the ParseContext.
type Engine struct {
	resolver *terminology.Resolver
	logger   zerolog.Logger
}

func NewEngine(resolver *terminology.Resolver, logger zerolog.Logger) *Engine {
	return &Engine{resolver: resolver, logger: logger}
}

// sectionOrder fixes the section sequence and display titles of the output.
var sectionOrder = []struct {
	section SectionType
	title   string
	tag     string
}{
	{SectionAllergies, "Allergies and Intolerances", "AllergyIntolerance"},
	{SectionMedications, "Medication Summary", "MedicationStatement"},
	{SectionProblems, "Problem List", groupConditionActive},
	{SectionPastIllness, "History of Past Illness", groupConditionResolved},
	{SectionProcedures, "History of Procedures", "Procedure"},
	{SectionResults, "Results", "Observation"},
	{SectionImmunizations, "Immunizations", "Immunization"},
	{SectionMedicalDevices, "Medical Devices", "Device"},
	{SectionAdvanceDirectives, "Advance Directives", "Consent"},
	{SectionDiagnosticReports, "Diagnostic Reports", "DiagnosticReport"},
}

// Parse normalizes one FHIR document bundle. Fatal failures are confined to
// structural bundle problems; any individual resource that cannot be mapped
// is skipped and logged, and the parse carries on.
func (e *Engine) Parse(ctx context.Context, doc fhir.Raw) *ClinicalSummary {
	if err := fhir.ValidateBundle(doc); err != nil {
		e.logger.Error().Err(err).Msg("bundle rejected")
		metrics.ParsesTotal.WithLabelValues("failure").Inc()
		return newFailureSummary(err)
	}

	resources := fhir.EntryResources(doc)
	group := GroupResources(resources, e.logger)

	for tag, records := range group {
		group[tag] = dedupVersions(records)
	}
	group[groupConditionActive] = dedupConditions(group[groupConditionActive])
	group[groupConditionResolved] = dedupConditions(group[groupConditionResolved])

	pc := newParseContext(ctx, e.resolver, group, e.logger)

	out := &ClinicalSummary{
		Success:  true,
		Sections: []NormalizedSection{},
	}

	for _, s := range sectionOrder {
		records := mapGroup(pc, s.tag, group[s.tag])
		switch s.section {
		case SectionMedications:
			records = append(records, mapGroup(pc, "MedicationRequest", group["MedicationRequest"])...)
			records = dedupMedications(records)
		case SectionDiagnosticReports:
			// Clinical impressions have no dedicated mapper; the generic
			// fallback keeps them visible alongside the reports.
			records = append(records, mapGroup(pc, "ClinicalImpression", group["ClinicalImpression"])...)
		}
		out.Sections = append(out.Sections, NormalizedSection{
			Type:    s.section,
			Title:   s.title,
			Records: records,
			Count:   len(records),
		})
	}
	out.SectionsCount = len(out.Sections)
	out.ClinicalArrays = buildClinicalArrays(out.Sections)

	patient := group.first("Patient")
	composition := group.first("Composition")
	out.PatientIdentity = ExtractPatientIdentity(patient)
	out.AdministrativeData = ExtractAdministrativeData(patient)
	out.ContactData = ExtractContactData(patient)
	out.EmergencyContacts = ExtractEmergencyContacts(patient, group["RelatedPerson"])
	out.HealthcareData = ExtractHealthcareData(pc, composition, group["Practitioner"], group["Organization"])
	out.BundleMetadata = extractBundleMetadata(doc, len(resources), composition)

	metrics.ParsesTotal.WithLabelValues("success").Inc()
	e.logger.Info().
		Int("resources", len(resources)).
		Int("sections", out.SectionsCount).
		Msg("bundle parsed")
	return out
}

// buildClinicalArrays routes section records into the categorized arrays.
// Observations additionally fan out by classifier verdict, and pregnancy
// observations are folded into episode records.
func buildClinicalArrays(sections []NormalizedSection) ClinicalArrays {
	arrays := newClinicalArrays()

	for _, section := range sections {
		switch section.Type {
		case SectionAllergies:
			arrays.Allergies = append(arrays.Allergies, section.Records...)
		case SectionMedications:
			arrays.Medications = append(arrays.Medications, section.Records...)
		case SectionProblems:
			arrays.Problems = append(arrays.Problems, section.Records...)
		case SectionPastIllness:
			arrays.PastIllness = append(arrays.PastIllness, section.Records...)
		case SectionProcedures:
			arrays.Procedures = append(arrays.Procedures, section.Records...)
		case SectionResults:
			routeObservations(&arrays, section.Records)
		case SectionImmunizations:
			arrays.Immunizations = append(arrays.Immunizations, section.Records...)
		case SectionMedicalDevices:
			arrays.MedicalDevices = append(arrays.MedicalDevices, section.Records...)
		case SectionAdvanceDirectives:
			arrays.AdvanceDirectives = append(arrays.AdvanceDirectives, section.Records...)
		case SectionDiagnosticReports:
			arrays.DiagnosticReports = append(arrays.DiagnosticReports, section.Records...)
		}
	}

	if pregnancy := BuildPregnancyHistory(collectPregnancyObservations(sections)); len(pregnancy) > 0 {
		arrays.PregnancyHistory = pregnancy
	}
	return arrays
}

// routeObservations assigns each observation to exactly one array by its
// class. Unclassified observations land in laboratory results so nothing is
// silently dropped from display.
func routeObservations(arrays *ClinicalArrays, records []ClinicalRecord) {
	for _, rec := range records {
		switch ClassifyObservation(rec.Observation) {
		case ClassVitalSign:
			arrays.VitalSigns = append(arrays.VitalSigns, rec)
		case ClassSocialHistory:
			arrays.SocialHistory = append(arrays.SocialHistory, rec)
		case ClassPhysicalFinding:
			arrays.PhysicalFindings = append(arrays.PhysicalFindings, rec)
		default:
			arrays.LaboratoryResults = append(arrays.LaboratoryResults, rec)
		}
	}
}

func collectPregnancyObservations(sections []NormalizedSection) []ClinicalRecord {
	var out []ClinicalRecord
	for _, section := range sections {
		if section.Type != SectionResults {
			continue
		}
		for _, rec := range section.Records {
			if IsPregnancyRelated(rec.Observation) {
				out = append(out, rec)
			}
		}
	}
	return out
}

// dedupMedications merges records describing the same medication, keeping the
// most complete one. The identity key is the ATC code, then the lowercased
// name; a record with neither gets a synthetic key and never merges.
func dedupMedications(records []ClinicalRecord) []ClinicalRecord {
	out := make([]ClinicalRecord, 0, len(records))
	index := make(map[string]int)

	for _, rec := range records {
		key := medicationKey(rec)
		i, seen := index[key]
		if !seen {
			out = append(out, rec)
			index[key] = len(out) - 1
			continue
		}
		if medicationCompleteness(rec) > medicationCompleteness(out[i]) {
			out[i] = rec
		}
	}
	return out
}

func medicationKey(rec ClinicalRecord) string {
	if rec.Medication == nil || rec.IsNegativeAssertion {
		return uuid.NewString()
	}
	if rec.Medication.ATCCode != "" {
		return "atc:" + rec.Medication.ATCCode
	}
	if !isPlaceholder(rec.Medication.Name) {
		return "name:" + strings.ToLower(rec.Medication.Name)
	}
	return uuid.NewString()
}

// medicationCompleteness scores 0 to 5, one point per informative field.
func medicationCompleteness(rec ClinicalRecord) int {
	d := rec.Medication
	if d == nil {
		return 0
	}
	score := 0
	for _, field := range []string{d.PharmaceuticalForm, d.Strength, d.Dosage, d.Route, d.Schedule} {
		if !isPlaceholder(field) {
			score++
		}
	}
	return score
}
