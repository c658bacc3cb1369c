package summary

import (
	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/platform/metrics"
)

// mapperFunc turns one raw resource into a normalized record.
type mapperFunc func(pc *ParseContext, resource fhir.Raw) ClinicalRecord

// mappers dispatches by group tag. String-typed branching on resource kinds
// is confined to this one registry.
var mappers = map[string]mapperFunc{
	"AllergyIntolerance":   mapAllergy,
	"MedicationStatement":  mapMedicationStatement,
	"MedicationRequest":    mapMedicationStatement,
	groupConditionActive:   mapCondition,
	groupConditionResolved: mapCondition,
	"Procedure":            mapProcedure,
	"Observation":          mapObservation,
	"Immunization":         mapImmunization,
	"DiagnosticReport":     mapDiagnosticReport,
	"Device":               mapDevice,
	"Consent":              mapConsent,
}

// mapGroup maps every record under tag. A mapper panic on one malformed
// resource skips that resource, with id and kind logged, and the parse
// continues.
func mapGroup(pc *ParseContext, tag string, records []fhir.Raw) []ClinicalRecord {
	mapper, ok := mappers[tag]
	if !ok {
		mapper = mapGeneric
	}
	out := make([]ClinicalRecord, 0, len(records))
	for _, r := range records {
		rec, ok := mapOne(pc, tag, mapper, r)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func mapOne(pc *ParseContext, tag string, mapper mapperFunc, resource fhir.Raw) (rec ClinicalRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			pc.logger.Warn().
				Str("resource_kind", tag).
				Str("resource_id", fhir.ResourceID(resource)).
				Interface("panic", r).
				Msg("resource mapping failed, skipping resource")
			metrics.ResourcesSkippedTotal.WithLabelValues(tag, "mapping-error").Inc()
			ok = false
		}
	}()
	return mapper(pc, resource), true
}

// conceptDisplay implements the unified CodeableConcept extraction: explicit
// text or display first, then CTS resolution of the first coding, then the
// capitalized bare code. The coding is returned for provenance.
func (pc *ParseContext) conceptDisplay(resource fhir.Raw, key string) (string, fhir.Coding) {
	coding := fhir.FirstCoding(resource, key)
	if text := fhir.ConceptText(resource, key); text != "" {
		return text, coding
	}
	if coding.Code != "" {
		res := pc.resolve(coding.Code, coding.System)
		if res.Resolved() {
			return res.Display, coding
		}
		return fhir.Capitalize(coding.Code), coding
	}
	return "", coding
}

// statusDisplay extracts a status-like CodeableConcept preferring display
// text and falling back to the capitalized code.
func statusDisplay(resource fhir.Raw, key string) string {
	coding := fhir.FirstCoding(resource, key)
	if coding.Display != "" {
		return coding.Display
	}
	return fhir.Capitalize(coding.Code)
}

// mapGeneric covers supported kinds that have no dedicated mapper so the
// section metadata stays complete.
func mapGeneric(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	display, coding := pc.conceptDisplay(resource, "code")
	return ClinicalRecord{
		Kind:        KindGeneric,
		ID:          fhir.ResourceID(resource),
		DisplayText: orZero(display, NotSpecified),
		Provenance:  coding,
	}
}
