package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// mapAllergy normalizes an AllergyIntolerance. The allergen name is taken
// display-first from the code concept; CTS resolution of the ATC or SNOMED
// coding is the fallback when the source sent a bare code.
func mapAllergy(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	codes := fhir.AllCodes(resource, "code")
	coding := fhir.FirstCoding(resource, "code")

	if isNegativeAssertion(KindAllergy, codes) {
		display := orZero(fhir.ConceptText(resource, "code"), "No known allergies")
		return ClinicalRecord{
			Kind:                KindAllergy,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Allergy: &AllergyDetail{
				Allergen:           display,
				ClinicalStatus:     NotApplicable,
				VerificationStatus: NotApplicable,
				Criticality:        NotApplicable,
				Type:               NotApplicable,
				Category:           NotApplicable,
				OnsetDate:          NotApplicable,
				Reactions:          []AllergyReaction{},
			},
		}
	}

	allergen, _ := pc.conceptDisplay(resource, "code")
	detail := &AllergyDetail{
		Allergen:           orZero(allergen, Unknown),
		ClinicalStatus:     orZero(statusDisplay(resource, "clinicalStatus"), Unknown),
		VerificationStatus: orZero(statusDisplay(resource, "verificationStatus"), Unknown),
		Criticality:        orZero(fhir.Capitalize(fhir.Str(resource, "criticality")), NotSpecified),
		Type:               orZero(fhir.Capitalize(fhir.Str(resource, "type")), NotSpecified),
		Category:           orZero(allergyCategory(resource), NotSpecified),
		OnsetDate:          orZero(dateOnly(fhir.Str(resource, "onsetDateTime")), NotSpecified),
		Reactions:          mapReactions(pc, resource),
	}

	return ClinicalRecord{
		Kind:        KindAllergy,
		ID:          fhir.ResourceID(resource),
		DisplayText: detail.Allergen,
		Provenance:  coding,
		Allergy:     detail,
	}
}

// allergyCategory joins the category value list ("food", "medication", ...).
func allergyCategory(resource fhir.Raw) string {
	arr, ok := fhir.GetArray(resource, "category")
	if !ok {
		return ""
	}
	out := ""
	for _, el := range arr {
		if s, ok := el.(string); ok && s != "" {
			if out != "" {
				out += ", "
			}
			out += fhir.Capitalize(s)
		}
	}
	return out
}

// mapReactions extracts each reaction's manifestation, severity, onset and
// exposure route.
func mapReactions(pc *ParseContext, resource fhir.Raw) []AllergyReaction {
	reactions := []AllergyReaction{}
	for _, reaction := range fhir.GetMaps(resource, "reaction") {
		// manifestation is an array of CodeableConcept
		manifestation := ""
		if first, ok := fhir.FirstMap(reaction, "manifestation"); ok {
			manifestation = conceptDisplayOf(pc, first)
		}
		route, _ := pc.conceptDisplay(reaction, "exposureRoute")
		reactions = append(reactions, AllergyReaction{
			Manifestation: orZero(manifestation, NotSpecified),
			Severity:      orZero(fhir.Capitalize(fhir.Str(reaction, "severity")), NotSpecified),
			Onset:         dateOnly(fhir.Str(reaction, "onset")),
			ExposureRoute: route,
		})
	}
	return reactions
}

// conceptDisplayOf applies the unified concept extraction to a bare
// CodeableConcept value (rather than one nested under a key).
func conceptDisplayOf(pc *ParseContext, cc fhir.Raw) string {
	if text := fhir.Str(cc, "text"); text != "" {
		return text
	}
	if c, ok := fhir.FirstMap(cc, "coding"); ok {
		if d := fhir.Str(c, "display"); d != "" {
			return d
		}
		code := fhir.Str(c, "code")
		if code != "" {
			res := pc.resolve(code, fhir.SystemToOID(fhir.Str(c, "system")))
			if res.Resolved() {
				return res.Display
			}
			return fhir.Capitalize(code)
		}
	}
	return ""
}
