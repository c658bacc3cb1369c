package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// mapCondition normalizes a Condition from either clinical-status bucket.
// Status, verification, category and severity each prefer the coding display
// and fall back to the capitalized code.
func mapCondition(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	codes := fhir.AllCodes(resource, "code")
	coding := fhir.FirstCoding(resource, "code")

	if isNegativeAssertion(KindCondition, codes) {
		display := orZero(fhir.ConceptText(resource, "code"), "No known problems")
		return ClinicalRecord{
			Kind:                KindCondition,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Condition: &ConditionDetail{
				Name:               display,
				ClinicalStatus:     NotApplicable,
				VerificationStatus: NotApplicable,
				Category:           NotApplicable,
				Severity:           NotApplicable,
				OnsetDate:          NotApplicable,
			},
		}
	}

	name, _ := pc.conceptDisplay(resource, "code")
	detail := &ConditionDetail{
		Name:               orZero(name, Unknown),
		ClinicalStatus:     orZero(statusDisplay(resource, "clinicalStatus"), Unknown),
		VerificationStatus: orZero(statusDisplay(resource, "verificationStatus"), Unknown),
		Category:           orZero(conditionCategory(resource), NotSpecified),
		Severity:           orZero(statusDisplay(resource, "severity"), NotSpecified),
		OnsetDate:          orZero(conditionOnset(resource), NotSpecified),
		AbatementDate:      dateOnly(fhir.Str(resource, "abatementDateTime")),
	}

	return ClinicalRecord{
		Kind:        KindCondition,
		ID:          fhir.ResourceID(resource),
		DisplayText: detail.Name,
		Provenance:  coding,
		Condition:   detail,
	}
}

// conditionCategory reads category[0] with display-then-code preference.
func conditionCategory(resource fhir.Raw) string {
	coding := fhir.FirstCodingFromArray(resource, "category")
	if coding.Display != "" {
		return coding.Display
	}
	return fhir.Capitalize(coding.Code)
}
