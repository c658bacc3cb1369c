package summary

// Negative assertion sentinels. Cross-border summaries encode "nothing to
// report" as a resource whose code is one of a fixed set per section, either
// an eHDSI absent-or-unknown code or the SNOMED equivalent. Such a record is
// kept and labeled; its dependent fields are forced to "Not applicable".
var negativeAssertionCodes = map[RecordKind]map[string]bool{
	KindAllergy: {
		"no-allergy-info":    true,
		"no-known-allergies": true,
		"716186003":          true, // SNOMED: no known allergy
		"409137002":          true, // SNOMED: no known drug allergy
	},
	KindMedication: {
		"no-medication-info":   true,
		"no-known-medications": true,
		"787481004":            true, // SNOMED: no known medications
	},
	KindCondition: {
		"no-problem-info":   true,
		"no-known-problems": true,
		"160245001":         true, // SNOMED: no current problems or disability
	},
	KindProcedure: {
		"no-procedure-info":   true,
		"no-known-procedures": true,
	},
	KindImmunization: {
		"no-immunization-info": true,
	},
	KindDevice: {
		"no-device-info": true,
	},
}

// isNegativeAssertion reports whether any of the codes is a negative
// assertion sentinel for the given kind.
func isNegativeAssertion(kind RecordKind, codes []string) bool {
	sentinels := negativeAssertionCodes[kind]
	if sentinels == nil {
		return false
	}
	for _, code := range codes {
		if sentinels[code] {
			return true
		}
	}
	return false
}
