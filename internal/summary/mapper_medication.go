package summary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

// strengthPattern captures a numeric strength ("50 mg", "0,5 mg/ml",
// "100 mg / 5 ml") out of free text. Decimal commas appear in several
// national systems.
var strengthPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mg|g|mcg|µg|ug|ml|iu|%|mmol)(?:\s*/\s*(\d+(?:[.,]\d+)?)?\s*(mg|g|ml|h|dose))?`)

// timing.repeat.when event codes mapped to display vocabulary.
var whenDisplay = map[string]string{
	"MORN":  "Morning",
	"AFT":   "Afternoon",
	"EVE":   "Evening",
	"NIGHT": "Night",
	"ACM":   "Morning",
	"ACD":   "Afternoon",
	"ACV":   "Evening",
	"ACN":   "Night",
	"PCM":   "After breakfast",
	"PCD":   "After lunch",
	"PCV":   "After dinner",
	"AC":    "Before meals",
	"PC":    "After meals",
	"HS":    "At bedtime",
	"WAKE":  "On waking",
}

// mapMedicationStatement normalizes a MedicationStatement (or
// MedicationRequest; the shapes agree on everything this engine reads).
//
// The medication name is always resolved from the ATC code: free-text
// display fields in cross-border bundles are written in the source country's
// language and cannot be trusted for display. The numeric strength embedded
// in the original text is captured before that text is discarded.
func mapMedicationStatement(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	medication, inline := medicationConcept(pc, resource)

	codes := codesOf(medication, "code")
	coding := fhir.FirstCoding(medication, "code")
	if inline != nil {
		codes = append(codes, inlineCodes(inline)...)
		if coding.IsZero() {
			coding = firstInlineCoding(inline)
		}
	}

	if isNegativeAssertion(KindMedication, codes) {
		display := "No known medications"
		if inline != nil {
			display = orZero(fhir.Str(inline, "text"), display)
		}
		return ClinicalRecord{
			Kind:                KindMedication,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Medication: &MedicationDetail{
				Name:               display,
				PharmaceuticalForm: NotApplicable,
				Strength:           NotApplicable,
				Dosage:             NotApplicable,
				Route:              NotApplicable,
				Schedule:           NotApplicable,
				Status:             NotApplicable,
			},
		}
	}

	// Capture the source text strength before the name is replaced by the
	// CTS resolution.
	earlyText := ""
	if inline != nil {
		earlyText = fhir.Str(inline, "text")
	}

	atc := medicationATC(medication, inline)
	name := ""
	if atc.Code != "" {
		name = pc.resolve(atc.Code, fhir.OIDATC).Display
		coding = atc
	} else if snomed := medicationCodingBySystem(medication, inline, fhir.OIDSNOMED); snomed.Code != "" {
		res := pc.resolve(snomed.Code, fhir.OIDSNOMED)
		if res.Resolved() {
			name = res.Display
		}
		coding = snomed
	}
	if name == "" {
		// Last resort only: the untranslated source text.
		name = orZero(earlyText, Unknown)
	}

	detail := &MedicationDetail{
		Name:               name,
		ATCCode:            atc.Code,
		PharmaceuticalForm: orZero(pharmaceuticalForm(pc, medication), NotSpecified),
		Strength:           orZero(medicationStrength(pc, medication, earlyText), NotSpecified),
		Dosage:             orZero(medicationDose(resource), NotSpecified),
		Route:              orZero(medicationRoute(pc, resource), NotSpecified),
		Schedule:           orZero(medicationSchedule(resource), NotSpecified),
		Status:             orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
	}
	if period, ok := fhir.GetMap(resource, "effectivePeriod"); ok {
		detail.StartDate = dateOnly(fhir.Str(period, "start"))
		detail.EndDate = dateOnly(fhir.Str(period, "end"))
	} else if dt := fhir.Str(resource, "effectiveDateTime"); dt != "" {
		detail.StartDate = dateOnly(dt)
	}

	return ClinicalRecord{
		Kind:        KindMedication,
		ID:          fhir.ResourceID(resource),
		DisplayText: name,
		Provenance:  coding,
		Medication:  detail,
	}
}

// medicationConcept locates the medication's coded concept: the referenced
// Medication resource when medicationReference resolves, else nil with the
// inline medicationCodeableConcept returned separately.
func medicationConcept(pc *ParseContext, resource fhir.Raw) (medication fhir.Raw, inline fhir.Raw) {
	if ref, ok := fhir.GetMap(resource, "medicationReference"); ok {
		if m, found := pc.MedicationByReference(fhir.Str(ref, "reference")); found {
			medication = m
		}
	}
	inline, _ = fhir.GetMap(resource, "medicationCodeableConcept")
	return medication, inline
}

func codesOf(resource fhir.Raw, key string) []string {
	if resource == nil {
		return nil
	}
	return fhir.AllCodes(resource, key)
}

func inlineCodes(cc fhir.Raw) []string {
	var codes []string
	for _, c := range fhir.GetMaps(cc, "coding") {
		if code := fhir.Str(c, "code"); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func firstInlineCoding(cc fhir.Raw) fhir.Coding {
	if c, ok := fhir.FirstMap(cc, "coding"); ok {
		return fhir.Coding{
			System:  fhir.SystemToOID(fhir.Str(c, "system")),
			Code:    fhir.Str(c, "code"),
			Display: fhir.Str(c, "display"),
		}
	}
	return fhir.Coding{}
}

// medicationATC finds the ATC coding on the referenced Medication or the
// inline concept.
func medicationATC(medication, inline fhir.Raw) fhir.Coding {
	if medication != nil {
		if c := fhir.CodingBySystem(medication, "code", fhir.OIDATC); c.Code != "" {
			return c
		}
	}
	if inline != nil {
		for _, c := range fhir.GetMaps(inline, "coding") {
			if fhir.SystemToOID(fhir.Str(c, "system")) == fhir.OIDATC {
				return fhir.Coding{System: fhir.OIDATC, Code: fhir.Str(c, "code"), Display: fhir.Str(c, "display")}
			}
		}
	}
	return fhir.Coding{}
}

func medicationCodingBySystem(medication, inline fhir.Raw, oid string) fhir.Coding {
	if medication != nil {
		if c := fhir.CodingBySystem(medication, "code", oid); c.Code != "" {
			return c
		}
	}
	if inline != nil {
		for _, c := range fhir.GetMaps(inline, "coding") {
			if fhir.SystemToOID(fhir.Str(c, "system")) == oid {
				return fhir.Coding{System: oid, Code: fhir.Str(c, "code"), Display: fhir.Str(c, "display")}
			}
		}
	}
	return fhir.Coding{}
}

// pharmaceuticalForm resolves Medication.form, preferring its display text
// and then the EDQM dose-form code.
func pharmaceuticalForm(pc *ParseContext, medication fhir.Raw) string {
	if medication == nil {
		return ""
	}
	form, _ := pc.conceptDisplay(medication, "form")
	return form
}

// medicationStrength applies the strength priority order: the referenced
// Medication's ingredient strength ratio, then the numeric pattern captured
// from the original concept text, then an EDQM strength code resolution.
func medicationStrength(pc *ParseContext, medication fhir.Raw, earlyText string) string {
	edqm := ""
	if medication != nil {
		if ingredient, ok := fhir.FirstMap(medication, "ingredient"); ok {
			if strength, ok := fhir.GetMap(ingredient, "strength"); ok {
				if s := formatRatio(strength); s != "" {
					return s
				}
				// EDQM-coded strength on a valueless numerator; resolved only
				// if the text pattern below misses too.
				if num, ok := fhir.GetMap(strength, "numerator"); ok {
					if code := fhir.Str(num, "code"); code != "" && fhir.SystemToOID(fhir.Str(num, "system")) == fhir.OIDEDQM {
						edqm = code
					}
				}
			}
		}
	}
	if m := strengthPattern.FindString(earlyText); m != "" {
		return strings.TrimSpace(m)
	}
	if edqm != "" {
		res := pc.resolve(edqm, fhir.OIDEDQM)
		if res.Resolved() {
			return res.Display
		}
	}
	return ""
}

// formatRatio renders a FHIR Ratio as "num unit / den unit", omitting a
// denominator of exactly 1.
func formatRatio(ratio fhir.Raw) string {
	num, ok := fhir.GetMap(ratio, "numerator")
	if !ok {
		return ""
	}
	value, ok := fhir.GetFloat(num, "value")
	if !ok {
		return ""
	}
	out := fhir.FormatNumber(value)
	if unit := quantityUnit(num); unit != "" {
		out += " " + unit
	}
	if den, ok := fhir.GetMap(ratio, "denominator"); ok {
		dv, hasValue := fhir.GetFloat(den, "value")
		dUnit := quantityUnit(den)
		if hasValue && (dv != 1 || dUnit != "") {
			if dv == 1 {
				out += "/" + dUnit
			} else {
				out += fmt.Sprintf("/%s %s", fhir.FormatNumber(dv), dUnit)
			}
		}
	}
	return strings.TrimSpace(out)
}

func quantityUnit(q fhir.Raw) string {
	if unit := fhir.Str(q, "unit"); unit != "" {
		return unit
	}
	return fhir.Str(q, "code")
}

// medicationDose reads dosage[0] dose quantity, falling back to dosage text.
func medicationDose(resource fhir.Raw) string {
	dosage, ok := fhir.FirstMap(resource, "dosage")
	if !ok {
		dosage, ok = fhir.FirstMap(resource, "dosageInstruction")
	}
	if !ok {
		return ""
	}
	if dr, ok := fhir.FirstMap(dosage, "doseAndRate"); ok {
		if dq, ok := fhir.GetMap(dr, "doseQuantity"); ok {
			if v, ok := fhir.GetFloat(dq, "value"); ok {
				return strings.TrimSpace(fhir.FormatNumber(v) + " " + quantityUnit(dq))
			}
		}
	}
	return fhir.Str(dosage, "text")
}

// medicationRoute resolves dosage[0].route.
func medicationRoute(pc *ParseContext, resource fhir.Raw) string {
	dosage, ok := fhir.FirstMap(resource, "dosage")
	if !ok {
		dosage, ok = fhir.FirstMap(resource, "dosageInstruction")
	}
	if !ok {
		return ""
	}
	route, _ := pc.conceptDisplay(dosage, "route")
	return route
}

// medicationSchedule derives a display schedule from timing.repeat: mapped
// when-event codes joined with the frequency/period expression when present.
func medicationSchedule(resource fhir.Raw) string {
	dosage, ok := fhir.FirstMap(resource, "dosage")
	if !ok {
		dosage, ok = fhir.FirstMap(resource, "dosageInstruction")
	}
	if !ok {
		return ""
	}
	timing, ok := fhir.GetMap(dosage, "timing")
	if !ok {
		return ""
	}
	repeat, ok := fhir.GetMap(timing, "repeat")
	if !ok {
		return ""
	}

	var parts []string
	if whens, ok := fhir.GetArray(repeat, "when"); ok {
		for _, w := range whens {
			code, _ := w.(string)
			if display, known := whenDisplay[code]; known {
				parts = append(parts, display)
			} else if code != "" {
				parts = append(parts, code)
			}
		}
	}
	if freq, ok := fhir.GetFloat(repeat, "frequency"); ok {
		expr := fmt.Sprintf("%s time(s)", fhir.FormatNumber(freq))
		if period, ok := fhir.GetFloat(repeat, "period"); ok {
			unit := fhir.Str(repeat, "periodUnit")
			expr += fmt.Sprintf(" per %s %s", fhir.FormatNumber(period), unit)
		}
		parts = append(parts, strings.TrimSpace(expr))
	}
	return strings.Join(parts, ", ")
}
