package summary

import (
	"fmt"
	"strings"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

// mapObservation normalizes an Observation, formatting whichever member of
// the FHIR R4 value[x] union is present and deriving a clinical-significance
// label from interpretation, reference range or status.
func mapObservation(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	coding := fhir.FirstCoding(resource, "code")
	name, _ := pc.conceptDisplay(resource, "code")

	detail := &ObservationDetail{
		Name:          orZero(name, Unknown),
		Code:          coding.Code,
		CodeSystem:    coding.System,
		Status:        orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Value:         orZero(observationValue(pc, resource), NotSpecified),
		EffectiveDate: orZero(observationEffective(resource), NotSpecified),
		CategoryCodes: observationCategoryCodes(resource),
		CategoryText:  observationCategoryText(resource),
		ValueCodes:    observationValueCodes(resource),
	}
	detail.ClinicalSignificance = clinicalSignificance(resource)

	display := detail.Name
	if detail.Value != NotSpecified {
		display = fmt.Sprintf("%s: %s", detail.Name, detail.Value)
	}

	return ClinicalRecord{
		Kind:        KindObservation,
		ID:          fhir.ResourceID(resource),
		DisplayText: display,
		Provenance:  coding,
		Observation: detail,
	}
}

// observationValue formats each member of the R4 value[x] union with its own
// display rule.
func observationValue(pc *ParseContext, obs fhir.Raw) string {
	if vq, ok := fhir.GetMap(obs, "valueQuantity"); ok {
		return formatQuantity(vq)
	}
	if vc, ok := fhir.GetMap(obs, "valueCodeableConcept"); ok {
		return conceptDisplayOf(pc, vc)
	}
	if vs, ok := fhir.GetString(obs, "valueString"); ok {
		return vs
	}
	if vb, ok := fhir.GetBool(obs, "valueBoolean"); ok {
		if vb {
			return "Yes"
		}
		return "No"
	}
	if vi, ok := fhir.GetFloat(obs, "valueInteger"); ok {
		return fhir.FormatNumber(vi)
	}
	if vr, ok := fhir.GetMap(obs, "valueRange"); ok {
		low, hasLow := fhir.GetMap(vr, "low")
		high, hasHigh := fhir.GetMap(vr, "high")
		switch {
		case hasLow && hasHigh:
			return formatQuantity(low) + " - " + formatQuantity(high)
		case hasLow:
			return ">= " + formatQuantity(low)
		case hasHigh:
			return "<= " + formatQuantity(high)
		}
		return ""
	}
	if vr, ok := fhir.GetMap(obs, "valueRatio"); ok {
		return formatRatio(vr)
	}
	if vp, ok := fhir.GetMap(obs, "valuePeriod"); ok {
		return strings.TrimSpace(dateOnly(fhir.Str(vp, "start")) + " to " + dateOnly(fhir.Str(vp, "end")))
	}
	if vd, ok := fhir.GetString(obs, "valueDateTime"); ok {
		return dateOnly(vd)
	}
	if vt, ok := fhir.GetString(obs, "valueTime"); ok {
		return vt
	}
	if va, ok := fhir.GetMap(obs, "valueAttachment"); ok {
		title := fhir.Str(va, "title")
		ct := fhir.Str(va, "contentType")
		switch {
		case title != "" && ct != "":
			return fmt.Sprintf("Attachment: %s (%s)", title, ct)
		case title != "":
			return "Attachment: " + title
		case ct != "":
			return "Attachment (" + ct + ")"
		}
		return "Attachment"
	}
	return ""
}

func formatQuantity(q fhir.Raw) string {
	v, ok := fhir.GetFloat(q, "value")
	if !ok {
		return quantityUnit(q)
	}
	return strings.TrimSpace(fhir.FormatNumber(v) + " " + quantityUnit(q))
}

func observationEffective(obs fhir.Raw) string {
	if dt := fhir.Str(obs, "effectiveDateTime"); dt != "" {
		return dateOnly(dt)
	}
	if period, ok := fhir.GetMap(obs, "effectivePeriod"); ok {
		return dateOnly(fhir.Str(period, "start"))
	}
	if issued := fhir.Str(obs, "issued"); issued != "" {
		return dateOnly(issued)
	}
	return ""
}

func observationCategoryCodes(obs fhir.Raw) []string {
	var codes []string
	for _, cat := range fhir.GetMaps(obs, "category") {
		for _, c := range fhir.GetMaps(cat, "coding") {
			if code := fhir.Str(c, "code"); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

func observationCategoryText(obs fhir.Raw) string {
	var parts []string
	for _, cat := range fhir.GetMaps(obs, "category") {
		if text := conceptTextPlain(cat); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// conceptTextPlain is concept text without any CTS involvement.
func conceptTextPlain(cc fhir.Raw) string {
	if text := fhir.Str(cc, "text"); text != "" {
		return text
	}
	if c, ok := fhir.FirstMap(cc, "coding"); ok {
		if d := fhir.Str(c, "display"); d != "" {
			return d
		}
		return fhir.Str(c, "code")
	}
	return ""
}

func observationValueCodes(obs fhir.Raw) []fhir.Coding {
	vc, ok := fhir.GetMap(obs, "valueCodeableConcept")
	if !ok {
		return nil
	}
	var codings []fhir.Coding
	for _, c := range fhir.GetMaps(vc, "coding") {
		codings = append(codings, fhir.Coding{
			System:  fhir.SystemToOID(fhir.Str(c, "system")),
			Code:    fhir.Str(c, "code"),
			Display: fhir.Str(c, "display"),
		})
	}
	return codings
}

// interpretationSignificance maps interpretation words to significance
// labels, checked against the lowercased interpretation text.
var interpretationSignificance = []struct {
	keyword string
	label   string
}{
	{"critical", "Critical value"},
	{"panic", "Critical value"},
	{"high", "Above reference range"},
	{"low", "Below reference range"},
	{"abnormal", "Outside reference range"},
	{"normal", "Within reference range"},
}

// clinicalSignificance derives a label in priority order: textual
// interpretation, numeric comparison against the first reference range,
// then resource status.
func clinicalSignificance(obs fhir.Raw) string {
	if interp, ok := fhir.FirstMap(obs, "interpretation"); ok {
		text := strings.ToLower(conceptTextPlain(interp))
		for _, rule := range interpretationSignificance {
			if strings.Contains(text, rule.keyword) {
				return rule.label
			}
		}
	}

	if rr, ok := fhir.FirstMap(obs, "referenceRange"); ok {
		if vq, ok := fhir.GetMap(obs, "valueQuantity"); ok {
			if v, ok := fhir.GetFloat(vq, "value"); ok {
				if low, ok := fhir.GetMap(rr, "low"); ok {
					if lv, ok := fhir.GetFloat(low, "value"); ok && v < lv {
						return "Below reference range"
					}
				}
				if high, ok := fhir.GetMap(rr, "high"); ok {
					if hv, ok := fhir.GetFloat(high, "value"); ok && v > hv {
						return "Above reference range"
					}
				}
				return "Within reference range"
			}
		}
	}

	switch fhir.Str(obs, "status") {
	case "cancelled":
		return "Cancelled observation"
	case "preliminary":
		return "Preliminary result"
	case "amended":
		return "Amended result"
	}
	return NotSpecified
}
