package summary

import "strings"

// LOINC codes steering pregnancy grouping.
const (
	loincPregnancyStatus = "82810-3"
	loincDeliveryDate    = "93857-1"
	loincGestationalAge  = "11884-4"
	loincEDD             = "11778-8"
	loincBirthWeight     = "8339-4"
)

// SNOMED pregnancy outcome codes.
const (
	snomedLivebirth   = "281050002"
	snomedTermination = "57797005"
)

var outcomeDisplay = map[string]string{
	snomedLivebirth:   "Livebirth",
	snomedTermination: "Termination of pregnancy",
}

// outcomeKeywords resolve an outcome from the observation name when no
// SNOMED code is available.
var outcomeKeywords = []struct {
	keyword string
	code    string
}{
	{"livebirth", snomedLivebirth},
	{"live birth", snomedLivebirth},
	{"termination", snomedTermination},
	{"abortion", snomedTermination},
}

type pregnancyKey struct {
	date    string
	outcome string
}

// BuildPregnancyHistory merges pregnancy-related observations into episode
// records. Current-pregnancy indicators become one "current" record; past
// observations group by (delivery date, outcome code) so that a Livebirth
// and a Termination sharing a date are never merged. When no outcome code
// is resolvable the date alone is the key.
func BuildPregnancyHistory(observations []ClinicalRecord) []PregnancyRecord {
	var records []PregnancyRecord
	var current *PregnancyRecord

	index := make(map[pregnancyKey]int)
	var order []pregnancyKey

	for _, rec := range observations {
		detail := rec.Observation
		if detail == nil || !IsPregnancyRelated(detail) {
			continue
		}

		if isCurrentPregnancy(detail) {
			if current == nil {
				current = &PregnancyRecord{PregnancyType: "current"}
			}
			fillCurrent(current, detail)
			continue
		}

		date := pastDeliveryDate(detail)
		outcome := pastOutcomeCode(detail)
		key := pregnancyKey{date: date, outcome: outcome}

		i, seen := index[key]
		if !seen && outcome == "" {
			// No resolvable outcome: join the first episode already carrying
			// this date instead of opening a parallel one.
			for _, k := range order {
				if k.date == date {
					i, seen = index[k], true
					break
				}
			}
		}
		if !seen {
			records = append(records, PregnancyRecord{
				PregnancyType: "past",
				Outcome:       orZero(outcomeDisplay[outcome], Unknown),
				OutcomeCode:   outcome,
				DeliveryDate:  date,
			})
			i = len(records) - 1
			index[key] = i
			order = append(order, key)
		}
		fillPast(&records[i], detail)
	}

	if current != nil {
		// Current pregnancy leads the history.
		records = append([]PregnancyRecord{*current}, records...)
	}
	return records
}

// isCurrentPregnancy detects current-pregnancy indicators: the pregnancy
// status code or gestational-age/EDD observations. The delivery-date code is
// explicitly excluded; it always describes a completed pregnancy.
func isCurrentPregnancy(detail *ObservationDetail) bool {
	name := strings.ToLower(detail.Name)
	switch detail.Code {
	case loincDeliveryDate:
		return false
	case loincGestationalAge:
		// Gestational age reported "at delivery" describes a past episode.
		return !strings.Contains(name, "at delivery")
	case loincPregnancyStatus, loincEDD:
		return true
	}
	return strings.Contains(name, "gestational age") ||
		strings.Contains(name, "estimated date of delivery") ||
		strings.Contains(name, "expected date")
}

func fillCurrent(record *PregnancyRecord, detail *ObservationDetail) {
	switch detail.Code {
	case loincGestationalAge:
		record.GestationalAge = detail.Value
	case loincEDD:
		record.DeliveryDate = detail.Value // expected date
	case loincPregnancyStatus:
		record.Outcome = orZero(detail.Value, "Pregnant")
	}
	if record.Outcome == "" {
		record.Outcome = "Pregnant"
	}
}

// pastDeliveryDate prefers the delivery-date observation's own value, then
// the effective date.
func pastDeliveryDate(detail *ObservationDetail) string {
	if detail.Code == loincDeliveryDate && detail.Value != NotSpecified && detail.Value != "" {
		return dateOnly(detail.Value)
	}
	if detail.EffectiveDate != NotSpecified {
		return detail.EffectiveDate
	}
	return ""
}

// pastOutcomeCode resolves the outcome SNOMED code: the observation's own
// code, then the valueCodeableConcept of a delivery-date observation, then
// name keywords. "" means unresolvable; the caller then groups by date only.
func pastOutcomeCode(detail *ObservationDetail) string {
	if detail.Code == snomedLivebirth || detail.Code == snomedTermination {
		return detail.Code
	}
	for _, coding := range detail.ValueCodes {
		if coding.Code == snomedLivebirth || coding.Code == snomedTermination {
			return coding.Code
		}
	}
	name := strings.ToLower(detail.Name + " " + detail.Value)
	for _, ok := range outcomeKeywords {
		if strings.Contains(name, ok.keyword) {
			return ok.code
		}
	}
	return ""
}

// fillPast copies episode attributes from the member observations.
func fillPast(record *PregnancyRecord, detail *ObservationDetail) {
	switch detail.Code {
	case loincGestationalAge:
		record.GestationalAge = detail.Value
	case loincBirthWeight:
		record.BirthWeight = detail.Value
	}
	name := strings.ToLower(detail.Name)
	if strings.Contains(name, "complication") && !isPlaceholder(detail.Value) {
		record.Complications = append(record.Complications, detail.Value)
	}
}
