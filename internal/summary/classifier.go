package summary

import "strings"

// ObservationClass is the single display category assigned to an
// observation. Pregnancy relevance is evaluated independently of the class.
type ObservationClass string

const (
	ClassVitalSign       ObservationClass = "vital-sign"
	ClassSocialHistory   ObservationClass = "social-history"
	ClassLaboratory      ObservationClass = "laboratory-result"
	ClassPhysicalFinding ObservationClass = "physical-finding"
	ClassUnclassified    ObservationClass = "unclassified"
)

// classRule holds the three matching stages for one class. Categories are
// FHIR observation-category codes, loinc is a fixed code set, keywords match
// as lowercase substrings of the observation's code/category text.
type classRule struct {
	class      ObservationClass
	categories map[string]bool
	loinc      map[string]bool
	keywords   []string
}

// classRules is ordered; within one matching stage the first class wins.
// Categories are configuration, not code: extending a class means adding
// table entries.
var classRules = []classRule{
	{
		class:      ClassVitalSign,
		categories: map[string]bool{"vital-signs": true},
		loinc: map[string]bool{
			"85354-9": true, // blood pressure panel
			"8480-6":  true, // systolic
			"8462-4":  true, // diastolic
			"8867-4":  true, // heart rate
			"9279-1":  true, // respiratory rate
			"8310-5":  true, // body temperature
			"2708-6":  true, // oxygen saturation
			"59408-5": true, // oxygen saturation by pulse oximetry
			"8302-2":  true, // body height
			"29463-7": true, // body weight
			"39156-5": true, // BMI
		},
		keywords: []string{"blood pressure", "heart rate", "pulse", "temperature", "respiratory rate", "oxygen saturation", "body weight", "body height"},
	},
	{
		class:      ClassSocialHistory,
		categories: map[string]bool{"social-history": true},
		loinc: map[string]bool{
			"72166-2": true, // tobacco smoking status
			"74013-4": true, // alcoholic drinks per day
			"11331-6": true, // history of alcohol use
			"63586-2": true, // smoked more than 100 cigarettes
		},
		keywords: []string{"tobacco", "smoking", "alcohol", "substance use", "occupation", "exercise"},
	},
	{
		class:      ClassLaboratory,
		categories: map[string]bool{"laboratory": true},
		loinc: map[string]bool{
			"718-7":  true, // hemoglobin
			"6690-2": true, // leukocytes
			"789-8":  true, // erythrocytes
			"777-3":  true, // platelets
			"2345-7": true, // glucose
			"2160-0": true, // creatinine
			"3094-0": true, // urea nitrogen
			"2951-2": true, // sodium
			"2823-3": true, // potassium
			"1975-2": true, // bilirubin
			"2093-3": true, // cholesterol
		},
		keywords: []string{"hemoglobin", "haemoglobin", "glucose", "creatinine", "cholesterol", "leukocyte", "platelet", "blood count", "serum", "plasma"},
	},
	{
		class:      ClassPhysicalFinding,
		categories: map[string]bool{"exam": true, "physical-exam": true},
		loinc: map[string]bool{
			"29545-1": true, // physical findings
			"10210-3": true, // general status
			"8716-3":  true, // vital signs (panel, used by some systems for exam notes)
		},
		keywords: []string{"physical finding", "examination", "inspection", "palpation", "auscultation"},
	},
}

// pregnancyRule tags pregnancy-relevant observations. Evaluated on top of
// (not instead of) the class above.
var pregnancyRule = classRule{
	loinc: map[string]bool{
		loincPregnancyStatus: true,
		loincDeliveryDate:    true,
		loincGestationalAge:  true,
		loincEDD:             true,
		loincBirthWeight:     true,
		"11612-9":            true, // number of abortions
		"11636-8":            true, // number of live births
		"11977-6":            true, // parity
		"11996-6":            true, // gravidity
	},
	keywords: []string{"pregnan", "gestation", "delivery", "livebirth", "live birth", "stillbirth", "termination", "abortion", "expected date", "edd", "lmp", "para", "gravida"},
}

// ClassifyObservation assigns at most one class using the fixed priority:
// explicit category code, then LOINC membership, then keyword match.
func ClassifyObservation(detail *ObservationDetail) ObservationClass {
	if detail == nil {
		return ClassUnclassified
	}

	for _, rule := range classRules {
		for _, code := range detail.CategoryCodes {
			if rule.categories[code] {
				return rule.class
			}
		}
	}

	if detail.Code != "" {
		for _, rule := range classRules {
			if rule.loinc[detail.Code] {
				return rule.class
			}
		}
	}

	haystack := strings.ToLower(detail.Name + " " + detail.CategoryText)
	for _, rule := range classRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.class
			}
		}
	}
	return ClassUnclassified
}

// IsPregnancyRelated reports whether the observation is pregnancy-relevant,
// independently of its class.
func IsPregnancyRelated(detail *ObservationDetail) bool {
	if detail == nil {
		return false
	}
	if pregnancyRule.loinc[detail.Code] {
		return true
	}
	for _, coding := range detail.ValueCodes {
		if coding.Code == snomedLivebirth || coding.Code == snomedTermination {
			return true
		}
	}
	haystack := strings.ToLower(detail.Name + " " + detail.CategoryText)
	for _, kw := range pregnancyRule.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
