package fhir

import "strings"

// Coding is a single code from a terminology system. System holds the OID
// when the source URL is recognized, otherwise the URL as-is.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// IsZero reports whether the coding carries no code at all.
func (c Coding) IsZero() bool {
	return c.Code == "" && c.Display == ""
}

// Coding system OIDs used across cross-border patient summaries.
const (
	OIDATC          = "2.16.840.1.113883.6.73"
	OIDSNOMED       = "2.16.840.1.113883.6.96"
	OIDLOINC        = "2.16.840.1.113883.6.1"
	OIDICD10        = "1.3.6.1.4.1.12559.11.10.1.3.1.44.2"
	OIDEDQM         = "0.4.0.127.0.16.1.1.2.1"
	OIDUCUM         = "2.16.840.1.113883.6.8"
	OIDVaccineCodes = "1.3.6.1.4.1.12559.11.10.1.3.1.42.28"
)

// SystemToOID converts a FHIR coding system URL to the corresponding OID.
// Unrecognized systems are passed through unchanged so provenance is never
// lost.
func SystemToOID(system string) string {
	switch {
	case system == "http://www.whocc.no/atc" || strings.Contains(system, "whocc"):
		return OIDATC
	case system == "http://snomed.info/sct":
		return OIDSNOMED
	case system == "http://loinc.org":
		return OIDLOINC
	case strings.Contains(system, "icd-10"):
		return OIDICD10
	case strings.Contains(system, "standardterms.edqm.eu") || strings.Contains(system, "0.4.0.127.0.16.1.1.2.1"):
		return OIDEDQM
	case system == "http://unitsofmeasure.org":
		return OIDUCUM
	default:
		return system
	}
}

// FirstCoding extracts the first coding of the CodeableConcept stored at key,
// with its system normalized to an OID.
func FirstCoding(resource Raw, key string) Coding {
	cc, ok := GetMap(resource, key)
	if !ok {
		return Coding{}
	}
	return firstCodingOf(cc)
}

// FirstCodingFromArray extracts the first coding of the first element of a
// CodeableConcept array stored at key.
func FirstCodingFromArray(resource Raw, key string) Coding {
	cc, ok := FirstMap(resource, key)
	if !ok {
		return Coding{}
	}
	return firstCodingOf(cc)
}

// CodingBySystem scans every coding of the CodeableConcept at key and
// returns the first one whose normalized system matches oid.
func CodingBySystem(resource Raw, key, oid string) Coding {
	cc, ok := GetMap(resource, key)
	if !ok {
		return Coding{}
	}
	for _, c := range GetMaps(cc, "coding") {
		coding := asCoding(c)
		if coding.System == oid {
			return coding
		}
	}
	return Coding{}
}

// AllCodes collects every code of the CodeableConcept at key.
func AllCodes(resource Raw, key string) []string {
	cc, ok := GetMap(resource, key)
	if !ok {
		return nil
	}
	var codes []string
	for _, c := range GetMaps(cc, "coding") {
		if code := Str(c, "code"); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ConceptText derives display text from a CodeableConcept at key, preferring
// text, then the first coding display, then the capitalized code.
func ConceptText(resource Raw, key string) string {
	cc, ok := GetMap(resource, key)
	if !ok {
		return ""
	}
	return conceptTextOf(cc)
}

// ConceptTextFromArray derives display text from the first element of a
// CodeableConcept array at key.
func ConceptTextFromArray(resource Raw, key string) string {
	cc, ok := FirstMap(resource, key)
	if !ok {
		return ""
	}
	return conceptTextOf(cc)
}

func firstCodingOf(cc Raw) Coding {
	c, ok := FirstMap(cc, "coding")
	if !ok {
		return Coding{Display: Str(cc, "text")}
	}
	coding := asCoding(c)
	if coding.Display == "" {
		coding.Display = Str(cc, "text")
	}
	return coding
}

func conceptTextOf(cc Raw) string {
	if text := Str(cc, "text"); text != "" {
		return text
	}
	if c, ok := FirstMap(cc, "coding"); ok {
		if d := Str(c, "display"); d != "" {
			return d
		}
		return Capitalize(Str(c, "code"))
	}
	return ""
}

func asCoding(c Raw) Coding {
	return Coding{
		System:  SystemToOID(Str(c, "system")),
		Code:    Str(c, "code"),
		Display: Str(c, "display"),
	}
}
