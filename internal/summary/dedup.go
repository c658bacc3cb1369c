package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// dedupVersions collapses resources sharing a logical id to the record with
// the numerically highest meta.versionId, breaking ties by comparing
// meta.lastUpdated as full RFC3339 strings. Records without an id are never
// deduplicated. Output preserves first-seen order.
func dedupVersions(records []fhir.Raw) []fhir.Raw {
	index := make(map[string]int)
	var out []fhir.Raw

	for _, r := range records {
		id := fhir.ResourceID(r)
		if id == "" {
			out = append(out, r)
			continue
		}
		if i, seen := index[id]; seen {
			if newerVersion(r, out[i]) {
				out[i] = r
			}
			continue
		}
		index[id] = len(out)
		out = append(out, r)
	}
	return out
}

// newerVersion reports whether a should replace b for the same id.
func newerVersion(a, b fhir.Raw) bool {
	va, vb := fhir.VersionID(a), fhir.VersionID(b)
	if va != vb {
		return va > vb
	}
	// Same numeric version: compare the whole lastUpdated timestamp. RFC3339
	// strings with a common offset order lexicographically.
	return fhir.LastUpdated(a) > fhir.LastUpdated(b)
}

// conditionIdentity is the clinical-identity key for Condition dedup.
type conditionIdentity struct {
	code  string
	onset string
}

// conditionCompleteness is the 3-bit completeness tuple compared when two
// Conditions share a clinical identity. Priority order is fixed: severity,
// then category, then verification status. No numeric weighting.
type conditionCompleteness struct {
	hasSeverity     bool
	hasCategory     bool
	hasVerification bool
}

func (c conditionCompleteness) betterThan(o conditionCompleteness) bool {
	if c.hasSeverity != o.hasSeverity {
		return c.hasSeverity
	}
	if c.hasCategory != o.hasCategory {
		return c.hasCategory
	}
	if c.hasVerification != o.hasVerification {
		return c.hasVerification
	}
	return false // tie: keep first-seen
}

// dedupConditions collapses Conditions that represent the same real-world
// fact: same primary code and onset date but different resource ids, as
// emitted by systems that resend history on every update. The most complete
// record wins. Records without a code pass through untouched so a negative
// assertion never merges with a real Condition.
func dedupConditions(records []fhir.Raw) []fhir.Raw {
	index := make(map[conditionIdentity]int)
	scores := make(map[conditionIdentity]conditionCompleteness)
	var out []fhir.Raw

	for _, r := range records {
		coding := fhir.FirstCoding(r, "code")
		if coding.Code == "" {
			out = append(out, r)
			continue
		}
		key := conditionIdentity{code: coding.Code, onset: conditionOnset(r)}
		c := completenessOf(r)
		if i, seen := index[key]; seen {
			if c.betterThan(scores[key]) {
				out[i] = r
				scores[key] = c
			}
			continue
		}
		index[key] = len(out)
		scores[key] = c
		out = append(out, r)
	}
	return out
}

func completenessOf(condition fhir.Raw) conditionCompleteness {
	return conditionCompleteness{
		hasSeverity:     !fhir.FirstCoding(condition, "severity").IsZero(),
		hasCategory:     len(fhir.GetMaps(condition, "category")) > 0,
		hasVerification: !fhir.FirstCoding(condition, "verificationStatus").IsZero(),
	}
}

// conditionOnset extracts the onset as a date string from onsetDateTime or
// onsetPeriod.start.
func conditionOnset(condition fhir.Raw) string {
	if onset := fhir.Str(condition, "onsetDateTime"); onset != "" {
		return dateOnly(onset)
	}
	if period, ok := fhir.GetMap(condition, "onsetPeriod"); ok {
		return dateOnly(fhir.Str(period, "start"))
	}
	return ""
}

// dateOnly trims a FHIR dateTime to its date part.
func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
