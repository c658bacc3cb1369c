package summary

import (
	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/platform/metrics"
)

// Synthetic group tags for Conditions split by clinical status.
const (
	groupConditionActive   = "Condition:Active"
	groupConditionResolved = "Condition:Resolved"
)

// supportedKinds lists the resource types the engine consumes. Anything else
// is discarded silently: national systems routinely attach resource kinds a
// patient summary has no use for.
var supportedKinds = map[string]bool{
	"AllergyIntolerance":  true,
	"MedicationStatement": true,
	"MedicationRequest":   true,
	"Medication":          true,
	"Condition":           true,
	"Procedure":           true,
	"Observation":         true,
	"Immunization":        true,
	"DiagnosticReport":    true,
	"ClinicalImpression":  true,
	"Device":              true,
	"Consent":             true,
	"Patient":             true,
	"Practitioner":        true,
	"PractitionerRole":    true,
	"Organization":        true,
	"RelatedPerson":       true,
	"Composition":         true,
}

// resolvedStatuses are the Condition clinical statuses routed to the
// past-illness section. Everything else, including absent status, counts as
// active.
var resolvedStatuses = map[string]bool{
	"resolved":  true,
	"inactive":  true,
	"remission": true,
}

// ResourceGroup buckets raw resources by kind tag. Conditions appear only
// under the synthetic Condition:Active / Condition:Resolved tags.
type ResourceGroup map[string][]fhir.Raw

// GroupResources buckets bundle resources by resourceType, splitting
// Conditions by clinical status. Unsupported kinds are dropped.
func GroupResources(resources []fhir.Raw, logger zerolog.Logger) ResourceGroup {
	group := make(ResourceGroup)
	for _, r := range resources {
		kind := fhir.ResourceType(r)
		if !supportedKinds[kind] {
			if kind != "" {
				logger.Debug().Str("resource_kind", kind).Msg("discarding unsupported resource")
				metrics.ResourcesSkippedTotal.WithLabelValues(kind, "unsupported").Inc()
			}
			continue
		}
		tag := kind
		if kind == "Condition" {
			tag = conditionTag(r)
		}
		group[tag] = append(group[tag], r)
	}
	return group
}

// conditionTag routes a Condition by clinicalStatus.coding[0].code.
func conditionTag(condition fhir.Raw) string {
	coding := fhir.FirstCoding(condition, "clinicalStatus")
	if resolvedStatuses[coding.Code] {
		return groupConditionResolved
	}
	return groupConditionActive
}

// first returns the first resource under tag, if any.
func (g ResourceGroup) first(tag string) fhir.Raw {
	if records := g[tag]; len(records) > 0 {
		return records[0]
	}
	return nil
}
