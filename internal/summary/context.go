package summary

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/platform/metrics"
	"github.com/ncp/patient-summary/internal/terminology"
)

// unresolvedReference is the labeled placeholder produced when an in-bundle
// reference cannot be resolved. Reference misses are never fatal.
const unresolvedReference = "Unknown practitioner"

// ParseContext carries the per-parse state threaded through every mapper:
// the in-bundle reference indexes, the terminology resolver, and the parse
// logger. It is created fresh for each Parse call and never outlives it.
type ParseContext struct {
	ctx      context.Context
	resolver *terminology.Resolver
	logger   zerolog.Logger

	medications   map[string]fhir.Raw // Medication.id -> resource
	practitioners []fhir.Raw
	organizations map[string]fhir.Raw
}

func newParseContext(ctx context.Context, resolver *terminology.Resolver, group ResourceGroup, logger zerolog.Logger) *ParseContext {
	pc := &ParseContext{
		ctx:           ctx,
		resolver:      resolver,
		logger:        logger,
		medications:   make(map[string]fhir.Raw),
		organizations: make(map[string]fhir.Raw),
	}
	for _, m := range group["Medication"] {
		if id := fhir.ResourceID(m); id != "" {
			pc.medications[id] = m
		}
	}
	for _, o := range group["Organization"] {
		if id := fhir.ResourceID(o); id != "" {
			pc.organizations[id] = o
		}
	}
	pc.practitioners = group["Practitioner"]
	return pc
}

// resolve is shorthand for a terminology resolution within this parse.
func (pc *ParseContext) resolve(code, systemOID string) terminology.Resolution {
	return pc.resolver.Resolve(pc.ctx, code, systemOID)
}

// MedicationByReference resolves a medicationReference value against the
// bundle's Medication index.
func (pc *ParseContext) MedicationByReference(ref string) (fhir.Raw, bool) {
	if ref == "" {
		return nil, false
	}
	m, ok := pc.medications[fhir.StripReferencePrefix(ref)]
	if !ok {
		metrics.ReferenceMissesTotal.Inc()
		pc.logger.Debug().Str("reference", ref).Msg("medication reference not found in bundle")
	}
	return m, ok
}

// PractitionerByReference resolves a Composition author reference against
// the bundle's Practitioner records, by id first and then by identifier
// value for urn:uuid references. A miss yields a labeled placeholder.
func (pc *ParseContext) PractitionerByReference(ref string) (fhir.Raw, bool) {
	id := fhir.StripReferencePrefix(ref)
	for _, p := range pc.practitioners {
		if fhir.ResourceID(p) == id {
			return p, true
		}
	}
	if fhir.IsURNReference(ref) {
		for _, p := range pc.practitioners {
			for _, ident := range fhir.GetMaps(p, "identifier") {
				if fhir.Str(ident, "value") == id {
					return p, true
				}
			}
		}
	}
	metrics.ReferenceMissesTotal.Inc()
	pc.logger.Info().Str("reference", ref).Msg("author reference not resolvable in bundle")
	return nil, false
}

// OrganizationByReference resolves an Organization reference by id.
func (pc *ParseContext) OrganizationByReference(ref string) (fhir.Raw, bool) {
	if ref == "" {
		return nil, false
	}
	o, ok := pc.organizations[fhir.StripReferencePrefix(ref)]
	return o, ok
}
