package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// mapProcedure normalizes a Procedure.
func mapProcedure(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	codes := fhir.AllCodes(resource, "code")
	coding := fhir.FirstCoding(resource, "code")

	if isNegativeAssertion(KindProcedure, codes) {
		display := orZero(fhir.ConceptText(resource, "code"), "No known procedures")
		return ClinicalRecord{
			Kind:                KindProcedure,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Procedure: &ProcedureDetail{
				Name:   display,
				Status: NotApplicable,
				Date:   NotApplicable,
			},
		}
	}

	name, _ := pc.conceptDisplay(resource, "code")
	bodySite := ""
	if site, ok := fhir.FirstMap(resource, "bodySite"); ok {
		bodySite = conceptDisplayOf(pc, site)
	}
	detail := &ProcedureDetail{
		Name:     orZero(name, Unknown),
		Status:   orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Date:     orZero(procedureDate(resource), NotSpecified),
		BodySite: bodySite,
	}
	return ClinicalRecord{
		Kind:        KindProcedure,
		ID:          fhir.ResourceID(resource),
		DisplayText: detail.Name,
		Provenance:  coding,
		Procedure:   detail,
	}
}

func procedureDate(resource fhir.Raw) string {
	if dt := fhir.Str(resource, "performedDateTime"); dt != "" {
		return dateOnly(dt)
	}
	if period, ok := fhir.GetMap(resource, "performedPeriod"); ok {
		return dateOnly(fhir.Str(period, "start"))
	}
	return ""
}

// mapImmunization normalizes an Immunization.
func mapImmunization(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	codes := fhir.AllCodes(resource, "vaccineCode")
	coding := fhir.FirstCoding(resource, "vaccineCode")

	if isNegativeAssertion(KindImmunization, codes) {
		display := orZero(fhir.ConceptText(resource, "vaccineCode"), "No immunization information")
		return ClinicalRecord{
			Kind:                KindImmunization,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Immunization: &ImmunizationDetail{
				Vaccine:       display,
				TargetDisease: NotApplicable,
				Status:        NotApplicable,
				Date:          NotApplicable,
			},
		}
	}

	vaccine, _ := pc.conceptDisplay(resource, "vaccineCode")
	disease := ""
	if protocol, ok := fhir.FirstMap(resource, "protocolApplied"); ok {
		if target, ok := fhir.FirstMap(protocol, "targetDisease"); ok {
			disease = conceptDisplayOf(pc, target)
		}
	}
	route, _ := pc.conceptDisplay(resource, "route")
	detail := &ImmunizationDetail{
		Vaccine:       orZero(vaccine, Unknown),
		TargetDisease: orZero(disease, NotSpecified),
		Status:        orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Date:          orZero(dateOnly(fhir.Str(resource, "occurrenceDateTime")), NotSpecified),
		DoseNumber:    immunizationDose(resource),
		Route:         route,
	}
	return ClinicalRecord{
		Kind:         KindImmunization,
		ID:           fhir.ResourceID(resource),
		DisplayText:  detail.Vaccine,
		Provenance:   coding,
		Immunization: detail,
	}
}

func immunizationDose(resource fhir.Raw) string {
	protocol, ok := fhir.FirstMap(resource, "protocolApplied")
	if !ok {
		return ""
	}
	if v, ok := fhir.GetFloat(protocol, "doseNumberPositiveInt"); ok {
		return fhir.FormatNumber(v)
	}
	return fhir.Str(protocol, "doseNumberString")
}

// mapDiagnosticReport normalizes a DiagnosticReport.
func mapDiagnosticReport(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	coding := fhir.FirstCoding(resource, "code")
	name, _ := pc.conceptDisplay(resource, "code")
	detail := &ReportDetail{
		Name:       orZero(name, Unknown),
		Status:     orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Date:       orZero(dateOnly(fhir.Str(resource, "effectiveDateTime")), NotSpecified),
		Category:   orZero(fhir.ConceptTextFromArray(resource, "category"), NotSpecified),
		Conclusion: fhir.Str(resource, "conclusion"),
	}
	return ClinicalRecord{
		Kind:        KindDiagnosticReport,
		ID:          fhir.ResourceID(resource),
		DisplayText: detail.Name,
		Provenance:  coding,
		Report:      detail,
	}
}

// mapDevice normalizes a Device.
func mapDevice(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	codes := fhir.AllCodes(resource, "type")
	coding := fhir.FirstCoding(resource, "type")

	if isNegativeAssertion(KindDevice, codes) {
		display := orZero(fhir.ConceptText(resource, "type"), "No known devices")
		return ClinicalRecord{
			Kind:                KindDevice,
			ID:                  fhir.ResourceID(resource),
			DisplayText:         display,
			IsNegativeAssertion: true,
			Provenance:          coding,
			Device: &DeviceDetail{
				Name:   display,
				Type:   NotApplicable,
				Status: NotApplicable,
			},
		}
	}

	typeName, _ := pc.conceptDisplay(resource, "type")
	name := typeName
	if names := fhir.GetMaps(resource, "deviceName"); len(names) > 0 {
		if n := fhir.Str(names[0], "name"); n != "" {
			name = n
		}
	}
	udi := ""
	if carriers := fhir.GetMaps(resource, "udiCarrier"); len(carriers) > 0 {
		udi = fhir.Str(carriers[0], "deviceIdentifier")
	}
	detail := &DeviceDetail{
		Name:           orZero(name, Unknown),
		Type:           orZero(typeName, NotSpecified),
		Status:         orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Manufacturer:   fhir.Str(resource, "manufacturer"),
		ExpirationDate: dateOnly(fhir.Str(resource, "expirationDate")),
		UDI:            udi,
	}
	return ClinicalRecord{
		Kind:        KindDevice,
		ID:          fhir.ResourceID(resource),
		DisplayText: detail.Name,
		Provenance:  coding,
		Device:      detail,
	}
}

// mapConsent normalizes a Consent into an advance-directive record,
// extracting the provision type as a permit/deny decision.
func mapConsent(pc *ParseContext, resource fhir.Raw) ClinicalRecord {
	scope, _ := pc.conceptDisplay(resource, "scope")
	category := fhir.ConceptTextFromArray(resource, "category")
	coding := fhir.FirstCodingFromArray(resource, "category")

	decision := NotSpecified
	if provision, ok := fhir.GetMap(resource, "provision"); ok {
		switch fhir.Str(provision, "type") {
		case "permit":
			decision = "Permit"
		case "deny":
			decision = "Deny"
		}
	}

	effective := dateOnly(fhir.Str(resource, "dateTime"))
	if effective == "" {
		if period, ok := fhir.GetMap(resource, "period"); ok {
			effective = dateOnly(fhir.Str(period, "start"))
		}
	}

	detail := &ConsentDetail{
		Scope:         orZero(scope, NotSpecified),
		Category:      orZero(category, NotSpecified),
		Status:        orZero(fhir.Capitalize(fhir.Str(resource, "status")), Unknown),
		Decision:      decision,
		EffectiveTime: orZero(effective, NotSpecified),
	}
	display := detail.Category
	if display == NotSpecified {
		display = detail.Scope
	}
	return ClinicalRecord{
		Kind:        KindConsent,
		ID:          fhir.ResourceID(resource),
		DisplayText: orZero(display, Unknown),
		Provenance:  coding,
		Consent:     detail,
	}
}
