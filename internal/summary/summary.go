package summary

import "github.com/ncp/patient-summary/internal/platform/fhir"

// SectionType names a normalized section of the patient summary.
type SectionType string

const (
	SectionAllergies         SectionType = "allergies"
	SectionMedications       SectionType = "medications"
	SectionProblems          SectionType = "problems"
	SectionPastIllness       SectionType = "past_illness"
	SectionProcedures        SectionType = "procedures"
	SectionResults           SectionType = "results"
	SectionImmunizations     SectionType = "immunizations"
	SectionMedicalDevices    SectionType = "medical_devices"
	SectionAdvanceDirectives SectionType = "advance_directives"
	SectionDiagnosticReports SectionType = "diagnostic_reports"
)

// NormalizedSection is one section of mapped records plus display metadata.
type NormalizedSection struct {
	Type    SectionType      `json:"type"`
	Title   string           `json:"title"`
	Records []ClinicalRecord `json:"records"`
	Count   int              `json:"count"`
}

// ClinicalArrays is the categorized output consumed by display layers. It is
// a closed struct rather than a name-keyed map so consumers cannot typo an
// array name.
type ClinicalArrays struct {
	Medications       []ClinicalRecord  `json:"medications"`
	Allergies         []ClinicalRecord  `json:"allergies"`
	Problems          []ClinicalRecord  `json:"problems"`
	PastIllness       []ClinicalRecord  `json:"past_illness"`
	Procedures        []ClinicalRecord  `json:"procedures"`
	VitalSigns        []ClinicalRecord  `json:"vital_signs"`
	LaboratoryResults []ClinicalRecord  `json:"laboratory_results"`
	SocialHistory     []ClinicalRecord  `json:"social_history"`
	PhysicalFindings  []ClinicalRecord  `json:"physical_findings"`
	PregnancyHistory  []PregnancyRecord `json:"pregnancy_history"`
	Immunizations     []ClinicalRecord  `json:"immunizations"`
	MedicalDevices    []ClinicalRecord  `json:"medical_devices"`
	AdvanceDirectives []ClinicalRecord  `json:"advance_directives"`
	DiagnosticReports []ClinicalRecord  `json:"diagnostic_reports"`
}

// BundleMetadata describes the source document.
type BundleMetadata struct {
	ResourceCount int    `json:"resource_count"`
	BundleType    string `json:"bundle_type"`
	BundleID      string `json:"bundle_id"`
	Timestamp     string `json:"timestamp"`
	Title         string `json:"title,omitempty"`
	LastUpdated   string `json:"last_updated,omitempty"`
}

// ClinicalSummary is the aggregate root returned by a parse. On failure only
// Success and Error carry information; every collection is empty, never nil,
// so serialized output keeps a stable shape.
type ClinicalSummary struct {
	Success            bool                `json:"success"`
	Error              string              `json:"error,omitempty"`
	Sections           []NormalizedSection `json:"sections"`
	SectionsCount      int                 `json:"sections_count"`
	PatientIdentity    PatientIdentity     `json:"patient_identity"`
	AdministrativeData AdministrativeData  `json:"administrative_data"`
	ContactData        ContactData         `json:"contact_data"`
	EmergencyContacts  []EmergencyContact  `json:"emergency_contacts"`
	HealthcareData     HealthcareData      `json:"healthcare_data"`
	ClinicalArrays     ClinicalArrays      `json:"clinical_arrays"`
	BundleMetadata     BundleMetadata      `json:"bundle_metadata"`
}

// newClinicalArrays returns the arrays with every collection empty, never
// nil, so serialized output keeps a stable shape.
func newClinicalArrays() ClinicalArrays {
	return ClinicalArrays{
		Medications:       []ClinicalRecord{},
		Allergies:         []ClinicalRecord{},
		Problems:          []ClinicalRecord{},
		PastIllness:       []ClinicalRecord{},
		Procedures:        []ClinicalRecord{},
		VitalSigns:        []ClinicalRecord{},
		LaboratoryResults: []ClinicalRecord{},
		SocialHistory:     []ClinicalRecord{},
		PhysicalFindings:  []ClinicalRecord{},
		PregnancyHistory:  []PregnancyRecord{},
		Immunizations:     []ClinicalRecord{},
		MedicalDevices:    []ClinicalRecord{},
		AdvanceDirectives: []ClinicalRecord{},
		DiagnosticReports: []ClinicalRecord{},
	}
}

// newFailureSummary builds the error envelope for a fatally invalid bundle.
// Only Success and Error carry information; the rest of the envelope is the
// same empty-but-present shape a successful parse of an empty bundle yields.
func newFailureSummary(err error) *ClinicalSummary {
	return &ClinicalSummary{
		Success:            false,
		Error:              err.Error(),
		Sections:           []NormalizedSection{},
		PatientIdentity:    ExtractPatientIdentity(nil),
		AdministrativeData: ExtractAdministrativeData(nil),
		ContactData:        ExtractContactData(nil),
		EmergencyContacts:  []EmergencyContact{},
		HealthcareData:     HealthcareData{Authors: []ProviderData{}, Organizations: []OrganizationData{}},
		ClinicalArrays:     newClinicalArrays(),
	}
}

// extractBundleMetadata reads id, type and timestamp from the bundle and the
// composition title when one is present.
func extractBundleMetadata(doc fhir.Raw, resourceCount int, composition fhir.Raw) BundleMetadata {
	md := BundleMetadata{
		ResourceCount: resourceCount,
		BundleType:    fhir.Str(doc, "type"),
		BundleID:      fhir.Str(doc, "id"),
		Timestamp:     fhir.Str(doc, "timestamp"),
		LastUpdated:   fhir.LastUpdated(doc),
	}
	if composition != nil {
		md.Title = fhir.Str(composition, "title")
	}
	return md
}
