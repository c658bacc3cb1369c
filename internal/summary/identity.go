package summary

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

// PatientIdentifier is one national or institutional patient identifier.
type PatientIdentifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value"`
}

// PatientIdentity holds the display-ready identity of the subject.
type PatientIdentity struct {
	FamilyName  string              `json:"family_name"`
	GivenName   string              `json:"given_name"`
	FullName    string              `json:"full_name"`
	BirthDate   string              `json:"birth_date"`
	Gender      string              `json:"gender"`
	Identifiers []PatientIdentifier `json:"identifiers"`
}

// AddressData is a display-ready address.
type AddressData struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	Use        string `json:"use,omitempty"`
}

// TelecomData is one phone/email/fax entry.
type TelecomData struct {
	System string `json:"system"`
	Value  string `json:"value"`
	Use    string `json:"use,omitempty"`
}

// AdministrativeData carries the non-identifying demographics.
type AdministrativeData struct {
	Addresses     []AddressData `json:"addresses"`
	MaritalStatus string        `json:"marital_status"`
	Languages     []string      `json:"languages"`
	Deceased      string        `json:"deceased,omitempty"`
}

// ContactData is the patient's own reachability information.
type ContactData struct {
	Telecoms  []TelecomData `json:"telecoms"`
	Addresses []AddressData `json:"addresses"`
}

// EmergencyContact is a RelatedPerson or Patient.contact projected for
// display. IsGuardian and IsEmergency are set independently by
// relationship-text heuristics; a contact matching neither is still listed
// with its literal relationship text.
type EmergencyContact struct {
	Name         string        `json:"name"`
	Relationship string        `json:"relationship"`
	Telecoms     []TelecomData `json:"telecoms"`
	Addresses    []AddressData `json:"addresses"`
	IsGuardian   bool          `json:"is_guardian"`
	IsEmergency  bool          `json:"is_emergency"`
}

// ProviderData describes an authoring healthcare professional. The
// CDA-compatibility aliases (assigned_person, represented_organization)
// mirror the field names legacy display layers bind to. Synthetic marks a
// placeholder fabricated from an unresolvable Composition.author reference.
type ProviderData struct {
	Name                    string        `json:"name"`
	AssignedPerson          string        `json:"assigned_person"` // CDA alias of Name
	FamilyName              string        `json:"family_name,omitempty"`
	GivenName               string        `json:"given_name,omitempty"`
	Organization            string        `json:"organization,omitempty"`
	RepresentedOrganization string        `json:"represented_organization,omitempty"` // CDA alias
	Telecoms                []TelecomData `json:"telecoms"`
	Synthetic               bool          `json:"synthetic"`
}

// OrganizationData describes a healthcare organization in the bundle.
type OrganizationData struct {
	Name      string        `json:"name"`
	Telecoms  []TelecomData `json:"telecoms"`
	Addresses []AddressData `json:"addresses"`
}

// HealthcareData aggregates the provider-side information of the summary.
type HealthcareData struct {
	Authors       []ProviderData     `json:"authors"`
	Organizations []OrganizationData `json:"organizations"`
}

// guardianKeywords flag a relationship as guardianship.
var guardianKeywords = []string{"guardian", "parent", "mother", "father", "legal"}

// emergencyKeywords flag a relationship as an emergency contact. A contact
// matching neither set is still listed, it just carries its literal
// relationship text.
var emergencyKeywords = []string{"emergency", "next of kin", "spouse", "partner", "contact person"}

// ExtractPatientIdentity projects the Patient resource into identity data.
func ExtractPatientIdentity(patient fhir.Raw) PatientIdentity {
	identity := PatientIdentity{
		FamilyName:  Unknown,
		GivenName:   Unknown,
		FullName:    Unknown,
		BirthDate:   orZero(fhir.Str(patient, "birthDate"), Unknown),
		Gender:      orZero(fhir.Capitalize(fhir.Str(patient, "gender")), Unknown),
		Identifiers: []PatientIdentifier{},
	}
	if patient == nil {
		return identity
	}

	if name, ok := preferredName(patient); ok {
		identity.FamilyName = orZero(fhir.Str(name, "family"), Unknown)
		identity.GivenName = orZero(joinStrings(name, "given"), Unknown)
		full := strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
		identity.FullName = orZero(strings.ReplaceAll(full, Unknown, ""), Unknown)
		if identity.FullName != Unknown {
			identity.FullName = strings.TrimSpace(identity.FullName)
			if identity.FullName == "" {
				identity.FullName = Unknown
			}
		}
		if text := fhir.Str(name, "text"); text != "" {
			identity.FullName = text
		}
	}

	for _, ident := range fhir.GetMaps(patient, "identifier") {
		if value := fhir.Str(ident, "value"); value != "" {
			identity.Identifiers = append(identity.Identifiers, PatientIdentifier{
				System: fhir.Str(ident, "system"),
				Value:  value,
			})
		}
	}
	return identity
}

// preferredName picks the official name when one is marked, else the first.
func preferredName(patient fhir.Raw) (fhir.Raw, bool) {
	names := fhir.GetMaps(patient, "name")
	if len(names) == 0 {
		return nil, false
	}
	for _, n := range names {
		if fhir.Str(n, "use") == "official" {
			return n, true
		}
	}
	return names[0], true
}

// ExtractAdministrativeData projects demographics beyond core identity.
func ExtractAdministrativeData(patient fhir.Raw) AdministrativeData {
	data := AdministrativeData{
		Addresses:     []AddressData{},
		MaritalStatus: NotSpecified,
		Languages:     []string{},
	}
	if patient == nil {
		return data
	}

	data.Addresses = extractAddresses(patient)
	if status := fhir.ConceptText(patient, "maritalStatus"); status != "" {
		data.MaritalStatus = status
	}
	for _, comm := range fhir.GetMaps(patient, "communication") {
		if lang, ok := fhir.GetMap(comm, "language"); ok {
			if text := conceptTextPlain(lang); text != "" {
				data.Languages = append(data.Languages, text)
			}
		}
	}
	if deceased, ok := fhir.GetBool(patient, "deceasedBoolean"); ok && deceased {
		data.Deceased = "Deceased"
	}
	if dt := fhir.Str(patient, "deceasedDateTime"); dt != "" {
		data.Deceased = "Deceased " + dateOnly(dt)
	}
	return data
}

// ExtractContactData projects the patient's own telecoms and addresses.
func ExtractContactData(patient fhir.Raw) ContactData {
	data := ContactData{Telecoms: []TelecomData{}, Addresses: []AddressData{}}
	if patient == nil {
		return data
	}
	data.Telecoms = extractTelecoms(patient)
	data.Addresses = extractAddresses(patient)
	return data
}

// ExtractEmergencyContacts merges RelatedPerson resources and Patient.contact
// entries, labeling guardians by relationship-text heuristics.
func ExtractEmergencyContacts(patient fhir.Raw, relatedPersons []fhir.Raw) []EmergencyContact {
	contacts := []EmergencyContact{}

	for _, rp := range relatedPersons {
		contacts = append(contacts, buildContact(rp, humanNameOf(rp)))
	}
	if patient != nil {
		for _, c := range fhir.GetMaps(patient, "contact") {
			contacts = append(contacts, buildContact(c, contactNameOf(c)))
		}
	}
	return contacts
}

func buildContact(source fhir.Raw, name string) EmergencyContact {
	relationship := fhir.ConceptTextFromArray(source, "relationship")
	if relationship == "" {
		relationship = fhir.ConceptText(source, "relationship")
	}
	return EmergencyContact{
		Name:         orZero(name, Unknown),
		Relationship: orZero(relationship, NotSpecified),
		Telecoms:     extractTelecoms(source),
		Addresses:    extractAddresses(source),
		IsGuardian:   matchesAny(relationship, guardianKeywords),
		IsEmergency:  IsEmergencyRelationship(relationship),
	}
}

// IsEmergencyRelationship reports whether the relationship text marks an
// emergency contact rather than a plain related person.
func IsEmergencyRelationship(relationship string) bool {
	return matchesAny(relationship, emergencyKeywords)
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractHealthcareData builds provider data from Practitioner and
// Organization resources. When the bundle names an author but carries no
// Practitioner resource, a placeholder provider is synthesized from the
// Composition author reference so the display layer never renders an empty
// required field; it is explicitly marked synthetic.
func ExtractHealthcareData(pc *ParseContext, composition fhir.Raw, practitioners, organizations []fhir.Raw) HealthcareData {
	data := HealthcareData{Authors: []ProviderData{}, Organizations: []OrganizationData{}}

	for _, org := range organizations {
		data.Organizations = append(data.Organizations, OrganizationData{
			Name:      orZero(fhir.Str(org, "name"), Unknown),
			Telecoms:  extractTelecoms(org),
			Addresses: extractAddresses(org),
		})
	}

	custodian := custodianName(pc, composition)

	if composition != nil {
		for _, author := range fhir.GetMaps(composition, "author") {
			ref := fhir.Str(author, "reference")
			practitioner, found := pc.PractitionerByReference(ref)
			if found {
				data.Authors = append(data.Authors, providerOf(pc, practitioner))
				continue
			}
			data.Authors = append(data.Authors, syntheticProvider(author, ref))
		}
	}
	if len(data.Authors) == 0 {
		for _, p := range practitioners {
			data.Authors = append(data.Authors, providerOf(pc, p))
		}
	}
	for i := range data.Authors {
		if data.Authors[i].Organization == "" {
			data.Authors[i].Organization = custodian
			data.Authors[i].RepresentedOrganization = custodian
		}
	}
	return data
}

// custodianName resolves Composition.custodian against the bundle's
// Organization index, falling back to the reference's display text.
func custodianName(pc *ParseContext, composition fhir.Raw) string {
	if composition == nil {
		return ""
	}
	ref, ok := fhir.GetMap(composition, "custodian")
	if !ok {
		return ""
	}
	if org, found := pc.OrganizationByReference(fhir.Str(ref, "reference")); found {
		return fhir.Str(org, "name")
	}
	return fhir.Str(ref, "display")
}

func providerOf(pc *ParseContext, practitioner fhir.Raw) ProviderData {
	name := humanNameOf(practitioner)
	provider := ProviderData{
		Name:           orZero(name, Unknown),
		AssignedPerson: orZero(name, Unknown),
		Telecoms:       extractTelecoms(practitioner),
	}
	if n, ok := preferredName(practitioner); ok {
		provider.FamilyName = fhir.Str(n, "family")
		provider.GivenName = joinStrings(n, "given")
	}
	return provider
}

// syntheticProvider fabricates a provider from an unresolved author
// reference: display text when present, else the labeled placeholder plus a
// fresh id so downstream consumers can still key the entry.
func syntheticProvider(author fhir.Raw, ref string) ProviderData {
	name := fhir.Str(author, "display")
	if name == "" {
		name = unresolvedReference
		if ref != "" {
			name = unresolvedReference + " (" + fhir.StripReferencePrefix(ref) + ")"
		} else {
			name = unresolvedReference + " (" + uuid.NewString() + ")"
		}
	}
	return ProviderData{
		Name:           name,
		AssignedPerson: name,
		Telecoms:       []TelecomData{},
		Synthetic:      true,
	}
}

// ---- shared projections ----

func humanNameOf(resource fhir.Raw) string {
	name, ok := preferredName(resource)
	if !ok {
		return ""
	}
	if text := fhir.Str(name, "text"); text != "" {
		return text
	}
	return strings.TrimSpace(joinStrings(name, "given") + " " + fhir.Str(name, "family"))
}

// contactNameOf reads the single name object of a Patient.contact.
func contactNameOf(contact fhir.Raw) string {
	name, ok := fhir.GetMap(contact, "name")
	if !ok {
		return ""
	}
	if text := fhir.Str(name, "text"); text != "" {
		return text
	}
	return strings.TrimSpace(joinStrings(name, "given") + " " + fhir.Str(name, "family"))
}

func joinStrings(m fhir.Raw, key string) string {
	arr, ok := fhir.GetArray(m, key)
	if !ok {
		return ""
	}
	var parts []string
	for _, el := range arr {
		if s, ok := el.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func extractAddresses(resource fhir.Raw) []AddressData {
	out := []AddressData{}
	for _, addr := range fhir.GetMaps(resource, "address") {
		out = append(out, AddressData{
			Street:     joinStrings(addr, "line"),
			City:       fhir.Str(addr, "city"),
			PostalCode: fhir.Str(addr, "postalCode"),
			State:      fhir.Str(addr, "state"),
			Country:    fhir.Str(addr, "country"),
			Use:        fhir.Str(addr, "use"),
		})
	}
	return out
}

func extractTelecoms(resource fhir.Raw) []TelecomData {
	out := []TelecomData{}
	for _, t := range fhir.GetMaps(resource, "telecom") {
		if value := fhir.Str(t, "value"); value != "" {
			out = append(out, TelecomData{
				System: orZero(fhir.Str(t, "system"), "phone"),
				Value:  value,
				Use:    fhir.Str(t, "use"),
			})
		}
	}
	return out
}
