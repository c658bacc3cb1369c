package terminology

import "github.com/ncp/patient-summary/internal/platform/fhir"

// atcFallback maps common ATC codes to international nonproprietary names.
// Used when the terminology gateway is unreachable or does not know the
// code, so a cross-border summary still shows a recognizable drug name.
var atcFallback = map[string]string{
	"A02BC01": "Omeprazole",
	"A02BC02": "Pantoprazole",
	"A10BA02": "Metformin",
	"B01AA03": "Warfarin",
	"B01AC06": "Acetylsalicylic acid",
	"C01AA05": "Digoxin",
	"C03CA01": "Furosemide",
	"C07AB02": "Metoprolol",
	"C08CA01": "Amlodipine",
	"C09AA02": "Enalapril",
	"C09AA05": "Ramipril",
	"C10AA01": "Simvastatin",
	"C10AA05": "Atorvastatin",
	"H03AA01": "Levothyroxine",
	"J01CA04": "Amoxicillin",
	"M01AE01": "Ibuprofen",
	"N02BE01": "Paracetamol",
	"N05BA04": "Oxazepam",
	"R03AC02": "Salbutamol",
	"R06AE07": "Cetirizine",
}

// fallbackDisplay returns the static display for a code, honoring only the
// ATC table. Other systems have no static fallback.
func fallbackDisplay(code, systemOID string) (string, bool) {
	if systemOID != fhir.OIDATC {
		return "", false
	}
	name, ok := atcFallback[code]
	return name, ok
}
