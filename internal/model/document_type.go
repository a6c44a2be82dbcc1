// Package model defines the core domain models used throughout the application.
package model

import "strings"

// DocumentType identifies the kind of trade document a file or segment contains.
type DocumentType string

// Document type constants.
const (
	DocBillOfLading         DocumentType = "bill_of_lading"
	DocCommercialInvoice    DocumentType = "commercial_invoice"
	DocPackingList          DocumentType = "packing_list"
	DocCertificateOfOrigin  DocumentType = "certificate_of_origin"
	DocPhytosanitaryCert    DocumentType = "phytosanitary_certificate"
	DocFumigationCert       DocumentType = "fumigation_certificate"
	DocVeterinaryHealthCert DocumentType = "veterinary_health_certificate"
	DocInsuranceCert        DocumentType = "insurance_certificate"
	DocQualityCert          DocumentType = "quality_certificate"
	DocExportDeclaration    DocumentType = "export_declaration"
	DocHalalCert            DocumentType = "halal_certificate"
	DocOther                DocumentType = "other"
)

// AllDocumentTypes returns every known document type, DocOther last.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocBillOfLading,
		DocCommercialInvoice,
		DocPackingList,
		DocCertificateOfOrigin,
		DocPhytosanitaryCert,
		DocFumigationCert,
		DocVeterinaryHealthCert,
		DocInsuranceCert,
		DocQualityCert,
		DocExportDeclaration,
		DocHalalCert,
		DocOther,
	}
}

var documentTypeAliases = map[string]DocumentType{
	"bol":                     DocBillOfLading,
	"b/l":                     DocBillOfLading,
	"bl":                      DocBillOfLading,
	"sea_waybill":             DocBillOfLading,
	"invoice":                 DocCommercialInvoice,
	"packing":                 DocPackingList,
	"coo":                     DocCertificateOfOrigin,
	"origin_certificate":      DocCertificateOfOrigin,
	"phyto":                   DocPhytosanitaryCert,
	"phytosanitary":           DocPhytosanitaryCert,
	"fumigation":              DocFumigationCert,
	"veterinary_certificate":  DocVeterinaryHealthCert,
	"vet_cert":                DocVeterinaryHealthCert,
	"health_certificate":      DocVeterinaryHealthCert,
	"insurance":               DocInsuranceCert,
	"certificate_of_analysis": DocQualityCert,
	"quality":                 DocQualityCert,
	"halal":                   DocHalalCert,
}

// ParseDocumentType normalizes free-form type names (case, spaces, hyphens and a
// few common aliases) into a DocumentType. The second return is false when the
// name is not recognized.
func ParseDocumentType(s string) (DocumentType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return "", false
	}
	for _, t := range AllDocumentTypes() {
		if string(t) == key {
			return t, true
		}
	}
	if t, ok := documentTypeAliases[key]; ok {
		return t, true
	}
	return "", false
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	for _, known := range AllDocumentTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns a human readable name for the type.
func (t DocumentType) Label() string {
	switch t {
	case DocBillOfLading:
		return "Bill of Lading"
	case DocCommercialInvoice:
		return "Commercial Invoice"
	case DocPackingList:
		return "Packing List"
	case DocCertificateOfOrigin:
		return "Certificate of Origin"
	case DocPhytosanitaryCert:
		return "Phytosanitary Certificate"
	case DocFumigationCert:
		return "Fumigation Certificate"
	case DocVeterinaryHealthCert:
		return "Veterinary Health Certificate"
	case DocInsuranceCert:
		return "Insurance Certificate"
	case DocQualityCert:
		return "Quality Certificate"
	case DocExportDeclaration:
		return "Export Declaration"
	case DocHalalCert:
		return "Halal Certificate"
	case DocOther:
		return "Other"
	}
	return string(t)
}

// DocumentTypePtr returns a pointer to t. Handy for optional fields.
func DocumentTypePtr(t DocumentType) *DocumentType {
	return &t
}
