package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/docintake/internal/model"
)

// VetCertBeforeShipmentRule requires veterinary certificates to be issued on or
// before the shipped-on-board date.
type VetCertBeforeShipmentRule struct{}

// Meta implements Rule.
func (VetCertBeforeShipmentRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "date.vet_cert_before_shipment",
		Name:        "Veterinary certificate issued before shipment",
		Description: "Veterinary health certificates are issued on or before the shipped-on-board date",
		Severity:    model.SeverityError,
		Category:    model.CategoryDate,
	}
}

// Evaluate implements Rule.
func (r VetCertBeforeShipmentRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	certs := vc.OfType(model.DocVeterinaryHealthCert)
	if len(certs) == 0 {
		return []model.RuleResult{meta.notApplicable("no veterinary health certificate")}
	}

	shipped, source, ok := shipmentDate(vc)
	if !ok {
		return []model.RuleResult{meta.notApplicable("no shipped-on-board date or ETD")}
	}

	results := make([]model.RuleResult, 0, len(certs))
	for _, cert := range certs {
		issued, ok := cert.CanonicalData.IssueDate()
		if !ok {
			results = append(results, forDocument(meta.notApplicable("certificate has no issue date"), cert))
			continue
		}
		details := map[string]any{
			"issue_date":    issued.Format(model.IsoDate),
			"shipment_date": shipped.Format(model.IsoDate),
			"date_source":   source,
		}
		if issued.After(shipped) {
			results = append(results, forDocument(meta.fail(meta.Severity,
				fmt.Sprintf("Veterinary certificate issued %s, after shipment on %s",
					issued.Format(model.IsoDate), shipped.Format(model.IsoDate)),
				details), cert))
			continue
		}
		results = append(results, forDocument(meta.pass(
			fmt.Sprintf("Veterinary certificate issued %s, on or before shipment on %s",
				issued.Format(model.IsoDate), shipped.Format(model.IsoDate)),
			details), cert))
	}
	return results
}

// shipmentDate prefers the bill of lading's shipped-on-board date over the ETD.
func shipmentDate(vc *Context) (time.Time, string, bool) {
	if bol, ok := vc.First(model.DocBillOfLading); ok {
		raw := bol.CanonicalData.String("shipped_on_board_date")
		if bol.BOLParsedData != nil && bol.BOLParsedData.ShippedOnBoardDate != "" {
			raw = bol.BOLParsedData.ShippedOnBoardDate
		}
		if t, ok := model.ParseDate(raw); ok {
			return t, "bill_of_lading", true
		}
	}
	if vc.Shipment.ETD != nil {
		y, m, d := vc.Shipment.ETD.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), "etd", true
	}
	return time.Time{}, "", false
}

// signedTypes are certificates that must name who signed or issued them.
var signedTypes = map[model.DocumentType]bool{
	model.DocVeterinaryHealthCert: true,
	model.DocFumigationCert:       true,
	model.DocCertificateOfOrigin:  true,
}

// AuthorizedSignerRule warns about certificates that name no signer or issuer.
type AuthorizedSignerRule struct{}

// Meta implements Rule.
func (AuthorizedSignerRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "content.authorized_signer",
		Name:        "Authorized signer named",
		Description: "Veterinary, fumigation and origin certificates name a signer or issuer",
		Severity:    model.SeverityWarning,
		Category:    model.CategoryContent,
	}
}

// Evaluate implements Rule.
func (r AuthorizedSignerRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	var results []model.RuleResult
	for _, d := range vc.Documents {
		if !signedTypes[d.DocumentType] {
			continue
		}
		if signer := d.CanonicalData.Signer(); signer != "" {
			results = append(results, forDocument(meta.pass(
				fmt.Sprintf("%s signed by %s", d.DocumentType.Label(), signer),
				map[string]any{"signer": signer}), d))
			continue
		}
		results = append(results, forDocument(meta.fail(meta.Severity,
			fmt.Sprintf("%s does not name an authorized signer or issuer", d.DocumentType.Label()), nil), d))
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.notApplicable("no certificates requiring a signer")}
	}
	return results
}

// referenceTypes are document types expected to carry a reference number.
var referenceTypes = map[model.DocumentType]bool{
	model.DocBillOfLading:         true,
	model.DocCommercialInvoice:    true,
	model.DocPackingList:          true,
	model.DocCertificateOfOrigin:  true,
	model.DocPhytosanitaryCert:    true,
	model.DocFumigationCert:       true,
	model.DocVeterinaryHealthCert: true,
	model.DocHalalCert:            true,
	model.DocInsuranceCert:        true,
	model.DocExportDeclaration:    true,
}

// ReferenceNumberRule notes documents missing a reference number. Its findings
// are informational.
type ReferenceNumberRule struct{}

// Meta implements Rule.
func (ReferenceNumberRule) Meta() RuleMeta {
	return RuleMeta{
		ID:          "content.reference_number",
		Name:        "Reference number present",
		Description: "Reference-bearing documents state a reference number",
		Severity:    model.SeverityInfo,
		Category:    model.CategoryContent,
	}
}

// Evaluate implements Rule.
func (r ReferenceNumberRule) Evaluate(vc *Context) []model.RuleResult {
	meta := r.Meta()

	var results []model.RuleResult
	for _, d := range vc.Documents {
		if !referenceTypes[d.DocumentType] || strings.TrimSpace(d.ReferenceNumber) != "" {
			continue
		}
		results = append(results, forDocument(meta.fail(model.SeverityInfo,
			fmt.Sprintf("%s has no reference number", d.DocumentType.Label()), nil), d))
	}

	if len(results) == 0 {
		return []model.RuleResult{meta.pass("All documents carry reference numbers", nil)}
	}
	return results
}
