package classification

import "github.com/Veraticus/docintake/internal/model"

// DefaultLexicons returns the built-in keyword lexicons. Certificates that share
// vocabulary with broader documents carry a higher priority so they win ties.
func DefaultLexicons() []Lexicon {
	return []Lexicon{
		{
			Type:     model.DocVeterinaryHealthCert,
			Priority: 100,
			Keywords: []string{
				"veterinary", "health certificate", "official veterinarian", "animal health",
				"fit for human consumption", "slaughterhouse", "establishment number",
				"ante-mortem", "post-mortem", "competent authority",
			},
		},
		{
			Type:     model.DocPhytosanitaryCert,
			Priority: 95,
			Keywords: []string{
				"phytosanitary", "plant protection", "plant protection organization",
				"quarantine pests", "botanical name", "disinfestation", "ippc",
				"place of origin", "free from",
			},
		},
		{
			Type:     model.DocFumigationCert,
			Priority: 90,
			Keywords: []string{
				"fumigation", "fumigant", "methyl bromide", "phosphine", "dosage rate",
				"exposure period", "fumigated", "ispm",
			},
		},
		{
			Type:     model.DocHalalCert,
			Priority: 85,
			Keywords: []string{
				"halal", "islamic", "shariah", "zabiha", "halal certification body",
			},
		},
		{
			Type:     model.DocQualityCert,
			Priority: 80,
			Keywords: []string{
				"certificate of analysis", "certificate of quality", "quality certificate",
				"test results", "specification", "laboratory", "analysis", "moisture",
			},
		},
		{
			Type:     model.DocInsuranceCert,
			Priority: 75,
			Keywords: []string{
				"insurance", "insured", "policy", "underwriter", "premium", "claims",
				"institute cargo clauses", "sum insured",
			},
		},
		{
			Type:     model.DocCertificateOfOrigin,
			Priority: 70,
			Keywords: []string{
				"certificate of origin", "country of origin", "chamber of commerce",
				"originating", "preferential", "exporter", "consignee", "form a",
			},
		},
		{
			Type:     model.DocExportDeclaration,
			Priority: 65,
			Keywords: []string{
				"export declaration", "customs", "declarant", "mrn", "customs office",
				"export license", "tariff",
			},
		},
		{
			Type:     model.DocBillOfLading,
			Priority: 60,
			Keywords: []string{
				"bill of lading", "shipper", "consignee", "notify party", "port of loading",
				"port of discharge", "vessel", "voyage", "container", "shipped on board",
				"freight",
			},
		},
		{
			Type:     model.DocPackingList,
			Priority: 55,
			Keywords: []string{
				"packing list", "gross weight", "net weight", "packages", "cartons",
				"dimensions", "marks and numbers", "container",
			},
		},
		{
			Type:     model.DocCommercialInvoice,
			Priority: 50,
			Keywords: []string{
				"commercial invoice", "invoice", "unit price", "total amount", "payment terms",
				"incoterms", "buyer", "seller", "amount due",
			},
		},
	}
}
