package commercial

import "wireline/pkg/sequence"

// Sequence prefixes per document type. Every flow numbers sequentially;
// the prototype's random-suffix IDs on notes were a duplicate hazard and
// are gone.
var sequencePrefixes = map[DocumentType]string{
	TypePurchaseInvoice: "PUR",
	TypeSalesInvoice:    "INV",
	TypeDebitNote:       "DN",
	TypeCreditNote:      "CN",
}

// SequenceConfig returns the numbering configuration for a document type.
func SequenceConfig(docType DocumentType) sequence.Config {
	prefix, ok := sequencePrefixes[docType]
	if !ok {
		prefix = "DOC"
	}
	return sequence.DefaultConfig(prefix)
}
