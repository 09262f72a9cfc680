package enums

import "fmt"

// DocumentKind discriminates receipt documents from shipment documents.
// Receipts credit balances when created or edited; shipments debit balances
// only when signed.
type DocumentKind string

const (
	DocumentKindReceipt  DocumentKind = "receipt"
	DocumentKindShipment DocumentKind = "shipment"
)

var validDocumentKinds = []DocumentKind{
	DocumentKindReceipt,
	DocumentKindShipment,
}

// String implements fmt.Stringer.
func (k DocumentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DocumentKind.
func (k DocumentKind) IsValid() bool {
	for _, candidate := range validDocumentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDocumentKind converts raw input into a DocumentKind.
func ParseDocumentKind(value string) (DocumentKind, error) {
	for _, candidate := range validDocumentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document kind %q", value)
}
