package models

// DecodedTransaction is the JSON shape returned by the decode path of the
// wire codec. Attribute keys inside operations are camelCase, matching the
// historical laboratory import format; the decoder translates them back to
// snake_case form fields.
type DecodedTransaction struct {
	Attributes        TransactionAttributes `json:"attributes"`
	FeeBumpAttributes FeeBumpAttributes     `json:"feeBumpAttributes"`
	Operations        []DecodedOperation    `json:"operations"`
}

type TransactionAttributes struct {
	SourceAccount string `json:"sourceAccount"`
	Sequence      string `json:"sequence"`
	Fee           string `json:"fee"`
	BaseFee       string `json:"baseFee"`
	MinFee        string `json:"minFee"`
	MemoType      string `json:"memoType,omitempty"`
	MemoContent   string `json:"memoContent,omitempty"`
}

type FeeBumpAttributes struct {
	MaxFee string `json:"maxFee"`
}

// DecodedOperation carries one wire operation. Name is the camelCase
// operation name derived from the SDK operation type; Attributes values are
// strings, WireAsset values, or []WireAsset for payment paths.
type DecodedOperation struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}
