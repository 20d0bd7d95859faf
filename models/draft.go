package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Memo types accepted on a draft. The form historically sent both the bare
// and the memo_-prefixed spellings; NormalizeMemoType folds them together.
const (
	MemoNone = "none"
	MemoText = "text"
	MemoHash = "hash"
)

// NormalizeMemoType lowercases a memo type and strips the optional MEMO_
// prefix; an empty value means no memo.
func NormalizeMemoType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.TrimPrefix(t, "memo_")
	if t == "" {
		return MemoNone
	}
	return t
}

// OperationRecord is one user-authored instruction block. Fields holds the
// raw string values keyed by the snake_case form field names declared by the
// operation's schema; SourceAccount optionally overrides the transaction
// source for this operation only.
type OperationRecord struct {
	Kind          string
	Fields        map[string]string
	SourceAccount string
}

// The wire shape of an operation block is flat: {"type": ..., "sourceAccount":
// ..., <field>: <value>, ...}, exactly what the form gatherer produces.

func (r *OperationRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Fields = make(map[string]string, len(raw))
	for key, val := range raw {
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			// Tolerate bare numbers from hand-built payloads.
			var n json.Number
			if err := json.Unmarshal(val, &n); err != nil {
				return fmt.Errorf("operation field %q: %w", key, err)
			}
			s = n.String()
		}
		switch key {
		case "type":
			r.Kind = s
		case "sourceAccount":
			r.SourceAccount = s
		default:
			r.Fields[key] = s
		}
	}
	return nil
}

func (r OperationRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(r.Fields)+2)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat["type"] = r.Kind
	flat["sourceAccount"] = r.SourceAccount
	return json.Marshal(flat)
}

// Clone returns a deep copy so callers can derive values without mutating
// the caller's draft.
func (r OperationRecord) Clone() OperationRecord {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return OperationRecord{Kind: r.Kind, Fields: fields, SourceAccount: r.SourceAccount}
}

// TransactionDraft is the whole in-progress transaction as assembled by the
// form. Sequence stays a string end to end; "0" means "fetch the current
// on-ledger sequence and use current+1".
type TransactionDraft struct {
	Account    string            `json:"publicKey"`
	Sequence   string            `json:"sequence"`
	MemoType   string            `json:"memo_type"`
	Memo       string            `json:"memo"`
	Operations []OperationRecord `json:"operations"`
}

// ValidationError pinpoints exactly one offending field. OperationIndex is
// -1 for transaction-level fields (publicKey, sequence, memo).
type ValidationError struct {
	OperationKind  string `json:"operationKind"`
	OperationIndex int    `json:"operationIndex"`
	FieldName      string `json:"fieldName"`
	Message        string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.OperationIndex < 0 {
		return fmt.Sprintf("%s: %s", e.FieldName, e.Message)
	}
	return fmt.Sprintf("%s #%d, field %s: %s", e.OperationKind, e.OperationIndex, e.FieldName, e.Message)
}
