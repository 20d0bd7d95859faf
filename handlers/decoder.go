package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/montelibero/stellarlab/models"
)

// DecodeDraft maps a decoded wire transaction back onto a form draft.
// Operations outside the catalog are skipped, not failed: an envelope built
// elsewhere may mix supported and unsupported operations and the form should
// still import what it can. Returns the draft plus imported/skipped counts.
func DecodeDraft(decoded *models.DecodedTransaction) (*models.TransactionDraft, int, int) {
	draft := &models.TransactionDraft{
		Account:  decoded.Attributes.SourceAccount,
		Sequence: decoded.Attributes.Sequence,
		MemoType: models.NormalizeMemoType(decoded.Attributes.MemoType),
		Memo:     decoded.Attributes.MemoContent,
	}

	imported, skipped := 0, 0
	for _, op := range decoded.Operations {
		record, ok := decodeRecord(op)
		if !ok {
			skipped++
			continue
		}
		draft.Operations = append(draft.Operations, record)
		imported++
	}
	return draft, imported, skipped
}

func decodeRecord(op models.DecodedOperation) (models.OperationRecord, bool) {
	schema, ok := SchemaFor(op.Name)
	if !ok {
		return models.OperationRecord{}, false
	}
	if _, unsupported := op.Attributes["detail"]; unsupported {
		return models.OperationRecord{}, false
	}
	record := models.OperationRecord{Kind: schema.Kind, Fields: map[string]string{}}
	for wire, value := range op.Attributes {
		if wire == "sourceAccount" {
			record.SourceAccount = attributeToForm(value)
			continue
		}
		formName, known := schema.FormName(wire)
		if !known {
			continue
		}
		record.Fields[formName] = attributeToForm(value)
	}
	return record, true
}

// attributeToForm flattens one decoded attribute to its form string value.
// Attributes arrive either typed (straight from the codec) or as generic
// JSON values after a round trip through clients.
func attributeToForm(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case models.WireAsset:
		return v.FormValue()
	case []models.WireAsset:
		return marshalPath(v)
	case map[string]any:
		return wireAssetFromMap(v).FormValue()
	case []any:
		assets := make([]models.WireAsset, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				assets = append(assets, wireAssetFromMap(m))
			}
		}
		return marshalPath(assets)
	case json.Number:
		return v.String()
	case float64:
		return FormatAmount(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func wireAssetFromMap(m map[string]any) models.WireAsset {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return models.WireAsset{
		Type:            str("type"),
		Code:            str("code"),
		Issuer:          str("issuer"),
		LiquidityPoolID: str("liquidityPoolId"),
	}
}

// marshalPath renders a payment path as the JSON text the swap form field
// carries, using the path finder's asset_type key style.
func marshalPath(assets []models.WireAsset) string {
	if len(assets) == 0 {
		return ""
	}
	hops := make([]pathAsset, len(assets))
	for i, a := range assets {
		hops[i] = pathAsset{Type: a.Type, Code: a.Code, Issuer: a.Issuer}
	}
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(hops); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}
