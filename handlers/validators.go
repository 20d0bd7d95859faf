package handlers

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/montelibero/stellarlab/models"
)

// ValidationKind names the semantic type of a form field. The set is closed;
// every schema field references one of these.
type ValidationKind string

const (
	KindAccount            ValidationKind = "account"
	KindAccountNull        ValidationKind = "account_null"
	KindAsset              ValidationKind = "asset"
	KindInt                ValidationKind = "int"
	KindIntNull            ValidationKind = "int_null"
	KindFloat              ValidationKind = "float"
	KindFloatTrade         ValidationKind = "float_trade"
	KindFloatNull          ValidationKind = "float_null"
	KindText               ValidationKind = "text"
	KindTextNull           ValidationKind = "text_null"
	KindThreshold          ValidationKind = "threshold"
	KindPool               ValidationKind = "pool"
	KindClaimableBalanceID ValidationKind = "claimable_balance_id"
)

var (
	assetPattern     = regexp.MustCompile(`^[A-Za-z0-9]+-[A-Za-z0-9]+$`)
	intPattern       = regexp.MustCompile(`^\d+$`)
	thresholdPattern = regexp.MustCompile(`^\d+/\d+/\d+$`)
	hexPattern       = regexp.MustCompile(`^[A-Fa-f0-9]+$`)
)

// ValidateField checks one raw form value against a validation kind and
// returns the normalized value. It is pure and total: any outcome is either
// a normalized string or an error describing the failure, never a panic.
// Normalization is idempotent for every kind.
func ValidateField(raw string, kind ValidationKind) (string, error) {
	switch kind {
	case KindAccount:
		v := strings.TrimSpace(raw)
		if len(v) != 56 {
			return "", errors.New("account address must be exactly 56 characters")
		}
		return v, nil

	case KindAccountNull:
		if strings.TrimSpace(raw) == "" {
			return "", nil
		}
		return ValidateField(raw, KindAccount)

	case KindAsset:
		v := strings.TrimSpace(raw)
		if v == models.NativeAssetLabel {
			return v, nil
		}
		if !assetPattern.MatchString(v) {
			return "", errors.New("asset must be XLM or CODE-ISSUER")
		}
		return v, nil

	case KindInt:
		if !intPattern.MatchString(raw) {
			return "", errors.New("not a whole number")
		}
		return raw, nil

	case KindIntNull:
		if raw == "" {
			return "", nil
		}
		return ValidateField(raw, KindInt)

	case KindFloat, KindFloatTrade:
		v := strings.ReplaceAll(raw, ",", ".")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return "", errors.New("not a decimal number")
		}
		return v, nil

	case KindFloatNull:
		if raw == "" {
			return "", nil
		}
		return ValidateField(raw, KindFloat)

	case KindText:
		if strings.TrimSpace(raw) == "" {
			return "", errors.New("must not be empty")
		}
		return raw, nil

	case KindTextNull:
		return raw, nil

	case KindThreshold:
		if !intPattern.MatchString(raw) && !thresholdPattern.MatchString(raw) {
			return "", errors.New("want one number or low/medium/high, e.g. 1/2/3")
		}
		return raw, nil

	case KindPool:
		v := strings.ToLower(strings.TrimSpace(raw))
		if len(v) != 64 || !hexPattern.MatchString(v) {
			return "", errors.New("pool id must be 64 hex characters")
		}
		return v, nil

	case KindClaimableBalanceID:
		v := strings.ToLower(strings.TrimSpace(raw))
		if (len(v) != 64 && len(v) != 72) || !hexPattern.MatchString(v) {
			return "", errors.New("claimable balance id must be 64 or 72 hex characters")
		}
		return v, nil
	}
	return "", errors.New("unknown validation kind " + string(kind))
}
