package models

import (
	"fmt"
	"strings"
)

// NativeAssetLabel is the external string form of the network's native asset.
const NativeAssetLabel = "XLM"

// AssetSpecifier identifies an asset the way laboratory forms spell it:
// the literal "XLM", a "CODE-ISSUER" pair, or a liquidity-pool share
// identified by its pool id. The three variants are mutually exclusive.
type AssetSpecifier struct {
	Code   string `json:"code,omitempty"`
	Issuer string `json:"issuer,omitempty"`
	PoolID string `json:"liquidityPoolId,omitempty"`
}

func (a AssetSpecifier) IsNative() bool {
	return a.PoolID == "" && a.Code == NativeAssetLabel && a.Issuer == ""
}

func (a AssetSpecifier) IsPoolShare() bool {
	return a.PoolID != ""
}

// String renders the canonical form-side spelling.
func (a AssetSpecifier) String() string {
	switch {
	case a.IsPoolShare():
		return a.PoolID
	case a.IsNative():
		return NativeAssetLabel
	default:
		return a.Code + "-" + a.Issuer
	}
}

// HorizonParam renders the "CODE:ISSUER" (or "native") spelling Horizon
// query parameters expect.
func (a AssetSpecifier) HorizonParam() string {
	if a.IsNative() {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// ParseAssetSpecifier parses the form-side spelling: "XLM" or "CODE-ISSUER".
func ParseAssetSpecifier(s string) (AssetSpecifier, error) {
	s = strings.TrimSpace(s)
	if s == NativeAssetLabel {
		return AssetSpecifier{Code: NativeAssetLabel}, nil
	}
	code, issuer, ok := strings.Cut(s, "-")
	if !ok || code == "" || issuer == "" {
		return AssetSpecifier{}, fmt.Errorf("invalid asset %q, want XLM or CODE-ISSUER", s)
	}
	return AssetSpecifier{Code: code, Issuer: issuer}, nil
}

// WireAsset is the asset attribute shape inside decoded wire JSON. The type
// field mirrors Horizon asset types; code/issuer and liquidityPoolId are
// mutually exclusive.
type WireAsset struct {
	Type            string `json:"type,omitempty"`
	Code            string `json:"code,omitempty"`
	Issuer          string `json:"issuer,omitempty"`
	LiquidityPoolID string `json:"liquidityPoolId,omitempty"`
}

// FormValue converts a decoded asset attribute back to the form spelling.
func (w WireAsset) FormValue() string {
	switch {
	case w.Type == "native":
		return NativeAssetLabel
	case w.LiquidityPoolID != "":
		return w.LiquidityPoolID
	default:
		return w.Code + "-" + w.Issuer
	}
}
