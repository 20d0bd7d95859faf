package handlers

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/montelibero/stellarlab/models"
)

// Transaction-level envelope defaults.
const (
	DefaultBaseFee    = 10101
	DefaultTimeout    = 7 * 24 * time.Hour
	displayBaseFee    = "100"
	displayMinFee     = "5000"
	feeBumpMaxFeeAttr = "10101"
)

// Intermediate is the fully resolved transaction the assembler hands to the
// codec: sequence already fetched, memo built, every operation constructed.
type Intermediate struct {
	SourceAccount string
	Sequence      int64
	Memo          txnbuild.Memo
	Operations    []txnbuild.Operation
}

// WireCodec converts between the intermediate form and base64 envelope text.
type WireCodec interface {
	Encode(tx *Intermediate) (string, error)
	Decode(envelope string) (*models.DecodedTransaction, error)
}

// XDRCodec is the production codec. It seals envelopes with a fixed base fee
// and a long validity window so offline signers have time to collect
// signatures.
type XDRCodec struct {
	BaseFee           int64
	Timeout           time.Duration
	NetworkPassphrase string
}

// NewXDRCodec returns a codec for the given network passphrase with the
// default fee and validity window.
func NewXDRCodec(passphrase string) *XDRCodec {
	return &XDRCodec{
		BaseFee:           DefaultBaseFee,
		Timeout:           DefaultTimeout,
		NetworkPassphrase: passphrase,
	}
}

func (c *XDRCodec) Encode(itx *Intermediate) (string, error) {
	if len(itx.Operations) == 0 {
		return "", fmt.Errorf("transaction has no operations")
	}
	source := txnbuild.SimpleAccount{AccountID: itx.SourceAccount, Sequence: itx.Sequence}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: false,
		Operations:           itx.Operations,
		BaseFee:              c.BaseFee,
		Memo:                 itx.Memo,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(int64(c.Timeout.Seconds())),
		},
	})
	if err != nil {
		return "", fmt.Errorf("building transaction: %w", err)
	}
	return tx.Base64()
}

func (c *XDRCodec) Decode(envelope string) (*models.DecodedTransaction, error) {
	generic, err := txnbuild.TransactionFromXDR(strings.TrimSpace(envelope))
	if err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		feeBump, isFeeBump := generic.FeeBump()
		if !isFeeBump {
			return nil, fmt.Errorf("unsupported envelope type")
		}
		tx = feeBump.InnerTransaction()
	}

	source := tx.SourceAccount()
	decoded := &models.DecodedTransaction{
		Attributes: models.TransactionAttributes{
			SourceAccount: source.AccountID,
			Sequence:      strconv.FormatInt(source.Sequence, 10),
			Fee:           strconv.FormatInt(tx.BaseFee(), 10),
			BaseFee:       displayBaseFee,
			MinFee:        displayMinFee,
		},
		FeeBumpAttributes: models.FeeBumpAttributes{MaxFee: feeBumpMaxFeeAttr},
	}
	decoded.Attributes.MemoType, decoded.Attributes.MemoContent = decodeMemo(tx.Memo())

	for i, op := range tx.Operations() {
		name, attrs := decodeOperation(op)
		if src := op.GetSourceAccount(); src != "" {
			attrs["sourceAccount"] = src
		}
		decoded.Operations = append(decoded.Operations, models.DecodedOperation{
			ID:         i,
			Name:       name,
			Attributes: attrs,
		})
	}
	return decoded, nil
}

func decodeMemo(memo txnbuild.Memo) (string, string) {
	switch m := memo.(type) {
	case txnbuild.MemoText:
		return "MEMO_TEXT", string(m)
	case txnbuild.MemoHash:
		return "MEMO_HASH", hex.EncodeToString(m[:])
	case nil:
		return "MEMO_NONE", ""
	default:
		return "MEMO_NONE", ""
	}
}

// decodeOperation serializes one operation to its wire name and camelCase
// attribute map. Operations outside the catalog come back with a best-effort
// name and a detail marker so callers can count them as skipped.
func decodeOperation(op txnbuild.Operation) (string, map[string]any) {
	attrs := map[string]any{}
	switch o := op.(type) {
	case *txnbuild.Payment:
		attrs["destination"] = o.Destination
		attrs["asset"] = assetToWire(o.Asset)
		attrs["amount"] = o.Amount
		return "payment", attrs
	case *txnbuild.ChangeTrust:
		attrs["limit"] = o.Limit
		if params, ok := o.Line.GetLiquidityPoolParameters(); ok {
			if poolID, err := txnbuild.NewLiquidityPoolId(params.AssetA, params.AssetB); err == nil {
				attrs["liquidityPoolId"] = hex.EncodeToString(poolID[:])
				return "liquidityPoolTrustline", attrs
			}
		}
		attrs["asset"] = changeTrustAssetToWire(o.Line)
		return "changeTrust", attrs
	case *txnbuild.CreateAccount:
		attrs["destination"] = o.Destination
		attrs["startingBalance"] = o.Amount
		return "createAccount", attrs
	case *txnbuild.ManageData:
		attrs["dataName"] = o.Name
		attrs["dataValue"] = string(o.Value)
		return "manageData", attrs
	case *txnbuild.SetOptions:
		if o.MasterWeight != nil {
			attrs["master"] = strconv.FormatUint(uint64(*o.MasterWeight), 10)
		}
		if o.LowThreshold != nil && o.MediumThreshold != nil && o.HighThreshold != nil {
			attrs["threshold"] = fmt.Sprintf("%d/%d/%d", *o.LowThreshold, *o.MediumThreshold, *o.HighThreshold)
		}
		if o.HomeDomain != nil {
			attrs["home"] = *o.HomeDomain
		}
		if o.Signer != nil {
			attrs["signerAccount"] = o.Signer.Address
			attrs["weight"] = strconv.FormatUint(uint64(o.Signer.Weight), 10)
			return "setOptionsSigner", attrs
		}
		return "setOptions", attrs
	case *txnbuild.ManageSellOffer:
		attrs["selling"] = assetToWire(o.Selling)
		attrs["buying"] = assetToWire(o.Buying)
		attrs["amount"] = o.Amount
		attrs["price"] = priceString(o.Price)
		attrs["offerId"] = strconv.FormatInt(o.OfferID, 10)
		return "manageSellOffer", attrs
	case *txnbuild.ManageBuyOffer:
		attrs["selling"] = assetToWire(o.Selling)
		attrs["buying"] = assetToWire(o.Buying)
		attrs["amount"] = o.Amount
		attrs["price"] = priceString(o.Price)
		attrs["offerId"] = strconv.FormatInt(o.OfferID, 10)
		return "manageBuyOffer", attrs
	case *txnbuild.CreatePassiveSellOffer:
		attrs["selling"] = assetToWire(o.Selling)
		attrs["buying"] = assetToWire(o.Buying)
		attrs["amount"] = o.Amount
		attrs["price"] = priceString(o.Price)
		return "createPassiveSellOffer", attrs
	case *txnbuild.PathPaymentStrictSend:
		attrs["sendAsset"] = assetToWire(o.SendAsset)
		attrs["sendAmount"] = o.SendAmount
		attrs["destination"] = o.Destination
		attrs["destAsset"] = assetToWire(o.DestAsset)
		attrs["destMin"] = o.DestMin
		attrs["path"] = pathToWire(o.Path)
		return "pathPaymentStrictSend", attrs
	case *txnbuild.Clawback:
		attrs["asset"] = assetToWire(o.Asset)
		attrs["from"] = o.From
		attrs["amount"] = o.Amount
		return "clawback", attrs
	case *txnbuild.ClaimClaimableBalance:
		attrs["balanceId"] = o.BalanceID
		return "claimClaimableBalance", attrs
	case *txnbuild.CreateClaimableBalance:
		attrs["asset"] = assetToWire(o.Asset)
		attrs["amount"] = o.Amount
		for i, claimant := range o.Destinations {
			prefix := fmt.Sprintf("claimant%d", i+1)
			attrs[prefix+"Destination"] = claimant.Destination
			ptype, pvalue := decodePredicate(claimant.Predicate)
			attrs[prefix+"PredicateType"] = ptype
			if pvalue != "" {
				attrs[prefix+"PredicateValue"] = pvalue
			}
		}
		return "createClaimableBalance", attrs
	case *txnbuild.SetTrustLineFlags:
		attrs["asset"] = assetToWire(o.Asset)
		attrs["trustor"] = o.Trustor
		attrs["setFlags"] = strconv.Itoa(trustLineFlagMask(o.SetFlags))
		attrs["clearFlags"] = strconv.Itoa(trustLineFlagMask(o.ClearFlags))
		return "setTrustLineFlags", attrs
	case *txnbuild.LiquidityPoolDeposit:
		attrs["liquidityPoolId"] = hex.EncodeToString(o.LiquidityPoolID[:])
		attrs["maxAmountA"] = o.MaxAmountA
		attrs["maxAmountB"] = o.MaxAmountB
		attrs["minPrice"] = priceString(o.MinPrice)
		attrs["maxPrice"] = priceString(o.MaxPrice)
		return "liquidityPoolDeposit", attrs
	case *txnbuild.LiquidityPoolWithdraw:
		attrs["liquidityPoolId"] = hex.EncodeToString(o.LiquidityPoolID[:])
		attrs["amount"] = o.Amount
		attrs["minAmountA"] = o.MinAmountA
		attrs["minAmountB"] = o.MinAmountB
		return "liquidityPoolWithdraw", attrs
	case *txnbuild.RevokeSponsorship:
		decodeRevokeSponsorship(o, attrs)
		return "revokeSponsorship", attrs
	case *txnbuild.BumpSequence:
		attrs["bumpTo"] = strconv.FormatInt(o.BumpTo, 10)
		return "bumpSequence", attrs
	case *txnbuild.BeginSponsoringFutureReserves:
		attrs["sponsoredId"] = o.SponsoredID
		return "beginSponsoringFutureReserves", attrs
	case *txnbuild.EndSponsoringFutureReserves:
		return "endSponsoringFutureReserves", attrs
	default:
		attrs["detail"] = "unsupported operation"
		return unknownOpName(op), attrs
	}
}

func decodeRevokeSponsorship(o *txnbuild.RevokeSponsorship, attrs map[string]any) {
	switch o.SponsorshipType {
	case txnbuild.RevokeSponsorshipTypeAccount:
		attrs["revokeType"] = "account"
		if o.Account != nil {
			attrs["revokeAccountId"] = *o.Account
		}
	case txnbuild.RevokeSponsorshipTypeTrustLine:
		attrs["revokeType"] = "trustline"
		if o.TrustLine != nil {
			attrs["revokeTrustlineAccount"] = o.TrustLine.Account
			attrs["revokeTrustlineAsset"] = trustLineAssetToWire(o.TrustLine.Asset)
		}
	case txnbuild.RevokeSponsorshipTypeData:
		attrs["revokeType"] = "data"
		if o.Data != nil {
			attrs["revokeDataAccount"] = o.Data.Account
			attrs["revokeDataName"] = o.Data.DataName
		}
	case txnbuild.RevokeSponsorshipTypeOffer:
		attrs["revokeType"] = "offer"
		if o.Offer != nil {
			attrs["revokeOfferSeller"] = o.Offer.SellerAccountAddress
			attrs["revokeOfferId"] = strconv.FormatInt(o.Offer.OfferID, 10)
		}
	case txnbuild.RevokeSponsorshipTypeClaimableBalance:
		attrs["revokeType"] = "claimable_balance"
		if o.ClaimableBalance != nil {
			attrs["revokeClaimableBalanceId"] = *o.ClaimableBalance
		}
	case txnbuild.RevokeSponsorshipTypeSigner:
		attrs["revokeType"] = "signer"
		if o.Signer != nil {
			attrs["revokeSignerAccount"] = o.Signer.AccountID
			attrs["revokeSignerKey"] = o.Signer.SignerAddress
		}
	}
}

func decodePredicate(p xdr.ClaimPredicate) (string, string) {
	switch p.Type {
	case xdr.ClaimPredicateTypeClaimPredicateUnconditional:
		return "unconditional", ""
	case xdr.ClaimPredicateTypeClaimPredicateBeforeAbsoluteTime:
		if abs, ok := p.GetAbsBefore(); ok {
			return "before_absolute_time", strconv.FormatInt(int64(abs), 10)
		}
	case xdr.ClaimPredicateTypeClaimPredicateBeforeRelativeTime:
		if rel, ok := p.GetRelBefore(); ok {
			return "before_relative_time", strconv.FormatInt(int64(rel), 10)
		}
	case xdr.ClaimPredicateTypeClaimPredicateNot:
		if inner, ok := p.GetNotPredicate(); ok && inner != nil {
			innerType, innerValue := decodePredicate(*inner)
			return "not_" + innerType, innerValue
		}
	}
	return "unconditional", ""
}

// buildAsset parses a canonical form asset value into a txnbuild asset.
func buildAsset(form string) (txnbuild.Asset, error) {
	spec, err := models.ParseAssetSpecifier(form)
	if err != nil {
		return nil, err
	}
	if spec.IsNative() {
		return txnbuild.NativeAsset{}, nil
	}
	return txnbuild.CreditAsset{Code: spec.Code, Issuer: spec.Issuer}, nil
}

func assetToWire(a txnbuild.Asset) models.WireAsset {
	if a == nil || a.IsNative() {
		return models.WireAsset{Type: "native"}
	}
	code := a.GetCode()
	wireType := "credit_alphanum4"
	if len(code) > 4 {
		wireType = "credit_alphanum12"
	}
	return models.WireAsset{Type: wireType, Code: code, Issuer: a.GetIssuer()}
}

func changeTrustAssetToWire(line txnbuild.ChangeTrustAsset) models.WireAsset {
	if params, ok := line.GetLiquidityPoolParameters(); ok {
		if poolID, err := txnbuild.NewLiquidityPoolId(params.AssetA, params.AssetB); err == nil {
			return models.WireAsset{
				Type:            "liquidity_pool_shares",
				LiquidityPoolID: hex.EncodeToString(poolID[:]),
			}
		}
	}
	return basicAssetToWire(line)
}

func trustLineAssetToWire(a txnbuild.TrustLineAsset) models.WireAsset {
	if poolID, ok := a.GetLiquidityPoolID(); ok {
		return models.WireAsset{
			Type:            "liquidity_pool_shares",
			LiquidityPoolID: hex.EncodeToString(poolID[:]),
		}
	}
	return basicAssetToWire(a)
}

func basicAssetToWire(a txnbuild.BasicAsset) models.WireAsset {
	if a == nil || a.IsNative() {
		return models.WireAsset{Type: "native"}
	}
	return assetToWire(txnbuild.CreditAsset{Code: a.GetCode(), Issuer: a.GetIssuer()})
}

func pathToWire(path []txnbuild.Asset) []models.WireAsset {
	out := make([]models.WireAsset, len(path))
	for i, a := range path {
		out[i] = assetToWire(a)
	}
	return out
}

func trustLineFlagMask(flags []txnbuild.TrustLineFlag) int {
	mask := 0
	for _, f := range flags {
		mask |= int(f)
	}
	return mask
}

func priceString(p xdr.Price) string {
	if p.D == 0 {
		return "0"
	}
	s := new(big.Rat).SetFrac64(int64(p.N), int64(p.D)).FloatString(7)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// unknownOpName derives a camelCase name from the concrete operation type,
// e.g. *txnbuild.AccountMerge becomes accountMerge.
func unknownOpName(op txnbuild.Operation) string {
	name := fmt.Sprintf("%T", op)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
