package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/price"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/montelibero/stellarlab/models"
)

// Assembler turns a transaction draft into a sealed base64 envelope:
// validation first, then operation construction, then encoding. Validation
// failures come back as *models.ValidationError pinpointing the field;
// anything else (Horizon, encoding) is an ordinary error.
type Assembler struct {
	codec    WireCodec
	resolver Resolver
	logger   *logrus.Entry
}

func NewAssembler(codec WireCodec, resolver Resolver, logger *logrus.Entry) *Assembler {
	return &Assembler{codec: codec, resolver: resolver, logger: logger}
}

// Assemble validates the draft and encodes it. The draft is never mutated;
// all normalization happens on local copies.
func (a *Assembler) Assemble(ctx context.Context, draft *models.TransactionDraft) (string, error) {
	account, err := ValidateField(draft.Account, KindAccount)
	if err != nil {
		return "", txError("publicKey", err)
	}
	sequence, err := a.resolveSequence(ctx, account, draft.Sequence)
	if err != nil {
		return "", err
	}
	memo, err := buildMemo(draft.MemoType, draft.Memo)
	if err != nil {
		return "", err
	}
	if len(draft.Operations) == 0 {
		return "", txError("operations", fmt.Errorf("transaction must contain at least one operation"))
	}

	itx := &Intermediate{SourceAccount: account, Sequence: sequence, Memo: memo}
	for i, record := range draft.Operations {
		ops, err := a.buildRecord(ctx, account, i, record)
		if err != nil {
			return "", err
		}
		itx.Operations = append(itx.Operations, ops...)
	}

	a.logger.WithFields(logrus.Fields{
		"account":    account,
		"operations": len(itx.Operations),
	}).Info("assembling transaction")
	return a.codec.Encode(itx)
}

func txError(field string, err error) *models.ValidationError {
	return &models.ValidationError{OperationIndex: -1, FieldName: field, Message: err.Error()}
}

func opError(kind string, index int, field string, err error) *models.ValidationError {
	return &models.ValidationError{
		OperationKind:  kind,
		OperationIndex: index,
		FieldName:      field,
		Message:        err.Error(),
	}
}

// resolveSequence handles the "0" sentinel: fetch the account's current
// sequence and use the next one.
func (a *Assembler) resolveSequence(ctx context.Context, account, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		current, err := a.resolver.CurrentSequence(ctx, account)
		if err != nil {
			return 0, fmt.Errorf("resolving sequence: %w", err)
		}
		return current + 1, nil
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 0 {
		return 0, txError("sequence", fmt.Errorf("bad sequence number %q", raw))
	}
	return seq, nil
}

const maxMemoTextBytes = 28

func buildMemo(memoType, content string) (txnbuild.Memo, error) {
	switch models.NormalizeMemoType(memoType) {
	case models.MemoNone:
		return nil, nil
	case models.MemoText:
		if content == "" {
			return nil, txError("memo", fmt.Errorf("text memo must not be empty"))
		}
		if len(content) > maxMemoTextBytes {
			return nil, txError("memo", fmt.Errorf("text memo exceeds %d bytes", maxMemoTextBytes))
		}
		return txnbuild.MemoText(content), nil
	case models.MemoHash:
		raw, err := hex.DecodeString(strings.TrimSpace(content))
		if err != nil || len(raw) != 32 {
			return nil, txError("memo", fmt.Errorf("hash memo must be 64 hex characters"))
		}
		var hash [32]byte
		copy(hash[:], raw)
		return txnbuild.MemoHash(hash), nil
	default:
		return nil, txError("memo", fmt.Errorf("unknown memo type %q", memoType))
	}
}

// buildRecord validates one operation record against its schema and expands
// it into ledger operations. Macros expand to more than one.
func (a *Assembler) buildRecord(ctx context.Context, txSource string, index int, record models.OperationRecord) ([]txnbuild.Operation, error) {
	schema, ok := SchemaFor(record.Kind)
	if !ok {
		return nil, opError(record.Kind, index, "type", fmt.Errorf("unknown operation type"))
	}
	opSource, err := ValidateField(record.SourceAccount, KindAccountNull)
	if err != nil {
		return nil, opError(schema.Kind, index, "sourceAccount", err)
	}

	values := make(map[string]string, len(schema.Fields))
	for _, f := range schema.EffectiveFields(record.Fields) {
		raw := record.Fields[f.Name]
		if strings.TrimSpace(raw) == "" {
			if f.Default != "" {
				raw = f.Default
			} else if !f.Required {
				values[f.Name] = ""
				continue
			}
		}
		v, err := ValidateField(raw, f.Kind)
		if err != nil {
			return nil, opError(schema.Kind, index, f.Name, err)
		}
		values[f.Name] = v
	}

	b := &recordBuilder{
		assembler: a,
		ctx:       ctx,
		txSource:  txSource,
		index:     index,
		kind:      schema.Kind,
		source:    opSource,
		values:    values,
	}
	return b.build()
}

// recordBuilder carries everything needed to construct the operations of a
// single validated record.
type recordBuilder struct {
	assembler *Assembler
	ctx       context.Context
	txSource  string
	index     int
	kind      string
	source    string
	values    map[string]string
}

func (b *recordBuilder) fail(field string, err error) error {
	return opError(b.kind, b.index, field, err)
}

func (b *recordBuilder) asset(field string) (txnbuild.Asset, error) {
	asset, err := buildAsset(b.values[field])
	if err != nil {
		return nil, b.fail(field, err)
	}
	return asset, nil
}

func (b *recordBuilder) amount(field string) string {
	f, _ := strconv.ParseFloat(b.values[field], 64)
	return FormatAmount(f)
}

func (b *recordBuilder) float(field string) float64 {
	f, _ := strconv.ParseFloat(b.values[field], 64)
	return f
}

func (b *recordBuilder) int64Field(field string) int64 {
	n, _ := strconv.ParseInt(b.values[field], 10, 64)
	return n
}

func (b *recordBuilder) price(field string) (xdr.Price, error) {
	p, err := price.Parse(b.values[field])
	if err != nil {
		return xdr.Price{}, b.fail(field, err)
	}
	return p, nil
}

func (b *recordBuilder) build() ([]txnbuild.Operation, error) {
	switch b.kind {
	case OpPayment:
		op, err := b.payment()
		return single(op, err)
	case OpTrustPayment:
		return b.trustPayment()
	case OpChangeTrust:
		op, err := b.changeTrust()
		return single(op, err)
	case OpCreateAccount:
		return []txnbuild.Operation{&txnbuild.CreateAccount{
			Destination:   b.values["destination"],
			Amount:        b.amount("startingBalance"),
			SourceAccount: b.source,
		}}, nil
	case OpManageData:
		return single(b.manageData(), nil)
	case OpBuy:
		return b.offer(func(selling, buying txnbuild.Asset, amount string, p xdr.Price) txnbuild.Operation {
			return &txnbuild.ManageBuyOffer{
				Selling: selling, Buying: buying, Amount: amount, Price: p,
				OfferID: b.int64Field("offer_id"), SourceAccount: b.source,
			}
		})
	case OpSell:
		return b.offer(func(selling, buying txnbuild.Asset, amount string, p xdr.Price) txnbuild.Operation {
			return &txnbuild.ManageSellOffer{
				Selling: selling, Buying: buying, Amount: amount, Price: p,
				OfferID: b.int64Field("offer_id"), SourceAccount: b.source,
			}
		})
	case OpSellPassive:
		return b.offer(func(selling, buying txnbuild.Asset, amount string, p xdr.Price) txnbuild.Operation {
			return &txnbuild.CreatePassiveSellOffer{
				Selling: selling, Buying: buying, Amount: amount, Price: p,
				SourceAccount: b.source,
			}
		})
	case OpSwap:
		op, err := b.swap()
		return single(op, err)
	case OpClawback:
		op, err := b.clawback()
		return single(op, err)
	case OpClaimClaimable:
		return []txnbuild.Operation{&txnbuild.ClaimClaimableBalance{
			BalanceID:     normalizeBalanceID(b.values["balanceId"]),
			SourceAccount: b.source,
		}}, nil
	case OpCreateClaimable:
		op, err := b.createClaimable()
		return single(op, err)
	case OpSetOptions:
		op, err := b.setOptions()
		return single(op, err)
	case OpSetOptionsSigner:
		return []txnbuild.Operation{&txnbuild.SetOptions{
			Signer: &txnbuild.Signer{
				Address: b.values["signerAccount"],
				Weight:  txnbuild.Threshold(b.int64Field("weight")),
			},
			SourceAccount: b.source,
		}}, nil
	case OpCopyMultiSign:
		return b.copyMultiSign()
	case OpSetTrustLineFlags:
		op, err := b.setTrustLineFlags()
		return single(op, err)
	case OpPayDivs:
		return b.payDivs()
	case OpLiquidityPoolDeposit:
		op, err := b.poolDeposit()
		return single(op, err)
	case OpLiquidityPoolWithdraw:
		op, err := b.poolWithdraw()
		return single(op, err)
	case OpLiquidityPoolTrust:
		op, err := b.poolTrustline()
		return single(op, err)
	case OpBeginSponsoring:
		return []txnbuild.Operation{&txnbuild.BeginSponsoringFutureReserves{
			SponsoredID:   b.values["sponsored_id"],
			SourceAccount: b.source,
		}}, nil
	case OpEndSponsoring:
		return []txnbuild.Operation{&txnbuild.EndSponsoringFutureReserves{
			SourceAccount: b.source,
		}}, nil
	case OpRevokeSponsorship:
		op, err := b.revokeSponsorship()
		return single(op, err)
	case OpBumpSequence:
		return []txnbuild.Operation{&txnbuild.BumpSequence{
			BumpTo:        b.int64Field("bump_to"),
			SourceAccount: b.source,
		}}, nil
	}
	return nil, b.fail("type", fmt.Errorf("unhandled operation type %s", b.kind))
}

func single(op txnbuild.Operation, err error) ([]txnbuild.Operation, error) {
	if err != nil {
		return nil, err
	}
	return []txnbuild.Operation{op}, nil
}

func (b *recordBuilder) payment() (txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	return &txnbuild.Payment{
		Destination:   b.values["destination"],
		Asset:         asset,
		Amount:        b.amount("amount"),
		SourceAccount: b.source,
	}, nil
}

// trustPayment wraps a payment of a frozen asset: authorize the trustline,
// pay, de-authorize again. The flag operations run as the asset issuer when
// no explicit source is set on the record.
func (b *recordBuilder) trustPayment() ([]txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	pay, err := b.payment()
	if err != nil {
		return nil, err
	}
	trustor := b.values["destination"]
	return []txnbuild.Operation{
		&txnbuild.SetTrustLineFlags{
			Trustor:       trustor,
			Asset:         asset,
			SetFlags:      []txnbuild.TrustLineFlag{txnbuild.TrustLineAuthorized},
			SourceAccount: b.source,
		},
		pay,
		&txnbuild.SetTrustLineFlags{
			Trustor:       trustor,
			Asset:         asset,
			ClearFlags:    []txnbuild.TrustLineFlag{txnbuild.TrustLineAuthorized},
			SourceAccount: b.source,
		},
	}, nil
}

func (b *recordBuilder) changeTrust() (txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	limit := txnbuild.MaxTrustlineLimit
	if b.values["limit"] != "" {
		limit = b.amount("limit")
	}
	return &txnbuild.ChangeTrust{
		Line:          txnbuild.ChangeTrustAssetWrapper{Asset: asset},
		Limit:         limit,
		SourceAccount: b.source,
	}, nil
}

// manageData deletes the entry when the value is empty.
func (b *recordBuilder) manageData() txnbuild.Operation {
	var value []byte
	if v := b.values["data_value"]; v != "" {
		value = []byte(v)
	}
	return &txnbuild.ManageData{
		Name:          b.values["data_name"],
		Value:         value,
		SourceAccount: b.source,
	}
}

func (b *recordBuilder) offer(build func(selling, buying txnbuild.Asset, amount string, p xdr.Price) txnbuild.Operation) ([]txnbuild.Operation, error) {
	selling, err := b.asset("selling")
	if err != nil {
		return nil, err
	}
	buying, err := b.asset("buying")
	if err != nil {
		return nil, err
	}
	p, err := b.price("price")
	if err != nil {
		return nil, err
	}
	return []txnbuild.Operation{build(selling, buying, b.amount("amount"), p)}, nil
}

// pathAsset is the JSON shape of one hop in a swap path, as produced by the
// path finder response.
type pathAsset struct {
	Type   string `json:"asset_type"`
	Code   string `json:"asset_code,omitempty"`
	Issuer string `json:"asset_issuer,omitempty"`
}

func (b *recordBuilder) swap() (txnbuild.Operation, error) {
	selling, err := b.asset("selling")
	if err != nil {
		return nil, err
	}
	buying, err := b.asset("buying")
	if err != nil {
		return nil, err
	}
	var path []txnbuild.Asset
	if raw := strings.TrimSpace(b.values["path"]); raw != "" {
		var hops []pathAsset
		if err := json.Unmarshal([]byte(raw), &hops); err != nil {
			return nil, b.fail("path", fmt.Errorf("bad path: %v", err))
		}
		for _, hop := range hops {
			if hop.Type == "native" {
				path = append(path, txnbuild.NativeAsset{})
				continue
			}
			path = append(path, txnbuild.CreditAsset{Code: hop.Code, Issuer: hop.Issuer})
		}
	}
	destination := b.source
	if destination == "" {
		destination = b.txSource
	}
	return &txnbuild.PathPaymentStrictSend{
		SendAsset:     selling,
		SendAmount:    b.amount("amount"),
		Destination:   destination,
		DestAsset:     buying,
		DestMin:       b.amount("destination"),
		Path:          path,
		SourceAccount: b.source,
	}, nil
}

func (b *recordBuilder) clawback() (txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	return &txnbuild.Clawback{
		From:          b.values["from"],
		Amount:        b.amount("amount"),
		Asset:         asset,
		SourceAccount: b.source,
	}, nil
}

// normalizeBalanceID pads a bare 64-character balance hash with the
// all-zero type prefix of the full 72-character id.
func normalizeBalanceID(id string) string {
	if len(id) == 64 {
		return "00000000" + id
	}
	return id
}

func (b *recordBuilder) createClaimable() (txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	claimants, err := b.claimants()
	if err != nil {
		return nil, err
	}
	return &txnbuild.CreateClaimableBalance{
		Amount:        b.amount("amount"),
		Asset:         asset,
		Destinations:  claimants,
		SourceAccount: b.source,
	}, nil
}

func (b *recordBuilder) claimants() ([]txnbuild.Claimant, error) {
	claimants := []txnbuild.Claimant{}
	for _, n := range []string{"1", "2"} {
		destination := b.values["claimant_"+n+"_destination"]
		if destination == "" {
			continue
		}
		predicate, err := buildPredicate(
			b.values["claimant_"+n+"_predicate_type"],
			b.values["claimant_"+n+"_predicate_value"],
		)
		if err != nil {
			return nil, b.fail("claimant_"+n+"_predicate_type", err)
		}
		claimants = append(claimants, txnbuild.Claimant{Destination: destination, Predicate: predicate})
	}
	return claimants, nil
}

func buildPredicate(ptype, pvalue string) (xdr.ClaimPredicate, error) {
	negated := false
	if strings.HasPrefix(ptype, "not_") {
		negated = true
		ptype = strings.TrimPrefix(ptype, "not_")
	}
	var predicate xdr.ClaimPredicate
	switch ptype {
	case "", "unconditional":
		predicate = txnbuild.UnconditionalPredicate
	case "before_absolute_time":
		seconds, err := strconv.ParseInt(pvalue, 10, 64)
		if err != nil {
			return xdr.ClaimPredicate{}, fmt.Errorf("bad predicate time %q", pvalue)
		}
		predicate = txnbuild.BeforeAbsoluteTimePredicate(seconds)
	case "before_relative_time":
		seconds, err := strconv.ParseInt(pvalue, 10, 64)
		if err != nil {
			return xdr.ClaimPredicate{}, fmt.Errorf("bad predicate time %q", pvalue)
		}
		predicate = txnbuild.BeforeRelativeTimePredicate(seconds)
	default:
		return xdr.ClaimPredicate{}, fmt.Errorf("unknown predicate type %q", ptype)
	}
	if negated {
		return txnbuild.NotPredicate(predicate), nil
	}
	return predicate, nil
}

func (b *recordBuilder) setOptions() (txnbuild.Operation, error) {
	op := &txnbuild.SetOptions{SourceAccount: b.source}
	if v := b.values["master"]; v != "" {
		op.MasterWeight = txnbuild.NewThreshold(txnbuild.Threshold(b.int64Field("master")))
	}
	if v := b.values["threshold"]; v != "" {
		low, med, high, err := parseThresholds(v)
		if err != nil {
			return nil, b.fail("threshold", err)
		}
		op.LowThreshold = txnbuild.NewThreshold(low)
		op.MediumThreshold = txnbuild.NewThreshold(med)
		op.HighThreshold = txnbuild.NewThreshold(high)
	}
	if v := b.values["home"]; v != "" {
		op.HomeDomain = txnbuild.NewHomeDomain(v)
	}
	return op, nil
}

// parseThresholds accepts "n", applying n to all three thresholds, or the
// explicit "low/medium/high" form.
func parseThresholds(v string) (low, med, high txnbuild.Threshold, err error) {
	parts := strings.Split(v, "/")
	switch len(parts) {
	case 1:
		n, perr := strconv.ParseUint(parts[0], 10, 8)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("bad threshold %q", v)
		}
		t := txnbuild.Threshold(n)
		return t, t, t, nil
	case 3:
		var out [3]txnbuild.Threshold
		for i, part := range parts {
			n, perr := strconv.ParseUint(part, 10, 8)
			if perr != nil {
				return 0, 0, 0, fmt.Errorf("bad threshold %q", v)
			}
			out[i] = txnbuild.Threshold(n)
		}
		return out[0], out[1], out[2], nil
	}
	return 0, 0, 0, fmt.Errorf("bad threshold %q", v)
}

// copyMultiSign replicates another account's signer configuration onto this
// record's source account: one operation for thresholds and master weight,
// then one per signer change.
func (b *recordBuilder) copyMultiSign() ([]txnbuild.Operation, error) {
	target := b.source
	if target == "" {
		target = b.txSource
	}
	from, err := b.assembler.resolver.AccountSigners(b.ctx, b.values["from"])
	if err != nil {
		return nil, fmt.Errorf("resolving signers of %s: %w", b.values["from"], err)
	}
	current, err := b.assembler.resolver.AccountSigners(b.ctx, target)
	if err != nil {
		return nil, fmt.Errorf("resolving signers of %s: %w", target, err)
	}
	plan := CopyMultiSignPlan(*from, *current)

	ops := []txnbuild.Operation{&txnbuild.SetOptions{
		LowThreshold:    txnbuild.NewThreshold(txnbuild.Threshold(plan.Low)),
		MediumThreshold: txnbuild.NewThreshold(txnbuild.Threshold(plan.Med)),
		HighThreshold:   txnbuild.NewThreshold(txnbuild.Threshold(plan.High)),
		MasterWeight:    txnbuild.NewThreshold(txnbuild.Threshold(plan.MasterWeight)),
		SourceAccount:   b.source,
	}}
	for _, update := range plan.Updates {
		ops = append(ops, &txnbuild.SetOptions{
			Signer: &txnbuild.Signer{
				Address: update.Key,
				Weight:  txnbuild.Threshold(update.Weight),
			},
			SourceAccount: b.source,
		})
	}
	return ops, nil
}

func (b *recordBuilder) setTrustLineFlags() (txnbuild.Operation, error) {
	asset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	return &txnbuild.SetTrustLineFlags{
		Trustor:       b.values["trustor"],
		Asset:         asset,
		SetFlags:      trustLineFlagsFromMask(b.values["setFlags"]),
		ClearFlags:    trustLineFlagsFromMask(b.values["clearFlags"]),
		SourceAccount: b.source,
	}, nil
}

func trustLineFlagsFromMask(v string) []txnbuild.TrustLineFlag {
	mask, _ := strconv.Atoi(v)
	var flags []txnbuild.TrustLineFlag
	for _, f := range []txnbuild.TrustLineFlag{
		txnbuild.TrustLineAuthorized,
		txnbuild.TrustLineAuthorizedToMaintainLiabilities,
		txnbuild.TrustLineClawbackEnabled,
	} {
		if mask&int(f) != 0 {
			flags = append(flags, f)
		}
	}
	return flags
}

// payDivs splits a pot across every holder of the holders asset, one payment
// per holder, payouts rounded to seven decimals and zero payouts dropped.
func (b *recordBuilder) payDivs() ([]txnbuild.Operation, error) {
	holders, err := models.ParseAssetSpecifier(b.values["holders"])
	if err != nil {
		return nil, b.fail("holders", err)
	}
	paySpec, err := models.ParseAssetSpecifier(b.values["asset"])
	if err != nil {
		return nil, b.fail("asset", err)
	}
	payAsset, err := b.asset("asset")
	if err != nil {
		return nil, err
	}
	requireTrustline := b.values["requireTrustline"] != "0"
	stakes, err := b.assembler.resolver.HolderStakes(b.ctx, holders, paySpec, requireTrustline)
	if err != nil {
		return nil, fmt.Errorf("resolving holders of %s: %w", holders, err)
	}
	payouts := ProportionalPayouts(b.float("amount"), stakes)
	if len(payouts) == 0 {
		return nil, b.fail("holders", fmt.Errorf("no eligible holders found"))
	}
	ops := make([]txnbuild.Operation, 0, len(payouts))
	for _, payout := range payouts {
		ops = append(ops, &txnbuild.Payment{
			Destination:   payout.Account,
			Asset:         payAsset,
			Amount:        FormatAmount(payout.Amount),
			SourceAccount: b.source,
		})
	}
	return ops, nil
}

func poolIDFromHex(v string) (txnbuild.LiquidityPoolId, error) {
	var id txnbuild.LiquidityPoolId
	raw, err := hex.DecodeString(v)
	if err != nil || len(raw) != 32 {
		return id, fmt.Errorf("bad pool id %q", v)
	}
	copy(id[:], raw)
	return id, nil
}

func (b *recordBuilder) poolDeposit() (txnbuild.Operation, error) {
	poolID, err := poolIDFromHex(b.values["liquidity_pool_id"])
	if err != nil {
		return nil, b.fail("liquidity_pool_id", err)
	}
	minPrice, maxPrice := b.float("min_price"), b.float("max_price")
	if minPrice == 0 || maxPrice == 0 {
		pool, err := b.assembler.resolver.PoolData(b.ctx, b.values["liquidity_pool_id"])
		if err != nil {
			return nil, fmt.Errorf("resolving pool: %w", err)
		}
		minPrice, maxPrice = DepositPriceBounds(minPrice, maxPrice, pool.Price)
	}
	minP, err := price.Parse(FormatAmount(minPrice))
	if err != nil {
		return nil, b.fail("min_price", err)
	}
	maxP, err := price.Parse(FormatAmount(maxPrice))
	if err != nil {
		return nil, b.fail("max_price", err)
	}
	return &txnbuild.LiquidityPoolDeposit{
		LiquidityPoolID: poolID,
		MaxAmountA:      b.amount("max_amount_a"),
		MaxAmountB:      b.amount("max_amount_b"),
		MinPrice:        minP,
		MaxPrice:        maxP,
		SourceAccount:   b.source,
	}, nil
}

func (b *recordBuilder) poolWithdraw() (txnbuild.Operation, error) {
	poolID, err := poolIDFromHex(b.values["liquidity_pool_id"])
	if err != nil {
		return nil, b.fail("liquidity_pool_id", err)
	}
	minA, minB := b.float("min_amount_a"), b.float("min_amount_b")
	if minA == 0 || minB == 0 {
		pool, err := b.assembler.resolver.PoolData(b.ctx, b.values["liquidity_pool_id"])
		if err != nil {
			return nil, fmt.Errorf("resolving pool: %w", err)
		}
		minA, minB = WithdrawMinAmounts(minA, minB, b.float("amount"), pool.TotalShares, pool.ReserveA, pool.ReserveB)
	}
	return &txnbuild.LiquidityPoolWithdraw{
		LiquidityPoolID: poolID,
		Amount:          b.amount("amount"),
		MinAmountA:      FormatAmount(minA),
		MinAmountB:      FormatAmount(minB),
		SourceAccount:   b.source,
	}, nil
}

func (b *recordBuilder) poolTrustline() (txnbuild.Operation, error) {
	pool, err := b.assembler.resolver.PoolData(b.ctx, b.values["liquidity_pool_id"])
	if err != nil {
		return nil, fmt.Errorf("resolving pool: %w", err)
	}
	limit := txnbuild.MaxTrustlineLimit
	if b.values["limit"] != "" {
		limit = b.amount("limit")
	}
	return &txnbuild.ChangeTrust{
		Line: txnbuild.LiquidityPoolShareChangeTrustAsset{
			LiquidityPoolParameters: txnbuild.LiquidityPoolParameters{
				AssetA: pool.AssetA,
				AssetB: pool.AssetB,
				Fee:    txnbuild.LiquidityPoolFeeV18,
			},
		},
		Limit:         limit,
		SourceAccount: b.source,
	}, nil
}

func (b *recordBuilder) revokeSponsorship() (txnbuild.Operation, error) {
	op := &txnbuild.RevokeSponsorship{SourceAccount: b.source}
	switch b.values["revoke_type"] {
	case "account":
		id := b.values["revoke_account_id"]
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeAccount
		op.Account = &id
	case "trustline":
		asset, err := b.asset("revoke_trustline_asset")
		if err != nil {
			return nil, err
		}
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeTrustLine
		op.TrustLine = &txnbuild.TrustLineID{
			Account: b.values["revoke_trustline_account"],
			Asset:   txnbuild.TrustLineAssetWrapper{Asset: asset},
		}
	case "data":
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeData
		op.Data = &txnbuild.DataID{
			Account:  b.values["revoke_data_account"],
			DataName: b.values["revoke_data_name"],
		}
	case "offer":
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeOffer
		op.Offer = &txnbuild.OfferID{
			SellerAccountAddress: b.values["revoke_offer_seller"],
			OfferID:              b.int64Field("revoke_offer_id"),
		}
	case "claimable_balance":
		id := normalizeBalanceID(b.values["revoke_claimable_balance_id"])
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeClaimableBalance
		op.ClaimableBalance = &id
	case "liquidity_pool":
		poolID, err := poolIDFromHex(b.values["revoke_liquidity_pool_id"])
		if err != nil {
			return nil, b.fail("revoke_liquidity_pool_id", err)
		}
		return &RevokeLiquidityPoolSponsorship{
			LiquidityPoolID: poolID,
			SourceAccount:   b.source,
		}, nil
	case "signer":
		op.SponsorshipType = txnbuild.RevokeSponsorshipTypeSigner
		op.Signer = &txnbuild.SignerID{
			AccountID:     b.values["revoke_signer_account"],
			SignerAddress: b.values["revoke_signer_key"],
		}
	default:
		return nil, b.fail("revoke_type", fmt.Errorf("unknown revoke target %q", b.values["revoke_type"]))
	}
	return op, nil
}
