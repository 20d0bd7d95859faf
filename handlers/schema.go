package handlers

// The operation schema registry: a closed catalog of every operation kind the
// laboratory can build, the ordered fields each kind declares, and the
// historical alias spellings the import path must still accept. The registry
// is data; both the assembler and the decoder walk it instead of hardcoding
// field lists per call site.

// FieldSpec declares one form field of an operation schema. Name is the
// snake_case form name, Wire is the camelCase attribute key used in decoded
// wire JSON, Kind picks the validator, and Default (if any) substitutes for
// an empty optional value before building.
type FieldSpec struct {
	Name     string
	Wire     string
	Kind     ValidationKind
	Required bool
	Default  string
}

// OperationSchema describes one operation kind. Kind is the canonical name;
// Aliases are equivalent external spellings seen in older forms and in
// decoded wire JSON.
type OperationSchema struct {
	Kind    string
	Aliases []string
	Fields  []FieldSpec
}

// Canonical operation kinds.
const (
	OpPayment               = "payment"
	OpTrustPayment          = "trust_payment"
	OpChangeTrust           = "change_trust"
	OpCreateAccount         = "create_account"
	OpManageData            = "manage_data"
	OpBuy                   = "buy"
	OpSell                  = "sell"
	OpSellPassive           = "sell_passive"
	OpSwap                  = "swap"
	OpClawback              = "clawback"
	OpClaimClaimable        = "claim_claimable_balance"
	OpCreateClaimable       = "create_claimable_balance"
	OpSetOptions            = "set_options"
	OpSetOptionsSigner      = "set_options_signer"
	OpCopyMultiSign         = "copy_multi_sign"
	OpSetTrustLineFlags     = "set_trust_line_flags"
	OpPayDivs               = "pay_divs"
	OpLiquidityPoolDeposit  = "liquidity_pool_deposit"
	OpLiquidityPoolWithdraw = "liquidity_pool_withdraw"
	OpLiquidityPoolTrust    = "liquidity_pool_trustline"
	OpBeginSponsoring       = "begin_sponsoring_future_reserves"
	OpEndSponsoring         = "end_sponsoring_future_reserves"
	OpRevokeSponsorship     = "revoke_sponsorship"
	OpBumpSequence          = "bump_sequence"
)

func field(name, wire string, kind ValidationKind) FieldSpec {
	return FieldSpec{Name: name, Wire: wire, Kind: kind, Required: true}
}

func optional(name, wire string, kind ValidationKind) FieldSpec {
	return FieldSpec{Name: name, Wire: wire, Kind: kind}
}

func withDefault(f FieldSpec, def string) FieldSpec {
	f.Required = false
	f.Default = def
	return f
}

var schemas = []OperationSchema{
	{
		Kind: OpPayment,
		Fields: []FieldSpec{
			field("destination", "destination", KindAccount),
			field("asset", "asset", KindAsset),
			field("amount", "amount", KindFloat),
		},
	},
	{
		Kind: OpTrustPayment,
		Fields: []FieldSpec{
			field("destination", "destination", KindAccount),
			field("asset", "asset", KindAsset),
			field("amount", "amount", KindFloat),
		},
	},
	{
		Kind:    OpChangeTrust,
		Aliases: []string{"changeTrust"},
		Fields: []FieldSpec{
			field("asset", "asset", KindAsset),
			optional("limit", "limit", KindFloatNull),
		},
	},
	{
		Kind:    OpCreateAccount,
		Aliases: []string{"createAccount"},
		Fields: []FieldSpec{
			field("destination", "destination", KindAccount),
			field("startingBalance", "startingBalance", KindFloat),
		},
	},
	{
		Kind:    OpManageData,
		Aliases: []string{"manageData"},
		Fields: []FieldSpec{
			field("data_name", "dataName", KindText),
			optional("data_value", "dataValue", KindTextNull),
		},
	},
	{
		Kind:    OpBuy,
		Aliases: []string{"manageBuyOffer"},
		Fields: []FieldSpec{
			field("buying", "buying", KindAsset),
			field("selling", "selling", KindAsset),
			field("amount", "amount", KindFloatTrade),
			field("price", "price", KindFloatTrade),
			withDefault(field("offer_id", "offerId", KindInt), "0"),
		},
	},
	{
		Kind:    OpSell,
		Aliases: []string{"manageSellOffer"},
		Fields: []FieldSpec{
			field("selling", "selling", KindAsset),
			field("buying", "buying", KindAsset),
			field("amount", "amount", KindFloatTrade),
			field("price", "price", KindFloatTrade),
			withDefault(field("offer_id", "offerId", KindInt), "0"),
		},
	},
	{
		Kind:    OpSellPassive,
		Aliases: []string{"sellPassive", "createPassiveSellOffer"},
		Fields: []FieldSpec{
			field("selling", "selling", KindAsset),
			field("buying", "buying", KindAsset),
			field("amount", "amount", KindFloatTrade),
			field("price", "price", KindFloatTrade),
		},
	},
	{
		Kind:    OpSwap,
		Aliases: []string{"pathPaymentStrictSend"},
		Fields: []FieldSpec{
			field("selling", "sendAsset", KindAsset),
			field("buying", "destAsset", KindAsset),
			field("amount", "sendAmount", KindFloat),
			field("destination", "destMin", KindFloat),
			optional("path", "path", KindTextNull),
		},
	},
	{
		Kind: OpClawback,
		Fields: []FieldSpec{
			field("asset", "asset", KindAsset),
			field("from", "from", KindAccount),
			field("amount", "amount", KindFloat),
		},
	},
	{
		Kind:    OpClaimClaimable,
		Aliases: []string{"claimClaimableBalance"},
		Fields: []FieldSpec{
			field("balanceId", "balanceId", KindClaimableBalanceID),
		},
	},
	{
		Kind:    OpCreateClaimable,
		Aliases: []string{"createClaimableBalance"},
		Fields: []FieldSpec{
			field("asset", "asset", KindAsset),
			field("amount", "amount", KindFloat),
			field("claimant_1_destination", "claimant1Destination", KindAccount),
			optional("claimant_1_predicate_type", "claimant1PredicateType", KindTextNull),
			optional("claimant_1_predicate_value", "claimant1PredicateValue", KindTextNull),
			optional("claimant_2_destination", "claimant2Destination", KindAccountNull),
			optional("claimant_2_predicate_type", "claimant2PredicateType", KindTextNull),
			optional("claimant_2_predicate_value", "claimant2PredicateValue", KindTextNull),
		},
	},
	{
		Kind:    OpSetOptions,
		Aliases: []string{"options", "setOptions"},
		Fields: []FieldSpec{
			optional("master", "master", KindIntNull),
			optional("threshold", "threshold", KindThreshold),
			optional("home", "home", KindTextNull),
		},
	},
	{
		Kind:    OpSetOptionsSigner,
		Aliases: []string{"options_signer", "setOptionsSigner"},
		Fields: []FieldSpec{
			field("signerAccount", "signerAccount", KindAccount),
			field("weight", "weight", KindInt),
		},
	},
	{
		Kind:    OpCopyMultiSign,
		Aliases: []string{"copyMultiSign"},
		Fields: []FieldSpec{
			field("from", "from", KindAccount),
		},
	},
	{
		Kind:    OpSetTrustLineFlags,
		Aliases: []string{"setTrustLineFlags"},
		Fields: []FieldSpec{
			field("asset", "asset", KindAsset),
			field("trustor", "trustor", KindAccount),
			optional("setFlags", "setFlags", KindIntNull),
			optional("clearFlags", "clearFlags", KindIntNull),
		},
	},
	{
		Kind:    OpPayDivs,
		Aliases: []string{"payDivs"},
		Fields: []FieldSpec{
			field("holders", "holders", KindAsset),
			field("asset", "asset", KindAsset),
			field("amount", "amount", KindFloat),
			withDefault(field("requireTrustline", "requireTrustline", KindInt), "1"),
		},
	},
	{
		Kind:    OpLiquidityPoolDeposit,
		Aliases: []string{"liquidityPoolDeposit"},
		Fields: []FieldSpec{
			field("liquidity_pool_id", "liquidityPoolId", KindPool),
			field("max_amount_a", "maxAmountA", KindFloat),
			field("max_amount_b", "maxAmountB", KindFloat),
			field("min_price", "minPrice", KindFloat),
			field("max_price", "maxPrice", KindFloat),
		},
	},
	{
		Kind:    OpLiquidityPoolWithdraw,
		Aliases: []string{"liquidityPoolWithdraw"},
		Fields: []FieldSpec{
			field("liquidity_pool_id", "liquidityPoolId", KindPool),
			field("amount", "amount", KindFloat),
			field("min_amount_a", "minAmountA", KindFloat),
			field("min_amount_b", "minAmountB", KindFloat),
		},
	},
	{
		Kind:    OpLiquidityPoolTrust,
		Aliases: []string{"liquidityPoolTrustline"},
		Fields: []FieldSpec{
			field("liquidity_pool_id", "liquidityPoolId", KindPool),
			optional("limit", "limit", KindFloatNull),
		},
	},
	{
		Kind:    OpBeginSponsoring,
		Aliases: []string{"beginSponsoringFutureReserves"},
		Fields: []FieldSpec{
			field("sponsored_id", "sponsoredId", KindAccount),
		},
	},
	{
		Kind:    OpEndSponsoring,
		Aliases: []string{"endSponsoringFutureReserves"},
		Fields:  nil,
	},
	{
		Kind:    OpRevokeSponsorship,
		Aliases: []string{"revokeSponsorship"},
		Fields: []FieldSpec{
			field("revoke_type", "revokeType", KindText),
			field("revoke_account_id", "revokeAccountId", KindAccount),
			field("revoke_trustline_account", "revokeTrustlineAccount", KindAccount),
			field("revoke_trustline_asset", "revokeTrustlineAsset", KindAsset),
			field("revoke_data_account", "revokeDataAccount", KindAccount),
			field("revoke_data_name", "revokeDataName", KindText),
			field("revoke_offer_seller", "revokeOfferSeller", KindAccount),
			field("revoke_offer_id", "revokeOfferId", KindInt),
			field("revoke_claimable_balance_id", "revokeClaimableBalanceId", KindClaimableBalanceID),
			field("revoke_liquidity_pool_id", "revokeLiquidityPoolId", KindPool),
			field("revoke_signer_account", "revokeSignerAccount", KindAccount),
			field("revoke_signer_key", "revokeSignerKey", KindAccount),
		},
	},
	{
		Kind:    OpBumpSequence,
		Aliases: []string{"bumpSequence"},
		Fields: []FieldSpec{
			field("bump_to", "bumpTo", KindInt),
		},
	},
}

// revokeSubTargets maps a revoke_type discriminator value to the fields that
// belong to that sub-target. Exactly one sub-target's fields stay required;
// every other sub-target field is relaxed to its nullable variant.
var revokeSubTargets = map[string][]string{
	"account":           {"revoke_account_id"},
	"trustline":         {"revoke_trustline_account", "revoke_trustline_asset"},
	"data":              {"revoke_data_account", "revoke_data_name"},
	"offer":             {"revoke_offer_seller", "revoke_offer_id"},
	"claimable_balance": {"revoke_claimable_balance_id"},
	"liquidity_pool":    {"revoke_liquidity_pool_id"},
	"signer":            {"revoke_signer_account", "revoke_signer_key"},
}

var schemaByName = func() map[string]*OperationSchema {
	m := make(map[string]*OperationSchema)
	for i := range schemas {
		s := &schemas[i]
		m[s.Kind] = s
		for _, a := range s.Aliases {
			m[a] = s
		}
	}
	return m
}()

// SchemaFor resolves an operation kind or any of its aliases.
func SchemaFor(kind string) (*OperationSchema, bool) {
	s, ok := schemaByName[kind]
	return s, ok
}

// OperationKinds lists the canonical kinds in catalog order.
func OperationKinds() []string {
	kinds := make([]string, len(schemas))
	for i, s := range schemas {
		kinds[i] = s.Kind
	}
	return kinds
}

// relaxed demotes a field to its nullable variant: empty values pass,
// non-empty values are still validated.
func relaxed(f FieldSpec) FieldSpec {
	f.Required = false
	switch f.Kind {
	case KindAccount:
		f.Kind = KindAccountNull
	case KindInt:
		f.Kind = KindIntNull
	case KindFloat, KindFloatTrade:
		f.Kind = KindFloatNull
	case KindText:
		f.Kind = KindTextNull
	}
	return f
}

// EffectiveFields returns the field list to validate for a given record's
// raw values. For revoke_sponsorship the list depends on the revoke_type
// discriminator: fields of non-selected sub-targets are relaxed so the
// record still validates with those inputs left empty.
func (s *OperationSchema) EffectiveFields(raw map[string]string) []FieldSpec {
	if s.Kind != OpRevokeSponsorship {
		return s.Fields
	}
	selected := revokeSubTargets[raw["revoke_type"]]
	active := make(map[string]bool, len(selected))
	for _, name := range selected {
		active[name] = true
	}
	fields := make([]FieldSpec, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "revoke_type" || active[f.Name] {
			fields[i] = f
		} else {
			fields[i] = relaxed(f)
		}
	}
	return fields
}

// WireName returns the camelCase wire attribute key for a form field.
func (s *OperationSchema) WireName(formField string) string {
	for _, f := range s.Fields {
		if f.Name == formField {
			return f.Wire
		}
	}
	return formField
}

// FormName returns the snake_case form field for a wire attribute key.
func (s *OperationSchema) FormName(wire string) (string, bool) {
	for _, f := range s.Fields {
		if f.Wire == wire {
			return f.Name, true
		}
	}
	return "", false
}
