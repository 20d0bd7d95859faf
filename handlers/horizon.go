package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"

	"github.com/montelibero/stellarlab/models"
)

// PoolData is the resolver's view of one liquidity pool: spot price of
// asset A in units of asset B plus the raw reserves.
type PoolData struct {
	ID          string
	Price       float64
	TotalShares float64
	ReserveA    float64
	ReserveB    float64
	AssetA      txnbuild.Asset
	AssetB      txnbuild.Asset
}

// Resolver supplies the ledger state the assembler and controllers need.
// Implementations must be safe for concurrent use.
type Resolver interface {
	CurrentSequence(ctx context.Context, account string) (int64, error)
	PoolData(ctx context.Context, poolID string) (*PoolData, error)
	AccountSigners(ctx context.Context, account string) (*AccountSigners, error)
	HolderStakes(ctx context.Context, holders, payAsset models.AssetSpecifier, requireTrustline bool) ([]HolderStake, error)
}

// horizonAPI is the slice of the Horizon client the resolver uses. The SDK
// client carries its own HTTP timeout, so calls are bounded even though the
// SDK surface takes no context.
type horizonAPI interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	Accounts(request horizonclient.AccountsRequest) (hProtocol.AccountsPage, error)
	Assets(request horizonclient.AssetRequest) (hProtocol.AssetsPage, error)
	NextAccountsPage(page hProtocol.AccountsPage) (hProtocol.AccountsPage, error)
	Offers(request horizonclient.OfferRequest) (hProtocol.OffersPage, error)
	ClaimableBalances(request horizonclient.ClaimableBalanceRequest) (hProtocol.ClaimableBalances, error)
	LiquidityPoolDetail(request horizonclient.LiquidityPoolRequest) (hProtocol.LiquidityPool, error)
	StrictSendPaths(request horizonclient.StrictSendPathsRequest) (hProtocol.PathsPage, error)
}

// HorizonResolver resolves ledger state through a Horizon client, caching
// lookups in a small LRU so repeated builds against the same accounts do not
// hammer the API.
type HorizonResolver struct {
	client horizonAPI
	cache  *lru.Cache[string, any]
	logger *logrus.Entry
}

const resolverCacheSize = 512

func NewHorizonResolver(client horizonAPI, logger *logrus.Entry) *HorizonResolver {
	cache, _ := lru.New[string, any](resolverCacheSize)
	return &HorizonResolver{client: client, cache: cache, logger: logger}
}

func (r *HorizonResolver) account(ctx context.Context, id string) (hProtocol.Account, error) {
	if err := ctx.Err(); err != nil {
		return hProtocol.Account{}, err
	}
	key := "account:" + id
	if v, ok := r.cache.Get(key); ok {
		return v.(hProtocol.Account), nil
	}
	acc, err := r.client.AccountDetail(horizonclient.AccountRequest{AccountID: id})
	if err != nil {
		return hProtocol.Account{}, fmt.Errorf("fetching account %s: %w", id, err)
	}
	r.cache.Add(key, acc)
	return acc, nil
}

// CurrentSequence returns the account's current sequence number. Callers
// building a transaction use current+1. The sequence is never cached; a
// stale value would produce an unsubmittable envelope.
func (r *HorizonResolver) CurrentSequence(ctx context.Context, account string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	acc, err := r.client.AccountDetail(horizonclient.AccountRequest{AccountID: account})
	if err != nil {
		return 0, fmt.Errorf("fetching account %s: %w", account, err)
	}
	seq, err := acc.GetSequenceNumber()
	if err != nil {
		return 0, fmt.Errorf("bad sequence for %s: %w", account, err)
	}
	r.cache.Add("account:"+account, acc)
	return seq, nil
}

func (r *HorizonResolver) PoolData(ctx context.Context, poolID string) (*PoolData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := "pool:" + poolID
	if v, ok := r.cache.Get(key); ok {
		return v.(*PoolData), nil
	}
	pool, err := r.client.LiquidityPoolDetail(horizonclient.LiquidityPoolRequest{LiquidityPoolID: poolID})
	if err != nil {
		return nil, fmt.Errorf("fetching pool %s: %w", poolID, err)
	}
	data, err := poolDataFrom(pool)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, data)
	return data, nil
}

func poolDataFrom(pool hProtocol.LiquidityPool) (*PoolData, error) {
	if len(pool.Reserves) != 2 {
		return nil, fmt.Errorf("pool %s has %d reserves", pool.ID, len(pool.Reserves))
	}
	assetA, err := parseHorizonAsset(pool.Reserves[0].Asset)
	if err != nil {
		return nil, err
	}
	assetB, err := parseHorizonAsset(pool.Reserves[1].Asset)
	if err != nil {
		return nil, err
	}
	reserveA, _ := strconv.ParseFloat(pool.Reserves[0].Amount, 64)
	reserveB, _ := strconv.ParseFloat(pool.Reserves[1].Amount, 64)
	shares, _ := strconv.ParseFloat(pool.TotalShares, 64)
	data := &PoolData{
		ID:          pool.ID,
		TotalShares: shares,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		AssetA:      assetA,
		AssetB:      assetB,
	}
	if reserveA > 0 {
		data.Price = reserveB / reserveA
	}
	return data, nil
}

func parseHorizonAsset(s string) (txnbuild.Asset, error) {
	if s == "native" {
		return txnbuild.NativeAsset{}, nil
	}
	code, issuer, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("bad asset %q", s)
	}
	return txnbuild.CreditAsset{Code: code, Issuer: issuer}, nil
}

func (r *HorizonResolver) AccountSigners(ctx context.Context, account string) (*AccountSigners, error) {
	acc, err := r.account(ctx, account)
	if err != nil {
		return nil, err
	}
	signers := &AccountSigners{
		AccountID: account,
		Low:       int32(acc.Thresholds.LowThreshold),
		Med:       int32(acc.Thresholds.MedThreshold),
		High:      int32(acc.Thresholds.HighThreshold),
		Signers:   make(map[string]int32, len(acc.Signers)),
	}
	for _, s := range acc.Signers {
		signers.Signers[s.Key] = s.Weight
	}
	return signers, nil
}

// HolderStakes lists every account holding the holders asset together with
// its stake. Liquidity pool shares count too: a share in a pool containing
// the holders asset contributes the holder's slice of that reserve. When
// requireTrustline is set, accounts without a trustline to the pay asset
// are excluded.
func (r *HorizonResolver) HolderStakes(ctx context.Context, holders, payAsset models.AssetSpecifier, requireTrustline bool) ([]HolderStake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := r.client.Accounts(horizonclient.AccountsRequest{
		Asset: holders.HorizonParam(),
		Limit: 200,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching holders of %s: %w", holders, err)
	}

	var stakes []HolderStake
	for {
		for _, acc := range page.Embedded.Records {
			stake, trusted := r.stakeOf(ctx, acc, holders, payAsset)
			if requireTrustline && !trusted {
				continue
			}
			if stake > 0 {
				stakes = append(stakes, HolderStake{Account: acc.AccountID, Amount: stake})
			}
		}
		if len(page.Embedded.Records) < 200 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err = r.client.NextAccountsPage(page)
		if err != nil {
			return nil, fmt.Errorf("paging holders of %s: %w", holders, err)
		}
		if len(page.Embedded.Records) == 0 {
			break
		}
	}
	return stakes, nil
}

func (r *HorizonResolver) stakeOf(ctx context.Context, acc hProtocol.Account, holders, payAsset models.AssetSpecifier) (float64, bool) {
	var stake float64
	trusted := payAsset.IsNative()
	for _, b := range acc.Balances {
		switch {
		case b.Type == "liquidity_pool_shares":
			pool, err := r.PoolData(ctx, b.LiquidityPoolId)
			if err != nil {
				r.logger.WithError(err).WithField("pool", b.LiquidityPoolId).Warn("skipping pool stake")
				continue
			}
			shares, _ := strconv.ParseFloat(b.Balance, 64)
			if pool.TotalShares <= 0 {
				continue
			}
			ratio := shares / pool.TotalShares
			if assetMatches(pool.AssetA, holders) {
				stake += pool.ReserveA * ratio
			}
			if assetMatches(pool.AssetB, holders) {
				stake += pool.ReserveB * ratio
			}
		case b.Asset.Code == holders.Code && b.Asset.Issuer == holders.Issuer:
			v, _ := strconv.ParseFloat(b.Balance, 64)
			stake += v
		}
		if b.Asset.Code == payAsset.Code && b.Asset.Issuer == payAsset.Issuer {
			trusted = true
		}
	}
	return stake, trusted
}

func assetMatches(a txnbuild.Asset, spec models.AssetSpecifier) bool {
	if spec.IsNative() {
		return a.IsNative()
	}
	return !a.IsNative() && a.GetCode() == spec.Code && a.GetIssuer() == spec.Issuer
}

// AccountBalance is one balance line returned by the account asset lookup.
type AccountBalance struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// AccountAssets lists the account's balances in canonical form values,
// native balance first, then the assets the account itself issues. An
// issuer holds no trustline to its own asset, so the issued list is what
// makes the asset appear in the issuer's own dropdown.
func (r *HorizonResolver) AccountAssets(ctx context.Context, account string) ([]AccountBalance, error) {
	acc, err := r.account(ctx, account)
	if err != nil {
		return nil, err
	}
	var native []AccountBalance
	var credit []AccountBalance
	seen := make(map[string]bool, len(acc.Balances))
	for _, b := range acc.Balances {
		switch b.Type {
		case "native":
			native = append(native, AccountBalance{Asset: models.NativeAssetLabel, Balance: b.Balance})
		case "liquidity_pool_shares":
			credit = append(credit, AccountBalance{Asset: b.LiquidityPoolId, Balance: b.Balance})
		default:
			label := b.Asset.Code + "-" + b.Asset.Issuer
			seen[label] = true
			credit = append(credit, AccountBalance{Asset: label, Balance: b.Balance})
		}
	}
	issued, err := r.client.Assets(horizonclient.AssetRequest{ForAssetIssuer: account, Limit: 200})
	if err != nil {
		r.logger.WithError(err).WithField("account", account).Warn("issued asset lookup failed")
	} else {
		for _, a := range issued.Embedded.Records {
			label := a.Code + "-" + a.Issuer
			if seen[label] {
				continue
			}
			credit = append(credit, AccountBalance{Asset: label})
		}
	}
	return append(native, credit...), nil
}

// AccountData returns the account's data entries decoded to strings.
func (r *HorizonResolver) AccountData(ctx context.Context, account string) (map[string]string, error) {
	acc, err := r.account(ctx, account)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(acc.Data))
	for name := range acc.Data {
		value, err := acc.GetData(name)
		if err != nil {
			continue
		}
		out[name] = string(value)
	}
	return out, nil
}

// AccountOffer is one open offer of an account.
type AccountOffer struct {
	ID      int64  `json:"id"`
	Selling string `json:"selling"`
	Buying  string `json:"buying"`
	Amount  string `json:"amount"`
	Price   string `json:"price"`
}

func (r *HorizonResolver) AccountOffers(ctx context.Context, account string) ([]AccountOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := r.client.Offers(horizonclient.OfferRequest{ForAccount: account, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("fetching offers of %s: %w", account, err)
	}
	offers := make([]AccountOffer, 0, len(page.Embedded.Records))
	for _, o := range page.Embedded.Records {
		offers = append(offers, AccountOffer{
			ID:      o.ID,
			Selling: horizonAssetLabel(o.Selling.Type, o.Selling.Code, o.Selling.Issuer),
			Buying:  horizonAssetLabel(o.Buying.Type, o.Buying.Code, o.Buying.Issuer),
			Amount:  o.Amount,
			Price:   o.Price,
		})
	}
	return offers, nil
}

func horizonAssetLabel(assetType, code, issuer string) string {
	if assetType == "native" {
		return models.NativeAssetLabel
	}
	return code + "-" + issuer
}

// ClaimableBalanceEntry is one balance claimable by an account.
type ClaimableBalanceEntry struct {
	ID      string `json:"id"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
	Sponsor string `json:"sponsor"`
}

func (r *HorizonResolver) ClaimableBalances(ctx context.Context, claimant string) ([]ClaimableBalanceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := r.client.ClaimableBalances(horizonclient.ClaimableBalanceRequest{Claimant: claimant})
	if err != nil {
		return nil, fmt.Errorf("fetching claimable balances for %s: %w", claimant, err)
	}
	entries := make([]ClaimableBalanceEntry, 0, len(page.Embedded.Records))
	for _, cb := range page.Embedded.Records {
		asset := cb.Asset
		if asset == "native" {
			asset = models.NativeAssetLabel
		} else {
			asset = strings.Replace(asset, ":", "-", 1)
		}
		entries = append(entries, ClaimableBalanceEntry{
			ID:      cb.BalanceID,
			Asset:   asset,
			Amount:  cb.Amount,
			Sponsor: cb.Sponsor,
		})
	}
	return entries, nil
}

// PathOption is one strict-send path quote.
type PathOption struct {
	DestAmount string             `json:"destAmount"`
	Path       []models.WireAsset `json:"path"`
}

// Paths quotes strict-send paths from selling to buying for the given
// amount, best destination amount first.
func (r *HorizonResolver) Paths(ctx context.Context, selling, buying models.AssetSpecifier, amount string) ([]PathOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := horizonclient.StrictSendPathsRequest{SourceAmount: amount}
	if selling.IsNative() {
		req.SourceAssetType = horizonclient.AssetTypeNative
	} else {
		req.SourceAssetType = creditAssetType(selling.Code)
		req.SourceAssetCode = selling.Code
		req.SourceAssetIssuer = selling.Issuer
	}
	if buying.IsNative() {
		req.DestinationAssets = "native"
	} else {
		req.DestinationAssets = buying.Code + ":" + buying.Issuer
	}
	page, err := r.client.StrictSendPaths(req)
	if err != nil {
		return nil, fmt.Errorf("fetching paths %s to %s: %w", selling, buying, err)
	}
	options := make([]PathOption, 0, len(page.Embedded.Records))
	for _, rec := range page.Embedded.Records {
		hops := make([]models.WireAsset, 0, len(rec.Path))
		for _, hop := range rec.Path {
			hops = append(hops, models.WireAsset{Type: hop.Type, Code: hop.Code, Issuer: hop.Issuer})
		}
		options = append(options, PathOption{DestAmount: rec.DestinationAmount, Path: hops})
	}
	return options, nil
}

func creditAssetType(code string) horizonclient.AssetType {
	if len(code) > 4 {
		return horizonclient.AssetType12
	}
	return horizonclient.AssetType4
}
