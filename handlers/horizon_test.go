package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHorizon struct {
	account    hProtocol.Account
	accountErr error
	assets     hProtocol.AssetsPage
	assetsErr  error
}

func (f *fakeHorizon) AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeHorizon) Accounts(request horizonclient.AccountsRequest) (hProtocol.AccountsPage, error) {
	return hProtocol.AccountsPage{}, nil
}

func (f *fakeHorizon) Assets(request horizonclient.AssetRequest) (hProtocol.AssetsPage, error) {
	return f.assets, f.assetsErr
}

func (f *fakeHorizon) NextAccountsPage(page hProtocol.AccountsPage) (hProtocol.AccountsPage, error) {
	return hProtocol.AccountsPage{}, nil
}

func (f *fakeHorizon) Offers(request horizonclient.OfferRequest) (hProtocol.OffersPage, error) {
	return hProtocol.OffersPage{}, nil
}

func (f *fakeHorizon) ClaimableBalances(request horizonclient.ClaimableBalanceRequest) (hProtocol.ClaimableBalances, error) {
	return hProtocol.ClaimableBalances{}, nil
}

func (f *fakeHorizon) LiquidityPoolDetail(request horizonclient.LiquidityPoolRequest) (hProtocol.LiquidityPool, error) {
	return hProtocol.LiquidityPool{}, nil
}

func (f *fakeHorizon) StrictSendPaths(request horizonclient.StrictSendPathsRequest) (hProtocol.PathsPage, error) {
	return hProtocol.PathsPage{}, nil
}

func newTestResolver(client horizonAPI) *HorizonResolver {
	return NewHorizonResolver(client, logrus.NewEntry(logrus.New()))
}

func assetStat(code, issuer string) hProtocol.AssetStat {
	var stat hProtocol.AssetStat
	stat.Code = code
	stat.Issuer = issuer
	return stat
}

func TestAccountAssetsMergesIssuedAssets(t *testing.T) {
	client := &fakeHorizon{
		account: hProtocol.Account{
			AccountID: testIssuer,
			Balances: []hProtocol.Balance{
				{Balance: "100.5", Asset: base.Asset{Type: "native"}},
				{Balance: "10", Asset: base.Asset{Type: "credit_alphanum12", Code: "EURMTL", Issuer: testDestination}},
			},
		},
	}
	client.assets.Embedded.Records = []hProtocol.AssetStat{
		assetStat("EURMTL", testDestination), // already trustlined, must not repeat
		assetStat("MTLAND", testIssuer),
	}

	balances, err := newTestResolver(client).AccountAssets(context.Background(), testIssuer)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, AccountBalance{Asset: "XLM", Balance: "100.5"}, balances[0])
	assert.Equal(t, AccountBalance{Asset: "EURMTL-" + testDestination, Balance: "10"}, balances[1])
	assert.Equal(t, AccountBalance{Asset: "MTLAND-" + testIssuer}, balances[2])
}

func TestAccountAssetsToleratesIssuedLookupFailure(t *testing.T) {
	client := &fakeHorizon{
		account: hProtocol.Account{
			AccountID: testAccount,
			Balances: []hProtocol.Balance{
				{Balance: "7", Asset: base.Asset{Type: "native"}},
			},
		},
		assetsErr: errors.New("horizon down"),
	}

	balances, err := newTestResolver(client).AccountAssets(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "XLM", balances[0].Asset)
}

func TestCurrentSequence(t *testing.T) {
	client := &fakeHorizon{account: hProtocol.Account{AccountID: testAccount, Sequence: 41}}
	seq, err := newTestResolver(client).CurrentSequence(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(41), seq)

	client.accountErr = errors.New("not found")
	_, err = newTestResolver(client).CurrentSequence(context.Background(), testAccount)
	assert.Error(t, err)
}
