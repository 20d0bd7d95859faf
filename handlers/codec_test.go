package handlers

import (
	"testing"

	"github.com/stellar/go/network"
	"github.com/stellar/go/price"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montelibero/stellarlab/models"
)

func testCodec() *XDRCodec {
	return NewXDRCodec(network.TestNetworkPassphrase)
}

func encodeDecode(t *testing.T, ops ...txnbuild.Operation) *models.DecodedTransaction {
	t.Helper()
	codec := testCodec()
	envelope, err := codec.Encode(&Intermediate{
		SourceAccount: testAccount,
		Sequence:      123456789,
		Operations:    ops,
	})
	require.NoError(t, err)
	decoded, err := codec.Decode(envelope)
	require.NoError(t, err)
	return decoded
}

func TestCodecTransactionAttributes(t *testing.T) {
	codec := testCodec()
	envelope, err := codec.Encode(&Intermediate{
		SourceAccount: testAccount,
		Sequence:      987654321,
		Memo:          txnbuild.MemoText("hello"),
		Operations: []txnbuild.Operation{
			&txnbuild.BumpSequence{BumpTo: 1000},
		},
	})
	require.NoError(t, err)

	decoded, err := codec.Decode(envelope)
	require.NoError(t, err)

	assert.Equal(t, testAccount, decoded.Attributes.SourceAccount)
	assert.Equal(t, "987654321", decoded.Attributes.Sequence)
	assert.Equal(t, "10101", decoded.Attributes.Fee)
	assert.Equal(t, "MEMO_TEXT", decoded.Attributes.MemoType)
	assert.Equal(t, "hello", decoded.Attributes.MemoContent)
	assert.Equal(t, "10101", decoded.FeeBumpAttributes.MaxFee)
}

func TestCodecMemoHash(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i)
	}
	codec := testCodec()
	envelope, err := codec.Encode(&Intermediate{
		SourceAccount: testAccount,
		Sequence:      1,
		Memo:          txnbuild.MemoHash(hash),
		Operations:    []txnbuild.Operation{&txnbuild.BumpSequence{BumpTo: 5}},
	})
	require.NoError(t, err)
	decoded, err := codec.Decode(envelope)
	require.NoError(t, err)
	assert.Equal(t, "MEMO_HASH", decoded.Attributes.MemoType)
	assert.Equal(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", decoded.Attributes.MemoContent)
}

func TestCodecEncodeRejectsEmpty(t *testing.T) {
	_, err := testCodec().Encode(&Intermediate{SourceAccount: testAccount, Sequence: 1})
	assert.Error(t, err)
}

func TestCodecDecodeRejectsGarbage(t *testing.T) {
	_, err := testCodec().Decode("not a transaction")
	assert.Error(t, err)
}

func TestCodecPayment(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.Payment{
		Destination: testDestination,
		Amount:      "1.5",
		Asset:       txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
	})
	require.Len(t, decoded.Operations, 1)
	op := decoded.Operations[0]
	assert.Equal(t, 0, op.ID)
	assert.Equal(t, "payment", op.Name)
	assert.Equal(t, testDestination, op.Attributes["destination"])
	assert.Equal(t, "1.5000000", op.Attributes["amount"])
	asset, ok := op.Attributes["asset"].(models.WireAsset)
	require.True(t, ok)
	assert.Equal(t, "credit_alphanum12", asset.Type)
	assert.Equal(t, "EURMTL", asset.Code)
	assert.Equal(t, testIssuer, asset.Issuer)
}

func TestCodecOperationSource(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.Payment{
		Destination:   testDestination,
		Amount:        "1",
		Asset:         txnbuild.NativeAsset{},
		SourceAccount: testIssuer,
	})
	assert.Equal(t, testIssuer, decoded.Operations[0].Attributes["sourceAccount"])
}

func TestCodecOffers(t *testing.T) {
	p, err := price.Parse("1.5")
	require.NoError(t, err)

	decoded := encodeDecode(t,
		&txnbuild.ManageSellOffer{
			Selling: txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
			Buying:  txnbuild.NativeAsset{},
			Amount:  "100",
			Price:   p,
			OfferID: 42,
		},
		&txnbuild.ManageBuyOffer{
			Selling: txnbuild.NativeAsset{},
			Buying:  txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
			Amount:  "0",
			Price:   p,
			OfferID: 7,
		},
		&txnbuild.CreatePassiveSellOffer{
			Selling: txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
			Buying:  txnbuild.NativeAsset{},
			Amount:  "5",
			Price:   p,
		},
	)
	require.Len(t, decoded.Operations, 3)

	sell := decoded.Operations[0]
	assert.Equal(t, "manageSellOffer", sell.Name)
	assert.Equal(t, "1.5", sell.Attributes["price"])
	assert.Equal(t, "42", sell.Attributes["offerId"])

	buy := decoded.Operations[1]
	assert.Equal(t, "manageBuyOffer", buy.Name)
	assert.Equal(t, "0.0000000", buy.Attributes["amount"])

	passive := decoded.Operations[2]
	assert.Equal(t, "createPassiveSellOffer", passive.Name)
	_, hasOfferID := passive.Attributes["offerId"]
	assert.False(t, hasOfferID)
}

func TestCodecChangeTrust(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.ChangeTrust{
		Line:  txnbuild.ChangeTrustAssetWrapper{Asset: txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer}},
		Limit: txnbuild.MaxTrustlineLimit,
	})
	op := decoded.Operations[0]
	assert.Equal(t, "changeTrust", op.Name)
	assert.Equal(t, "922337203685.4775807", op.Attributes["limit"])
}

func TestCodecPoolShareChangeTrust(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.ChangeTrust{
		Line: txnbuild.LiquidityPoolShareChangeTrustAsset{
			LiquidityPoolParameters: txnbuild.LiquidityPoolParameters{
				AssetA: txnbuild.NativeAsset{},
				AssetB: txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
				Fee:    txnbuild.LiquidityPoolFeeV18,
			},
		},
		Limit: "1000",
	})
	op := decoded.Operations[0]
	assert.Equal(t, "liquidityPoolTrustline", op.Name)
	poolID, ok := op.Attributes["liquidityPoolId"].(string)
	require.True(t, ok)
	assert.Len(t, poolID, 64)
	assert.Equal(t, "1000.0000000", op.Attributes["limit"])
}

func TestCodecManageData(t *testing.T) {
	decoded := encodeDecode(t,
		&txnbuild.ManageData{Name: "mtl_delegate", Value: []byte(testDestination)},
		&txnbuild.ManageData{Name: "obsolete_entry"},
	)
	set := decoded.Operations[0]
	assert.Equal(t, "manageData", set.Name)
	assert.Equal(t, "mtl_delegate", set.Attributes["dataName"])
	assert.Equal(t, testDestination, set.Attributes["dataValue"])

	del := decoded.Operations[1]
	assert.Equal(t, "", del.Attributes["dataValue"])
}

func TestCodecSetOptionsVariants(t *testing.T) {
	decoded := encodeDecode(t,
		&txnbuild.SetOptions{
			MasterWeight:    txnbuild.NewThreshold(10),
			LowThreshold:    txnbuild.NewThreshold(1),
			MediumThreshold: txnbuild.NewThreshold(2),
			HighThreshold:   txnbuild.NewThreshold(3),
			HomeDomain:      txnbuild.NewHomeDomain("eurmtl.me"),
		},
		&txnbuild.SetOptions{
			Signer: &txnbuild.Signer{Address: testDestination, Weight: 5},
		},
	)

	options := decoded.Operations[0]
	assert.Equal(t, "setOptions", options.Name)
	assert.Equal(t, "10", options.Attributes["master"])
	assert.Equal(t, "1/2/3", options.Attributes["threshold"])
	assert.Equal(t, "eurmtl.me", options.Attributes["home"])

	signer := decoded.Operations[1]
	assert.Equal(t, "setOptionsSigner", signer.Name)
	assert.Equal(t, testDestination, signer.Attributes["signerAccount"])
	assert.Equal(t, "5", signer.Attributes["weight"])
}

func TestCodecClaimableBalances(t *testing.T) {
	decoded := encodeDecode(t,
		&txnbuild.CreateClaimableBalance{
			Amount: "10",
			Asset:  txnbuild.NativeAsset{},
			Destinations: []txnbuild.Claimant{
				{Destination: testDestination, Predicate: txnbuild.UnconditionalPredicate},
				{Destination: testIssuer, Predicate: txnbuild.BeforeAbsoluteTimePredicate(1700000000)},
			},
		},
		&txnbuild.ClaimClaimableBalance{
			BalanceID: "00000000" + testPoolID,
		},
	)

	create := decoded.Operations[0]
	assert.Equal(t, "createClaimableBalance", create.Name)
	assert.Equal(t, testDestination, create.Attributes["claimant1Destination"])
	assert.Equal(t, "unconditional", create.Attributes["claimant1PredicateType"])
	assert.Equal(t, testIssuer, create.Attributes["claimant2Destination"])
	assert.Equal(t, "before_absolute_time", create.Attributes["claimant2PredicateType"])
	assert.Equal(t, "1700000000", create.Attributes["claimant2PredicateValue"])

	claim := decoded.Operations[1]
	assert.Equal(t, "claimClaimableBalance", claim.Name)
	assert.Equal(t, "00000000"+testPoolID, claim.Attributes["balanceId"])
}

func TestCodecSetTrustLineFlags(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.SetTrustLineFlags{
		Trustor:    testDestination,
		Asset:      txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
		SetFlags:   []txnbuild.TrustLineFlag{txnbuild.TrustLineAuthorized},
		ClearFlags: []txnbuild.TrustLineFlag{txnbuild.TrustLineClawbackEnabled},
	})
	op := decoded.Operations[0]
	assert.Equal(t, "setTrustLineFlags", op.Name)
	assert.Equal(t, "1", op.Attributes["setFlags"])
	assert.Equal(t, "4", op.Attributes["clearFlags"])
}

func TestCodecPathPayment(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.PathPaymentStrictSend{
		SendAsset:   txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
		SendAmount:  "10",
		Destination: testDestination,
		DestAsset:   txnbuild.NativeAsset{},
		DestMin:     "9.5",
		Path:        []txnbuild.Asset{txnbuild.CreditAsset{Code: "USDC", Issuer: testDestination}},
	})
	op := decoded.Operations[0]
	assert.Equal(t, "pathPaymentStrictSend", op.Name)
	assert.Equal(t, "9.5000000", op.Attributes["destMin"])
	path, ok := op.Attributes["path"].([]models.WireAsset)
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.Equal(t, "USDC", path[0].Code)
}

func TestCodecSponsorship(t *testing.T) {
	account := testDestination
	decoded := encodeDecode(t,
		&txnbuild.BeginSponsoringFutureReserves{SponsoredID: testDestination},
		&txnbuild.EndSponsoringFutureReserves{SourceAccount: testDestination},
		&txnbuild.RevokeSponsorship{
			SponsorshipType: txnbuild.RevokeSponsorshipTypeAccount,
			Account:         &account,
		},
		&txnbuild.RevokeSponsorship{
			SponsorshipType: txnbuild.RevokeSponsorshipTypeSigner,
			Signer: &txnbuild.SignerID{
				AccountID:     testDestination,
				SignerAddress: testIssuer,
			},
		},
	)
	require.Len(t, decoded.Operations, 4)
	assert.Equal(t, "beginSponsoringFutureReserves", decoded.Operations[0].Name)
	assert.Equal(t, testDestination, decoded.Operations[0].Attributes["sponsoredId"])
	assert.Equal(t, "endSponsoringFutureReserves", decoded.Operations[1].Name)

	account0 := decoded.Operations[2]
	assert.Equal(t, "revokeSponsorship", account0.Name)
	assert.Equal(t, "account", account0.Attributes["revokeType"])
	assert.Equal(t, testDestination, account0.Attributes["revokeAccountId"])

	signer := decoded.Operations[3]
	assert.Equal(t, "signer", signer.Attributes["revokeType"])
	assert.Equal(t, testIssuer, signer.Attributes["revokeSignerKey"])
}

func TestCodecUnknownOperation(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.AccountMerge{Destination: testDestination})
	op := decoded.Operations[0]
	assert.Equal(t, "accountMerge", op.Name)
	assert.Equal(t, "unsupported operation", op.Attributes["detail"])
}
