package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montelibero/stellarlab/models"
)

func TestDecodeDraftPayment(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.Payment{
		Destination:   testDestination,
		Amount:        "1.5",
		Asset:         txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
		SourceAccount: testIssuer,
	})

	draft, imported, skipped := DecodeDraft(decoded)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, testAccount, draft.Account)
	assert.Equal(t, "123456789", draft.Sequence)
	assert.Equal(t, models.MemoNone, draft.MemoType)

	require.Len(t, draft.Operations, 1)
	record := draft.Operations[0]
	assert.Equal(t, "payment", record.Kind)
	assert.Equal(t, testIssuer, record.SourceAccount)
	assert.Equal(t, testDestination, record.Fields["destination"])
	assert.Equal(t, "EURMTL-"+testIssuer, record.Fields["asset"])
	assert.Equal(t, "1.5000000", record.Fields["amount"])
}

func TestDecodeDraftSkipsUnknownOperations(t *testing.T) {
	decoded := encodeDecode(t,
		&txnbuild.Payment{
			Destination: testDestination,
			Amount:      "1",
			Asset:       txnbuild.NativeAsset{},
		},
		&txnbuild.AccountMerge{Destination: testDestination},
	)

	draft, imported, skipped := DecodeDraft(decoded)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
	require.Len(t, draft.Operations, 1)
	assert.Equal(t, "payment", draft.Operations[0].Kind)
	assert.Equal(t, "XLM", draft.Operations[0].Fields["asset"])
}

func TestDecodeDraftMemo(t *testing.T) {
	codec := testCodec()
	envelope, err := codec.Encode(&Intermediate{
		SourceAccount: testAccount,
		Sequence:      1,
		Memo:          txnbuild.MemoText("dividends"),
		Operations:    []txnbuild.Operation{&txnbuild.BumpSequence{BumpTo: 5}},
	})
	require.NoError(t, err)
	decoded, err := codec.Decode(envelope)
	require.NoError(t, err)

	draft, _, _ := DecodeDraft(decoded)
	assert.Equal(t, models.MemoText, draft.MemoType)
	assert.Equal(t, "dividends", draft.Memo)
	require.Len(t, draft.Operations, 1)
	assert.Equal(t, "bump_sequence", draft.Operations[0].Kind)
	assert.Equal(t, "5", draft.Operations[0].Fields["bump_to"])
}

func TestDecodeDraftSwapPath(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.PathPaymentStrictSend{
		SendAsset:   txnbuild.CreditAsset{Code: "EURMTL", Issuer: testIssuer},
		SendAmount:  "10",
		Destination: testAccount,
		DestAsset:   txnbuild.NativeAsset{},
		DestMin:     "9.5",
		Path:        []txnbuild.Asset{txnbuild.CreditAsset{Code: "USDC", Issuer: testDestination}},
	})

	draft, imported, _ := DecodeDraft(decoded)
	require.Equal(t, 1, imported)
	record := draft.Operations[0]
	assert.Equal(t, "swap", record.Kind)
	assert.Equal(t, "EURMTL-"+testIssuer, record.Fields["selling"])
	assert.Equal(t, "XLM", record.Fields["buying"])

	var hops []pathAsset
	require.NoError(t, json.Unmarshal([]byte(record.Fields["path"]), &hops))
	require.Len(t, hops, 1)
	assert.Equal(t, "USDC", hops[0].Code)
	assert.Equal(t, testDestination, hops[0].Issuer)
}

// Drafts survive a trip through generic JSON the way browser clients see
// them: typed attributes become maps and the decoder must still flatten them.
func TestDecodeDraftAfterJSONRoundTrip(t *testing.T) {
	decoded := encodeDecode(t, &txnbuild.Payment{
		Destination: testDestination,
		Amount:      "2",
		Asset:       txnbuild.CreditAsset{Code: "MTL", Issuer: testIssuer},
	})

	raw, err := json.Marshal(decoded)
	require.NoError(t, err)
	var generic models.DecodedTransaction
	require.NoError(t, json.Unmarshal(raw, &generic))

	draft, imported, skipped := DecodeDraft(&generic)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, "MTL-"+testIssuer, draft.Operations[0].Fields["asset"])
}

func TestDecodeDraftRevokeSponsorship(t *testing.T) {
	account := testDestination
	decoded := encodeDecode(t, &txnbuild.RevokeSponsorship{
		SponsorshipType: txnbuild.RevokeSponsorshipTypeAccount,
		Account:         &account,
	})

	draft, imported, _ := DecodeDraft(decoded)
	require.Equal(t, 1, imported)
	record := draft.Operations[0]
	assert.Equal(t, "revoke_sponsorship", record.Kind)
	assert.Equal(t, "account", record.Fields["revoke_type"])
	assert.Equal(t, testDestination, record.Fields["revoke_account_id"])
}
