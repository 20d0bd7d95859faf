package handlers

import (
	"fmt"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// RevokeLiquidityPoolSponsorship revokes the sponsorship of a liquidity
// pool ledger entry. The SDK's revoke operation covers the other ledger key
// types but not pools, so this builds the operation body directly.
type RevokeLiquidityPoolSponsorship struct {
	LiquidityPoolID txnbuild.LiquidityPoolId
	SourceAccount   string
}

var _ txnbuild.Operation = (*RevokeLiquidityPoolSponsorship)(nil)

func (r *RevokeLiquidityPoolSponsorship) BuildXDR() (xdr.Operation, error) {
	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeLiquidityPool,
		LiquidityPool: &xdr.LedgerKeyLiquidityPool{
			LiquidityPoolId: xdr.PoolId(r.LiquidityPoolID),
		},
	}
	body, err := xdr.NewOperationBody(xdr.OperationTypeRevokeSponsorship, xdr.RevokeSponsorshipOp{
		Type:      xdr.RevokeSponsorshipTypeRevokeSponsorshipLedgerEntry,
		LedgerKey: &key,
	})
	if err != nil {
		return xdr.Operation{}, fmt.Errorf("building revoke sponsorship body: %w", err)
	}

	op := xdr.Operation{Body: body}
	if r.SourceAccount != "" {
		var muxed xdr.MuxedAccount
		if err := muxed.SetAddress(r.SourceAccount); err != nil {
			return xdr.Operation{}, fmt.Errorf("bad source account: %w", err)
		}
		op.SourceAccount = &muxed
	}
	return op, nil
}

func (r *RevokeLiquidityPoolSponsorship) FromXDR(xdrOp xdr.Operation) error {
	revoke, ok := xdrOp.Body.GetRevokeSponsorshipOp()
	if !ok {
		return fmt.Errorf("not a revoke sponsorship operation")
	}
	if revoke.LedgerKey == nil || revoke.LedgerKey.Type != xdr.LedgerEntryTypeLiquidityPool {
		return fmt.Errorf("not a liquidity pool ledger key")
	}
	r.LiquidityPoolID = txnbuild.LiquidityPoolId(revoke.LedgerKey.LiquidityPool.LiquidityPoolId)
	if xdrOp.SourceAccount != nil {
		r.SourceAccount = xdrOp.SourceAccount.Address()
	}
	return nil
}

func (r *RevokeLiquidityPoolSponsorship) Validate() error {
	return nil
}

func (r *RevokeLiquidityPoolSponsorship) GetSourceAccount() string {
	return r.SourceAccount
}
