package handlers

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Numeric derivations shared by the assembler and the controllers: amount
// formatting, sequence arithmetic, trade cost captions, liquidity pool
// bounds, and proportional dividend payouts.

// FormatAmount renders a ledger amount with up to seven decimal places,
// trailing zeros trimmed.
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 7, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// NextSequence returns current+1 without overflowing at int64 bounds.
// Sequence numbers are decimal strings end to end.
func NextSequence(current string) (string, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(current), 10)
	if !ok {
		return "", fmt.Errorf("bad sequence number %q", current)
	}
	return n.Add(n, big.NewInt(1)).String(), nil
}

// TradeCost captions what an offer does to the account balance. A zero
// amount means the existing offer will be deleted.
func TradeCost(amount, price float64, buying bool, counterCode string) string {
	if amount == 0 {
		return "The order will be deleted"
	}
	total := amount * price
	if buying {
		return fmt.Sprintf("You will sell %s %s", FormatAmount(total), counterCode)
	}
	return fmt.Sprintf("You will buy %s %s", FormatAmount(total), counterCode)
}

// DepositPriceBounds fills zero min/max prices for a pool deposit from the
// pool's spot price, five percent either side.
func DepositPriceBounds(minPrice, maxPrice, spot float64) (float64, float64) {
	if minPrice == 0 {
		minPrice = spot * 0.95
	}
	if maxPrice == 0 {
		maxPrice = spot * 1.05
	}
	return minPrice, maxPrice
}

// WithdrawMinAmounts fills zero minimum withdraw amounts from the caller's
// share of the pool reserves, with a five percent slippage allowance.
func WithdrawMinAmounts(minA, minB, shares, totalShares, reserveA, reserveB float64) (float64, float64) {
	if totalShares <= 0 {
		return minA, minB
	}
	ratio := shares / totalShares
	if minA == 0 {
		minA = reserveA * ratio * 0.95
	}
	if minB == 0 {
		minB = reserveB * ratio * 0.95
	}
	return minA, minB
}

// HolderStake is one holder's stake used when splitting a dividend pot.
type HolderStake struct {
	Account string
	Amount  float64
}

// Payout is one holder's computed share of the pot.
type Payout struct {
	Account string
	Amount  float64
}

// ProportionalPayouts splits total across stakes proportionally, rounding
// each payout to seven decimal places. Holders whose rounded share is zero
// are dropped.
func ProportionalPayouts(total float64, stakes []HolderStake) []Payout {
	var sum float64
	for _, s := range stakes {
		sum += s.Amount
	}
	if sum <= 0 || total <= 0 {
		return nil
	}
	payouts := make([]Payout, 0, len(stakes))
	for _, s := range stakes {
		share := math.Round(total*s.Amount/sum*1e7) / 1e7
		if share <= 0 {
			continue
		}
		payouts = append(payouts, Payout{Account: s.Account, Amount: share})
	}
	return payouts
}
