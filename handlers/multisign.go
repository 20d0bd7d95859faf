package handlers

import "sort"

// Signer-set copying: compute the operations needed to make a target
// account's signer configuration match a source account's.

// AccountSigners is the signer view of one account: thresholds, master
// weight, and the additional signer keys with their weights. The master key
// appears in Signers under the account's own id.
type AccountSigners struct {
	AccountID string
	Low       int32
	Med       int32
	High      int32
	Signers   map[string]int32
}

// SignerUpdate sets one signer key to a weight on the target account.
// Weight zero removes the signer.
type SignerUpdate struct {
	Key    string
	Weight int32
}

// MultiSignPlan is the ordered set of changes that brings the target in
// line with the source: thresholds and master weight first, then signer
// removals, weight changes, and additions.
type MultiSignPlan struct {
	Low          int32
	Med          int32
	High         int32
	MasterWeight int32
	Updates      []SignerUpdate
}

// CopyMultiSignPlan diffs the source signer set against the target's. The
// source's master key maps to the target's master key; every other signer
// carries over as is. Signers present only on the target are scheduled for
// removal.
func CopyMultiSignPlan(from, target AccountSigners) MultiSignPlan {
	desired := make(map[string]int32, len(from.Signers))
	for key, weight := range from.Signers {
		if key == from.AccountID {
			key = target.AccountID
		}
		desired[key] = weight
	}

	plan := MultiSignPlan{
		Low:          from.Low,
		Med:          from.Med,
		High:         from.High,
		MasterWeight: desired[target.AccountID],
	}

	var removals, changes, additions []string
	for key := range target.Signers {
		if key == target.AccountID {
			continue
		}
		if _, keep := desired[key]; !keep {
			removals = append(removals, key)
		}
	}
	for key, weight := range desired {
		if key == target.AccountID {
			continue
		}
		current, exists := target.Signers[key]
		switch {
		case !exists:
			additions = append(additions, key)
		case current != weight:
			changes = append(changes, key)
		}
	}
	sort.Strings(removals)
	sort.Strings(changes)
	sort.Strings(additions)

	for _, key := range removals {
		plan.Updates = append(plan.Updates, SignerUpdate{Key: key})
	}
	for _, key := range changes {
		plan.Updates = append(plan.Updates, SignerUpdate{Key: key, Weight: desired[key]})
	}
	for _, key := range additions {
		plan.Updates = append(plan.Updates, SignerUpdate{Key: key, Weight: desired[key]})
	}
	return plan
}
