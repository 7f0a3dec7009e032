package statement

import "github.com/tallybook-dev/tallybook/internal/model"

// Confidence grades how much of a statement the extractor recovered. It is
// advisory only and never blocks downstream use.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// AssessConfidence scores extraction completeness: metadata fields, presence
// and volume of transactions, and running-balance coverage.
func AssessConfidence(info model.StatementInfo, txns []model.StatementTransaction) Confidence {
	score := 0
	if info.AccountNumber != "" {
		score += 20
	}
	if info.HasPeriod {
		score += 20
	}
	if info.HasOpening {
		score += 10
	}
	if info.HasClosing {
		score += 10
	}
	if len(txns) > 0 {
		score += 20
	}
	if len(txns) > 10 {
		score += 10
	}
	if len(txns) > 0 {
		withBalance := 0
		for _, t := range txns {
			if t.HasBalance {
				withBalance++
			}
		}
		if withBalance*100 >= len(txns)*80 {
			score += 10
		}
	}

	switch {
	case score >= 70:
		return ConfidenceHigh
	case score >= 40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
