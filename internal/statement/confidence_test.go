package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func TestAssessConfidence(t *testing.T) {
	withBalance := func(n int) []model.StatementTransaction {
		txns := make([]model.StatementTransaction, n)
		for i := range txns {
			txns[i].HasBalance = true
		}
		return txns
	}

	tests := []struct {
		name string
		info model.StatementInfo
		txns []model.StatementTransaction
		want Confidence
	}{
		{
			name: "nothing extracted",
			want: ConfidenceLow,
		},
		{
			name: "transactions only",
			txns: withBalance(3),
			want: ConfidenceLow, // 20 + 10 balance coverage
		},
		{
			name: "metadata only",
			info: model.StatementInfo{AccountNumber: "123", HasPeriod: true},
			want: ConfidenceMedium, // 40
		},
		{
			name: "account number and transactions",
			info: model.StatementInfo{AccountNumber: "123"},
			txns: withBalance(5),
			want: ConfidenceMedium, // 20 + 20 + 10
		},
		{
			name: "full metadata and volume",
			info: model.StatementInfo{AccountNumber: "123", HasPeriod: true, HasOpening: true, HasClosing: true},
			txns: withBalance(12),
			want: ConfidenceHigh, // 20+20+10+10+20+10+10
		},
		{
			name: "metadata with sparse balances",
			info: model.StatementInfo{AccountNumber: "123", HasPeriod: true},
			txns: append(withBalance(1), make([]model.StatementTransaction, 4)...),
			want: ConfidenceMedium, // 40 + 20, balance coverage below 80%
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssessConfidence(tt.info, tt.txns))
		})
	}
}

func TestAssessConfidence_BalanceCoverageThreshold(t *testing.T) {
	// 4 of 5 lines carrying a balance is exactly 80%: the coverage bonus
	// applies.
	txns := make([]model.StatementTransaction, 5)
	for i := 0; i < 4; i++ {
		txns[i].HasBalance = true
	}
	info := model.StatementInfo{AccountNumber: "123", HasPeriod: true, HasOpening: true}
	// 20+20+10+20+10 = 80
	assert.Equal(t, ConfidenceHigh, AssessConfidence(info, txns))

	// Drop one balance: 3/5 = 60%, bonus lost, score 70 still high via
	// other fields, so also drop the opening balance to cross the line.
	txns[3].HasBalance = false
	info.HasOpening = false
	// 20+20+20 = 60
	assert.Equal(t, ConfidenceMedium, AssessConfidence(info, txns))
}
