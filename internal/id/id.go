package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTransactionID returns a transaction ID like "2025-01-001".
func FormatTransactionID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatPostingID returns a posting ID like "2025-01-001a" (posting 0='a', 1='b', etc.).
func FormatPostingID(txID string, posting int) string {
	return txID + string(rune('a'+posting))
}

// ParseTransactionID parses "2025-01-001" into year, month, seq.
func ParseTransactionID(id string) (year, month, seq int, err error) {
	// Strip any posting suffix (trailing lowercase letters).
	base := TransactionGroup(id)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in transaction ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in transaction ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in transaction ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// TransactionGroup strips the posting suffix from a posting ID.
// "2025-01-001a" -> "2025-01-001"
func TransactionGroup(postingID string) string {
	if len(postingID) == 0 {
		return ""
	}
	i := len(postingID)
	for i > 0 && postingID[i-1] >= 'a' && postingID[i-1] <= 'z' {
		i--
	}
	return postingID[:i]
}
