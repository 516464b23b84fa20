package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRowKey returns the display key of a transaction row, e.g.
// "1682698259192-3". Transactions carry no id of their own, so the key
// pairs the date with the row's position in the collection.
func FormatRowKey(date int64, index int) string {
	return fmt.Sprintf("%d-%d", date, index)
}

// ParseRowKey parses "1682698259192-3" into date and index.
func ParseRowKey(key string) (date int64, index int, err error) {
	i := strings.LastIndexByte(key, '-')
	if i <= 0 || i == len(key)-1 {
		return 0, 0, fmt.Errorf("invalid row key format: %q", key)
	}

	date, err = strconv.ParseInt(key[:i], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date in row key %q: %w", key, err)
	}

	index, err = strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid index in row key %q: %w", key, err)
	}
	if index < 0 {
		return 0, 0, fmt.Errorf("negative index in row key %q", key)
	}

	return date, index, nil
}

// TokenPrefix marks tokens minted by the demo auth gate.
const TokenPrefix = "fake_token_"

// FormatToken returns an opaque session token for a random suffix.
func FormatToken(suffix string) string {
	return TokenPrefix + suffix
}
