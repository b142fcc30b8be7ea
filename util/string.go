package util

import "strings"

func IsNilOrEmpty(s *string) bool {
	return s == nil || *s == ""
}

// TrimmedOrNil returns nil for nil or blank strings
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ExplorerLink builds the public explorer URL of a transaction
func ExplorerLink(explorerTxUrl, txHash string) string {
	return explorerTxUrl + txHash
}
