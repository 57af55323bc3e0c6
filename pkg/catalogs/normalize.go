package catalogs

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeAPIName returns the reconciliation join key for an apiName.
// Any path-like prefix up to the last "/" is stripped, surrounding
// whitespace trimmed, and the remainder Unicode case-folded, so
// "Characters/TFT14_Ahri" and "tft14_ahri " compare equal.
func NormalizeAPIName(apiName string) string {
	if i := strings.LastIndexByte(apiName, '/'); i >= 0 {
		apiName = apiName[i+1:]
	}
	apiName = strings.TrimSpace(apiName)
	if apiName == "" {
		return ""
	}
	// Casers are stateful; one per call.
	return cases.Fold().String(apiName)
}

// SameAPIName reports whether two apiNames normalize to the same key.
func SameAPIName(a, b string) bool {
	return NormalizeAPIName(a) == NormalizeAPIName(b)
}
