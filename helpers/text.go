package helpers

import "strings"

const zeroWidthSpace = "​"

// CleanText removes zero-width spaces, collapses whitespace runs (unicode
// spaces included) into a single space and trims the result.
func CleanText(txt string) string {
	txt = strings.ReplaceAll(txt, zeroWidthSpace, "")
	return strings.Join(strings.Fields(txt), " ")
}
