// Package tokencount provides a fast heuristic mapping from text to an
// integer token count. It is used for context budgeting and progress
// display only; it is not a tokenizer for any specific model.
package tokencount

// cjkRange is an inclusive [Low, High] code point range treated as CJK for
// estimation purposes.
type cjkRange struct {
	Low, High rune
}

var cjkRanges = []cjkRange{
	{0x4E00, 0x9FFF},
	{0x3400, 0x4DBF},
	{0x20000, 0x2A6DF},
}

func isCJK(r rune) bool {
	for _, rg := range cjkRanges {
		if r >= rg.Low && r <= rg.High {
			return true
		}
	}
	return false
}

// Estimate counts CJK and non-CJK code points separately and combines them
// with different weights: CJK characters carry roughly 1.5 chars per
// token, everything else roughly 4 chars per token.
func Estimate(text string) int {
	var cjk, other int
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return int(float64(cjk)/1.5 + float64(other)/4.0)
}
