package reporting

import (
	"regexp"
	"strconv"
)

// noisyPatterns are substrings/regexes that third-party client warnings
// (FDSN/SDS readers, PSD estimators) tend to repeat verbatim across many
// traces in one run; SPEC_FULL.md §9 calls for deduplicating these before
// they reach the log, since their volume is diagnostic noise rather than a
// correctness signal.
var noisyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^more than one epoch`),
	regexp.MustCompile(`(?i)^no channel epoch`),
	regexp.MustCompile(`(?i)^record.*out of order`),
}

// Sanitize deduplicates a slice of warning strings, counting occurrences of
// each unique message and suffixing a count when it repeats, per
// SPEC_FULL.md §4.4's "collected warnings are deduplicated (count per unique
// message)" contract.
func Sanitize(warnings []string) []string {
	counts := make(map[string]int)
	order := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	out := make([]string, 0, len(order))
	for _, w := range order {
		if n := counts[w]; n > 1 {
			out = append(out, w+" (x"+strconv.Itoa(n)+")")
		} else {
			out = append(out, w)
		}
	}
	return out
}

// IsNoisy reports whether msg matches one of the known noisy third-party
// warning patterns. No code path in this module calls it; Sanitize does not
// consult it.
func IsNoisy(msg string) bool {
	for _, p := range noisyPatterns {
		if p.MatchString(msg) {
			return true
		}
	}
	return false
}
