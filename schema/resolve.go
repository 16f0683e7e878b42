package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// ResolveError reports a column token that did not resolve to exactly one
// column.
type ResolveError struct {
	Token string
	// Ambiguous lists the columns tied at the best score, in schema order.
	// Empty when nothing matched at all.
	Ambiguous []string
	// Closest lists the nearest column names by edit distance when nothing
	// cleared the threshold.
	Closest []string
}

func (e *ResolveError) Error() string {
	if len(e.Ambiguous) > 0 {
		return fmt.Sprintf("column %q is ambiguous: could be %s", e.Token, strings.Join(e.Ambiguous, ", "))
	}
	msg := fmt.Sprintf("column %q not found", e.Token)
	if len(e.Closest) > 0 {
		msg += fmt.Sprintf(" (closest: %s)", strings.Join(e.Closest, ", "))
	}
	return msg
}

// IsAmbiguous reports whether the token matched several columns equally
// well.
func (e *ResolveError) IsAmbiguous() bool { return len(e.Ambiguous) > 0 }

// Suggestions returns the names worth offering to the user.
func (e *ResolveError) Suggestions() []string {
	if len(e.Ambiguous) > 0 {
		return e.Ambiguous
	}
	return e.Closest
}

// closestLimit caps how many alternatives an unresolved error carries.
const closestLimit = 3

// minFragmentLen is the shortest token accepted for prefix and substring
// matching.
const minFragmentLen = 3

// Normalize lowercases s and turns underscores, dashes and other
// punctuation into single spaces.
func Normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// EditThreshold returns the largest edit distance accepted for a
// normalized token: half the length up to 2 for short names, a quarter of
// the length for longer ones. One- and two-letter tokens never reach an
// unrelated short column.
func EditThreshold(normalized string) int {
	n := len([]rune(normalized))
	if n <= 8 {
		return min(2, n/2)
	}
	return n / 4
}

type candidate struct {
	name     string
	norm     string
	compact  string
	position int
}

// Resolve maps a free-text token to a column name.
//
// Stages are tried in order and the first stage producing candidates wins:
// exact match, prefix match, substring match, word abbreviation
// ("sched qty" for scheduled_quantity), and finally edit distance within
// EditThreshold. Inside a stage the candidate with the smallest edit
// distance wins; a tie returns an ambiguous *ResolveError instead of
// picking one. Resolve keeps no state between calls.
func (s *Schema) Resolve(token string) (string, error) {
	if _, ok := s.index[token]; ok {
		return token, nil
	}

	norm := Normalize(token)
	if norm == "" {
		return "", &ResolveError{Token: token}
	}
	compact := strings.ReplaceAll(norm, " ", "")

	cands := make([]candidate, len(s.columns))
	for i, c := range s.columns {
		n := Normalize(c.Name)
		cands[i] = candidate{name: c.Name, norm: n, compact: strings.ReplaceAll(n, " ", ""), position: i}
	}

	long := len([]rune(compact)) >= minFragmentLen
	stages := []func(c candidate) bool{
		func(c candidate) bool { return c.norm == norm || c.compact == compact },
		func(c candidate) bool {
			return long && (strings.HasPrefix(c.norm, norm) || strings.HasPrefix(c.compact, compact))
		},
		func(c candidate) bool { return long && strings.Contains(c.compact, compact) },
		func(c candidate) bool { return abbreviates(norm, c.norm) },
	}
	for _, stage := range stages {
		var matched []candidate
		for _, c := range cands {
			if stage(c) {
				matched = append(matched, c)
			}
		}
		if len(matched) > 0 {
			return pickBest(token, norm, matched)
		}
	}

	threshold := EditThreshold(norm)
	var within []candidate
	for _, c := range cands {
		if distance(norm, c.norm) <= threshold {
			within = append(within, c)
		}
	}
	if len(within) > 0 {
		return pickBest(token, norm, within)
	}

	return "", &ResolveError{Token: token, Closest: closest(norm, cands)}
}

func distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// pickBest returns the unique candidate at the smallest edit distance.
func pickBest(token, norm string, matched []candidate) (string, error) {
	best := -1
	var tied []candidate
	for _, c := range matched {
		d := distance(norm, c.norm)
		switch {
		case best < 0 || d < best:
			best = d
			tied = []candidate{c}
		case d == best:
			tied = append(tied, c)
		}
	}
	if len(tied) == 1 {
		return tied[0].name, nil
	}

	sort.SliceStable(tied, func(i, j int) bool { return tied[i].position < tied[j].position })
	names := make([]string, len(tied))
	for i, c := range tied {
		names[i] = c.name
	}
	return "", &ResolveError{Token: token, Ambiguous: names}
}

// closest returns up to closestLimit names ordered by edit distance, then
// schema order.
func closest(norm string, cands []candidate) []string {
	type scored struct {
		candidate
		d int
	}
	all := make([]scored, len(cands))
	for i, c := range cands {
		all[i] = scored{candidate: c, d: distance(norm, c.norm)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].d < all[j].d })

	n := min(closestLimit, len(all))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].name
	}
	return out
}

// abbreviates reports whether every word of token abbreviates the word at
// the same position in name: same first letter, remaining letters in order.
func abbreviates(token, name string) bool {
	tw := strings.Fields(token)
	nw := strings.Fields(name)
	if len(tw) == 0 || len(tw) != len(nw) {
		return false
	}
	for i := range tw {
		if !isSubsequence(tw[i], nw[i]) || tw[i][0] != nw[i][0] {
			return false
		}
	}
	return true
}

func isSubsequence(short, long string) bool {
	j := 0
	for i := 0; i < len(long) && j < len(short); i++ {
		if long[i] == short[j] {
			j++
		}
	}
	return j == len(short)
}
