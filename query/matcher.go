package query

import (
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/grafana/regexp"

	"github.com/vegasq/askdata/schema"
)

// matchInput is what every intent matcher sees: the lowercased head of the
// question (the text before "where") and the schema. Words in head that
// name a column exactly are replaced by placeholders, so trigger patterns
// never fire inside a column name; clean restores them.
type matchInput struct {
	head       string
	raw        string
	masked     map[string]string
	hasFilters bool
	schema     *schema.Schema
	cfg        matchConfig
}

// A matcher returns (nil, nil) when the question is not its intent.
type matcher struct {
	intent Intent
	match  func(in *matchInput) (Operation, error)
}

var matchers = []matcher{
	{IntentMeta, matchMeta},
	{IntentDistribution, matchDistribution},
	{IntentAggregate, matchAggregate},
	{IntentTrend, matchTrend},
	{IntentTopN, matchTopN},
	{IntentCorrelation, matchCorrelation},
	{IntentAnomaly, matchAnomaly},
}

// Match compiles question text into a candidate plan. The plan still has
// to pass Validate before it can run.
func Match(text string, s *schema.Schema, opts ...Option) (*Plan, error) {
	if err := ValidateQuery(text); err != nil {
		return nil, err
	}
	cfg := newMatchConfig(opts)

	norm := Normalize(text)
	if norm == "" {
		return nil, &Error{Kind: NoMatch, Detail: "empty question", Alternatives: intentExamples(nil)}
	}

	head, filterTokens := splitWhere(norm)
	filters, err := NewParser(norm, filterTokens, s).ParseFilters()
	if err != nil {
		return nil, err
	}

	in := &matchInput{
		raw:    strings.ToLower(head),
		schema: s,
		cfg:    cfg,
	}
	in.head, in.masked = in.maskColumns(in.raw)

	yearFilters, err := in.yearFilters()
	if err != nil {
		return nil, err
	}
	filters = append(yearFilters, filters...)
	in.hasFilters = len(filters) > 0

	for _, m := range matchers {
		op, err := m.match(in)
		if err != nil {
			return nil, err
		}
		if op != nil {
			return &Plan{Operation: op, Filters: filters}, nil
		}
	}
	return nil, noIntent(in.raw)
}

// Compile matches and validates text in one step.
func Compile(text string, s *schema.Schema, opts ...Option) (*ValidPlan, error) {
	plan, err := Match(text, s, opts...)
	if err != nil {
		return nil, err
	}
	return Validate(plan, s)
}

var (
	reLead = regexp.MustCompile(`^(?:please\s+)?(?:(?:show|list|display|print|give|get|tell|return|what\s+are|what\s+is|what's)\s+)?(?:me\s+)?(?:the\s+|all\s+(?:the\s+)?)?`)

	reShape      = regexp.MustCompile(`\bshape\b|\bdimensions?\b|\bhow many columns\b|\bnumber of columns\b|\brows and columns\b|\bsize of (?:the )?(?:data|dataset|table)\b`)
	reDtypes     = regexp.MustCompile(`\bdtypes?\b|\bdata\s*types?\b|\bcolumn\s+types?\b|\btypes of (?:the )?columns\b`)
	reColumns    = regexp.MustCompile(`^(?:columns|column names|column list|headers|fields|schema)(?:\s+(?:of|in)\s+(?:the\s+)?(?:data|dataset|table|file))?$|^(?:which|what)\s+columns\s+(?:are\s+there|exist|do\s+we\s+have)$`)
	reDescribe   = regexp.MustCompile(`\bdescribe\b|\bsummary\s+stat|\bdescriptive\s+stat|^(?:stats|statistics|summary)$|^summari[sz]e\b`)
	reHead       = regexp.MustCompile(`^(?:head|first)(?:\s+(-?\d+))?(?:\s+(?:rows?|records?|lines?|entries))?$`)
	reTail       = regexp.MustCompile(`^(?:tail|last)(?:\s+(-?\d+))?(?:\s+(?:rows?|records?|lines?|entries))?$`)
	reMissing    = regexp.MustCompile(`\bmissing\b|\bnulls?\b|\bnans?\b|\bempty\s+(?:values|cells)\b`)
	reDuplicates = regexp.MustCompile(`\bduplicat(?:e|es|ed|ion|ions)\b|\bdupes?\b`)
)

func matchMeta(in *matchInput) (Operation, error) {
	h := in.head
	lead := reLead.ReplaceAllString(h, "")
	switch {
	case reShape.MatchString(h):
		return &Meta{Kind: MetaShape}, nil
	case reDtypes.MatchString(h):
		return &Meta{Kind: MetaDtypes}, nil
	case reColumns.MatchString(lead):
		return &Meta{Kind: MetaColumns}, nil
	case reDescribe.MatchString(h):
		return &Meta{Kind: MetaDescribe}, nil
	case reMissing.MatchString(h):
		return &Meta{Kind: MetaMissing}, nil
	case reDuplicates.MatchString(h):
		return &Meta{Kind: MetaDuplicates}, nil
	}
	if m := reHead.FindStringSubmatch(lead); m != nil {
		return &Meta{Kind: MetaHead, N: countOr(m[1], in.cfg.defaults.HeadRows)}, nil
	}
	if m := reTail.FindStringSubmatch(lead); m != nil {
		return &Meta{Kind: MetaTail, N: countOr(m[1], in.cfg.defaults.HeadRows)}, nil
	}
	return nil, nil
}

var (
	reUnique       = regexp.MustCompile(`\b(?:unique|distinct|nunique|cardinality)\b`)
	reUniqueNoise  = regexp.MustCompile(`\b(?:how many|number of|count of|count|unique|distinct|nunique|cardinality)\b`)
	reDistribution = regexp.MustCompile(`\bvalue\s+counts?\b|\bfrequenc(?:y|ies)\b|\bdistribution\b|\bbreakdown\b|\bhow often\b|\bcounts?\s+(?:of|for)\s+each\b|\bcounts?\s+per\s+value\b`)
	reTopK         = regexp.MustCompile(`\btop\s+(-?\d+)\b`)
)

func matchDistribution(in *matchInput) (Operation, error) {
	h := in.head
	if reUnique.MatchString(h) {
		phrase := in.clean(reUniqueNoise.ReplaceAllString(h, " "))
		if phrase == "" {
			return nil, hint("unique count needs a column", "unique values in <column>")
		}
		col, err := in.resolve(phrase)
		if err != nil {
			return nil, err
		}
		return &UniqueCount{Column: col}, nil
	}

	if !reDistribution.MatchString(h) {
		return nil, nil
	}
	topK := in.cfg.defaults.TopK
	if m := reTopK.FindStringSubmatch(h); m != nil {
		topK = countOr(m[1], topK)
		h = reTopK.ReplaceAllString(h, " ")
	}
	phrase := in.clean(reDistribution.ReplaceAllString(h, " "))
	if phrase == "" {
		return nil, hint("value counts need a column", "value counts of <column>")
	}
	col, err := in.resolve(phrase)
	if err != nil {
		return nil, err
	}
	return &Distribution{Column: col, TopK: topK}, nil
}

var (
	reRowCount = regexp.MustCompile(`^(?:(?:how many|number of|count(?:\s+of)?|total)\s+(?:the\s+)?(?:rows|records|entries|lines)(?:\s+(?:are\s+there|do\s+we\s+have|in\s+(?:the\s+)?(?:data|dataset|table)))?|row\s+count|count)(?:\s+(?:by|per|for\s+each)\s+(.+))?$`)
	reAggVerb  = regexp.MustCompile(`\b(sum|total|average|avg|mean|median|minimum|min|maximum|max|standard\s+deviation|stddev|stdev|std|count)\b`)
	reGroupBy  = regexp.MustCompile(`\s+(?:grouped\s+by|group\s+by|by|per|for\s+each)\s+`)
	reTrend    = regexp.MustCompile(`\btrend(?:s|ing)?\b|\bover\s+time\b|\b(?:by|per|each|every)\s+year\b|\byearly\b|\bannual(?:ly)?\b|\bover\s+the\s+years\b|\byear\s+over\s+year\b`)
	reTrendAll = regexp.MustCompile(`\btrend(?:s|ing)?\b|\bover\s+time\b|\byearly\b|\bannual(?:ly)?\b|\bover\s+the\s+years\b|\byear\s+over\s+year\b`)
)

func aggFunc(verb string) AggFunc {
	switch strings.Join(strings.Fields(verb), " ") {
	case "sum", "total":
		return FuncSum
	case "average", "avg", "mean":
		return FuncMean
	case "median":
		return FuncMedian
	case "min", "minimum":
		return FuncMin
	case "max", "maximum":
		return FuncMax
	case "count":
		return FuncCount
	default:
		return FuncStd
	}
}

func matchAggregate(in *matchInput) (Operation, error) {
	h := in.head
	if m := reRowCount.FindStringSubmatch(h); m != nil {
		if m[1] == "" {
			return &RowCount{}, nil
		}
		group, err := in.resolveRequired(m[1], "row count by needs a column", "count rows by <column>")
		if err != nil {
			return nil, err
		}
		return &RowCount{GroupBy: group}, nil
	}

	verbs := reAggVerb.FindAllStringSubmatchIndex(h, -1)
	if len(verbs) == 0 {
		return nil, nil
	}
	if reTrendAll.MatchString(h) {
		return nil, nil
	}

	first := verbs[0]
	fn := aggFunc(h[first[2]:first[3]])
	before, after := h[:first[0]], h[first[1]:]

	targetPart, groupPart := after, ""
	if loc := reGroupBy.FindStringIndex(after); loc != nil {
		targetPart, groupPart = after[:loc[0]], after[loc[1]:]
	}
	if groupPart != "" && isYearWord(in.clean(groupPart)) && !in.hasYearColumn() {
		return nil, nil
	}

	// Later aggregate verbs are ignored.
	target := in.clean(reAggVerb.ReplaceAllString(targetPart, " "))
	if target == "" {
		target = in.clean(before)
	}
	usage := fn.String() + " <column> [by <column>]"
	if target == "" {
		return nil, hint(fn.String()+" needs a column", usage)
	}
	col, err := in.resolve(target)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{Func: fn, Target: col}
	if groupPart != "" {
		group, err := in.resolveRequired(groupPart, "group by needs a column", usage)
		if err != nil {
			return nil, err
		}
		agg.GroupBy = group
	}
	return agg, nil
}

func matchTrend(in *matchInput) (Operation, error) {
	h := in.head
	if !reTrend.MatchString(h) {
		return nil, nil
	}

	fn := FuncMean
	if m := reAggVerb.FindStringSubmatch(h); m != nil && aggFunc(m[1]) != FuncCount {
		fn = aggFunc(m[1])
	}
	rest := reAggVerb.ReplaceAllString(reTrend.ReplaceAllString(h, " "), " ")
	phrase := in.clean(rest)
	if phrase == "" {
		return nil, hint("trend needs a column", "trend of <column>")
	}
	col, err := in.resolve(phrase)
	if err != nil {
		return nil, err
	}

	trend := &Trend{Target: col, Func: fn}
	if in.cfg.dateColumn != "" {
		timeCol, err := in.resolve(in.cfg.dateColumn)
		if err != nil {
			return nil, err
		}
		trend.TimeColumn = timeCol
	}
	return trend, nil
}

var (
	reTop      = regexp.MustCompile(`\b(top|largest|highest|biggest|greatest|bottom|smallest|lowest|least)\b(?:\s+(-?\d+))?`)
	reTopNoise = regexp.MustCompile(`^\s*(?:(?:rows?|records?|entries|values)\s*)?(?:(?:sorted|ordered|ranked)\s+)?(?:by|of|in|on|for)?\s*`)
	reRowsOnly = regexp.MustCompile(`^(?:(?:show|list|get|find|display|select|give|return|print|filter)\s+)?(?:me\s+)?(?:all\s+)?(?:the\s+)?(?:rows|records|entries|data|everything)?$`)
)

func matchTopN(in *matchInput) (Operation, error) {
	h := in.head
	// "top 5% anomalies" and similar belong to later intents.
	if reAnomaly.MatchString(h) || reOtherMethod.MatchString(h) || reCorrelation.MatchString(h) {
		return nil, nil
	}
	if m := reTop.FindStringSubmatchIndex(h); m != nil {
		word := h[m[2]:m[3]]
		dir := Descending
		switch word {
		case "bottom", "smallest", "lowest", "least":
			dir = Ascending
		}
		n := in.cfg.defaults.TopN
		if m[4] >= 0 {
			n = countOr(h[m[4]:m[5]], n)
		}

		phrase := in.clean(reTopNoise.ReplaceAllString(h[m[1]:], ""))
		if phrase == "" {
			phrase = in.clean(h[:m[0]])
		}
		if phrase == "" {
			return nil, hint(word+" needs a sort column", word+" 10 rows by <column>")
		}
		col, err := in.resolve(phrase)
		if err != nil {
			return nil, err
		}
		return &TopN{N: n, SortColumn: col, Direction: dir}, nil
	}

	if in.hasFilters && reRowsOnly.MatchString(h) {
		return &FilterRows{}, nil
	}
	return nil, nil
}

var (
	reCorrelation = regexp.MustCompile(`\bcorrelat(?:e|es|ed|ion|ions)\b|\bcorr\b`)
	reCorrNoise   = regexp.MustCompile(`\b(?:pearson|pairwise|matrix|coefficients?|numeric|all)\b`)
	reRankCorr    = regexp.MustCompile(`\b(spearman|kendall)\b`)
	reListSep     = regexp.MustCompile(`\s*(?:,|\band\b|\bvs\.?|\bversus\b|\bwith\b|&)\s*`)
)

func matchCorrelation(in *matchInput) (Operation, error) {
	h := in.head
	if !reCorrelation.MatchString(h) {
		return nil, nil
	}
	if m := reRankCorr.FindStringSubmatch(h); m != nil {
		return nil, &Error{Kind: CapabilityUnavailable, Token: m[1],
			Detail: m[1] + " correlation is not available", Expected: "pearson"}
	}

	rest := reCorrNoise.ReplaceAllString(reCorrelation.ReplaceAllString(h, " "), " ")
	cols, err := in.resolveList(rest)
	if err != nil {
		return nil, err
	}
	return &Correlation{Columns: cols}, nil
}

var (
	reAnomaly       = regexp.MustCompile(`\boutliers?\b|\banomal(?:y|ies|ous)\b|\bunusual\b|\babnormal\b|\bisolation\s+forest\b|\biforest\b|\bz-?scores?\b`)
	reMultivariate  = regexp.MustCompile(`\bmultivariate\b|\bisolation\s+forest\b|\biforest\b|\bacross\b|\bmulti-?column\b`)
	reThreshold     = regexp.MustCompile(`\b(?:threshold|z)\s*(?:=|>=|>|of|at)?\s*(\d*\.?\d+)`)
	reSeed          = regexp.MustCompile(`\bseed\s*(?:=|of)?\s*(\d+)`)
	reContamination = regexp.MustCompile(`\bcontamination\s*(?:=|of)?\s*(\d*\.?\d+)`)
	rePercent       = regexp.MustCompile(`(?:\btop\s+)?(\d*\.?\d+)\s*%`)
	reTrees         = regexp.MustCompile(`\b(\d+)\s+trees\b|\btrees\s*=?\s*(\d+)`)
	reSampleSize    = regexp.MustCompile(`\bsample(?:\s+size)?\s*(?:=|of)?\s*(\d+)`)
	reOtherMethod   = regexp.MustCompile(`\b(lof|local\s+outlier\s+factor|dbscan|one[- ]class\s+svm|ocsvm|autoencoder)\b`)
	reAnomalyNoise  = regexp.MustCompile(`\b(?:find|detect|identify|flag|spot|multivariate|univariate|across|using|with|method|based\s+on)\b`)
)

func matchAnomaly(in *matchInput) (Operation, error) {
	h := in.head
	if !reAnomaly.MatchString(h) && !reOtherMethod.MatchString(h) {
		return nil, nil
	}
	d := in.cfg.defaults
	multi := reMultivariate.MatchString(h)
	method := MethodIsolationForest
	if m := reOtherMethod.FindStringSubmatch(h); m != nil {
		method = strings.Join(strings.Fields(m[1]), " ")
		multi = true
	}

	threshold := d.ZThreshold
	if m := reThreshold.FindStringSubmatch(h); m != nil {
		threshold, _ = strconv.ParseFloat(m[1], 64)
	}
	seed := d.Seed
	if m := reSeed.FindStringSubmatch(h); m != nil {
		seed, _ = strconv.ParseUint(m[1], 10, 64)
	}
	contamination := d.Contamination
	if m := reContamination.FindStringSubmatch(h); m != nil {
		contamination, _ = strconv.ParseFloat(m[1], 64)
	} else if m := rePercent.FindStringSubmatch(h); m != nil {
		pct, _ := strconv.ParseFloat(m[1], 64)
		contamination = pct / 100
	}
	trees := d.Trees
	if m := reTrees.FindStringSubmatch(h); m != nil {
		trees = countOr(m[1]+m[2], trees)
	}
	sample := d.SampleSize
	if m := reSampleSize.FindStringSubmatch(h); m != nil {
		sample = countOr(m[1], sample)
	}

	rest := h
	for _, re := range []*regexp.Regexp{reOtherMethod, reAnomaly, reThreshold, reSeed, reContamination, rePercent, reTrees, reSampleSize, reAnomalyNoise} {
		rest = re.ReplaceAllString(rest, " ")
	}
	cols, err := in.resolveList(rest)
	if err != nil {
		return nil, err
	}

	if !multi && len(cols) <= 1 {
		if len(cols) == 0 {
			return nil, hint("outlier detection needs a column", "outliers in <column>",
				"multivariate anomalies across <column> and <column>")
		}
		return &Univariate{Column: cols[0], Threshold: threshold}, nil
	}
	if len(cols) == 0 {
		cols = in.schema.OfType(schema.Numeric)
	}
	return &Multivariate{
		Columns:       cols,
		Method:        method,
		Seed:          seed,
		Trees:         trees,
		SampleSize:    sample,
		Contamination: contamination,
	}, nil
}

// fillerWords are dropped from the edges of a column phrase.
var fillerWords = map[string]bool{
	"a": true, "all": true, "among": true, "an": true, "and": true, "any": true,
	"are": true, "between": true, "by": true, "calculate": true, "column": true,
	"columns": true, "compute": true, "data": true, "dataset": true, "display": true,
	"do": true, "does": true, "each": true, "field": true, "fields": true, "find": true,
	"for": true, "from": true, "get": true, "give": true, "have": true, "in": true,
	"is": true, "list": true, "me": true, "of": true, "on": true, "over": true,
	"overall": true, "per": true, "please": true, "print": true, "records": true,
	"rows": true, "see": true, "show": true, "table": true, "tell": true, "the": true,
	"there": true, "to": true, "value": true, "values": true, "we": true, "what": true,
	"what's": true, "whats": true, "which": true, "with": true,
}

// clean trims filler words from both edges of phrase. It stops as soon as
// the remaining phrase names a column exactly, so a column called "value"
// survives.
func (in *matchInput) clean(phrase string) string {
	words := strings.Fields(phrase)
	for i := range words {
		words[i] = strings.Trim(in.unmask(words[i]), "\"'`")
	}
	names := in.normalizedNames()
	isColumn := func(ws []string) bool {
		return names[schema.Normalize(strings.Join(ws, " "))]
	}
	for len(words) > 0 && !isColumn(words) && (words[0] == "" || fillerWords[words[0]]) {
		words = words[1:]
	}
	for len(words) > 0 && !isColumn(words) && (words[len(words)-1] == "" || fillerWords[words[len(words)-1]]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// maskColumns replaces every word of head that names a column exactly
// with a placeholder made of upper-case letters, which no trigger pattern
// matches because head is lower case. Filler words stay as they are, and so
// does a plain word opening the question ("count rows by state" with a
// count column), where it reads as the verb.
func (in *matchInput) maskColumns(head string) (string, map[string]string) {
	names := in.normalizedNames()
	masked := make(map[string]string)
	words := strings.Fields(head)
	opening := true
	for i, w := range words {
		core := strings.TrimRight(strings.TrimLeft(w, "\"'`("), "\"'`),;:)")
		if core == "" || fillerWords[core] {
			continue
		}
		if opening {
			opening = false
			if isPlainWord(core) {
				continue
			}
		}
		if !names[schema.Normalize(core)] {
			continue
		}
		ph := placeholder(len(masked))
		masked[ph] = core
		words[i] = strings.Replace(w, core, ph, 1)
	}
	return strings.Join(words, " "), masked
}

func isPlainWord(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// placeholder returns the n-th column placeholder: \x1aA\x1a, \x1aB\x1a, ...
func placeholder(n int) string {
	var b []byte
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
		if n == 0 {
			break
		}
		n--
	}
	return "\x1a" + string(b) + "\x1a"
}

// unmask restores the column name hidden in word, keeping any punctuation
// around the placeholder.
func (in *matchInput) unmask(word string) string {
	if !strings.Contains(word, "\x1a") {
		return word
	}
	for ph, col := range in.masked {
		word = strings.ReplaceAll(word, ph, col)
	}
	return word
}

func (in *matchInput) normalizedNames() map[string]bool {
	out := make(map[string]bool, in.schema.Len())
	for _, name := range in.schema.Names() {
		out[schema.Normalize(name)] = true
	}
	return out
}

func (in *matchInput) hasYearColumn() bool {
	_, ok := in.yearColumn()
	return ok
}

func (in *matchInput) resolve(phrase string) (string, error) {
	col, err := in.schema.Resolve(phrase)
	if err != nil {
		return "", fromResolveError(err)
	}
	return col, nil
}

func (in *matchInput) resolveRequired(phrase, detail, usage string) (string, error) {
	phrase = in.clean(phrase)
	if phrase == "" {
		return "", hint(detail, usage)
	}
	return in.resolve(phrase)
}

// resolveList splits a phrase such as "a, b and c" and resolves every
// part. An empty phrase yields no columns.
func (in *matchInput) resolveList(phrase string) ([]string, error) {
	var cols []string
	seen := make(map[string]bool)
	for _, part := range reListSep.Split(phrase, -1) {
		part = in.clean(part)
		if part == "" {
			continue
		}
		col, err := in.resolve(part)
		if err != nil {
			return nil, err
		}
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	return cols, nil
}

var reInYear = regexp.MustCompile(`\s+(?:in|during|for)\s+(?:(?:the\s+)?year\s+)?((?:1[89]|2\d)\d\d)$`)

// yearFilters turns a trailing "in 2024" into filters and removes the
// phrase from the question. A year column is compared for equality; a
// date column, or a year column holding dates, is bounded to the calendar
// year.
func (in *matchInput) yearFilters() ([]Predicate, error) {
	m := reInYear.FindStringSubmatchIndex(in.head)
	if m == nil {
		return nil, nil
	}
	year := in.head[m[2]:m[3]]

	col, ok := in.yearColumn()
	if !ok && in.cfg.dateColumn != "" {
		name, err := in.resolve(in.cfg.dateColumn)
		if err != nil {
			return nil, err
		}
		col, ok = in.schema.Lookup(name)
	}
	if !ok {
		return nil, hint("\"in "+year+"\" needs a year column or a date column",
			"<question> where <date column> >= "+year+"-01-01")
	}

	in.head = strings.TrimSpace(in.head[:m[0]])
	in.raw = strings.TrimSpace(reInYear.ReplaceAllString(in.raw, ""))

	if col.Type != schema.Datetime {
		return []Predicate{{Column: col.Name, Op: OpEq, Value: Literal{Raw: year}}}, nil
	}
	next, _ := strconv.Atoi(year)
	return []Predicate{
		{Column: col.Name, Op: OpGe, Value: Literal{Raw: year + "-01-01"}},
		{Column: col.Name, Op: OpLt, Value: Literal{Raw: strconv.Itoa(next+1) + "-01-01"}},
	}, nil
}

func (in *matchInput) yearColumn() (schema.Column, bool) {
	for _, c := range in.schema.Columns() {
		if isYearWord(schema.Normalize(c.Name)) {
			return c, true
		}
	}
	return schema.Column{}, false
}

func isYearWord(s string) bool {
	return s == "year" || s == "years"
}

// countOr parses a count, falling back to def when s is empty.
func countOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func hint(detail string, usage ...string) *Error {
	return &Error{Kind: NoMatch, Detail: detail, Alternatives: usage}
}

// intentVocabulary holds trigger words used to suggest intents for
// questions that matched nothing.
var intentVocabulary = map[Intent][]string{
	IntentMeta:         {"shape", "columns", "dtypes", "describe", "head", "tail", "missing", "duplicates"},
	IntentDistribution: {"unique", "distinct", "distribution", "frequency", "counts"},
	IntentAggregate:    {"sum", "total", "average", "mean", "median", "minimum", "maximum", "count"},
	IntentTrend:        {"trend", "yearly", "annual"},
	IntentTopN:         {"top", "largest", "highest", "bottom", "smallest", "lowest", "rows"},
	IntentCorrelation:  {"correlation", "correlations", "correlate"},
	IntentAnomaly:      {"outliers", "anomalies", "anomaly", "multivariate"},
}

var intentExample = map[Intent]string{
	IntentMeta:         "meta: shape | columns | describe | head 5 | missing values | duplicates",
	IntentDistribution: "distribution: value counts of <column>",
	IntentAggregate:    "aggregate: sum <column> by <column>",
	IntentTrend:        "trend: trend of <column>",
	IntentTopN:         "top-n: top 10 rows by <column>",
	IntentCorrelation:  "correlation: correlations",
	IntentAnomaly:      "anomaly: outliers in <column>",
}

// intentExamples returns example phrasings for the given intents in
// priority order, or for all intents when none are given.
func intentExamples(intents map[Intent]bool) []string {
	var out []string
	for _, intent := range IntentOrder {
		if len(intents) == 0 || intents[intent] {
			out = append(out, intentExample[intent])
		}
	}
	return out
}

// noIntent builds the NoMatch diagnostic for text no matcher accepted,
// naming the intents whose trigger words are close to words in the text.
func noIntent(head string) *Error {
	near := make(map[Intent]bool)
	words := strings.Fields(head)
	for intent, vocab := range intentVocabulary {
		for _, w := range words {
			for _, v := range vocab {
				limit := 1
				if len(v) > 5 {
					limit = 2
				}
				if levenshtein.Distance(w, v, nil) <= limit {
					near[intent] = true
				}
			}
		}
	}
	return &Error{Kind: NoMatch, Token: head, Detail: "no known question type matches " + quote(head), Alternatives: intentExamples(near)}
}
