// Package extract parses natural-language questions into structured entities:
// proper-noun program names, date expressions, numeric comparisons, and
// temporal-intent tags. Extraction is a pure function over the question text;
// absence of a pattern yields empty fields, never an error.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scrypster/schemaground/pkg/types"
)

var (
	quotedRe = regexp.MustCompile(`["']([^"']+)["']`)

	// Proper-noun-like spans following possessive/prepositional cues.
	programCueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:for program|program named|named|called)\s+([a-z][a-z ]*?)(?:\s+program\b|[?.,!]|$)`),
		regexp.MustCompile(`(?:for|about)\s+(?:the\s+)?([a-z][a-z ]*?)\s+program\b`),
		regexp.MustCompile(`([a-z][a-z ]+?)\s+program\b`),
	}

	// Relational date cues followed by a year or ISO date.
	cueDateRe = regexp.MustCompile(`\b(after|before|since|during|in)\s+((?:19|20)\d{2}(?:-\d{2}-\d{2})?)\b`)

	// Month-name dates ("march 2024").
	monthDateRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+((?:19|20)\d{2})\b`)

	// Bare absolute dates without a relational cue.
	bareDateRe = regexp.MustCompile(`\b(?:19|20)\d{2}(?:-\d{2}-\d{2})?\b`)

	// Relative recency cues.
	recentRe = regexp.MustCompile(`\b(recently|last\s+(?:day|week|month|quarter|year))\b`)

	numericRes = []struct {
		re         *regexp.Regexp
		comparator types.Comparator
	}{
		{regexp.MustCompile(`\b(?:more than|greater than|over|above|higher than)\s+(\d+(?:\.\d+)?)\s*([a-z]*)`), types.CompareGT},
		{regexp.MustCompile(`\bat least\s+(\d+(?:\.\d+)?)\s*([a-z]*)`), types.CompareGTE},
		{regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s+or more\b`), types.CompareGTE},
		{regexp.MustCompile(`\b(?:less than|fewer than|under|below|lower than)\s+(\d+(?:\.\d+)?)\s*([a-z]*)`), types.CompareLT},
		{regexp.MustCompile(`\bat most\s+(\d+(?:\.\d+)?)\s*([a-z]*)`), types.CompareLTE},
		{regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s+or (?:less|fewer)\b`), types.CompareLTE},
		{regexp.MustCompile(`\b(?:exactly|equal to)\s+(\d+(?:\.\d+)?)\s*([a-z]*)`), types.CompareEQ},
	}

	temporalCues = []struct {
		re  *regexp.Regexp
		tag types.TemporalType
	}{
		{regexp.MustCompile(`\b(?:created|creation|added)\b`), types.TemporalCreated},
		{regexp.MustCompile(`\b(?:updated|changed|modified|last used)\b`), types.TemporalUpdated},
		{regexp.MustCompile(`\b(?:executed|ran|run)\b`), types.TemporalExecuted},
	}

	programStopWords = map[string]bool{
		"the": true, "a": true, "an": true, "for": true, "with": true,
		"this": true, "that": true, "each": true, "every": true,
		"specific": true, "any": true, "all": true, "what": true,
		"which": true, "how": true, "many": true, "is": true, "are": true,
		"of": true, "in": true, "show": true, "list": true, "me": true,
		"and": true, "or": true,
	}

	months = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}
)

// Extract parses a question into structured entities. It never fails: when a
// pattern is absent the corresponding field is simply empty.
func Extract(question string) types.Entities {
	lower := strings.ToLower(question)

	return types.Entities{
		ProgramName:    extractProgramName(question, lower),
		Dates:          extractDates(lower),
		NumericFilters: extractNumericFilters(lower),
		TemporalType:   extractTemporalType(lower),
	}
}

// extractProgramName prefers quoted substrings, then heuristic cue patterns
// tried in order of reliability. Within a source, the longest valid candidate
// wins; at most one name is returned.
func extractProgramName(question, lower string) string {
	var best string

	consider := func(name string) {
		name = cleanProgramName(name)
		if len(name) > len(best) {
			best = name
		}
	}

	for _, m := range quotedRe.FindAllStringSubmatch(question, -1) {
		consider(strings.ToLower(m[1]))
	}
	if best != "" {
		return best
	}

	for _, re := range programCueRes {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			consider(m[1])
		}
		if best != "" {
			return best
		}
	}
	return best
}

// cleanProgramName strips leading stop words from a candidate span and
// rejects spans that are too short, too long, or that still contain a stop
// word ("success count for each" is question residue, not a name).
func cleanProgramName(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	for len(fields) > 0 && programStopWords[fields[0]] {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 4 {
		return ""
	}
	for _, f := range fields {
		if programStopWords[f] {
			return ""
		}
	}
	cleaned := strings.Join(fields, " ")
	if len(cleaned) <= 2 {
		return ""
	}
	return cleaned
}

type dateMatch struct {
	pos    int
	end    int
	filter types.DateFilter
}

// extractDates recognizes absolute patterns (years, month-year, ISO dates)
// and relative cues, producing one entry per cue in question order.
func extractDates(lower string) []types.DateFilter {
	var matches []dateMatch
	consumed := make([]bool, len(lower))

	claim := func(start, end int) {
		for i := start; i < end && i < len(consumed); i++ {
			consumed[i] = true
		}
	}
	free := func(start, end int) bool {
		for i := start; i < end && i < len(consumed); i++ {
			if consumed[i] {
				return false
			}
		}
		return true
	}

	// Relational cue + date first so the date span is not double counted.
	for _, idx := range cueDateRe.FindAllStringSubmatchIndex(lower, -1) {
		cue := lower[idx[2]:idx[3]]
		raw := lower[idx[4]:idx[5]]
		matches = append(matches, dateMatch{
			pos: idx[0],
			end: idx[1],
			filter: types.DateFilter{
				Raw:      lower[idx[0]:idx[1]],
				Relation: relationForCue(cue),
				Resolved: resolveDate(raw),
			},
		})
		claim(idx[0], idx[1])
	}

	for _, idx := range monthDateRe.FindAllStringSubmatchIndex(lower, -1) {
		if !free(idx[0], idx[1]) {
			continue
		}
		month := lower[idx[2]:idx[3]]
		year := lower[idx[4]:idx[5]]
		matches = append(matches, dateMatch{
			pos: idx[0],
			end: idx[1],
			filter: types.DateFilter{
				Raw:      lower[idx[0]:idx[1]],
				Relation: types.RelationDuring,
				Resolved: resolveMonth(month, year),
			},
		})
		claim(idx[0], idx[1])
	}

	for _, idx := range bareDateRe.FindAllStringIndex(lower, -1) {
		if !free(idx[0], idx[1]) {
			continue
		}
		raw := lower[idx[0]:idx[1]]
		matches = append(matches, dateMatch{
			pos: idx[0],
			end: idx[1],
			filter: types.DateFilter{
				Raw:      raw,
				Relation: types.RelationDuring,
				Resolved: resolveDate(raw),
			},
		})
		claim(idx[0], idx[1])
	}

	for _, idx := range recentRe.FindAllStringIndex(lower, -1) {
		if !free(idx[0], idx[1]) {
			continue
		}
		matches = append(matches, dateMatch{
			pos: idx[0],
			end: idx[1],
			filter: types.DateFilter{
				Raw:      lower[idx[0]:idx[1]],
				Relation: types.RelationSince,
			},
		})
		claim(idx[0], idx[1])
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	filters := make([]types.DateFilter, 0, len(matches))
	for _, m := range matches {
		filters = append(filters, m.filter)
	}
	return filters
}

func relationForCue(cue string) types.DateRelation {
	switch cue {
	case "after":
		return types.RelationAfter
	case "before":
		return types.RelationBefore
	case "since":
		return types.RelationSince
	default: // "during", "in"
		return types.RelationDuring
	}
}

// resolveDate parses "2024" or "2024-03-17" into a concrete date.
func resolveDate(raw string) *time.Time {
	if len(raw) == 4 {
		if year, err := strconv.Atoi(raw); err == nil {
			t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t
		}
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

func resolveMonth(month, year string) *time.Time {
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil
	}
	m, ok := months[month]
	if !ok {
		return nil
	}
	t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

type numericMatch struct {
	pos    int
	filter types.NumericFilter
}

// extractNumericFilters recognizes comparator phrases followed by a number,
// producing one entry per match in question order.
func extractNumericFilters(lower string) []types.NumericFilter {
	var matches []numericMatch

	for _, pattern := range numericRes {
		for _, idx := range pattern.re.FindAllStringSubmatchIndex(lower, -1) {
			value, err := strconv.ParseFloat(lower[idx[2]:idx[3]], 64)
			if err != nil {
				continue
			}
			filter := types.NumericFilter{Comparator: pattern.comparator, Value: value}
			// Optional trailing unit word captured by the pattern.
			if len(idx) >= 6 && idx[4] >= 0 {
				if unit := lower[idx[4]:idx[5]]; len(unit) > 2 && !programStopWords[unit] {
					filter.UnitHint = unit
				}
			}
			matches = append(matches, numericMatch{pos: idx[0], filter: filter})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	filters := make([]types.NumericFilter, 0, len(matches))
	for _, m := range matches {
		filters = append(filters, m.filter)
	}
	return filters
}

// extractTemporalType tags the question's timestamp intent. At most one tag
// is set; the cue appearing earliest in the question wins.
func extractTemporalType(lower string) types.TemporalType {
	bestPos := -1
	var best types.TemporalType

	for _, cue := range temporalCues {
		loc := cue.re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		if bestPos == -1 || loc[0] < bestPos {
			bestPos = loc[0]
			best = cue.tag
		}
	}
	return best
}
