// Package intent implements the Intent Analyser (spec §4.2): it turns a
// free-form query into a category tag, ranked keywords, a confidence
// score, an optional sub-category, and extracted entities.
//
// Stemming is delegated to github.com/surgebase/porter2 (grounded on the
// teacher's internal/semantic/stemmer.go), restricted to the spec's
// "trivial suffix stripping" contract by only accepting a stem that
// differs from the input by one of the enumerated mechanical suffixes.
package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/surgebase/porter2"

	"github.com/theodags/mantic/internal/types"
)

var (
	kebabTokenRe  = regexp.MustCompile(`[a-z]+-[a-z0-9-]+`)
	pascalTokenRe = regexp.MustCompile(`[A-Z][a-zA-Z0-9]+`)
	camelTokenRe  = regexp.MustCompile(`\b[a-z]+[A-Z][a-zA-Z0-9]*\b`)
	filenameRe    = regexp.MustCompile(`\b[\w-]+\.(go|ts|tsx|js|jsx|py|rb|java|cs|cpp|c|h|hpp|rs|md|mdx|json|yaml|yml|toml|css|scss|less|html|vue|svelte)\b`)
	errorTokenRe  = regexp.MustCompile(`\b([A-Z][a-zA-Z]*Error|E[A-Z]{2,}|[1-5]\d{2})\b`)
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true,
	"from": true, "is": true, "are": true, "was": true, "were": true,
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"what": true, "where": true, "when": true, "why": true, "how": true,
	"who": true, "which": true, "i": true, "we": true, "you": true,
	"fix": true, "add": true, "remove": true, "update": true, "create": true,
	"delete": true, "make": true, "find": true, "show": true, "get": true,
	"and": true, "or": true, "not": true, "do": true, "does": true, "be": true,
}

var mechanicalSuffixes = []string{"ing", "ed", "es", "s"}

// componentSuffixes/classSuffixes partition PascalCase identifiers for
// entity extraction (spec §4.2).
var componentSuffixes = []string{"Button", "Form", "Modal", "Dialog", "Card", "Panel", "View", "Page", "Layout", "Widget", "Menu", "List", "Item", "Icon", "Input", "Field"}
var classSuffixes = []string{"Service", "Controller", "Repository", "Manager", "Provider", "Handler", "Factory", "Builder", "Client", "Store", "Adapter", "Validator", "Middleware"}

// camelAllowList excludes common host/API method names from the Functions
// entity bucket (spec §4.2).
var camelAllowList = map[string]bool{
	"map": true, "filter": true, "reduce": true, "forEach": true,
	"then": true, "catch": true, "push": true, "pop": true, "slice": true,
	"splice": true, "toString": true, "valueOf": true, "hasOwnProperty": true,
	"addEventListener": true, "removeEventListener": true, "setTimeout": true,
	"setInterval": true, "querySelector": true, "getElementById": true,
}

// Analyze transforms a free-form query into an IntentAnalysis (spec §4.2).
func Analyze(query string) types.IntentAnalysis {
	keywords := extractKeywords(query)
	category, confidence, _ := classify(keywords)
	sub := classifySubCategory(category, keywords)
	entities := extractEntities(query)

	return types.IntentAnalysis{
		Category:    category,
		SubCategory: sub,
		Keywords:    keywords,
		Confidence:  confidence,
		Entities:    entities,
		RawQuery:    query,
	}
}

// extractKeywords implements spec §4.2's keyword-extraction contract:
// preserve kebab-case and PascalCase identifiers first, then lowercase,
// tokenize, stem, drop stop-words and duplicates (first-seen order wins).
func extractKeywords(query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var preserved []string
	var spans []textSpan

	for _, m := range pascalTokenRe.FindAllStringIndex(query, -1) {
		preserved = append(preserved, query[m[0]:m[1]])
		spans = append(spans, textSpan{m[0], m[1]})
	}
	for _, m := range kebabTokenRe.FindAllStringIndex(query, -1) {
		if overlapsAny(spans, m[0], m[1]) {
			continue
		}
		preserved = append(preserved, query[m[0]:m[1]])
		spans = append(spans, textSpan{m[0], m[1]})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	// rebuild preserved list in document order to match spec's
	// "filenames preserved before generic terms" ordering intent.
	preserved = preserved[:0]
	for _, sp := range spans {
		preserved = append(preserved, query[sp.start:sp.end])
	}

	remaining := maskSpans(query, spans)
	remaining = strings.ToLower(remaining)

	var generic []string
	for _, tok := range tokenizeKeepHyphens(remaining) {
		tok = stripMechanicalSuffix(tok)
		if tok == "" || stopWords[tok] {
			continue
		}
		generic = append(generic, tok)
	}

	seen := make(map[string]bool)
	var out []string
	for _, tok := range append(append([]string{}, preserved...), generic...) {
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tok)
	}
	return out
}

type textSpan struct{ start, end int }

func overlapsAny(spans []textSpan, start, end int) bool {
	for _, sp := range spans {
		if start < sp.end && end > sp.start {
			return true
		}
	}
	return false
}

func maskSpans(s string, spans []textSpan) string {
	b := []byte(s)
	for _, sp := range spans {
		for i := sp.start; i < sp.end && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

func tokenizeKeepHyphens(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// stripMechanicalSuffix applies porter2 stemming but only accepts the
// result when it corresponds to one of the spec's enumerated mechanical
// suffixes, so "authentication" is kept whole rather than reduced to the
// full Porter stem "authent".
func stripMechanicalSuffix(word string) string {
	if len(word) < 4 {
		return word
	}
	stem := porter2.Stem(word)
	if stem == word || len(stem) >= len(word) {
		return word
	}
	suffix := word[len(stem):]
	for _, s := range mechanicalSuffixes {
		if suffix == s {
			return stem
		}
	}
	return word
}

// classify implements spec §4.2's category-scoring contract.
func classify(keywords []string) (types.IntentCategory, float64, int) {
	counts := make(map[types.IntentCategory]int)
	longestMatch := make(map[types.IntentCategory]int)

	lower := make([]string, len(keywords))
	for i, k := range keywords {
		lower[i] = strings.ToLower(k)
	}

	for _, cp := range categoryPatterns {
		for _, kw := range lower {
			if cp.pattern.MatchString(kw) {
				counts[cp.category]++
				if len(kw) > longestMatch[cp.category] {
					longestMatch[cp.category] = len(kw)
				}
			}
		}
	}

	var winner types.IntentCategory = types.CategoryGeneral
	best := 0
	bestLongest := 0
	for _, cp := range categoryPatterns {
		c := counts[cp.category]
		if c == 0 {
			continue
		}
		if c > best || (c == best && longestMatch[cp.category] > bestLongest) {
			best = c
			bestLongest = longestMatch[cp.category]
			winner = cp.category
		}
	}

	if best == 0 {
		return types.CategoryGeneral, 0, 0
	}

	base := 0.75
	switch {
	case best >= 3:
		base = 0.95
	case best == 2:
		base = 0.85
	}

	others := 0
	for _, cp := range categoryPatterns {
		if cp.category == winner {
			continue
		}
		if counts[cp.category] > 0 {
			others++
		}
	}
	switch {
	case others >= 2:
		base *= 0.70
	case others == 1:
		base *= 0.85
	}

	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}
	return winner, base, best
}

func classifySubCategory(category types.IntentCategory, keywords []string) string {
	patterns, ok := subPatterns[category]
	if !ok {
		return ""
	}
	for _, kw := range keywords {
		low := strings.ToLower(kw)
		for _, sp := range patterns {
			if sp.pattern.MatchString(low) {
				return sp.name
			}
		}
	}
	return ""
}

// extractEntities implements spec §4.2's entity-extraction contract.
func extractEntities(query string) types.EntityBucket {
	var bucket types.EntityBucket

	bucket.Files = dedupe(filenameRe.FindAllString(query, -1))

	pascal := pascalTokenRe.FindAllString(query, -1)
	var components, classes []string
	for _, p := range pascal {
		switch {
		case hasAnyPrefixOrSuffix(p, componentSuffixes):
			components = append(components, p)
		case hasAnySuffix(p, classSuffixes):
			classes = append(classes, p)
		}
	}
	bucket.Components = dedupe(components)
	bucket.Classes = dedupe(classes)

	camel := camelTokenRe.FindAllString(query, -1)
	var functions []string
	for _, c := range camel {
		if camelAllowList[c] {
			continue
		}
		functions = append(functions, c)
	}
	bucket.Functions = dedupe(functions)

	bucket.Errors = dedupe(errorTokenRe.FindAllString(query, -1))

	return bucket
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// hasAnyPrefixOrSuffix matches the component identifier list against
// either end of the token (spec §4.2 "by suffix/prefix list"), so e.g.
// both "LoginButton" and "ButtonGroup" are recognized as components.
func hasAnyPrefixOrSuffix(s string, affixes []string) bool {
	for _, a := range affixes {
		if strings.HasSuffix(s, a) || strings.HasPrefix(s, a) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
