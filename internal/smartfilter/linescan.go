package smartfilter

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/theodags/mantic/internal/types"
)

// MaxExcerptFiles is how many top-ranked files get exact-line detection
// (spec §4.6).
const MaxExcerptFiles = 10

// MaxExcerptsPerFile caps the matched-line records per file.
const MaxExcerptsPerFile = 3

// genericStopTerms excludes generic UI terms from primary-keyword
// selection (spec §4.6).
var genericStopTerms = map[string]bool{
	"ui": true, "component": true, "page": true, "view": true,
	"render": true, "form": true, "button": true, "app": true,
}

var filenameLikeRe = regexp.MustCompile(`\.[a-zA-Z0-9]{1,5}$`)

var jsxTextLineRe = regexp.MustCompile(`>[^<>{}]{2,}<`)
var propBearingLineRe = regexp.MustCompile(`\w+\s*=\s*["'{]`)
var stringLiteralLineRe = regexp.MustCompile(`['"][^'"]{3,}['"]`)

// linePriority ranks a candidate line: JSX text content (3) > prop-
// bearing line (2) > string literal (1) > other (0) (spec §4.6).
func linePriority(line string) int {
	switch {
	case jsxTextLineRe.MatchString(line):
		return 3
	case propBearingLineRe.MatchString(line):
		return 2
	case stringLiteralLineRe.MatchString(line):
		return 1
	default:
		return 0
	}
}

// PrimaryKeyword picks the first query keyword that is not a generic UI
// stop-term and does not look like a filename (spec §4.6).
func PrimaryKeyword(keywords []string) string {
	for _, kw := range keywords {
		low := strings.ToLower(kw)
		if genericStopTerms[low] {
			continue
		}
		if filenameLikeRe.MatchString(kw) {
			continue
		}
		return kw
	}
	return ""
}

// AnnotateExcerpts runs exact-line detection over the top MaxExcerptFiles
// entries of files, attaching up to MaxExcerptsPerFile MatchedLine
// records to each via a streaming scan (spec §4.6).
func AnnotateExcerpts(root string, files []types.ScoredFile, keywords []string) {
	keyword := PrimaryKeyword(keywords)
	if keyword == "" {
		return
	}

	limit := MaxExcerptFiles
	if limit > len(files) {
		limit = len(files)
	}

	for i := 0; i < limit; i++ {
		files[i].Excerpts = scanFile(filepath.Join(root, files[i].Path), keyword)
	}
}

type candidateLine struct {
	line     int
	content  string
	priority int
}

func scanFile(fullPath, keyword string) []types.MatchedLine {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	lowerKw := strings.ToLower(keyword)
	var candidates []candidateLine

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !strings.Contains(strings.ToLower(line), lowerKw) {
			continue
		}
		candidates = append(candidates, candidateLine{
			line:     lineNum,
			content:  strings.TrimSpace(line),
			priority: linePriority(line),
		})
	}

	if len(candidates) == 0 {
		return nil
	}

	sortCandidatesByPriority(candidates)

	n := MaxExcerptsPerFile
	if n > len(candidates) {
		n = len(candidates)
	}

	out := make([]types.MatchedLine, n)
	for i := 0; i < n; i++ {
		out[i] = types.MatchedLine{
			Line:           candidates[i].line,
			Content:        candidates[i].content,
			MatchedKeyword: keyword,
		}
	}
	return out
}

func sortCandidatesByPriority(cs []candidateLine) {
	for i := 1; i < len(cs); i++ {
		j := i
		for j > 0 && higherPriority(cs[j], cs[j-1]) {
			cs[j], cs[j-1] = cs[j-1], cs[j]
			j--
		}
	}
}

func higherPriority(a, b candidateLine) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.line < b.line
}
