package intent

import (
	"regexp"

	"github.com/theodags/mantic/internal/types"
)

// categoryPattern pairs an intent category with the regex used to count
// matching query tokens (spec §4.2). general is deliberately excluded;
// it is the fallback when no category matches.
type categoryPattern struct {
	category types.IntentCategory
	pattern  *regexp.Regexp
}

var categoryPatterns = []categoryPattern{
	{types.CategoryUI, regexp.MustCompile(`(?i)^(ui|component|button|modal|dialog|form|layout|page|view|render|screen|widget|menu|nav(igation)?|dropdown|tooltip|tab|accordion|carousel|icon)$`)},
	{types.CategoryAuth, regexp.MustCompile(`(?i)^(auth(entication|orization)?|login|logout|signin|signup|session|token|jwt|oauth|permission|role|credential|password)$`)},
	{types.CategoryStyling, regexp.MustCompile(`(?i)^(style|css|scss|sass|theme|color|layout|responsive|design|animation|transition|tailwind|class(name)?)$`)},
	{types.CategoryPerformance, regexp.MustCompile(`(?i)^(performance|perf|slow|speed|optimi[sz]e|latency|cache|memory|leak|bottleneck|throughput|benchmark)$`)},
	{types.CategoryBackend, regexp.MustCompile(`(?i)^(api|server|backend|database|db|query|endpoint|route|controller|service|repository|middleware|handler|schema|migration)$`)},
	{types.CategoryTesting, regexp.MustCompile(`(?i)^(test|spec|mock|stub|fixture|assert|expect|coverage|e2e|unit|integration)$`)},
	{types.CategoryConfig, regexp.MustCompile(`(?i)^(config(uration)?|env(ironment)?|setting|flag|option|yaml|toml|dotenv)$`)},
}

// subPatterns are tested within the winning category only, first match
// wins (spec §4.2).
var subPatterns = map[types.IntentCategory][]struct {
	name    string
	pattern *regexp.Regexp
}{
	types.CategoryAuth: {
		{"oauth", regexp.MustCompile(`(?i)oauth`)},
		{"session", regexp.MustCompile(`(?i)session`)},
		{"jwt", regexp.MustCompile(`(?i)jwt|token`)},
	},
	types.CategoryUI: {
		{"form", regexp.MustCompile(`(?i)form`)},
		{"modal", regexp.MustCompile(`(?i)modal|dialog`)},
		{"navigation", regexp.MustCompile(`(?i)nav(igation)?|menu`)},
	},
	types.CategoryBackend: {
		{"database", regexp.MustCompile(`(?i)database|db|query|schema|migration`)},
		{"routing", regexp.MustCompile(`(?i)route|endpoint|controller`)},
	},
	types.CategoryPerformance: {
		{"memory", regexp.MustCompile(`(?i)memory|leak`)},
		{"caching", regexp.MustCompile(`(?i)cache`)},
	},
}
