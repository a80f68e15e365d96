package scorer

import "github.com/theodags/mantic/internal/types"

// dirWeight pairs a directory-prefix/segment matcher with a weight in
// [0,1] (spec §4.4). Monorepo-friendly names (packages/, apps/,
// features/) carry non-trivial weight under backend, since they house
// whole services rather than a single concern.
type dirWeight struct {
	prefix string
	weight float64
}

// directoryWeights is a category -> directory-weight table. Weighted
// prefixes are matched either at the start of the path or as an interior
// path segment; multiple matches accumulate (spec §4.4).
var directoryWeights = map[types.IntentCategory][]dirWeight{
	types.CategoryUI: {
		{"components/", 1.0},
		{"ui/", 0.9},
		{"views/", 0.8},
		{"pages/", 0.7},
		{"screens/", 0.7},
		{"widgets/", 0.6},
	},
	types.CategoryAuth: {
		{"auth/", 1.0},
		{"authentication/", 1.0},
		{"session/", 0.7},
		{"security/", 0.6},
		{"iam/", 0.6},
	},
	types.CategoryStyling: {
		{"styles/", 1.0},
		{"theme/", 0.9},
		{"css/", 0.8},
		{"design/", 0.5},
	},
	types.CategoryPerformance: {
		{"cache/", 0.9},
		{"perf/", 0.9},
		{"workers/", 0.6},
		{"jobs/", 0.5},
	},
	types.CategoryBackend: {
		{"api/", 1.0},
		{"server/", 0.9},
		{"services/", 0.9},
		{"controllers/", 0.8},
		{"routes/", 0.8},
		{"handlers/", 0.8},
		{"repositories/", 0.7},
		{"db/", 0.6},
		{"database/", 0.6},
		{"packages/", 0.5},
		{"apps/", 0.5},
		{"features/", 0.5},
	},
	types.CategoryTesting: {
		{"test/", 1.0},
		{"tests/", 1.0},
		{"__tests__/", 1.0},
		{"e2e/", 0.8},
		{"spec/", 0.8},
	},
	types.CategoryConfig: {
		{"config/", 1.0},
		{"configs/", 1.0},
		{"settings/", 0.7},
		{".github/", 0.4},
	},
}

// extensionWeight is the multiplicative per-extension weight applied in
// stage 2 of the structural scorer (spec §4.4).
func extensionWeight(path string) float64 {
	ext := lowerExt(path)
	switch ext {
	case ".ts", ".tsx":
		return 1.0
	case ".js", ".jsx":
		return 0.9
	case ".py", ".go", ".rs":
		return 1.0
	case ".md", ".mdx":
		return 0.05
	case ".yml", ".yaml":
		return 0.8
	case "":
		if isImportantNoExtFile(path) {
			return 1.0
		}
		return 0.5
	default:
		return 0.5
	}
}

var importantNoExtBasenames = map[string]bool{
	"Dockerfile": true, "Makefile": true, "Rakefile": true,
	"Procfile": true, "Gemfile": true, "Vagrantfile": true,
}

func isImportantNoExtFile(path string) bool {
	return importantNoExtBasenames[baseOf(path)]
}

// binaryAssetExtensions are eliminated in stage 1 of the structural
// scorer (spec §4.4).
var binaryAssetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".webp": true, ".bmp": true, ".svg": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".map": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".7z": true,
	".mp4": true, ".mp3": true, ".wav": true, ".mov": true, ".avi": true,
}

var lockOrLogBasenames = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"Cargo.lock": true, "go.sum": true, "composer.lock": true,
	"Gemfile.lock": true, "poetry.lock": true,
}

func isStructurallyEliminated(path string) bool {
	base := baseOf(path)
	if lockOrLogBasenames[base] {
		return true
	}
	ext := lowerExt(path)
	if binaryAssetExtensions[ext] {
		return true
	}
	if ext == ".log" {
		return true
	}
	return false
}
