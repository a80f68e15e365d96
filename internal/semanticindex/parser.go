package semanticindex

import (
	"regexp"
	"strings"

	"github.com/theodags/mantic/internal/types"
)

// supportedExt maps a file extension to the Language it is parsed as
// (spec §4.5: {typescript, javascript, tsx, jsx}).
var supportedExt = map[string]types.Language{
	".ts":  types.LangTypeScript,
	".tsx": types.LangTSX,
	".js":  types.LangJavaScript,
	".jsx": types.LangJSX,
	".mjs": types.LangJavaScript,
	".cjs": types.LangJavaScript,
}

// LanguageFor returns the Language supported by semantic parsing for
// ext, or LangUnknown if unsupported.
func LanguageFor(ext string) types.Language {
	if lang, ok := supportedExt[ext]; ok {
		return lang
	}
	return types.LangUnknown
}

var (
	namedExportFuncRe   = regexp.MustCompile(`(?m)^\s*export\s+(?:async\s+)?function\s+([A-Za-z_$][\w$]*)`)
	namedExportClassRe  = regexp.MustCompile(`(?m)^\s*export\s+class\s+([A-Za-z_$][\w$]*)`)
	namedExportConstRe  = regexp.MustCompile(`(?m)^\s*export\s+(?:const|let|var)\s+([A-Za-z_$][\w$]*)`)
	namedExportTypeRe   = regexp.MustCompile(`(?m)^\s*export\s+type\s+([A-Za-z_$][\w$]*)`)
	namedExportIfaceRe  = regexp.MustCompile(`(?m)^\s*export\s+interface\s+([A-Za-z_$][\w$]*)`)
	defaultExportRe     = regexp.MustCompile(`(?m)^\s*export\s+default\s+(?:function\s+([A-Za-z_$][\w$]*)|class\s+([A-Za-z_$][\w$]*)|([A-Za-z_$][\w$]*))?`)
	reExportGroupRe     = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]+)\}`)

	importDefaultRe   = regexp.MustCompile(`import\s+([A-Za-z_$][\w$]*)\s+from\s+['"]([^'"]+)['"]`)
	importNamedRe     = regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]([^'"]+)['"]`)
	importNamespaceRe = regexp.MustCompile(`import\s+\*\s+as\s+([A-Za-z_$][\w$]*)\s+from\s+['"]([^'"]+)['"]`)
	importSideEffectRe = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)
	importDynamicRe   = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	requireDestructRe = regexp.MustCompile(`(?:const|let|var)\s*\{([^}]+)\}\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)

	funcDeclRe      = regexp.MustCompile(`(?m)^\s*(export\s+)?(async\s+)?function\s+([A-Za-z_$][\w$]*)`)
	arrowComponentRe = regexp.MustCompile(`(?m)^\s*(export\s+(?:default\s+)?)?const\s+([A-Z][\w$]*)\s*(?::[^=]+)?=\s*(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)
	funcComponentRe = regexp.MustCompile(`(?m)^\s*(export\s+(?:default\s+)?)?function\s+([A-Z][\w$]*)\s*\(`)
	classComponentRe = regexp.MustCompile(`(?m)^\s*(export\s+(?:default\s+)?)?class\s+([A-Z][\w$]*)\s+extends\s+(?:React\.)?(?:Component|PureComponent)`)
	classDeclRe     = regexp.MustCompile(`(?m)^\s*(export\s+)?class\s+([A-Za-z_$][\w$]*)`)
	typeDeclRe      = regexp.MustCompile(`(?m)^\s*(export\s+)?(?:type|interface)\s+([A-Za-z_$][\w$]*)`)
)

// keywordPatterns is the fixed pattern list for the keyword set (spec
// §4.5); extractKeywords matches it against the whole source, then
// against JSX text content and string literals.
var keywordPatterns = []string{
	"login", "logout", "auth", "session", "token", "password",
	"form", "modal", "dialog", "button", "nav", "menu",
	"cache", "performance", "optimize", "async", "await",
	"api", "endpoint", "route", "query", "database",
	"test", "mock", "config", "setting",
}

var stringLiteralRe = regexp.MustCompile(`['"]([a-zA-Z][a-zA-Z0-9_ -]{2,40})['"]`)
var jsxTextRe = regexp.MustCompile(`>([^<>{}\n]{3,80})<`)

// Parse applies the best-effort regex extraction described in spec §4.5
// to a single file's content. Parse failures never abort a scan; they
// are recorded via ParseError instead.
func Parse(path string, content []byte, lang types.Language) types.FileEntry {
	entry := types.FileEntry{Path: path, Language: lang}

	defer func() {
		if r := recover(); r != nil {
			entry.ParseError = "panic during parse"
		}
	}()

	src := string(content)

	entry.Exports = extractExports(src)
	entry.Imports = extractImports(src)
	entry.Components = extractComponents(src)
	entry.Functions = extractFunctions(src)
	entry.Classes = extractClasses(src)
	entry.Types = extractTypes(src)
	entry.Keywords = extractKeywords(src)

	return entry
}

func extractExports(src string) []types.ExportRef {
	var out []types.ExportRef
	add := func(name string, kind types.ExportKind, idx int) {
		if name == "" {
			return
		}
		out = append(out, types.ExportRef{Name: name, Kind: kind, Line: lineOf(src, idx)})
	}

	for _, m := range namedExportFuncRe.FindAllStringSubmatchIndex(src, -1) {
		add(src[m[2]:m[3]], types.ExportFunction, m[0])
	}
	for _, m := range namedExportClassRe.FindAllStringSubmatchIndex(src, -1) {
		add(src[m[2]:m[3]], types.ExportClass, m[0])
	}
	for _, m := range namedExportConstRe.FindAllStringSubmatchIndex(src, -1) {
		add(src[m[2]:m[3]], types.ExportConst, m[0])
	}
	for _, m := range namedExportTypeRe.FindAllStringSubmatchIndex(src, -1) {
		add(src[m[2]:m[3]], types.ExportType, m[0])
	}
	for _, m := range namedExportIfaceRe.FindAllStringSubmatchIndex(src, -1) {
		add(src[m[2]:m[3]], types.ExportInterface, m[0])
	}
	for _, m := range defaultExportRe.FindAllStringSubmatchIndex(src, -1) {
		name := ""
		for _, g := range [][2]int{{m[2], m[3]}, {m[4], m[5]}, {m[6], m[7]}} {
			if g[0] >= 0 {
				name = src[g[0]:g[1]]
				break
			}
		}
		add(name, types.ExportDefault, m[0])
	}
	for _, m := range reExportGroupRe.FindAllStringSubmatchIndex(src, -1) {
		names := strings.Split(src[m[2]:m[3]], ",")
		for _, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if idx := strings.LastIndex(n, " as "); idx >= 0 {
				n = strings.TrimSpace(n[idx+4:])
			}
			add(n, types.ExportVariable, m[0])
		}
	}
	return out
}

func extractImports(src string) []types.ImportRef {
	var out []types.ImportRef

	for _, m := range importDefaultRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{
			Source: src[m[4]:m[5]], Names: []string{src[m[2]:m[3]]},
			IsDefault: true, Line: lineOf(src, m[0]),
		})
	}
	for _, m := range importNamedRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{
			Source: src[m[4]:m[5]], Names: splitNames(src[m[2]:m[3]]),
			Line: lineOf(src, m[0]),
		})
	}
	for _, m := range importNamespaceRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{
			Source: src[m[4]:m[5]], Names: []string{src[m[2]:m[3]]},
			Line: lineOf(src, m[0]),
		})
	}
	for _, m := range importSideEffectRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{Source: src[m[2]:m[3]], Line: lineOf(src, m[0])})
	}
	for _, m := range importDynamicRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{
			Source: src[m[2]:m[3]], IsDynamic: true, Line: lineOf(src, m[0]),
		})
	}
	for _, m := range requireDestructRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ImportRef{
			Source: src[m[4]:m[5]], Names: splitNames(src[m[2]:m[3]]),
			Line: lineOf(src, m[0]),
		})
	}
	return out
}

func extractComponents(src string) []types.ComponentRef {
	var out []types.ComponentRef
	for _, m := range arrowComponentRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ComponentRef{Name: src[m[4]:m[5]], Kind: "arrow", Line: lineOf(src, m[0])})
	}
	for _, m := range funcComponentRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ComponentRef{Name: src[m[4]:m[5]], Kind: "function", Line: lineOf(src, m[0])})
	}
	for _, m := range classComponentRe.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, types.ComponentRef{Name: src[m[4]:m[5]], Kind: "class", Line: lineOf(src, m[0])})
	}
	return out
}

func extractFunctions(src string) []types.FunctionRef {
	var out []types.FunctionRef
	for _, m := range funcDeclRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[m[6]:m[7]]
		if name == "" || (name[0] >= 'A' && name[0] <= 'Z') {
			// PascalCase function declarations are counted as components,
			// not plain functions (spec §4.5 entity buckets).
			if isComponentLike(src, m[0]) {
				continue
			}
		}
		out = append(out, types.FunctionRef{
			Name:     name,
			Async:    m[4] >= 0,
			Exported: m[2] >= 0,
			Line:     lineOf(src, m[0]),
		})
	}
	return out
}

func isComponentLike(src string, idx int) bool {
	for _, m := range funcComponentRe.FindAllStringIndex(src, -1) {
		if m[0] == idx {
			return true
		}
	}
	return false
}

func extractClasses(src string) []string {
	var out []string
	for _, m := range classDeclRe.FindAllStringSubmatch(src, -1) {
		out = append(out, m[2])
	}
	return dedupeStrings(out)
}

func extractTypes(src string) []string {
	var out []string
	for _, m := range typeDeclRe.FindAllStringSubmatch(src, -1) {
		out = append(out, m[2])
	}
	return dedupeStrings(out)
}

func extractKeywords(src string) []string {
	seen := make(map[string]bool)
	var out []string
	lowerSrc := strings.ToLower(src)

	consider := func(text string) {
		low := strings.ToLower(text)
		for _, kw := range keywordPatterns {
			if strings.Contains(low, kw) && !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}

	consider(lowerSrc)
	for _, m := range jsxTextRe.FindAllStringSubmatch(src, -1) {
		consider(m[1])
	}
	for _, m := range stringLiteralRe.FindAllStringSubmatch(src, -1) {
		consider(m[1])
	}
	return out
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if idx := strings.LastIndex(p, " as "); idx >= 0 {
			p = strings.TrimSpace(p[idx+4:])
		}
		out = append(out, p)
	}
	return out
}

func lineOf(src string, byteIdx int) int {
	if byteIdx < 0 || byteIdx > len(src) {
		return 0
	}
	return strings.Count(src[:byteIdx], "\n") + 1
}

func dedupeStrings(in []string) []string {
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
