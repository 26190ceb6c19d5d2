package detect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/theirongolddev/greenlint/internal/model"
)

// Call shapes are case-sensitive. Group 1 is the callee.
var apiPatterns = []*regexp.Regexp{
	// client.chat.completions.create( / model.generate_content(
	regexp.MustCompile(`\b((?:[A-Za-z_$][\w$]*\.)+(?:create|complete|generate|generateContent|generate_content|generateText|invoke|stream|predict|sendMessage|send_message))\s*\(`),
	// requests.post( / axios.get( / session.request(
	regexp.MustCompile(`\b((?:requests|axios|httpx|http|https|aiohttp|session|client)\.(?:get|post|put|patch|delete|request))\s*\(`),
	// fetch("https://...")
	regexp.MustCompile(`\b(fetch)\s*\(\s*` + quote + `(?:https?://|/)`),
}

// Receivers whose .create( is a language builtin, not a remote call.
var builtinReceivers = map[string]bool{
	"Object": true, "Array": true, "Promise": true, "Date": true,
	"Math": true, "JSON": true, "Reflect": true, "document": true,
}

// maxExprLen bounds the call expression kept as the finding identifier.
const maxExprLen = 300

// APIMatcher finds remote-call shapes without evaluating arguments.
type APIMatcher struct{}

func (APIMatcher) Category() model.Category { return model.CategoryAPI }

func (APIMatcher) Detect(src *Source) []model.Finding {
	var out []model.Finding
	seen := make(map[int]bool)
	for _, re := range apiPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(src.Content, -1) {
			sp, ok := submatchSpan(loc)
			if !ok || seen[sp.start] {
				continue
			}
			callee := src.Content[sp.start:sp.end]
			if recv, _, found := strings.Cut(callee, "."); found && builtinReceivers[recv] {
				continue
			}
			seen[sp.start] = true
			out = append(out, src.finding(model.CategoryAPI, sp, callExpression(src.Content, sp.start, loc[1])))
		}
	}
	sortByOffset(out)
	return Dedup(out)
}

// callExpression returns the callee plus its balanced argument list with
// whitespace collapsed. parenFrom is any offset at or before the opening
// parenthesis. Unbalanced calls yield the callee alone.
func callExpression(content string, start, parenFrom int) string {
	open := strings.IndexByte(content[start:], '(')
	if open < 0 {
		return content[start:parenFrom]
	}
	open += start
	callee := strings.TrimSpace(content[start:open])

	depth := 0
	limit := min(len(content), open+maxExprLen)
	var inQuote byte
	for i := open; i < limit; i++ {
		c := content[i]
		switch {
		case inQuote != 0:
			if c == '\\' {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			inQuote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return callee + strings.Join(strings.Fields(content[open:i+1]), " ")
			}
		}
	}
	return callee
}

func sortByOffset(fs []model.Finding) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Offset < fs[j].Offset })
}

// APICalls runs the API-call matcher over content.
func APICalls(content, path string) []model.Finding {
	return APIMatcher{}.Detect(NewSource(path, content))
}
