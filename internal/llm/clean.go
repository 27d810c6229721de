package llm

import (
	"regexp"
	"strings"
)

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	xmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	lineMarkerRe = regexp.MustCompile(`^[\d.\-•*\s]+`)
)

// explanationPrefixes mark lines that are commentary rather than queries.
var explanationPrefixes = []string{
	"Here", "Sure", "Okay", "I created", "I've", "These", "The text",
	"Analysis", "Search queries", "Queries", "Note",
}

// CleanResponse strips reasoning tags and commentary from an LLM answer,
// leaving one candidate query per line. Models behind local servers often
// leak <think> blocks (closed, dangling, or as a bare "/think" marker)
// and wrap the actual answer in explanations; all of that is removed here.
func CleanResponse(response string) string {
	lower := strings.ToLower(response)
	if strings.Contains(lower, "think") {
		if thinkBlockRe.MatchString(response) {
			response = thinkBlockRe.ReplaceAllString(response, "")
		} else if pos := strings.LastIndex(lower, "think"); pos != -1 {
			// Dangling marker: everything before the last "think" is
			// reasoning, the answer follows it.
			response = strings.TrimSpace(response[pos+len("think"):])
		}
	}

	response = xmlTagRe.ReplaceAllString(response, "")
	response = strings.TrimSpace(response)

	// A very long answer is almost certainly an explanation; the short
	// lines at its tail are usually the queries themselves.
	if len(response) > 500 {
		if tail := shortTailLines(response); tail != "" {
			response = tail
		}
	}

	var clean []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > 50 {
			continue
		}
		if hasExplanationPrefix(line) {
			continue
		}
		line = lineMarkerRe.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`+"`")
		if len(line) >= 5 && len(line) <= 50 && !strings.HasPrefix(line, "<") {
			clean = append(clean, line)
		}
	}

	if len(clean) > 0 {
		return strings.Join(clean, "\n")
	}
	return response
}

// ParseQueries splits a cleaned response into individual queries. Pipes
// win over newlines when a model answers on a single line.
func ParseQueries(cleaned string) []string {
	sep := "\n"
	if strings.Contains(cleaned, "|") {
		sep = "|"
	}

	var queries []string
	for _, q := range strings.Split(cleaned, sep) {
		q = strings.TrimSpace(q)
		q = strings.TrimLeft(q, "0123456789.- ")
		q = strings.Trim(q, `"'`+"`")
		if len(q) > 2 && !strings.HasPrefix(q, "<") {
			queries = append(queries, q)
		}
	}
	return queries
}

func shortTailLines(s string) string {
	lines := strings.Split(s, "\n")
	var tail []string
	for i := len(lines) - 1; i >= 0 && len(tail) < 6; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && len(line) > 5 && len(line) < 50 {
			tail = append([]string{line}, tail...)
		}
	}
	return strings.Join(tail, "\n")
}

func hasExplanationPrefix(line string) bool {
	for _, prefix := range explanationPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
