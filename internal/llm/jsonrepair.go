package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject recovers the outermost JSON object from model output that
// may be wrapped in markdown fences or surrounding prose.
func ExtractJSONObject(content string) (string, error) {
	return extractDelimited(content, '{', '}')
}

// ExtractJSONArray recovers the outermost JSON array from model output.
func ExtractJSONArray(content string) (string, error) {
	return extractDelimited(content, '[', ']')
}

func extractDelimited(content string, open, close byte) (string, error) {
	content = stripFences(content)

	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no valid JSON found in response")
	}

	return content[start : end+1], nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
