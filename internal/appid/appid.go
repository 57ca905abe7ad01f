// Package appid recovers an application id from the text of a script file.
//
// Rules are evaluated in priority order and the first match wins. The last
// rule accepts any standalone 4-7 digit run; it is a low-confidence fallback
// and can misfire on scripts that carry unrelated numbers.
//
// Word boundaries and digit classes are ASCII-only, so a run glued to
// non-ASCII letters still matches: "名1234" yields 1234.
package appid

import (
	"os"
	"regexp"
	"strings"
)

// Rule is a named matcher whose first capture group is the id.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rules is the ordered rule set used by Extract.
var Rules = []Rule{
	{Name: "addappid", Pattern: regexp.MustCompile(`(?i)addappid\s*\(\s*(\d+)`)},
	{Name: "setmanifestid", Pattern: regexp.MustCompile(`(?i)setmanifestid\s*\(\s*(\d+)`)},
	{Name: "app_id_key", Pattern: regexp.MustCompile(`(?i)app[_\s-]*id\s*[:=]\s*(\d+)`)},
	{Name: "bare_digits", Pattern: regexp.MustCompile(`\b(\d{4,7})\b`)},
}

// Placeholder is the display name used until a real name is resolved.
func Placeholder(id string) string {
	return "App " + id
}

// IsPlaceholder reports whether name is empty or the synthesized placeholder for id.
func IsPlaceholder(id, name string) bool {
	return name == "" || name == Placeholder(id)
}

// Extract reads path and returns the id found by the first matching rule,
// or "" when nothing matches or the file cannot be read.
func Extract(path string) string {
	id, _ := ExtractFile(path)
	return id
}

// ExtractFile is Extract that also reports which rule matched.
func ExtractFile(path string) (string, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	return ExtractText(decode(data))
}

// ExtractText applies Rules to text and returns the id and the rule name.
func ExtractText(text string) (string, string) {
	for _, rule := range Rules {
		if m := rule.Pattern.FindStringSubmatch(text); len(m) > 1 {
			return m[1], rule.Name
		}
	}
	return "", ""
}

// decode drops byte sequences that are not valid UTF-8.
func decode(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
