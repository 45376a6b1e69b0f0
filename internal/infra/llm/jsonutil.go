package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fence markers, with or without a language tag.
var fencePattern = regexp.MustCompile("(?i)```(?:json)?[ \t]*\\n?")

// ErrNoJSONObject is returned when the model text holds no {...} span at all.
var ErrNoJSONObject = errors.New("no json object in model output")

// ExtractObject strips code fences and returns the text from the first '{'
// to the last '}', cleaned of // comments and trailing commas.
func ExtractObject(text string) (string, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSONObject
	}
	return cleanJSON(cleaned[start : end+1]), nil
}

// DecodeObject extracts the JSON object from text and unmarshals it into v.
func DecodeObject(text string, v any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// cleanJSON removes JavaScript-style comments and trailing commas.
// LLMs commonly produce these invalid JSON artifacts.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return stripTrailingCommas(strings.Join(lines, "\n"))
}

// stripTrailingCommas drops a comma that is followed only by whitespace and
// then } or ]. Commas inside string values are left alone.
//
//	{"a": [1, 2,], "b": "x, }",}  → {"a": [1, 2], "b": "x, }"}
func stripTrailingCommas(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == ',':
			j := i + 1
			for j < len(raw) && strings.IndexByte(" \t\r\n", raw[j]) >= 0 {
				j++
			}
			if j < len(raw) && (raw[j] == '}' || raw[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// stripLineComment removes a // comment from a JSON line, respecting string values.
//
//	"url": "http://example.com" // comment  → "url": "http://example.com"
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
