package serialization

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	yamlDelimiter = "---"
)

// FrontmatterDocument represents a markdown document with YAML frontmatter
type FrontmatterDocument struct {
	Frontmatter map[string]interface{}
	Content     string
}

// ParseFrontmatter splits a markdown document into YAML metadata and body.
// A document that does not open with the delimiter is all body.
func ParseFrontmatter(data []byte) (*FrontmatterDocument, error) {
	doc := &FrontmatterDocument{
		Frontmatter: make(map[string]interface{}),
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(first) != yamlDelimiter {
		doc.Content = text
		return doc, nil
	}

	// Metadata runs until the closing delimiter; an unclosed block is all metadata
	var meta, body string
	lines := strings.Split(rest, "\n")
	closed := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == yamlDelimiter {
			closed = i
			break
		}
	}
	if closed < 0 {
		meta = rest
	} else {
		meta = strings.Join(lines[:closed], "\n")
		body = strings.Join(lines[closed+1:], "\n")
	}

	if strings.TrimSpace(meta) != "" {
		if err := yaml.Unmarshal([]byte(meta), &doc.Frontmatter); err != nil {
			return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
		}
	}
	doc.Content = strings.TrimSpace(body)

	return doc, nil
}

// SerializeFrontmatter renders metadata and body as a markdown document
func SerializeFrontmatter(frontmatter map[string]interface{}, content string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(yamlDelimiter + "\n")
	if len(frontmatter) > 0 {
		yamlData, err := yaml.Marshal(frontmatter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
		buf.Write(yamlData)
	}
	buf.WriteString(yamlDelimiter + "\n")

	if content != "" {
		buf.WriteString(strings.TrimRight(content, "\n"))
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// GetString returns a string value, or "" when absent
func (d *FrontmatterDocument) GetString(key string) string {
	if str, ok := d.Frontmatter[key].(string); ok {
		return str
	}
	return ""
}

// GetInt returns an integer value, or 0 when absent
func (d *FrontmatterDocument) GetInt(key string) int {
	return toInt(d.Frontmatter[key])
}

// GetBool returns a boolean value, or false when absent
func (d *FrontmatterDocument) GetBool(key string) bool {
	b, _ := d.Frontmatter[key].(bool)
	return b
}

// GetIntSlice returns the integer items of a sequence value
func (d *FrontmatterDocument) GetIntSlice(key string) []int {
	items, ok := d.Frontmatter[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]int, 0, len(items))
	for _, item := range items {
		result = append(result, toInt(item))
	}
	return result
}

// GetTime returns an RFC3339 timestamp value, or nil when absent
func (d *FrontmatterDocument) GetTime(key string) (*time.Time, error) {
	switch v := d.Frontmatter[key].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("%s is not a timestamp", key)
	}
}

func toInt(val interface{}) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
