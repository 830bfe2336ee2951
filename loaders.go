package s3load

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	gut "github.com/panyam/goutils/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v2"
)

// Key under which loaders place the body of a document.
const ContentKey = "content"

// Loads a document with optional yaml (---) or toml (+++) front matter.  Front
// matter fields become the data and the remaining body is stored under "content".
func FrontMatterLoader(path string, content []byte) (Data, error) {
	fm := make(map[string]any)
	rest, err := frontmatter.Parse(bytes.NewReader(content), &fm)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter in %s: %w", path, err)
	}
	data := normalizeMap(fm)
	data[ContentKey] = string(rest)
	return data, nil
}

// Like FrontMatterLoader but when the front matter has no title, the text of the
// first level one heading of the markdown body is used instead.
func MarkdownLoader(path string, content []byte) (Data, error) {
	data, err := FrontMatterLoader(path, content)
	if err != nil {
		return nil, err
	}
	if title, ok := data["title"]; ok && title != nil && title != "" {
		return data, nil
	}
	body := []byte(data[ContentKey].(string))
	if title := firstHeading(body); title != "" {
		data["title"] = title
	}
	return data, nil
}

// Loads a whole yaml document as data.
func YAMLLoader(path string, content []byte) (Data, error) {
	m := make(map[string]any)
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing yaml in %s: %w", path, err)
	}
	return normalizeMap(m), nil
}

// Loads a whole toml document as data.
func TOMLLoader(path string, content []byte) (Data, error) {
	m := make(map[string]any)
	if _, err := toml.Decode(string(content), &m); err != nil {
		return nil, fmt.Errorf("parsing toml in %s: %w", path, err)
	}
	return normalizeMap(m), nil
}

// Loads a json document.  Objects become the data itself, any other json value is
// stored under "content".
func JSONLoader(path string, content []byte) (Data, error) {
	value, err := gut.JsonDecodeBytes(content)
	if err != nil {
		return nil, fmt.Errorf("parsing json in %s: %w", path, err)
	}
	if m, ok := value.(map[string]any); ok {
		return normalizeMap(m), nil
	}
	return Data{ContentKey: value}, nil
}

// Loads the file as is under "content".
func TextLoader(path string, content []byte) (Data, error) {
	return Data{ContentKey: string(content)}, nil
}

func firstHeading(source []byte) (title string) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 1 {
			title = strings.TrimSpace(nodeText(heading, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return ""
	}
	return
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		default:
			sb.WriteString(nodeText(c, source))
		}
	}
	return sb.String()
}

// yaml.v2 decodes nested maps as map[any]any which neither encoding/json nor
// mapstructure handle well.  Convert them all to map[string]any.
func normalizeMap(m map[string]any) Data {
	out := make(Data, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return map[string]any(normalizeMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}
