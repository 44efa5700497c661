package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// maxAvatars is how many avatars fit on a preview card.
const maxAvatars = 6

var funcs = map[string]any{
	"comma":   func(n int) string { return humanize.Comma(int64(n)) },
	"stamp":   func(t time.Time) string { return t.UTC().Format("January 2, 2006 15:04 UTC") },
	"count":   func(s []string) int { return len(s) },
	"credits": participantsText,
	"ordinal": func(i int) int { return i + 1 },
}

var markdownTmpl = texttemplate.Must(texttemplate.New("markdown").Funcs(funcs).Parse(
	`# {{.D.Title}}

{{.D.Subtitle}}

## Stats

- Total Items: {{comma .D.TotalItems}}
- Contributors: {{count .D.Participants}}
- Content Count: {{.D.ContentCount}}

## Participants
{{range .D.Participants}}
- {{.}}{{end}}

_Last updated: {{stamp .D.UpdatedAt}}_

[View as HTML](/{{.ID}}.html) | [View as JSON](/{{.ID}}.json) | [View as YAML](/{{.ID}}.yaml) | [View Open Graph Image](/{{.ID}}.png)
`))

// Markdown renders d as a Markdown document. id is the resource identifier
// used in the alternate-representation links.
func Markdown(id string, d *Dashboard) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, struct {
		ID string
		D  *Dashboard
	}{id, d}); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.D.Title}}</title>
  <meta name="description" content="{{.D.Description}}">
  <meta property="og:title" content="{{.D.Title}}">
  <meta property="og:description" content="{{.D.Subtitle}}">
  <meta property="og:image" content="/{{.ID}}.png">
  <meta property="og:image:width" content="1200">
  <meta property="og:image:height" content="630">
  <meta property="og:type" content="website">
  <meta name="twitter:card" content="summary_large_image">
  <script type="application/ld+json">{{.LD}}</script>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; }
    h1 { color: #0066cc; }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders d as a full page with OpenGraph metadata. The body is the
// Markdown representation converted with goldmark.
func HTML(id string, d *Dashboard) ([]byte, error) {
	source, err := Markdown(id, d)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	ld, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal json-ld: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, struct {
		ID   string
		D    *Dashboard
		LD   template.JS
		Body template.HTML
	}{id, d, template.JS(ld), template.HTML(body.String())}); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders d as indented JSON.
func JSON(d *Dashboard) ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return out, nil
}

// YAML renders d as a YAML document.
func YAML(d *Dashboard) ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}

// participantsText lists up to two names and summarizes the rest.
func participantsText(names []string) string {
	if len(names) <= 2 {
		return strings.Join(names, " and ")
	}
	return fmt.Sprintf("%s and %d others", strings.Join(names[:2], ", "), len(names)-2)
}
