package content

import (
	"bytes"
	"fmt"
	"html/template"
)

// previewTmpl lays out a 1200x630 card. Every div uses display: flex and
// nothing is absolutely positioned, so box-layout renderers can draw it.
var previewTmpl = template.Must(template.New("preview").Funcs(funcs).Parse(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', 'Helvetica Neue', sans-serif; background-color: #fff; margin: 0; width: 1200px; height: 630px; display: flex; flex-direction: column;">
  <div style="background-color: #0066cc; height: 80px; width: 100%; display: flex; align-items: center; padding: 0 60px;">
    <div style="display: flex; align-items: center;">
      <svg width="32" height="32" viewBox="0 0 32 32" fill="none" xmlns="http://www.w3.org/2000/svg">
        <rect width="32" height="32" rx="6" fill="white"/>
        <path d="M8 8H24V24H8V8Z" fill="#0066cc"/>
      </svg>
      <span style="color: white; font-size: 32px; margin-left: 16px; font-weight: bold;">Content Preview</span>
    </div>
  </div>
  <div style="display: flex; flex-direction: column; flex: 1; padding: 60px;">
    <div style="font-size: 64px; font-weight: 800; margin-bottom: 16px; color: #000; display: flex;">{{.Title}}</div>
    <div style="font-size: 32px; color: #333; margin-bottom: 40px; display: flex;">{{.Subtitle}}</div>
    <div style="display: flex; margin-bottom: 40px;">
      <div style="display: flex; flex-direction: column; margin-right: 60px;">
        <span style="font-size: 24px; color: #666; display: flex;">Total Items</span>
        <span style="font-size: 48px; font-weight: bold; display: flex;">{{comma .TotalItems}}</span>
      </div>
      <div style="display: flex; flex-direction: column;">
        <span style="font-size: 24px; color: #666; display: flex;">Contributors</span>
        <span style="font-size: 48px; font-weight: bold; display: flex;">{{count .Participants}}</span>
      </div>
    </div>
    <div style="display: flex; height: 120px; margin-bottom: 20px;">
      {{range $i, $url := .Avatars}}<div style="width: 120px; height: 120px; border-radius: 50%; overflow: hidden; border: 2px solid #333; display: flex; margin-right: 10px;">
        <img src="{{$url}}" alt="User {{ordinal $i}}" width="120" height="120" style="object-fit: cover;" />
      </div>{{end}}
    </div>
    <div style="font-size: 24px; color: #555; display: flex;">With contributions from {{credits .Participants}}</div>
  </div>
  <div style="background-color: #0066cc; color: white; padding: 20px 60px; font-size: 24px; display: flex; justify-content: center;">
    <span style="display: flex;">View full content • {{.ContentCount}} items</span>
  </div>
</div>
`))

// PreviewHTML returns the HTML description of d's preview image.
func PreviewHTML(d *Dashboard) (string, error) {
	avatars := d.AvatarURLs
	if len(avatars) > maxAvatars {
		avatars = avatars[:maxAvatars]
	}

	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, struct {
		*Dashboard
		Avatars []string
	}{d, avatars}); err != nil {
		return "", fmt.Errorf("render preview html: %w", err)
	}
	return buf.String(), nil
}
