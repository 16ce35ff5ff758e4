// Package email renders notification emails and hands them to the outbound email transport.
package email

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
)

const layout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Helvetica,Arial,sans-serif;color:#333333;">
<table role="presentation" width="100%" cellspacing="0" cellpadding="0">
<tr>
<td align="center" style="padding:24px;">
<table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color:#ffffff;border-radius:8px;">
<tr>
<td style="padding:24px;background-color:#1f2937;color:#ffffff;border-radius:8px 8px 0 0;font-size:20px;font-weight:bold;">{{.Brand}}</td>
</tr>
<tr>
<td style="padding:24px;">
<p style="margin:0 0 16px;">Hi {{.Name}},</p>
<h1 style="margin:0 0 16px;font-size:22px;">{{.Title}}</h1>
<div style="margin:0 0 24px;line-height:1.5;">{{.Message}}</div>
<p style="margin:0;font-size:12px;color:#6b7280;">You are receiving this email because of your notification preferences at {{.Brand}}. You can change them at any time from your account settings.</p>
</td>
</tr>
</table>
</td>
</tr>
</table>
</body>
</html>
`

var emailTemplate = template.Must(template.New("notification").Parse(layout))

// templateValues are the values substituted into the email layout.
type templateValues struct {
	Brand   string
	Name    string
	Title   string
	Message template.HTML
}

// Renderer turns notifications into complete HTML email documents. Rendering has no side effects and the same
// input always produces the same output.
type Renderer struct {
	brand   string
	strict  *bluemonday.Policy
	message *bluemonday.Policy
}

// NewRenderer returns a renderer that signs emails with the given brand name.
func NewRenderer(brand string) *Renderer {
	return &Renderer{
		brand:   brand,
		strict:  bluemonday.StrictPolicy(),
		message: bluemonday.UGCPolicy(),
	}
}

// Render produces the HTML email body for a notification. The title and recipient name are treated as plain
// text; the message may contain basic formatting markup, and anything unsafe is removed from it. Line breaks
// in the message are preserved.
func (r *Renderer) Render(title, message, recipientName string) (string, error) {
	sanitized := r.message.Sanitize(message)
	sanitized = strings.ReplaceAll(strings.ReplaceAll(sanitized, "\r\n", "\n"), "\n", "<br>")

	values := templateValues{
		Brand:   r.brand,
		Name:    r.plainText(recipientName),
		Title:   r.plainText(title),
		Message: template.HTML(sanitized),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, values); err != nil {
		return "", errors.Wrap(err, "unable to render the notification email")
	}
	return buf.String(), nil
}

// plainText removes all markup from s. The result is unescaped because the template escapes it again.
func (r *Renderer) plainText(s string) string {
	return html.UnescapeString(r.strict.Sanitize(s))
}
