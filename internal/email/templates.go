package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"diningwatch/internal/config"
	"diningwatch/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #16a34a; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .hall { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .hall h2 { margin: 0 0 8px 0; font-size: 18px; color: #374151; }
        .keyword { font-weight: 600; color: #374151; }
        .meals { color: #6b7280; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// Digest renders the match summary for one subscriber on one day. Halls,
// keywords, and meal lists are each sorted so the digest is deterministic.
func (t *Templates) Digest(result models.MatchResult, today time.Time) (subject, htmlBody, textBody string) {
	day := today.Format("2006-01-02")
	subject = fmt.Sprintf("[%s] Your tracked items are on the menu today! (%s)", t.cfg.SiteTitle, day)

	var htmlParts, textLines []string
	for _, hall := range result.Halls() {
		var kwHTML strings.Builder
		textLines = append(textLines, hall+":")
		for _, kw := range result.Keywords(hall) {
			meals := result[hall][kw].Sorted()
			kwHTML.WriteString(fmt.Sprintf(
				`<p><span class="keyword">%s</span> &mdash; <span class="meals">%s</span></p>`,
				html.EscapeString(kw),
				html.EscapeString(strings.Join(meals, ", ")),
			))
			textLines = append(textLines, fmt.Sprintf("  %s:", kw))
			for _, meal := range meals {
				textLines = append(textLines, fmt.Sprintf("    - %s", meal))
			}
		}
		textLines = append(textLines, "")
		htmlParts = append(htmlParts, fmt.Sprintf(
			`<div class="hall"><h2>%s</h2>%s</div>`,
			html.EscapeString(hall),
			kwHTML.String(),
		))
	}

	content := fmt.Sprintf(`
        <p>We found the following dishes matching your magic words today:</p>
        %s
        <p>Go forth and feast.</p>
    `, strings.Join(htmlParts, "\n"))

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Hi,

We found the following dishes matching your magic words today:

%s
You're receiving this because you subscribed to %s.
`, strings.Join(textLines, "\n"), t.cfg.SiteTitle)

	return subject, htmlBody, textBody
}

// Welcome confirms a new subscription and echoes the watched keywords.
func (t *Templates) Welcome(keywords []string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Subscription confirmed", t.cfg.SiteTitle)
	list := strings.Join(keywords, ", ")

	content := fmt.Sprintf(`
        <p>You're subscribed! We'll watch the dining menus for dishes matching:</p>
        <div class="hall"><p class="keyword">%s</p></div>
        <p>You'll get at most one email per day, and only when something matches.
        You can add more magic words later with the same email address.</p>
    `, html.EscapeString(list))

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`You're subscribed!

We'll watch the dining menus for dishes matching: %s

You'll get at most one email per day, and only when something matches.
You can add more magic words later with the same email address.

--
%s
%s`, list, t.cfg.SiteTitle, t.cfg.BaseURL)

	return subject, htmlBody, textBody
}
