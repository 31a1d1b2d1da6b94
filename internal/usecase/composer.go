package usecase

import (
	"fmt"
	"html"
	"strings"

	"github.com/pickpost/backend/internal/domain"
)

// Default template values, matching the upload form's defaults.
const (
	DefaultSubjectTemplate  = "Your picks from our latest catalogue"
	DefaultGreetingTemplate = "Hi {name},"
	DefaultIntroTemplate    = "We picked a few things we think you'll like:"
	DefaultFooterTemplate   = "If you have any questions, just hit reply.\n\nBest,\n{sender_name}"
	DefaultSenderName       = "Customer Success"

	emptyRecsCopy = "(No suitable items found yet)"
)

// ComposerConfig holds the email templates used for draft composition.
// Templates support {name} and {sender_name} placeholders.
type ComposerConfig struct {
	SenderName       string
	SubjectTemplate  string
	GreetingTemplate string
	IntroTemplate    string
	FooterTemplate   string
}

// Composer renders match results into email subjects and bodies. It has no
// decision logic of its own: it consumes the matcher's output as-is and
// preserves recommendation order.
type Composer struct {
	cfg ComposerConfig
}

// NewComposer creates a composer, filling empty templates with the defaults
func NewComposer(cfg ComposerConfig) *Composer {
	if cfg.SenderName == "" {
		cfg.SenderName = DefaultSenderName
	}
	if cfg.SubjectTemplate == "" {
		cfg.SubjectTemplate = DefaultSubjectTemplate
	}
	if cfg.GreetingTemplate == "" {
		cfg.GreetingTemplate = DefaultGreetingTemplate
	}
	if cfg.IntroTemplate == "" {
		cfg.IntroTemplate = DefaultIntroTemplate
	}
	if cfg.FooterTemplate == "" {
		cfg.FooterTemplate = DefaultFooterTemplate
	}
	return &Composer{cfg: cfg}
}

// Subject renders the subject line for a customer.
func (c *Composer) Subject(cust domain.Customer) string {
	return c.expand(c.cfg.SubjectTemplate, cust)
}

// PlainBody renders the plain-text email body for one match result.
// Recommendations with an unknown price omit the price segment; an empty
// recommendation list gets explanatory copy instead of bullets.
func (c *Composer) PlainBody(cust domain.Customer, recs []domain.Recommendation) string {
	greeting := c.expand(c.cfg.GreetingTemplate, cust)
	intro := c.expand(c.cfg.IntroTemplate, cust)
	footer := c.expand(c.cfg.FooterTemplate, cust)

	var bullets []string
	if len(recs) == 0 {
		bullets = []string{"- " + emptyRecsCopy}
	} else {
		for _, r := range recs {
			bullets = append(bullets, formatProductLine(r))
		}
	}

	body := greeting + "\n\n" + intro + "\n\n" + strings.Join(bullets, "\n") + "\n\n" + footer
	return strings.TrimSpace(body)
}

// HTMLBody renders an HTML variant of the body with optional CTA button.
func (c *Composer) HTMLBody(cust domain.Customer, recs []domain.Recommendation, ctaText, ctaURL string) string {
	greeting := html.EscapeString(c.expand(c.cfg.GreetingTemplate, cust))
	intro := html.EscapeString(c.expand(c.cfg.IntroTemplate, cust))
	footer := html.EscapeString(c.expand(c.cfg.FooterTemplate, cust))

	var items string
	if len(recs) == 0 {
		items = "<p><em>" + html.EscapeString(emptyRecsCopy) + "</em></p>"
	} else {
		var sb strings.Builder
		sb.WriteString("<ul>")
		for _, r := range recs {
			sb.WriteString(formatProductItemHTML(r))
		}
		sb.WriteString("</ul>")
		items = sb.String()
	}

	cta := ""
	if ctaText != "" && ctaURL != "" {
		cta = fmt.Sprintf(
			`<p style="margin-top:12px;"><a href=%q target="_blank" rel="noopener noreferrer" style="display:inline-block;padding:10px 14px;border:1px solid #0d6efd;border-radius:8px;text-decoration:none;">%s</a></p>`,
			ctaURL, html.EscapeString(ctaText))
	}

	return fmt.Sprintf(
		`<div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif;line-height:1.5;color:#222;"><p>%s</p><p>%s</p>%s%s<p style="margin-top:12px; color:#555; font-size:13px; white-space:pre-line;">%s</p></div>`,
		greeting, intro, items, cta, footer)
}

// expand substitutes {name} and {sender_name} placeholders. A blank customer
// name renders as "there" so greetings never read "Hi ,".
func (c *Composer) expand(tpl string, cust domain.Customer) string {
	name := strings.TrimSpace(cust.Name)
	if name == "" {
		name = "there"
	}
	return strings.NewReplacer(
		"{name}", name,
		"{sender_name}", c.cfg.SenderName,
	).Replace(tpl)
}

// formatProductLine renders one recommendation as a plain-text bullet:
// "- Name — £9.99 (https://...)" with price and URL segments omitted when absent.
func formatProductLine(r domain.Recommendation) string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Product"
	}
	bullet := "- " + name
	if r.Price != nil {
		bullet += fmt.Sprintf(" — £%.2f", *r.Price)
	}
	if url := strings.TrimSpace(r.URL); url != "" {
		bullet += " (" + url + ")"
	}
	return bullet
}

// formatProductItemHTML renders one recommendation as a list item, linked
// when a URL is present.
func formatProductItemHTML(r domain.Recommendation) string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Product"
	}
	label := name
	if r.Price != nil {
		label += fmt.Sprintf(" — £%.2f", *r.Price)
	}
	label = html.EscapeString(label)

	if url := strings.TrimSpace(r.URL); url != "" {
		return fmt.Sprintf(`<li><a href=%q target="_blank" rel="noopener noreferrer">%s</a></li>`, url, label)
	}
	return "<li>" + label + "</li>"
}
