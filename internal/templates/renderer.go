package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed *.html
var templateFS embed.FS

// Renderer handles email template rendering
type Renderer struct {
	templates map[string]*template.Template
}

// OrderLine is one purchased item shown in the order confirmation email.
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
}

// EmailData contains data for all email templates
type EmailData struct {
	// Common fields
	Subject   string
	Preheader string
	Name      string
	Email     string
	Year      int
	StoreName string

	// Auth fields
	VerificationLink string
	ResetURL         string

	// Order fields
	OrderNumber   string
	OrderDate     string
	Items         []OrderLine
	ItemsPrice    string
	TaxPrice      string
	ShippingPrice string
	TotalPrice    string

	// Newsletter fields
	Content template.HTML

	// Contact fields
	ContactSubject  string
	ContactMessage  string
	ContactResponse string
}

// NewRenderer creates a new template renderer
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
	}

	baseContent, err := templateFS.ReadFile("base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read base template: %w", err)
	}

	templateNames := []string{
		"welcome",
		"password_reset",
		"password_changed",
		"order_confirmation",
		"order_cancelled",
		"newsletter",
		"newsletter_welcome",
		"contact_confirmation",
		"contact_notification",
		"contact_response",
	}

	for _, name := range templateNames {
		content, err := templateFS.ReadFile(name + ".html")
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}

		tmpl, err := template.New("email").Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base template for %s: %w", name, err)
		}
		if _, err = tmpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		r.templates[name] = tmpl
	}

	return r, nil
}

// Render renders a template with the given data
func (r *Renderer) Render(templateName string, data *EmailData) (string, error) {
	tmpl, ok := r.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	if data.StoreName == "" {
		data.StoreName = "Trendora"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}
