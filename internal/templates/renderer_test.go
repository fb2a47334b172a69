package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererLoadsAllTemplates(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{
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
	} {
		_, err := renderer.Render(name, &EmailData{Subject: "s", Name: "Ada", Email: "ada@example.com"})
		assert.NoError(t, err, "template %s should render", name)
	}
}

func TestRendererWelcomeIncludesVerificationLink(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	body, err := renderer.Render("welcome", &EmailData{
		Subject:          "Welcome to Trendora",
		Name:             "Ada",
		VerificationLink: "http://localhost:3000/verify-email/tok123",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "http://localhost:3000/verify-email/tok123")
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "Trendora")
}

func TestRendererOrderConfirmationListsItems(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	body, err := renderer.Render("order_confirmation", &EmailData{
		Subject:     "Order confirmation",
		Name:        "Ada",
		OrderNumber: "abc-123",
		Items: []OrderLine{
			{Name: "Desk Lamp", Quantity: 2, Price: "25.00"},
		},
		TotalPrice: "55.00",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Desk Lamp")
	assert.Contains(t, body, "55.00")
}

func TestRendererUnknownTemplate(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render("nope", &EmailData{})
	assert.Error(t, err)
}
