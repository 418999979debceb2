package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubscriptionReceipt(t *testing.T) {
	tm := NewDefaultTemplateManager()

	html, err := tm.Render(TemplateSubscriptionReceipt, TemplateData{
		"Name":      "<Asha>",
		"Plan":      "semester",
		"EndDate":   "15 Jul 2025",
		"Amount":    "499.00",
		"Currency":  "INR",
		"OrderID":   "order_1",
		"PaymentID": "pay_1",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Hi &lt;Asha&gt;,")
	assert.Contains(t, html, "<b>semester</b>")
	assert.Contains(t, html, "499.00 INR")
	assert.Contains(t, html, "Order: order_1")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestSMTPProvider_Validate(t *testing.T) {
	cfg := DefaultConfig()
	p := NewSMTPProvider(cfg, nil)
	assert.EqualError(t, p.Validate(), "sender address is required")

	cfg.FromEmail = "noreply@studyhub.test"
	assert.NoError(t, p.Validate())

	cfg.Port = 0
	assert.Error(t, p.Validate())

	err := p.SendTemplate(context.Background(), []string{"a@test.com"}, "Receipt", TemplateSubscriptionReceipt, nil)
	assert.EqualError(t, err, "template renderer is not configured")
}

func TestSMTPProvider_SendWithoutRecipients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FromEmail = "noreply@studyhub.test"
	p := NewSMTPProvider(cfg, NewDefaultTemplateManager())

	err := p.Send(context.Background(), &Email{Subject: "x", Body: "y"})
	assert.EqualError(t, err, "email has no recipients")
}

func TestBuildMessage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FromEmail = "noreply@studyhub.test"
	cfg.FromName = "StudyHub"
	p := NewSMTPProvider(cfg, nil)

	m := p.buildMessage(&Email{To: []string{"s@test.com"}, Subject: "Receipt", HTMLBody: "<p>ok</p>"})

	assert.Equal(t, []string{"Receipt"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"s@test.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}
