package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const TemplateSubscriptionReceipt = "subscription_receipt"

const subscriptionReceiptHTML = `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Your <b>{{.Plan}}</b> subscription is active until <b>{{.EndDate}}</b>.</p>
<p>Amount paid: {{.Amount}} {{.Currency}}<br>Order: {{.OrderID}}<br>Payment: {{.PaymentID}}</p>
<p>Happy studying!</p>`

// TemplateManager - потокобезопасный набор html шаблонов
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		templates: make(map[string]*template.Template),
	}
}

// NewDefaultTemplateManager - менеджер со встроенными шаблонами писем
func NewDefaultTemplateManager() *TemplateManager {
	tm := NewTemplateManager()
	if err := tm.AddTemplate(TemplateSubscriptionReceipt, subscriptionReceiptHTML); err != nil {
		panic(err)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
