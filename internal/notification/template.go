package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"storefront-be/internal/utils"
)

var funcs = template.FuncMap{
	"vnd":   utils.FormatVND,
	"deref": utils.PtrString,
}

var subjects = map[Kind]*template.Template{
	KindOrderConfirmation: template.Must(template.New("confirm-subject").Parse(
		`Order {{.OrderNumber}} confirmed`)),
	KindOrderStatusUpdate: template.Must(template.New("status-subject").Parse(
		`Order {{.OrderNumber}} is now {{.Status}}`)),
}

var bodies = map[Kind]*template.Template{
	KindOrderConfirmation: template.Must(template.New("confirm-body").Funcs(funcs).Parse(
		`Hi {{.ReceiverName}},

Thank you for your order {{.OrderNumber}}.

{{range .Lines}}- {{.ProductName}}{{if .Size}} ({{deref .Size}}{{if .Color}}/{{deref .Color}}{{end}}){{end}} x{{.Quantity}}: {{vnd .Subtotal}}
{{end}}
Subtotal: {{vnd .Subtotal}}
Shipping: {{vnd .ShippingFee}}
Discount: {{vnd .DiscountAmount}}
Total:    {{vnd .TotalAmount}}

Payment method: {{.PaymentMethod}}
Ship to: {{.ShippingAddress}}
`)),
	KindOrderStatusUpdate: template.Must(template.New("status-body").Funcs(funcs).Parse(
		`Hi {{.ReceiverName}},

Your order {{.OrderNumber}} is now {{.Status}} (payment {{.PaymentStatus}}).
{{if .CancelReason}}Reason: {{deref .CancelReason}}
{{end}}
Total: {{vnd .TotalAmount}}
`)),
}

// Render produces the subject and plain-text body for msg.
func Render(msg Message) (subject, body string, err error) {
	st, ok := subjects[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
	bt := bodies[msg.Kind]

	var sb, bb bytes.Buffer
	if err := st.Execute(&sb, msg.Order); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := bt.Execute(&bb, msg.Order); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return sb.String(), bb.String(), nil
}
