package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"foodcart_back_end/internal/models"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "layout_start"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
<h2 style="color: #333;">{{.Title}}</h2>{{end}}
{{define "layout_end"}}<p style="margin-top: 30px; color: #555;">The FoodCart team</p>
</div>
</body>
</html>{{end}}

{{define "otp"}}{{template "layout_start" .}}
<p>Hi {{.Name}},</p>
<p>Use the code below to verify your restaurant owner request. It expires in {{.Minutes}} minutes.</p>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.OTP}}</p>
<p>If you did not ask for this, ignore this email.</p>
{{template "layout_end" .}}{{end}}

{{define "approved"}}{{template "layout_start" .}}
<p>Congratulations {{.Name}}!</p>
<p>Your request to manage <strong>{{.RestaurantName}}</strong> has been approved. You can now create your restaurant and menus.</p>
{{template "layout_end" .}}{{end}}

{{define "rejected"}}{{template "layout_start" .}}
<p>Hi {{.Name}},</p>
<p>Your request to manage <strong>{{.RestaurantName}}</strong> was not approved. You may submit a new request at any time.</p>
{{template "layout_end" .}}{{end}}

{{define "order_status"}}{{template "layout_start" .}}
<p>Your order <strong>{{.OrderID}}</strong> is now <strong>{{.Status}}</strong>.</p>
<p style="color: #888;">Updated {{.At}}</p>
{{template "layout_end" .}}{{end}}
`))

// Mailer renders the application's emails and hands them to a Sender.
type Mailer struct {
	sender Sender
}

func New(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func (m *Mailer) SendOTP(ctx context.Context, to, name, otp string, validFor time.Duration) error {
	return m.send(ctx, to, "Your verification code", "otp", map[string]any{
		"Title":   "Verify your owner request",
		"Name":    name,
		"OTP":     otp,
		"Minutes": int(validFor.Minutes()),
	})
}

func (m *Mailer) SendOwnerApproved(ctx context.Context, req *models.OwnerRequest) error {
	return m.send(ctx, req.Email, "Your restaurant owner request was approved", "approved", map[string]any{
		"Title":          "Welcome aboard",
		"Name":           req.Name,
		"RestaurantName": req.RestaurantName,
	})
}

func (m *Mailer) SendOwnerRejected(ctx context.Context, req *models.OwnerRequest) error {
	return m.send(ctx, req.Email, "Your restaurant owner request", "rejected", map[string]any{
		"Title":          "Owner request update",
		"Name":           req.Name,
		"RestaurantName": req.RestaurantName,
	})
}

func (m *Mailer) SendOrderStatus(ctx context.Context, event models.OrderEvent) error {
	if event.CustomerEmail == "" {
		return nil
	}
	return m.send(ctx, event.CustomerEmail, fmt.Sprintf("Your order is %s", statusLabel(event.To)), "order_status", map[string]any{
		"Title":   "Order update",
		"OrderID": event.OrderID,
		"Status":  statusLabel(event.To),
		"At":      event.At.Format(time.RFC1123),
	})
}

func (m *Mailer) send(ctx context.Context, to, subject, name string, data map[string]any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s email: %w", name, err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String()})
}

func statusLabel(s models.OrderStatus) string {
	switch s {
	case models.StatusOutForDelivery:
		return "out for delivery"
	default:
		return string(s)
	}
}
