package delivery

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

// Rendering of notification content. Subjects and bodies vary by contact
// type, mirroring the site's inquiry categories.

func AdminEmailSubject(p domain.Payload) string {
	switch p.ContactType {
	case "consultation":
		return fmt.Sprintf("URGENT: Consultation Request from %s", p.Name)
	case "newsletter":
		return fmt.Sprintf("Newsletter Subscription: %s", p.Email)
	case "property_inquiry", "property":
		return fmt.Sprintf("Property Inquiry from %s", p.Name)
	case "general":
		return fmt.Sprintf("New Contact Inquiry from %s", p.Name)
	default:
		return fmt.Sprintf("New Contact: %s", p.Name)
	}
}

func UserEmailSubject(p domain.Payload) string {
	switch p.ContactType {
	case "consultation":
		return "Your Consultation Request is Confirmed - XlideLand"
	case "newsletter":
		return "Welcome to XlideLand Newsletter!"
	case "property_inquiry", "property":
		return "Property Inquiry Received - XlideLand"
	default:
		return "Thank you for contacting XlideLand"
	}
}

// AdminEmailBody renders the admin alert. Returns HTML and a plaintext
// fallback.
func AdminEmailBody(p domain.Payload) (htmlBody, textBody string) {
	subject := p.Subject
	if subject == "" {
		subject = "General Inquiry"
	}
	text := fmt.Sprintf(`New contact inquiry received.

Name:    %s
Email:   %s
Phone:   %s
Type:    %s
Subject: %s

Message:
%s

Received: %s`,
		p.Name, p.Email, p.Phone, p.ContactType, subject, p.Message,
		p.SubmittedAt.Format(time.RFC1123))

	htmlB := fmt.Sprintf(`<h2>New Contact Inquiry</h2>
<table>
<tr><td>Name</td><td>%s</td></tr>
<tr><td>Email</td><td>%s</td></tr>
<tr><td>Phone</td><td>%s</td></tr>
<tr><td>Type</td><td>%s</td></tr>
<tr><td>Subject</td><td>%s</td></tr>
</table>
<p>%s</p>
<p><em>Received: %s</em></p>`,
		html.EscapeString(p.Name), html.EscapeString(p.Email), html.EscapeString(p.Phone),
		html.EscapeString(p.ContactType), html.EscapeString(subject),
		strings.ReplaceAll(html.EscapeString(p.Message), "\n", "<br>"),
		p.SubmittedAt.Format(time.RFC1123))
	return htmlB, text
}

// UserEmailBody renders the confirmation sent back to the submitter.
func UserEmailBody(p domain.Payload) (htmlBody, textBody string) {
	text := fmt.Sprintf(`Hello %s,

We've received your inquiry and will get back to you within 24 hours.

Thank you for choosing XlideLand Real Estate.`, p.Name)

	htmlB := fmt.Sprintf(`<p>Hello %s,</p>
<p>We've received your inquiry and will get back to you within 24 hours.</p>
<p>Thank you for choosing <strong>XlideLand Real Estate</strong>.</p>`,
		html.EscapeString(p.Name))
	return htmlB, text
}

// AdminWhatsAppText renders the admin alert for WhatsApp.
func AdminWhatsAppText(p domain.Payload) string {
	subject := p.Subject
	if subject == "" {
		subject = "General Inquiry"
	}
	return fmt.Sprintf(`*XlideLand - New Contact Alert*

*Contact Details:*
Name: %s
Email: %s
Phone: %s
Type: %s

*Subject:* %s

*Message:*
%s

*Received:* %s

Please respond promptly to maintain service quality.`,
		p.Name, p.Email, p.Phone, p.ContactType, subject, p.Message,
		p.SubmittedAt.Format("January 2, 2006 at 3:04 PM"))
}

// UserWhatsAppText renders the confirmation message for the submitter.
func UserWhatsAppText(p domain.Payload) string {
	switch p.ContactType {
	case "consultation":
		return fmt.Sprintf(`*XlideLand Real Estate*

Hello %s!

Your consultation request has been confirmed. Our expert will review your requirements and contact you within 24 hours.

Thank you for choosing XlideLand!`, p.Name)
	case "newsletter":
		return fmt.Sprintf(`*XlideLand Real Estate*

Welcome %s!

You've successfully subscribed to our newsletter. You'll now receive exclusive property listings, market insights and expert real estate tips.`, p.Name)
	default:
		return fmt.Sprintf(`*XlideLand Real Estate*

Hello %s!

We've received your inquiry and will get back to you within 24 hours.

Thank you for contacting XlideLand!`, p.Name)
	}
}
