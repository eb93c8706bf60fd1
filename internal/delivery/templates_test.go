package delivery

import (
	"strings"
	"testing"
	"time"

	"github.com/SamuelOshin/XlideLand-RealEstate/internal/domain"
)

var p = domain.Payload{
	Name:        "Jane Doe",
	Email:       "jane@x.com",
	Phone:       "08012345678",
	Message:     "Looking for a 3-bed apartment",
	ContactType: "consultation",
	SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
}

func TestSubjectsVaryByContactType(t *testing.T) {
	consult := p
	newsletter := p
	newsletter.ContactType = "newsletter"
	other := p
	other.ContactType = "something_else"

	if s := AdminEmailSubject(consult); !strings.Contains(s, "Consultation") {
		t.Errorf("consultation admin subject = %q", s)
	}
	if s := AdminEmailSubject(newsletter); !strings.Contains(s, "Newsletter") {
		t.Errorf("newsletter admin subject = %q", s)
	}
	if s := AdminEmailSubject(other); !strings.Contains(s, p.Name) {
		t.Errorf("fallback admin subject = %q", s)
	}
	if s := UserEmailSubject(consult); !strings.Contains(s, "Confirmed") {
		t.Errorf("consultation user subject = %q", s)
	}
}

func TestAdminEmailBodyCarriesContactFields(t *testing.T) {
	htmlBody, textBody := AdminEmailBody(p)
	for _, body := range []string{htmlBody, textBody} {
		for _, want := range []string{p.Name, p.Email, p.Phone, p.Message} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	}
}

func TestAdminEmailBodyEscapesHTML(t *testing.T) {
	hostile := p
	hostile.Message = `<script>alert("x")</script>`
	htmlBody, _ := AdminEmailBody(hostile)
	if strings.Contains(htmlBody, "<script>") {
		t.Error("message not escaped in HTML body")
	}
}

func TestWhatsAppTextsVaryByContactType(t *testing.T) {
	if s := UserWhatsAppText(p); !strings.Contains(s, "consultation request") {
		t.Errorf("consultation text = %q", s)
	}
	news := p
	news.ContactType = "newsletter"
	if s := UserWhatsAppText(news); !strings.Contains(s, "subscribed") {
		t.Errorf("newsletter text = %q", s)
	}
	if s := AdminWhatsAppText(p); !strings.Contains(s, p.Name) || !strings.Contains(s, p.Message) {
		t.Errorf("admin text missing contact fields: %q", s)
	}
}

func TestBuildMessageMultipart(t *testing.T) {
	msg := string(buildMessage("from@x.com", "to@x.com", "Hello", "<p>hi</p>", "hi"))
	for _, want := range []string{
		"From: from@x.com",
		"To: to@x.com",
		"multipart/alternative",
		"text/plain",
		"text/html",
		"<p>hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}
