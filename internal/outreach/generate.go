// Package outreach drafts personalized sales emails and hands them to a
// delivery service.
package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

const (
	bodyMaxTokens    = 800
	subjectMaxTokens = 50
	temperature      = 0.7
)

const (
	bodySystem    = "You are a sales development representative writing personalized B2B emails."
	subjectSystem = "You write short, specific email subject lines."
)

// Generator drafts an email body and subject for a lead.
type Generator struct {
	llm     llm.Completer
	profile Profile
}

// NewGenerator creates a Generator. Reasoning calls go through cfg.
func NewGenerator(c llm.Completer, profile Profile, cfg resilience.RetryConfig) *Generator {
	return &Generator{llm: llm.WithRetry(c, cfg), profile: profile}
}

// personalization is the resolved set of prompt inputs for one lead.
type personalization struct {
	company   string
	contact   string
	industry  string
	research  string
	tone      string
	length    string
	valueProp string
	sender    string
}

func (g *Generator) resolve(lead model.Lead) personalization {
	p := personalization{
		company:   lead.CompanyName,
		contact:   model.Deref(lead.ContactName, DefaultContactName),
		industry:  model.Deref(lead.Industry, DefaultIndustry),
		tone:      model.Deref(lead.Tone, model.Deref(&g.profile.Tone, DefaultTone)),
		length:    model.Deref(lead.EmailLength, model.Deref(&g.profile.Length, DefaultLength)),
		valueProp: model.Deref(lead.ValueProp, g.profile.ValueProp),
		sender:    g.profile.SenderName,
	}
	if lead.Research != nil {
		p.research = lead.Research.Data
	}
	return p
}

// Generate produces subject and body for lead. Only CompanyName is
// required; every other input falls back to a generic default.
func (g *Generator) Generate(ctx context.Context, lead model.Lead) (*model.EmailContent, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("company", lead.CompanyName))
	p := g.resolve(lead)

	bodyReq := llm.Prompt(bodyPrompt(p), bodyMaxTokens, temperature)
	bodyReq.System = bodySystem
	bodyReq.Phase = "outreach_body"

	body, err := g.llm.Complete(ctx, bodyReq)
	if err != nil {
		log.Warn("outreach: body generation failed", zap.Error(err))
		return nil, eris.Wrap(err, "outreach: generate body")
	}

	subjectReq := llm.Prompt(subjectPrompt(p), subjectMaxTokens, temperature)
	subjectReq.System = subjectSystem
	subjectReq.Phase = "outreach_subject"

	subject, err := g.llm.Complete(ctx, subjectReq)
	if err != nil {
		log.Warn("outreach: subject generation failed", zap.Error(err))
		return nil, eris.Wrap(err, "outreach: generate subject")
	}

	return &model.EmailContent{
		Subject: cleanSubject(subject),
		Content: strings.TrimSpace(body),
	}, nil
}

func bodyPrompt(p personalization) string {
	var b strings.Builder
	b.WriteString("Write a personalized B2B sales email.\n\n")
	fmt.Fprintf(&b, "Company: %s\nContact: %s\nIndustry: %s\n\n", p.company, p.contact, p.industry)
	b.WriteString("Research:\n")
	if p.research != "" {
		b.WriteString(p.research)
	} else {
		b.WriteString("(none available)")
	}
	fmt.Fprintf(&b, "\n\nTone: %s\nLength: %s\n", p.tone, p.length)
	if p.valueProp != "" {
		fmt.Fprintf(&b, "Value proposition: %s\n", p.valueProp)
	}
	if p.sender != "" {
		fmt.Fprintf(&b, "Sign off as: %s\n", p.sender)
	}
	b.WriteString("\nReference something specific from the research, keep to the requested length, and close with one clear call to action. Return only the email body.")
	return b.String()
}

func subjectPrompt(p personalization) string {
	return fmt.Sprintf("Write one subject line for a B2B sales email to %s in %s. Keep it under ten words. Return only the subject line.",
		p.company, p.industry)
}

// cleanSubject strips quoting and a leading "Subject:" label some models add.
func cleanSubject(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= len("subject:") && strings.EqualFold(s[:len("subject:")], "subject:") {
		s = strings.TrimSpace(s[len("subject:"):])
	}
	return strings.Trim(s, `"'`)
}
