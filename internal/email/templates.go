package email

import (
	"fmt"

	"github.com/osteele/liquid"

	"newsletter/internal/domain"
)

const ConfirmationSubject = "Welcome!"

const (
	confirmationText = "Welcome to our newsletter!\nVisit {{ link }} to confirm your subscription."
	confirmationHTML = `Welcome to our newsletter!<br />Click <a href="{{ link | escape }}">here</a> to confirm your subscription.`
)

// Templates renderiza los cuerpos de correo con liquid.
type Templates struct {
	engine           *liquid.Engine
	confirmationText *liquid.Template
	confirmationHTML *liquid.Template
}

func NewTemplates() (*Templates, error) {
	engine := liquid.NewEngine()
	text, err := engine.ParseString(confirmationText)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation text template: %w", err)
	}
	html, err := engine.ParseString(confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("parse confirmation html template: %w", err)
	}
	return &Templates{engine: engine, confirmationText: text, confirmationHTML: html}, nil
}

// Confirmation devuelve (html, text) con el mismo link en ambos cuerpos.
func (t *Templates) Confirmation(link string) (string, string, error) {
	bindings := liquid.Bindings{"link": link}
	html, err := t.confirmationHTML.RenderString(bindings)
	if err != nil {
		return "", "", err
	}
	text, err := t.confirmationText.RenderString(bindings)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}

// CompiledIssue es una edicion parseada una sola vez y renderizada por suscriptor.
type CompiledIssue struct {
	Subject string
	html    *liquid.Template
	text    *liquid.Template
}

// CompileIssue valida la sintaxis liquid de la edicion antes de empezar a enviar.
func (t *Templates) CompileIssue(issue domain.Issue) (*CompiledIssue, error) {
	html, err := t.engine.ParseString(issue.HTMLContent)
	if err != nil {
		return nil, fmt.Errorf("parse issue html: %w", err)
	}
	text, err := t.engine.ParseString(issue.TextContent)
	if err != nil {
		return nil, fmt.Errorf("parse issue text: %w", err)
	}
	return &CompiledIssue{Subject: issue.Title, html: html, text: text}, nil
}

// Render personaliza la edicion; expone {{ name }} y {{ email }}.
func (c *CompiledIssue) Render(name, emailAddr string) (string, string, error) {
	bindings := liquid.Bindings{"name": name, "email": emailAddr}
	html, err := c.html.RenderString(bindings)
	if err != nil {
		return "", "", err
	}
	text, err := c.text.RenderString(bindings)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}
