package email

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	ttemplate "text/template"
	"time"
)

// Purpose indica para qué se envía el código.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "reset"
	PurposeVerify Purpose = "verify"
)

// CodeVars son las variables de los templates de código.
type CodeVars struct {
	Product string
	Code    string
	TTL     time.Duration
	Purpose Purpose
}

func (v CodeVars) Minutes() int { return int(v.TTL.Round(time.Minute) / time.Minute) }

var subjects = map[Purpose]string{
	PurposeSignup: "Your %s sign-up code",
	PurposeReset:  "Your %s password reset code",
	PurposeVerify: "Your %s verification code",
}

const codeText = `Your {{.Product}} code is: {{.Code}}

It expires in {{.Minutes}} minutes and can be used once.
{{- if eq (print .Purpose) "reset"}}
If you did not ask to reset your password you can ignore this email.
{{- end}}
`

const codeHTML = `<!doctype html>
<html><body style="font-family:sans-serif">
<p>Your {{.Product}} code is:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>It expires in {{.Minutes}} minutes and can be used once.</p>
{{- if eq (print .Purpose) "reset"}}
<p>If you did not ask to reset your password you can ignore this email.</p>
{{- end}}
</body></html>
`

var (
	codeTextTmpl = ttemplate.Must(ttemplate.New("code_text").Parse(codeText))
	codeHTMLTmpl = htemplate.Must(htemplate.New("code_html").Parse(codeHTML))
)

// RenderCode arma el mensaje para to con el código en vars.
func RenderCode(to string, vars CodeVars) (Message, error) {
	if vars.Product == "" {
		vars.Product = "bizdesk"
	}
	subj, ok := subjects[vars.Purpose]
	if !ok {
		subj = subjects[PurposeVerify]
	}

	var txt, html bytes.Buffer
	if err := codeTextTmpl.Execute(&txt, vars); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	if err := codeHTMLTmpl.Execute(&html, vars); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf(subj, vars.Product),
		Text:    txt.String(),
		HTML:    html.String(),
	}, nil
}
