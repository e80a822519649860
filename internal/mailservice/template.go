package mailservice

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown email template")

// emailTemplate holds one template file parsed twice: the subject and plain text body are
// rendered without HTML escaping, the HTML body with it.
type emailTemplate struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// renderedMail is an email ready to be put on the wire.
type renderedMail struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

// NewTemplate parses every embedded email template. The templates ship inside the binary,
// so a parse failure is a programming error.
func NewTemplate() *Template {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	tp := &Template{sets: make(map[string]*emailTemplate, len(names))}
	for _, name := range names {
		tp.sets[path.Base(name)] = &emailTemplate{
			text: texttemplate.Must(texttemplate.New("email").ParseFS(templateFS, name)),
			html: htmltemplate.Must(htmltemplate.New("email").ParseFS(templateFS, name)),
		}
	}

	return tp
}

// Render executes the subject, plainBody and htmlBody blocks of the named template.
func (tp *Template) Render(name string, data any) (*renderedMail, error) {
	set, ok := tp.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var subject, plainBody, htmlBody bytes.Buffer

	if err := set.text.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}

	if err := set.text.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return nil, err
	}

	if err := set.html.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return nil, err
	}

	return &renderedMail{
		// a generated title must not be able to break the header onto a second line
		Subject:   strings.Join(strings.Fields(subject.String()), " "),
		PlainBody: strings.TrimSpace(plainBody.String()),
		HTMLBody:  htmlBody.String(),
	}, nil
}
