package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
)

//go:embed templates/callback.html
var callbackPageHTML string

var callbackPageTemplate = template.Must(template.New("callback").Parse(callbackPageHTML))

type callbackPageData struct {
	Title       string
	Heading     string
	Subtitle    string
	RedirectURL string
	Failed      bool
}

func renderCallbackPage(data callbackPageData) (string, error) {
	var buf bytes.Buffer
	if err := callbackPageTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
