package omsdapp

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/omsd-qa/omsd-e2e/internal/errs"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []string{
	"login.html",
	"forgot.html",
	"mfa_method.html",
	"mfa_send.html",
	"mfa_verify.html",
	"home.html",
	"products.html",
	"softwarelist.html",
}

// parseTemplates combines base.html with each page template.
func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		t, err := template.New(page).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, fmt.Sprintf("parse template %s failed", page), err)
		}
		out[page] = t
	}
	return out, nil
}
