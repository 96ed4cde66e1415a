// Package forms talks to the external form provider and derives the public
// links of a provisioned form.
package forms

import (
	"net/url"
	"strings"
)

// FormIDPlaceholder is replaced by the escaped form id in link templates.
const FormIDPlaceholder = "{formId}"

const (
	DefaultFormURLTemplate   = "https://form.jotform.com/" + FormIDPlaceholder
	DefaultQRCodeURLTemplate = "https://qr.example/" + FormIDPlaceholder + ".png"
)

// Links maps a form id to its public URLs. Both mappings are pure, so a box's
// links are recomputed on every read instead of being stored.
type Links struct {
	FormURLTemplate   string
	QRCodeURLTemplate string
}

func DefaultLinks() Links {
	return Links{
		FormURLTemplate:   DefaultFormURLTemplate,
		QRCodeURLTemplate: DefaultQRCodeURLTemplate,
	}
}

func (l Links) QRCodeURL(formID string) string {
	return expand(l.QRCodeURLTemplate, DefaultQRCodeURLTemplate, formID)
}

func (l Links) FormURL(formID string) string {
	return expand(l.FormURLTemplate, DefaultFormURLTemplate, formID)
}

func expand(tmpl, fallback, formID string) string {
	if tmpl == "" {
		tmpl = fallback
	}
	return strings.ReplaceAll(tmpl, FormIDPlaceholder, url.PathEscape(formID))
}
