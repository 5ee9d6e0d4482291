package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultPriorVersion fills {prior_release_version} when no start tag is known
const DefaultPriorVersion = "previous version"

// DefaultEmailTemplate is used when no template file is configured
const DefaultEmailTemplate = `From: {from_email}
To: {to_email}
Cc: {cc_email}
Subject: {product_name} {release_version} release notes

Hello team,

{product_name} {release_version} is out. Changes since {prior_release_version}:
{release_notes}
Regards,
Release Bot
`

// EmailFields holds the values substituted into an email template
type EmailFields struct {
	From         string
	To           string
	CC           string
	Product      string
	Version      string
	PriorVersion string
}

// Email substitutes every recognized placeholder in tmpl.
// Unknown placeholders are left untouched.
func Email(tmpl string, f EmailFields, body string) string {
	prior := f.PriorVersion
	if prior == "" {
		prior = DefaultPriorVersion
	}

	r := strings.NewReplacer(
		"{from_email}", f.From,
		"{to_email}", f.To,
		"{cc_email}", f.CC,
		"{product_name}", f.Product,
		"{release_version}", f.Version,
		"{prior_release_version}", prior,
		"{release_notes}", body,
	)
	return r.Replace(tmpl)
}

// LoadEmailTemplate reads the template at path. An empty path or a missing
// file yields DefaultEmailTemplate.
func LoadEmailTemplate(path string) (string, error) {
	if path == "" {
		return DefaultEmailTemplate, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultEmailTemplate, nil
	}
	if err != nil {
		return "", fmt.Errorf("read email template: %w", err)
	}
	return string(raw), nil
}
