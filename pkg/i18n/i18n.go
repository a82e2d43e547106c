package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var localeFiles = []string{
	"locales/active.es.json",
	"locales/active.en.json",
}

type Translator struct {
	bundle *goi18n.Bundle
}

// New builds a translator backed by the embedded locale files.
// defaultLang is used when a request carries no usable Accept-Language.
func New(defaultLang string) (*Translator, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}

	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Localize returns the message for id in the best matching language.
// langs are Accept-Language values or plain tags. Unknown ids come back unchanged.
func (t *Translator) Localize(id string, data map[string]interface{}, langs ...string) string {
	loc := goi18n.NewLocalizer(t.bundle, langs...)
	// a fallback to the default language still reports MessageNotFoundErr
	msg, _ := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if msg == "" {
		return id
	}
	return msg
}
