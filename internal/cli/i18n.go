package cli

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/vcard-editor/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator renders user-facing messages in the selected language.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// NewTranslator loads every embedded locale and selects lang, falling back
// to English for missing messages.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	tr := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		tr.SetLanguage(lang)
		return tr
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		tr.Languages = append(tr.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	tr.SetLanguage(lang)
	return tr
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = i18n.NewLocalizer(t.bundle, lang)
}

// T translates key. Unknown keys are returned as-is.
func (t *Translator) T(key string) string {
	return t.TData(key, nil)
}

// TData translates key, filling its template with data.
func (t *Translator) TData(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// FormatSummary renders a birthday event title.
func (t *Translator) FormatSummary(name string, age int, yearKnown bool) string {
	switch {
	case !yearKnown:
		return t.TData(config.TKeyEvtSummary, map[string]any{"Name": name})
	case age == 0:
		return t.TData(config.TKeyEvtSummaryBrth, map[string]any{"Name": name})
	default:
		return t.TData(config.TKeyEvtSummaryAge, map[string]any{"Name": name, "Age": age})
	}
}
