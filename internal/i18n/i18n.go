package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"whatsapp-disparador/pkg/logger"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator owns the message bundle shared by all requests.
type Translator struct {
	bundle    *goi18n.Bundle
	fallbacks []string
	logger    *logger.Logger
	languages []string
}

// New loads every embedded locales/active.<lang>.json file. languages is
// the preference order used when a request names none of the loaded ones;
// its first entry is the bundle default.
func New(languages []string, log *logger.Logger) (*Translator, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("at least one language is required")
	}
	defaultTag, err := language.Parse(languages[0])
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", languages[0], err)
	}

	bundle := goi18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded locales: %w", err)
	}

	var loaded []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			log.Debug("Skipping non-locale file", "file", name)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("failed to load locale file %s: %w", name, err)
		}
		loaded = append(loaded, strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json"))
	}

	log.Debug("Locales loaded", "languages", loaded)

	return &Translator{
		bundle:    bundle,
		fallbacks: languages,
		logger:    log,
		languages: loaded,
	}, nil
}

// Languages lists the loaded locale codes.
func (t *Translator) Languages() []string {
	return t.languages
}

// Localizer returns a localizer for an Accept-Language header value.
func (t *Translator) Localizer(acceptLanguage string) *Localizer {
	prefs := make([]string, 0, len(t.fallbacks)+1)
	if acceptLanguage != "" {
		prefs = append(prefs, acceptLanguage)
	}
	prefs = append(prefs, t.fallbacks...)

	return &Localizer{
		localizer: goi18n.NewLocalizer(t.bundle, prefs...),
		logger:    t.logger,
	}
}

// Localizer translates message IDs for one language preference list.
type Localizer struct {
	localizer *goi18n.Localizer
	logger    *logger.Logger
}

// T translates a message, returning the ID itself when it is unknown.
func (l *Localizer) T(id string, data map[string]any) string {
	return l.localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// Count translates a plural message with {{.Count}} set to n.
func (l *Localizer) Count(id string, n int) string {
	return l.localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
}

// MonthLabel renders the calendar heading, e.g. "junho de 2025".
func (l *Localizer) MonthLabel(year int, month time.Month) string {
	name := l.T("month_"+strconv.Itoa(int(month)), nil)
	return l.T(MsgCalendarMonthLabel, map[string]any{"Month": name, "Year": year})
}

func (l *Localizer) localize(cfg *goi18n.LocalizeConfig) string {
	msg, err := l.localizer.Localize(cfg)
	if err != nil {
		l.logger.Debug("Missing translation key", "key", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return msg
}
