// Package i18n serves the storefront's flat translation tables.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFiles embed.FS

// Locale is a supported UI locale code.
type Locale string

const (
	English   Locale = "en"
	French    Locale = "fr"
	Spanish   Locale = "es"
	Taqbaylit Locale = "taq"

	Default = English
)

// Language is a selectable UI language.
type Language struct {
	Code  Locale `json:"code"`
	Label string `json:"label"`
}

var languages = []Language{
	{English, "English"},
	{French, "Français"},
	{Spanish, "Español"},
	{Taqbaylit, "Taqbaylit"},
}

// BackendLocale is a content locale the commerce backend holds translations for.
type BackendLocale struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var backendLocales = []BackendLocale{
	{"fr", "French"},
	{"en", "English"},
	{"es", "Spanish"},
}

// Taqbaylit negotiates as Kabyle; its table is French with overrides.
var tags = map[Locale]language.Tag{
	English:   language.English,
	French:    language.French,
	Spanish:   language.Spanish,
	Taqbaylit: language.MustParse("kab"),
}

var matcher = language.NewMatcher([]language.Tag{
	tags[English], tags[French], tags[Spanish], tags[Taqbaylit],
})

var matcherLocales = []Locale{English, French, Spanish, Taqbaylit}

// Dictionary holds one table per locale.
type Dictionary struct {
	tables map[Locale]map[string]string
}

// Load parses the embedded locale tables. The taq table starts as a copy of
// fr and is overlaid with taq.json.
func Load() (*Dictionary, error) {
	d := &Dictionary{tables: make(map[Locale]map[string]string, len(languages))}
	for _, l := range []Locale{English, French, Spanish} {
		table, err := readTable(l)
		if err != nil {
			return nil, err
		}
		d.tables[l] = table
	}

	overrides, err := readTable(Taqbaylit)
	if err != nil {
		return nil, err
	}
	taq := make(map[string]string, len(d.tables[French]))
	for k, v := range d.tables[French] {
		taq[k] = v
	}
	for k, v := range overrides {
		taq[k] = v
	}
	d.tables[Taqbaylit] = taq
	return d, nil
}

func readTable(l Locale) (map[string]string, error) {
	raw, err := localeFiles.ReadFile("locales/" + string(l) + ".json")
	if err != nil {
		return nil, fmt.Errorf("read %s locale: %w", l, err)
	}
	var table map[string]string
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse %s locale: %w", l, err)
	}
	return table, nil
}

// T translates key: the locale's non-empty value, else the English value,
// else the key itself.
func (d *Dictionary) T(l Locale, key string) string {
	if v := d.tables[l][key]; v != "" {
		return v
	}
	if v := d.tables[Default][key]; v != "" {
		return v
	}
	return key
}

// Table returns every key translated for l, English filling the gaps.
func (d *Dictionary) Table(l Locale) map[string]string {
	out := make(map[string]string, len(d.tables[Default]))
	for k := range d.tables[Default] {
		out[k] = d.T(l, k)
	}
	for k := range d.tables[l] {
		out[k] = d.T(l, k)
	}
	return out
}

// Normalize returns code when it names a supported locale, else Default.
func Normalize(code string) Locale {
	l := Locale(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := tags[l]; ok {
		return l
	}
	return Default
}

// Supported reports whether code names a supported locale.
func Supported(code string) bool {
	_, ok := tags[Locale(code)]
	return ok
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string) Locale {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return Default
	}
	return matcherLocales[idx]
}

// Tag is the language tag used to format numbers and prices for l.
func Tag(l Locale) language.Tag {
	if t, ok := tags[l]; ok {
		return t
	}
	return tags[Default]
}

// Languages lists the selectable UI languages.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// BackendLocales lists the content locales served by the backend.
func BackendLocales() []BackendLocale {
	return append([]BackendLocale(nil), backendLocales...)
}
