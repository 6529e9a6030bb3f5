// Package i18n provides the bilingual (English/Nepali) static string
// catalog. Catalogs are embedded YAML. Lookups never fail: a missing key
// falls back to English and then to the key itself.
package i18n

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Supported languages.
const (
	LangEnglish = "en"
	LangNepali  = "ne"

	DefaultLang = LangEnglish
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

var catalogs map[string]map[string]string

func init() {
	catalogs = make(map[string]map[string]string, 2)
	for _, lang := range []string{LangEnglish, LangNepali} {
		data, err := catalogFS.ReadFile(fmt.Sprintf("catalogs/%s.yaml", lang))
		if err != nil {
			panic(fmt.Sprintf("i18n: missing embedded catalog for %q: %v", lang, err))
		}
		var cat map[string]string
		if err := yaml.Unmarshal(data, &cat); err != nil {
			panic(fmt.Sprintf("i18n: malformed catalog for %q: %v", lang, err))
		}
		catalogs[lang] = cat
	}
}

// Valid reports whether lang is a supported language code.
func Valid(lang string) bool {
	return lang == LangEnglish || lang == LangNepali
}

// Normalize returns lang when supported, DefaultLang otherwise.
func Normalize(lang string) string {
	if Valid(lang) {
		return lang
	}
	return DefaultLang
}

// T returns the translation of key in lang, falling back to English and
// finally to the key itself.
func T(lang, key string) string {
	if cat, ok := catalogs[lang]; ok {
		if v, ok := cat[key]; ok {
			return v
		}
	}
	if v, ok := catalogs[DefaultLang][key]; ok {
		return v
	}
	return key
}

// Languages returns the supported language codes.
func Languages() []string {
	return []string{LangEnglish, LangNepali}
}
