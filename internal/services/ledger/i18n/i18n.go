// Package i18n provides user-facing translations for ledger error codes.
//
// Error codes stay machine-readable on the wire; this package resolves the
// locale a caller asked for and renders the human message attached to gRPC
// statuses as a LocalizedMessage detail.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

// BaseLocale is the canonical source locale for message catalogs.
const BaseLocale = "en-US"

// supported lists the locales with full message catalogs. The first entry
// is the fallback for unknown locales.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

// MatchLocale resolves a requested locale string to the best supported tag.
// Empty or unknown locales fall back to the base locale.
func MatchLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return supported[0]
	}
	tag, _ := language.MatchStrings(matcher, locale)
	return tag
}

// Printer returns a message printer for the resolved locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(MatchLocale(locale))
}

// UserMessage renders the user-facing message for an error code in the
// requested locale. Unknown codes render as the code itself so callers
// always receive something actionable.
func UserMessage(locale string, code apperrors.Code) string {
	return Printer(locale).Sprintf(string(code))
}
