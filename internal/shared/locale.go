package shared

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is the baseline locale used when no preference is known.
const DefaultLocale = "en"

// SupportedLocales lists the locales the service returns messages in.
var SupportedLocales = []string{"en", "bg"}

var localeMatcher = language.NewMatcher(func() []language.Tag {
	tags := make([]language.Tag, 0, len(SupportedLocales))
	for _, l := range SupportedLocales {
		tags = append(tags, language.MustParse(l))
	}
	return tags
}())

// NegotiateLocale resolves an Accept-Language header value against the
// supported set, falling back to DefaultLocale.
func NegotiateLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	return SupportedLocales[idx]
}

// IsSupportedLocale reports whether code names a locale the service knows.
func IsSupportedLocale(code string) bool {
	for _, l := range SupportedLocales {
		if l == code {
			return true
		}
	}
	return false
}

type localeContextKey struct{}

// ContextWithLocale stores the negotiated locale in context.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// LocaleFromContext returns the negotiated locale, DefaultLocale when unset.
func LocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeContextKey{}).(string); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}
