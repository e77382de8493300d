// Package i18n resolves language tags against the locales shipped in the
// embedded catalog.
package i18n

import (
	"strings"

	"github.com/louisbranch/traitorops/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
)

var (
	defaultTag    = language.MustParse(catalog.BaseLocale)
	supportedTags = buildSupportedTags(catalog.Default().Locales())
	matcher       = language.NewMatcher(supportedTags)
)

// DefaultTag returns the fallback language tag.
func DefaultTag() language.Tag {
	return defaultTag
}

// SupportedTags returns the tags with a catalog, default first.
func SupportedTags() []language.Tag {
	return append([]language.Tag(nil), supportedTags...)
}

// ParseTag parses value and reports whether it names a supported locale,
// either exactly or through its base language.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultTag, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return defaultTag, false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return defaultTag, false
	}
	return supportedTags[index], true
}

// MatchTags picks the best supported tag for tags in preference order.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return defaultTag
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return defaultTag
	}
	return supportedTags[index]
}

func buildSupportedTags(locales []string) []language.Tag {
	tags := []language.Tag{defaultTag}
	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err != nil || tag == defaultTag {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
