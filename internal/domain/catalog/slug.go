package catalog

import (
	"strings"
	"unicode"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into a URL slug: accents are stripped,
// letters lowercased and every run of other characters becomes one hyphen.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// ValidateSlug checks a slug against the characters a URL path segment allows
func ValidateSlug(slug string, maxLen int) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > maxLen {
		return shared.NewDomainError("INVALID_SLUG", "Slug is too long")
	}
	for _, r := range slug {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' {
			return shared.NewDomainError("INVALID_SLUG", "Slug may only contain letters, numbers, hyphens and underscores")
		}
	}
	return nil
}
