package dispatch

import (
	"strings"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// namePlaceholder is the only substitution the renderer knows.
const namePlaceholder = "[NAME]"

// Render replaces every [NAME] occurrence with the contact's display name.
// A template without the placeholder comes back unchanged.
func Render(template, name string) string {
	return strings.ReplaceAll(template, namePlaceholder, name)
}

// SelectTemplate resolves the body for a language code. On a miss (or an
// empty exact match) it falls back to the first non-empty template in map
// iteration order; callers must not depend on which language the fallback
// picks. Returns ErrNoTemplate when every body is empty.
func SelectTemplate(templates map[string]string, language string) (string, error) {
	if body := templates[language]; body != "" {
		return body, nil
	}
	for _, body := range templates {
		if body != "" {
			return body, nil
		}
	}
	return "", appErrors.ErrNoTemplate
}
