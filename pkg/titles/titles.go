// Package titles localizes route display titles.
//
// Titles are go-i18n messages keyed "route.<route name>". English and
// Chinese catalogs are embedded; more can be loaded from message files.
package titles

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/vango-dev/navcore/pkg/router"
)

//go:embed locales/*.toml
var locales embed.FS

// NotFoundKey is the message key used for the not-found view.
const NotFoundKey = "notFound"

// Catalog looks up route titles.
type Catalog struct {
	mu      sync.RWMutex
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// Load returns a catalog holding the embedded translations, with English
// as the fallback language.
func Load() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := locales.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("titles: parse %s: %w", e.Name(), err)
		}
	}

	c := &Catalog{bundle: bundle}
	c.matcher = language.NewMatcher(bundle.LanguageTags())
	return c, nil
}

// LoadFile adds translations from a message file such as
// "active.fr.toml" or "active.de.json".
func (c *Catalog) LoadFile(file string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.bundle.LoadMessageFile(file); err != nil {
		return fmt.Errorf("titles: load %s: %w", file, err)
	}
	c.matcher = language.NewMatcher(c.bundle.LanguageTags())
	return nil
}

// Languages returns the languages with translations.
func (c *Catalog) Languages() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bundle.LanguageTags()
}

// Match picks the best supported language for an Accept-Language header
// value or a plain tag such as "zh-CN".
func (c *Catalog) Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, idx, _ := c.matcher.Match(tags...)
	return c.bundle.LanguageTags()[idx]
}

// Title returns the title of the route called name in the first of langs
// that has one, falling back to English, then to name itself.
func (c *Catalog) Title(name string, langs ...string) string {
	if name == "" {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	loc := i18n.NewLocalizer(c.bundle, langs...)
	s, _ := loc.Localize(&i18n.LocalizeConfig{MessageID: "route." + name})
	if s == "" {
		return name
	}
	return s
}

// RouteTitle returns the title for a resolved route. Unnamed routes
// rendering notFoundView use NotFoundKey.
func (c *Catalog) RouteTitle(route router.ResolvedRoute, notFoundView string, langs ...string) string {
	name := route.Name
	if name == "" && route.ViewID == notFoundView {
		name = NotFoundKey
	}
	return c.Title(name, langs...)
}
