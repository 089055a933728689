package app

import (
	"context"

	"github.com/vango-dev/navcore/pkg/router"
	"github.com/vango-dev/navcore/pkg/titles"
	"github.com/vango-dev/navcore/pkg/view"
)

// ViewIDs lists the views the console renders.
var ViewIDs = []string{
	ViewHome,
	ViewUserLogin,
	ViewUserRegister,
	ViewUserManage,
	ViewAppGeneration,
	ViewAppManage,
	ViewAppEdit,
}

// Views returns a registry with a handler for every console view and for
// notFound. Pages are titled in the session language, then defaultLang.
func Views(catalog *titles.Catalog, notFound, defaultLang string) *view.Registry {
	h := view.HandlerFunc(func(ctx context.Context, route router.ResolvedRoute) (view.Page, error) {
		langs := make([]string, 0, 2)
		if lang := Language(ctx); lang != "" {
			langs = append(langs, lang)
		}
		langs = append(langs, defaultLang)
		return view.Page{Title: catalog.RouteTitle(route, notFound, langs...)}, nil
	})

	reg := view.NewRegistry()
	for _, id := range append([]string{notFound}, ViewIDs...) {
		if _, ok := reg.Lookup(id); !ok {
			reg.MustRegister(id, h)
		}
	}
	return reg
}
