// Package cmdenv carries what every bookjournal subcommand needs: the loaded
// config, the logger, and constructors for the catalog and the journal.
package cmdenv

import (
	"go.uber.org/zap"

	"bookjournal/src/internal/catalog"
	"bookjournal/src/internal/config"
	"bookjournal/src/internal/httpx"
	"bookjournal/src/internal/journal"
	"bookjournal/src/internal/keywords"
	"bookjournal/src/internal/publisher"
	"bookjournal/src/internal/search"
	"bookjournal/src/internal/stringsx"
)

// Annotation keys a subcommand sets to relax config loading in the root.
const (
	// SkipValidation runs the command even if the config fails Validate.
	SkipValidation = "bookjournal.skip_validation"
	// IgnoreLoadErrors falls back to the defaults when the config cannot be read.
	IgnoreLoadErrors = "bookjournal.ignore_load_errors"
)

// Env is filled in by the root command before any subcommand runs.
// Tests build one directly and may inject Client or Doer.
type Env struct {
	ConfigPath string
	Config     *config.Config
	Logger     *zap.Logger

	// Client replaces the configured catalog when set.
	Client catalog.Client
	// Doer replaces the HTTP client used by the configured catalog.
	Doer httpx.Doer
}

func (e *Env) cfg() *config.Config {
	if e.Config == nil {
		e.Config = config.DefaultConfig()
	}
	return e.Config
}

// Log never returns nil.
func (e *Env) Log() *zap.Logger {
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e.Logger
}

// Catalog returns the injected client or builds the configured provider.
func (e *Env) Catalog() (catalog.Client, error) {
	if e.Client != nil {
		return e.Client, nil
	}
	return catalog.New(e.cfg().CatalogOptions(), e.Doer)
}

// Resolvers is the lookup chain for a single book id: the configured
// catalog first, then openBD when enabled.
func (e *Env) Resolvers(c catalog.Client) []catalog.Named {
	cc := e.cfg().Catalog
	chain := []catalog.Named{{Name: stringsx.FirstNonEmpty(cc.Provider, catalog.ProviderRakuten), Resolver: catalog.ClientResolver{Client: c}}}
	if cc.OpenBD {
		doer := e.Doer
		if doer == nil {
			doer = httpx.NewClient(e.cfg().GetTimeout())
		}
		chain = append(chain, catalog.Named{Name: catalog.ProviderOpenBD, Resolver: catalog.NewOpenBD(cc.OpenBDURL, doer)})
	}
	return chain
}

// Searcher wires the pipeline around c using the search section of the config.
func (e *Env) Searcher(c catalog.Client) *search.Searcher {
	sc := e.cfg().Search
	return search.New(c, publisher.New(sc.Publishers), keywords.New(sc.StopWords...), search.Options{
		MaxRelated: sc.MaxRelated,
		Match:      search.MatchMode(sc.QueryMatch),
		Logger:     e.Log().Named("search"),
	})
}

// OpenJournal opens the configured journal database. Callers close it.
func (e *Env) OpenJournal() (*journal.Store, error) {
	return journal.Open(e.cfg().Journal.DBPath)
}
