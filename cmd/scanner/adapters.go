package main

import (
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/arbscout/config"
	"github.com/alejandrodnm/arbscout/internal/adapters/fixture"
	"github.com/alejandrodnm/arbscout/internal/adapters/htmlsearch"
	"github.com/alejandrodnm/arbscout/internal/adapters/httpsearch"
	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/alejandrodnm/arbscout/internal/ports"
)

// buildAdapters construye un adapter por plataforma habilitada.
// En dry-run ignora la config y carga los fixtures de fixturesDir.
func buildAdapters(cfg *config.Config, dryRun bool, fixturesDir string) (map[domain.Platform]ports.PlatformAdapter, error) {
	out := make(map[domain.Platform]ports.PlatformAdapter)

	if dryRun {
		loaded, err := fixture.Load(fixturesDir)
		if err != nil {
			return nil, err
		}
		for p, a := range loaded {
			out[p] = a
		}
		slog.Info("dry-run adapters loaded", "dir", fixturesDir, "platforms", len(out))
		return out, nil
	}

	for _, pc := range cfg.Platforms {
		if !pc.IsEnabled() {
			slog.Debug("platform disabled", "platform", pc.Name)
			continue
		}
		a, err := buildAdapter(pc)
		if err != nil {
			return nil, err
		}
		out[a.Platform()] = a
	}

	if len(out) == 0 {
		slog.Warn("no platforms enabled, scans will return no opportunities")
	}
	return out, nil
}

func buildAdapter(pc config.PlatformConfig) (ports.PlatformAdapter, error) {
	p, err := domain.ParsePlatform(pc.Name)
	if err != nil {
		return nil, err
	}

	switch pc.Type {
	case config.AdapterHTTP:
		return httpsearch.NewClient(httpsearch.Config{
			Platform:   p,
			BaseURL:    pc.BaseURL,
			APIKey:     pc.APIKey(),
			RatePerSec: pc.RatePerSec,
			Timeout:    pc.Timeout(),
		})
	case config.AdapterHTML:
		return htmlsearch.NewScraper(htmlsearch.Config{
			Platform:   p,
			SearchURL:  pc.SearchURL,
			ProductURL: pc.ProductURL,
			Selectors:  selectors(pc.Selectors),
			RatePerSec: pc.RatePerSec,
			Timeout:    pc.Timeout(),
		})
	case config.AdapterFixture:
		a, err := fixture.LoadFile(pc.FixtureFile)
		if err != nil {
			return nil, err
		}
		if a.Platform() != p {
			return nil, fmt.Errorf("fixture %s is for %s, configured as %s", pc.FixtureFile, a.Platform(), p)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("platform %s: unknown adapter type %q", p, pc.Type)
	}
}

func selectors(m map[string]string) htmlsearch.Selectors {
	return htmlsearch.Selectors{
		Item:       m["item"],
		ID:         m["id"],
		IDAttr:     m["id_attr"],
		Title:      m["title"],
		Price:      m["price"],
		Shipping:   m["shipping"],
		Link:       m["link"],
		Image:      m["image"],
		UPC:        m["upc"],
		OutOfStock: m["out_of_stock"],
	}
}
