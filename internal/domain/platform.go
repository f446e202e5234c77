package domain

import (
	"fmt"
	"strings"
)

// Platform identifica un marketplace. Es un conjunto cerrado: cualquier fuente
// nueva necesita su propia variante aquí y una fila en la tabla de fees.
type Platform string

const (
	PlatformAmazon              Platform = "amazon"
	PlatformEBay                Platform = "ebay"
	PlatformWalmart             Platform = "walmart"
	PlatformTarget              Platform = "target"
	PlatformBestBuy             Platform = "bestbuy"
	PlatformEtsy                Platform = "etsy"
	PlatformMercari             Platform = "mercari"
	PlatformPoshmark            Platform = "poshmark"
	PlatformFacebookMarketplace Platform = "facebook_marketplace"
	PlatformOfferUp             Platform = "offerup"
	PlatformStockX              Platform = "stockx"
	PlatformGOAT                Platform = "goat"
	PlatformAliExpress          Platform = "aliexpress"
	PlatformTCGPlayer           Platform = "tcgplayer"
	PlatformCraigslist          Platform = "craigslist"
)

var allPlatforms = []Platform{
	PlatformAmazon,
	PlatformEBay,
	PlatformWalmart,
	PlatformTarget,
	PlatformBestBuy,
	PlatformEtsy,
	PlatformMercari,
	PlatformPoshmark,
	PlatformFacebookMarketplace,
	PlatformOfferUp,
	PlatformStockX,
	PlatformGOAT,
	PlatformAliExpress,
	PlatformTCGPlayer,
	PlatformCraigslist,
}

// AllPlatforms devuelve una copia de todas las plataformas soportadas.
func AllPlatforms() []Platform {
	out := make([]Platform, len(allPlatforms))
	copy(out, allPlatforms)
	return out
}

// Valid devuelve true si p pertenece al conjunto cerrado.
func (p Platform) Valid() bool {
	for _, known := range allPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform convierte un nombre (case-insensitive) en Platform.
// Acepta "facebook-marketplace" y "facebook marketplace" como alias.
func ParsePlatform(s string) (Platform, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	p := Platform(norm)
	if !p.Valid() {
		return "", fmt.Errorf("domain.ParsePlatform: unknown platform %q", s)
	}
	return p, nil
}
