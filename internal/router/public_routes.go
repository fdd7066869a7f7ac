package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency-api/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  These routes return sanitized catalog and currency data
// for guests and apply no JWT or role middleware.  The optional middleware
// list (typically the Redis response cache and the token-bucket rate
// limiter) is applied to the whole group.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, cur *handler.CurrencyHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	// Browse the active package catalog.
	g.GET("/paquetes", cat.ListPaquetes)
	// List departures of a specific package with cached suggested prices.
	g.GET("/paquetes/:id/salidas", cat.ListSalidas)
	// Departure detail by id, rooms and prices included.
	g.GET("/salidas/:id", cat.GetSalida)

	// Current exchange rate for a currency pair, optionally as of a date.
	g.GET("/cotizaciones/vigente", cur.GetVigente)
	// Convert an amount between currencies using the effective rate.
	g.GET("/convertir", cur.Convertir)
}
