package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency-api/internal/pricing"
	"github.com/iliyamo/travel-agency-api/internal/repository"
)

// CatalogHandler serves the public package/departure catalog and the
// admin price recalculation endpoint.  Public endpoints sit behind the
// Redis response cache and rate limiter; they never expose markup
// parameters, only the derived suggested sale prices.
type CatalogHandler struct {
	PaqueteRepo *repository.PaqueteRepo
	SalidaRepo  *repository.SalidaRepo
	Resolver    *pricing.Resolver
}

// NewCatalogHandler constructs a CatalogHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewCatalogHandler(paqueteRepo *repository.PaqueteRepo, salidaRepo *repository.SalidaRepo, resolver *pricing.Resolver) *CatalogHandler {
	if paqueteRepo == nil || salidaRepo == nil || resolver == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{PaqueteRepo: paqueteRepo, SalidaRepo: salidaRepo, Resolver: resolver}
}

// ListPaquetes handles GET /v1/paquetes.  It returns the active
// packages with their currency codes.
func (h *CatalogHandler) ListPaquetes(c echo.Context) error {
	paquetes, err := h.PaqueteRepo.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(paquetes))
	for _, p := range paquetes {
		out = append(out, echo.Map{
			"id":     p.ID,
			"nombre": p.Nombre,
			"moneda": p.MonedaCodigo,
			"propio": p.Propio,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"paquetes": out})
}

// ListSalidas handles GET /v1/paquetes/:id/salidas.  It returns the
// active departures of a package ordered by outbound date, including
// the cached suggested sale prices.
func (h *CatalogHandler) ListSalidas(c echo.Context) error {
	paqueteID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paquete id"})
	}
	ctx := c.Request().Context()
	if _, err := h.PaqueteRepo.GetByID(ctx, paqueteID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "paquete not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	salidas, err := h.SalidaRepo.ListByPaquete(ctx, paqueteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(salidas))
	for _, s := range salidas {
		item := echo.Map{
			"id":                  s.ID,
			"fecha_salida":        s.FechaSalida.Format("2006-01-02"),
			"senia":               s.Senia.String(),
			"moneda":              s.MonedaCodigo,
			"precio_sugerido_min": s.PrecioSugeridoMin.String(),
			"precio_sugerido_max": s.PrecioSugeridoMax.String(),
		}
		if s.FechaRegreso != nil {
			item["fecha_regreso"] = s.FechaRegreso.Format("2006-01-02")
		}
		if s.Cupo != nil {
			item["cupo"] = *s.Cupo
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"salidas": out})
}

// GetSalida handles GET /v1/salidas/:id.  It returns one departure
// with its cached price bounds and remaining cupo.
func (h *CatalogHandler) GetSalida(c echo.Context) error {
	salidaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salida id"})
	}
	s, err := h.SalidaRepo.GetByID(c.Request().Context(), salidaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salida not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	item := echo.Map{
		"id":                  s.ID,
		"paquete_id":          s.PaqueteID,
		"fecha_salida":        s.FechaSalida.Format("2006-01-02"),
		"senia":               s.Senia.String(),
		"moneda":              s.MonedaCodigo,
		"precio_sugerido_min": s.PrecioSugeridoMin.String(),
		"precio_sugerido_max": s.PrecioSugeridoMax.String(),
		"activo":              s.Activo,
	}
	if s.FechaRegreso != nil {
		item["fecha_regreso"] = s.FechaRegreso.Format("2006-01-02")
	}
	if s.Cupo != nil {
		item["cupo"] = *s.Cupo
	}
	return c.JSON(http.StatusOK, item)
}

// RecalcularPrecios handles POST /v1/salidas/:id/recalcular-precios
// (ADMIN).  It runs the price resolver over the departure's rooms and
// persists the suggested min/max sale prices.  When no room has
// remaining cupo both bounds are persisted as zero and has_rooms is
// false in the response; that is "no rooms available", not an error.
func (h *CatalogHandler) RecalcularPrecios(c echo.Context) error {
	salidaID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salida id"})
	}
	ctx := c.Request().Context()
	input, err := h.SalidaRepo.BuildPricingInput(ctx, salidaID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salida not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	sugg, err := h.Resolver.Suggest(ctx, *input)
	if err != nil {
		return conversionError(c, err)
	}
	if err := h.SalidaRepo.UpdatePreciosSugeridos(ctx, salidaID, sugg.Min.Value, sugg.Max.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"salida_id":           salidaID,
		"moneda":              sugg.Min.Currency,
		"precio_sugerido_min": sugg.Min.Value.String(),
		"precio_sugerido_max": sugg.Max.Value.String(),
		"has_rooms":           sugg.HasRooms,
	})
}
