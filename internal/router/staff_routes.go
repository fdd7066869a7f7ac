package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency-api/internal/handler"    // staff handlers
	"github.com/iliyamo/travel-agency-api/internal/middleware" // JWT + role middlewares
	"github.com/iliyamo/travel-agency-api/internal/model"
)

// RegisterStaff registers back-office endpoints under /v1.
// All routes require a valid JWT; the allowed roles vary per area:
// sellers manage reservations, cashiers register payments and only
// administrators touch pricing and exchange rates.
func RegisterStaff(e *echo.Echo, r *handler.ReservaHandler, cp *handler.ComprobanteHandler, cat *handler.CatalogHandler, cur *handler.CurrencyHandler, jwtSecret string) {
	// ---- Reservations: ADMIN + VENDEDOR ----
	ventas := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleVendedor),
	)
	ventas.POST("/reservas", r.Create)
	ventas.GET("/reservas/:id", r.Get)
	ventas.PUT("/reservas/:id/pasajeros/:pid", r.AssignPasajero)
	ventas.POST("/reservas/:id/facturacion", r.Facturacion)
	ventas.POST("/reservas/:id/cancelar", r.Cancelar)

	// ---- Payment vouchers: ADMIN + CAJERO ----
	caja := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCajero),
	)
	caja.POST("/comprobantes", cp.Create)
	caja.POST("/comprobantes/:id/anular", cp.Anular)

	// The account statement serves both desks.
	staff := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleVendedor, model.RoleCajero),
	)
	staff.GET("/reservas/:id/estado-cuenta", r.EstadoCuenta)

	// ---- Pricing and exchange rates: ADMIN only ----
	admin := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("/salidas/:id/recalcular-precios", cat.RecalcularPrecios)
	admin.POST("/cotizaciones", cur.CreateCotizacion)
}
