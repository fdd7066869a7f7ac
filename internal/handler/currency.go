package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency-api/internal/currency"
	"github.com/iliyamo/travel-agency-api/internal/model"
	"github.com/iliyamo/travel-agency-api/internal/money"
	"github.com/iliyamo/travel-agency-api/internal/repository"
)

// CurrencyHandler exposes exchange-rate registration, effective-rate
// lookup and a conversion preview.  Rate registration is an operator
// action: bookings in a foreign currency block until a rate exists, so
// the endpoint is the unblocking path for ErrNoEffectiveRate failures.
type CurrencyHandler struct {
	Repo      *repository.CurrencyRepo
	Converter *currency.Converter
}

// NewCurrencyHandler constructs a CurrencyHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewCurrencyHandler(repo *repository.CurrencyRepo, conv *currency.Converter) *CurrencyHandler {
	if repo == nil || conv == nil {
		panic("nil dependency passed to NewCurrencyHandler")
	}
	return &CurrencyHandler{Repo: repo, Converter: conv}
}

// conversionError maps the currency error taxonomy onto HTTP statuses.
// Unsupported pairs are caller mistakes (400); a missing rate is a
// blocking precondition an operator must resolve first (422).
func conversionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, currency.ErrUnsupportedConversion):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported currency pair"})
	case errors.Is(err, currency.ErrNoEffectiveRate):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no exchange rate registered for date"})
	case errors.Is(err, money.ErrInvalidCurrency):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid currency code"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conversion failed"})
	}
}

// CreateCotizacion handles POST /v1/cotizaciones (ADMIN).  The body
// carries the currency code, the effective date and the value of one
// unit in guaraníes.
func (h *CurrencyHandler) CreateCotizacion(c echo.Context) error {
	var body struct {
		Moneda        string `json:"moneda"`
		FechaVigencia string `json:"fecha_vigencia"`
		Valor         string `json:"valor_en_guaranies"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	fecha, err := time.Parse("2006-01-02", body.FechaVigencia)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha_vigencia must be YYYY-MM-DD"})
	}
	valor := money.ParseDecimal(body.Valor)
	if !valor.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valor_en_guaranies must be positive"})
	}
	ctx := c.Request().Context()
	moneda, err := h.Repo.GetMonedaByCodigo(ctx, body.Moneda)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown currency"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	cot := &model.CotizacionMoneda{MonedaID: moneda.ID, FechaVigencia: fecha, ValorEnGuaranies: valor}
	if err := h.Repo.CreateCotizacion(ctx, cot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":                 cot.ID,
		"moneda":             moneda.Codigo,
		"fecha_vigencia":     fecha.Format("2006-01-02"),
		"valor_en_guaranies": valor.String(),
	})
}

// GetVigente handles GET /v1/cotizaciones/vigente?moneda=USD&fecha=.
// fecha defaults to today in the agency timezone.
func (h *CurrencyHandler) GetVigente(c echo.Context) error {
	codigo := c.QueryParam("moneda")
	if codigo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "moneda is required"})
	}
	asOf := h.Converter.Today()
	if f := c.QueryParam("fecha"); f != "" {
		t, err := time.Parse("2006-01-02", f)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha must be YYYY-MM-DD"})
		}
		asOf = t
	}
	cot, err := h.Repo.GetVigente(c.Request().Context(), codigo, asOf)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no exchange rate registered for date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"moneda":             codigo,
		"fecha_vigencia":     cot.FechaVigencia.Format("2006-01-02"),
		"valor_en_guaranies": cot.ValorEnGuaranies.String(),
	})
}

// Convertir handles GET /v1/convertir?monto=&de=&a=&fecha=.  It is a
// read-only preview of the conversion used by pricing; nothing is
// persisted.
func (h *CurrencyHandler) Convertir(c echo.Context) error {
	monto := money.ParseDecimal(c.QueryParam("monto"))
	de := c.QueryParam("de")
	a := c.QueryParam("a")
	if de == "" || a == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "de and a are required"})
	}
	var asOf *time.Time
	if f := c.QueryParam("fecha"); f != "" {
		t, err := time.Parse("2006-01-02", f)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha must be YYYY-MM-DD"})
		}
		asOf = &t
	}
	amt, err := money.New(monto, de)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid currency code"})
	}
	result, err := h.Converter.Convert(c.Request().Context(), amt, a, asOf)
	if err != nil {
		return conversionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"monto":     amt.Value.String(),
		"de":        amt.Currency,
		"a":         result.Currency,
		"resultado": result.Value.String(),
	})
}
