package country

import (
	"errors"
	"log"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/services"
	"github.com/abroadwise/abroad-api/utils/middleware"
	"github.com/abroadwise/abroad-api/utils/query"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/abroadwise/abroad-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// CountryHandler handles country catalog requests
type CountryHandler struct {
	service   *services.CountryService
	validator *validation.Validator
}

// NewCountryHandler creates a new country handler
func NewCountryHandler(service *services.CountryService) *CountryHandler {
	return &CountryHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateCountryRequest represents the request body for creating a country
type CreateCountryRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=2,max=120"`
	Code        string `json:"code" form:"code" validate:"required,min=2,max=10"`
	Currency    string `json:"currency" form:"currency" validate:"required,max=20"`
	Continent   string `json:"continent" form:"continent" validate:"required,max=40"`
	Description string `json:"description" form:"description" validate:"omitempty"`
}

// UpdateCountryRequest represents the request body for a partial update
type UpdateCountryRequest struct {
	Name        *string `json:"name" form:"name" validate:"omitempty,min=2,max=120"`
	Code        *string `json:"code" form:"code" validate:"omitempty,min=2,max=10"`
	Currency    *string `json:"currency" form:"currency" validate:"omitempty,max=20"`
	Continent   *string `json:"continent" form:"continent" validate:"omitempty,max=40"`
	Description *string `json:"description" form:"description" validate:"omitempty"`
}

// ListCountries handles GET /api/v1/countries
func (h *CountryHandler) ListCountries(c *fiber.Ctx) error {
	opts, err := query.Parse(c.Queries(), h.service.ListConfig())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	countries, total, err := h.service.List(opts)
	if err != nil {
		log.Println("country list failed:", err)
		return response.InternalServerError(c, "Failed to fetch countries")
	}

	pagination := response.CalculatePagination(opts.Page, opts.Limit, total)
	return response.Paginated(c, fiber.Map{"countries": countries}, len(countries), pagination)
}

// GetCountry handles GET /api/v1/countries/:id
func (h *CountryHandler) GetCountry(c *fiber.Ctx) error {
	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	country, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Country not found")
		}
		log.Println("country fetch failed:", err)
		return response.InternalServerError(c, "Failed to fetch country")
	}

	return response.Success(c, fiber.Map{"country": country})
}

// CreateCountry handles POST /api/v1/countries (multipart, optional flag file)
func (h *CountryHandler) CreateCountry(c *fiber.Ctx) error {
	// Defensive re-check behind the route gate
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can create countries")
	}

	var req CreateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	country := model.Country{
		Name:        validation.SanitizeString(req.Name),
		Code:        validation.SanitizeString(req.Code),
		Currency:    validation.SanitizeString(req.Currency),
		Continent:   validation.SanitizeString(req.Continent),
		Description: validation.SanitizeString(req.Description),
	}

	flag, _ := c.FormFile("flag")

	if err := h.service.Create(c.Context(), &country, flag); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return response.Conflict(c, "Country with this name or code already exists")
		}
		log.Println("country create failed:", err)
		return response.InternalServerError(c, "Failed to create country")
	}

	return response.Created(c, fiber.Map{"country": country})
}

// UpdateCountry handles PATCH /api/v1/countries/:id
func (h *CountryHandler) UpdateCountry(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can update countries")
	}

	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	flag, _ := c.FormFile("flag")

	country, err := h.service.Update(c.Context(), id, func(country *model.Country) {
		if req.Name != nil {
			country.Name = validation.SanitizeString(*req.Name)
		}
		if req.Code != nil {
			country.Code = validation.SanitizeString(*req.Code)
		}
		if req.Currency != nil {
			country.Currency = validation.SanitizeString(*req.Currency)
		}
		if req.Continent != nil {
			country.Continent = validation.SanitizeString(*req.Continent)
		}
		if req.Description != nil {
			country.Description = validation.SanitizeString(*req.Description)
		}
	}, flag)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Country not found")
		case errors.Is(err, services.ErrDuplicate):
			return response.Conflict(c, "Country with this name or code already exists")
		default:
			log.Println("country update failed:", err)
			return response.InternalServerError(c, "Failed to update country")
		}
	}

	return response.SuccessWithMessage(c, "Country updated successfully", fiber.Map{"country": country})
}

// DeleteCountry handles DELETE /api/v1/countries/:id
func (h *CountryHandler) DeleteCountry(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can delete countries")
	}

	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Country not found")
		}
		log.Println("country delete failed:", err)
		return response.InternalServerError(c, "Failed to delete country")
	}

	return response.NoContent(c)
}
