package university

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/abroadwise/abroad-api/model"
	"github.com/abroadwise/abroad-api/services"
	"github.com/abroadwise/abroad-api/utils/middleware"
	"github.com/abroadwise/abroad-api/utils/pdfvalidation"
	"github.com/abroadwise/abroad-api/utils/query"
	"github.com/abroadwise/abroad-api/utils/response"
	"github.com/abroadwise/abroad-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

const listOptionsKey = "university_list_options"

// listOptions is what the validation middleware hands the list handler.
type listOptions struct {
	opts    *query.Options
	country string
	program string
}

// UniversityHandler handles university catalog requests
type UniversityHandler struct {
	service   *services.UniversityService
	validator *validation.Validator
}

// NewUniversityHandler creates a new university handler
func NewUniversityHandler(service *services.UniversityService) *UniversityHandler {
	return &UniversityHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// ValidateListQuery parses and validates the list query string before the
// handler runs. A request that fails here never touches the store.
func (h *UniversityHandler) ValidateListQuery(c *fiber.Ctx) error {
	opts, err := query.Parse(c.Queries(), h.service.ListConfig())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	c.Locals(listOptionsKey, &listOptions{
		opts:    opts,
		country: strings.TrimSpace(c.Query("country")),
		program: strings.TrimSpace(c.Query("program")),
	})

	return c.Next()
}

// ListUniversities handles GET /api/v1/universities
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
	lo, ok := c.Locals(listOptionsKey).(*listOptions)
	if !ok {
		return response.InternalServerError(c, "List query was not validated")
	}

	universities, total, err := h.service.List(lo.opts, lo.country, lo.program)
	if err != nil {
		if query.IsBadRequest(err) {
			return response.BadRequest(c, err.Error())
		}
		log.Println("university list failed:", err)
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	pagination := response.CalculatePagination(lo.opts.Page, lo.opts.Limit, total)
	return response.Paginated(c, fiber.Map{"universities": universities}, len(universities), pagination)
}

// GetUniversity handles GET /api/v1/universities/:id
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	university, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		log.Println("university fetch failed:", err)
		return response.InternalServerError(c, "Failed to fetch university")
	}

	return response.Success(c, fiber.Map{"university": university})
}

// ReviewPayload mirrors model.Review minus the asset handles, which only the
// upload path may set.
type ReviewPayload struct {
	Name   string  `json:"name" validate:"required"`
	Rating float64 `json:"rating" validate:"gte=1,lte=5"`
	Review string  `json:"review" validate:"required"`
}

// CreateUniversityRequest is the "data" part of the create multipart form
type CreateUniversityRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	DisplayName string `json:"university" validate:"omitempty,max=255"`
	CountryID   uint   `json:"country_id" validate:"required"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Tagline     string `json:"tagline" validate:"omitempty,max=255"`

	Established int               `json:"established" validate:"omitempty,gte=800,lte=2100"`
	Highlights  []model.Highlight `json:"highlights" validate:"omitempty,dive"`
	About       string            `json:"about"`

	Programs    []string `json:"programs"`
	Duration    string   `json:"duration" validate:"omitempty,max=80"`
	Medium      string   `json:"medium" validate:"omitempty,max=80"`
	GPARequired string   `json:"gpa_required" validate:"omitempty,max=40"`
	FeesUSD     string   `json:"fees_usd" validate:"omitempty,max=40"`
	FeesINR     string   `json:"fees_inr" validate:"omitempty,max=40"`

	FeeStructure []model.FeeYear `json:"fee_structure" validate:"omitempty,dive"`
	HostelCost   string          `json:"hostel_cost" validate:"omitempty,max=80"`
	ApprovedBy   []string        `json:"approved_by"`
	Facilities   []string        `json:"facilities"`
	Eligibility  []string        `json:"eligibility"`

	AdmissionSteps []string `json:"admission_steps"`
	Documents      []string `json:"documents"`

	Reviews []ReviewPayload `json:"reviews" validate:"omitempty,dive"`
	FAQs    []model.FAQ     `json:"faqs" validate:"omitempty,dive"`

	Comparison json.RawMessage `json:"comparison"`
}

// UpdateUniversityRequest is the "data" part of the update form. Pointer
// fields distinguish "not sent" from "clear".
type UpdateUniversityRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	DisplayName *string `json:"university" validate:"omitempty,max=255"`
	CountryID   *uint   `json:"country_id"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	Tagline     *string `json:"tagline" validate:"omitempty,max=255"`

	Established *int               `json:"established" validate:"omitempty,gte=800,lte=2100"`
	Highlights  *[]model.Highlight `json:"highlights" validate:"omitempty,dive"`
	About       *string            `json:"about"`

	Programs    *[]string `json:"programs"`
	Duration    *string   `json:"duration" validate:"omitempty,max=80"`
	Medium      *string   `json:"medium" validate:"omitempty,max=80"`
	GPARequired *string   `json:"gpa_required" validate:"omitempty,max=40"`
	FeesUSD     *string   `json:"fees_usd" validate:"omitempty,max=40"`
	FeesINR     *string   `json:"fees_inr" validate:"omitempty,max=40"`

	FeeStructure *[]model.FeeYear `json:"fee_structure" validate:"omitempty,dive"`
	HostelCost   *string          `json:"hostel_cost" validate:"omitempty,max=80"`
	ApprovedBy   *[]string        `json:"approved_by"`
	Facilities   *[]string        `json:"facilities"`
	Eligibility  *[]string        `json:"eligibility"`

	AdmissionSteps *[]string `json:"admission_steps"`
	Documents      *[]string `json:"documents"`

	Reviews *[]ReviewPayload `json:"reviews" validate:"omitempty,dive"`
	FAQs    *[]model.FAQ     `json:"faqs" validate:"omitempty,dive"`

	Comparison json.RawMessage `json:"comparison"`
}

// CreateUniversity handles POST /api/v1/universities. The payload rides in a
// "data" form field when the request is multipart, so files can travel with
// the same request; a plain JSON body works too.
func (h *UniversityHandler) CreateUniversity(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can create universities")
	}

	var req CreateUniversityRequest
	if err := parsePayload(c, &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	files, err := collectFiles(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	university := model.University{
		Name:           validation.SanitizeString(req.Name),
		DisplayName:    validation.SanitizeString(req.DisplayName),
		CountryID:      req.CountryID,
		Location:       validation.SanitizeString(req.Location),
		Tagline:        validation.SanitizeString(req.Tagline),
		Established:    req.Established,
		Highlights:     req.Highlights,
		About:          req.About,
		Programs:       req.Programs,
		Duration:       req.Duration,
		Medium:         req.Medium,
		GPARequired:    req.GPARequired,
		FeesUSD:        req.FeesUSD,
		FeesINR:        req.FeesINR,
		FeeStructure:   req.FeeStructure,
		HostelCost:     req.HostelCost,
		ApprovedBy:     req.ApprovedBy,
		Facilities:     req.Facilities,
		Eligibility:    req.Eligibility,
		AdmissionSteps: req.AdmissionSteps,
		Documents:      req.Documents,
		Reviews:        toModelReviews(req.Reviews),
		FAQs:           req.FAQs,
	}
	if len(req.Comparison) > 0 {
		university.Comparison = datatypes.JSON(req.Comparison)
	}

	if err := h.service.Create(c.Context(), &university, files); err != nil {
		return h.writeError(c, err, "Failed to create university")
	}

	return response.Created(c, fiber.Map{"university": university})
}

// UpdateUniversity handles PUT /api/v1/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can update universities")
	}

	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateUniversityRequest
	if err := parsePayload(c, &req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	files, err := collectFiles(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	university, err := h.service.Update(c.Context(), id, func(u *model.University) {
		applyUpdate(u, &req)
	}, files)
	if err != nil {
		return h.writeError(c, err, "Failed to update university")
	}

	return response.SuccessWithMessage(c, "University updated successfully", fiber.Map{"university": university})
}

// DeleteUniversity handles DELETE /api/v1/universities/:id
func (h *UniversityHandler) DeleteUniversity(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can delete universities")
	}

	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		log.Println("university delete failed:", err)
		return response.InternalServerError(c, "Failed to delete university")
	}

	return response.NoContent(c)
}

// UploadBrochure handles POST /api/v1/universities/:id/brochure
func (h *UniversityHandler) UploadBrochure(c *fiber.Ctx) error {
	if !middleware.IsAdmin(c) {
		return response.Forbidden(c, "Only administrators can upload brochures")
	}

	id, err := services.ParseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	file, err := c.FormFile("brochure")
	if err != nil {
		return response.BadRequest(c, "Brochure file is required")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.BrochureLimits)
	if err != nil {
		log.Println("brochure validation failed:", err)
		return response.InternalServerError(c, "Failed to validate brochure")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	university, err := h.service.AttachBrochure(c.Context(), id, file)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "University not found")
		}
		log.Println("brochure attach failed:", err)
		return response.InternalServerError(c, "Failed to upload brochure")
	}

	return response.SuccessWithMessage(c, "Brochure uploaded successfully", fiber.Map{"university": university})
}

func (h *UniversityHandler) writeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "University not found")
	case errors.Is(err, services.ErrDuplicate):
		return response.Conflict(c, "University already exists")
	case query.IsBadRequest(err):
		return response.BadRequest(c, err.Error())
	default:
		log.Println("university write failed:", err)
		return response.InternalServerError(c, fallback)
	}
}

// parsePayload decodes the request payload from the "data" form field on
// multipart requests, or from the body directly otherwise.
func parsePayload(c *fiber.Ctx, dest interface{}) error {
	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		raw := c.FormValue("data")
		if raw == "" {
			return errors.New("missing data field")
		}
		return json.Unmarshal([]byte(raw), dest)
	}
	return c.BodyParser(dest)
}

// collectFiles gathers the optional asset files from a multipart request
func collectFiles(c *fiber.Ctx) (services.UniversityFiles, error) {
	var files services.UniversityFiles

	if logo, err := c.FormFile("logo"); err == nil {
		files.Logo = logo
	}
	if cover, err := c.FormFile("cover_image"); err == nil {
		files.Cover = cover
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		images := form.File["review_images"]
		if len(images) > services.MaxReviewImages {
			return files, errors.New("Too many review images")
		}
		files.ReviewImages = images
	}

	return files, nil
}

func toModelReviews(payloads []ReviewPayload) []model.Review {
	if len(payloads) == 0 {
		return nil
	}
	reviews := make([]model.Review, len(payloads))
	for i, p := range payloads {
		reviews[i] = model.Review{
			Name:   validation.SanitizeString(p.Name),
			Rating: p.Rating,
			Review: p.Review,
		}
	}
	return reviews
}

func applyUpdate(u *model.University, req *UpdateUniversityRequest) {
	if req.Name != nil {
		u.Name = validation.SanitizeString(*req.Name)
	}
	if req.DisplayName != nil {
		u.DisplayName = validation.SanitizeString(*req.DisplayName)
	}
	if req.CountryID != nil {
		u.CountryID = *req.CountryID
	}
	if req.Location != nil {
		u.Location = validation.SanitizeString(*req.Location)
	}
	if req.Tagline != nil {
		u.Tagline = validation.SanitizeString(*req.Tagline)
	}
	if req.Established != nil {
		u.Established = *req.Established
	}
	if req.Highlights != nil {
		u.Highlights = *req.Highlights
	}
	if req.About != nil {
		u.About = *req.About
	}
	if req.Programs != nil {
		u.Programs = *req.Programs
	}
	if req.Duration != nil {
		u.Duration = *req.Duration
	}
	if req.Medium != nil {
		u.Medium = *req.Medium
	}
	if req.GPARequired != nil {
		u.GPARequired = *req.GPARequired
	}
	if req.FeesUSD != nil {
		u.FeesUSD = *req.FeesUSD
	}
	if req.FeesINR != nil {
		u.FeesINR = *req.FeesINR
	}
	if req.FeeStructure != nil {
		u.FeeStructure = *req.FeeStructure
	}
	if req.HostelCost != nil {
		u.HostelCost = *req.HostelCost
	}
	if req.ApprovedBy != nil {
		u.ApprovedBy = *req.ApprovedBy
	}
	if req.Facilities != nil {
		u.Facilities = *req.Facilities
	}
	if req.Eligibility != nil {
		u.Eligibility = *req.Eligibility
	}
	if req.AdmissionSteps != nil {
		u.AdmissionSteps = *req.AdmissionSteps
	}
	if req.Documents != nil {
		u.Documents = *req.Documents
	}
	if req.Reviews != nil {
		u.Reviews = toModelReviews(*req.Reviews)
	}
	if req.FAQs != nil {
		u.FAQs = *req.FAQs
	}
	if len(req.Comparison) > 0 {
		u.Comparison = datatypes.JSON(req.Comparison)
	}
}
