package dto

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/scamguard/scamguard-backend/internal/models"
)

var ErrValidation = errors.New("validation failed")

const MinDescriptionLength = 50

// CreateReportRequest is the body of POST /api/reports.
type CreateReportRequest struct {
	Categories   []models.SearchCategory          `json:"categories" validate:"required,min=1,unique,dive,searchcategory"`
	Identifiers  map[models.SearchCategory]string `json:"identifiers"`
	Description  string                           `json:"description" validate:"required,notblank,min=50"`
	ScammerInfo  models.ScammerInfo               `json:"scammerInfo"`
	IncidentDate string                           `json:"incidentDate" validate:"required,notblank"`
}

type CreateReportResponse struct {
	Success   bool           `json:"success"`
	NewReport *models.Report `json:"newReport"`
	Message   string         `json:"message,omitempty"`
}

type SafetyTipsRequest struct {
	Description string `json:"description" validate:"required,notblank"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("searchcategory", func(fl validator.FieldLevel) bool {
			return models.SearchCategory(fl.Field().String()).IsValid()
		})
	})
	return validate
}

// Validate applies the report form rules and reports every failing field.
// Values are checked as typed: whitespace counts toward the description length.
func (r *CreateReportRequest) Validate() error {
	var msgs []string
	if err := getValidator().Struct(r); err != nil {
		msgs = describe(err)
	}

	for _, category := range r.Categories {
		if !category.IsValid() {
			continue
		}
		if strings.TrimSpace(r.Identifiers[category]) == "" {
			msgs = appendUnique(msgs, fmt.Sprintf("%s is required.", category))
		}
	}

	if len(msgs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, " "))
	}
	return nil
}

// ToNewReportData keeps only the identifiers of the selected categories.
func (r *CreateReportRequest) ToNewReportData() models.NewReportData {
	identifiers := make(map[models.SearchCategory]string, len(r.Categories))
	for _, category := range r.Categories {
		identifiers[category] = r.Identifiers[category]
	}
	categories := make([]models.SearchCategory, len(r.Categories))
	copy(categories, r.Categories)
	return models.NewReportData{
		Categories:   categories,
		Identifiers:  identifiers,
		Description:  r.Description,
		ScammerInfo:  r.ScammerInfo,
		IncidentDate: r.IncidentDate,
	}
}

func (r *SafetyTipsRequest) Validate() error {
	if err := getValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(describe(err), " "))
	}
	return nil
}

// describe turns validator failures into the messages the report form shows,
// one per field, in field order.
func describe(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return []string{err.Error()}
	}
	var msgs []string
	for _, fe := range fieldErrs {
		msgs = appendUnique(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	switch field {
	case "Categories":
		if fe.Tag() == "searchcategory" {
			return fmt.Sprintf("Unknown category %q.", fe.Value())
		}
		if fe.Tag() == "unique" {
			return "Each category may be selected once."
		}
		return "Please select at least one category."
	case "Description":
		if fe.Tag() == "min" {
			return fmt.Sprintf("Please provide at least %d characters.", MinDescriptionLength)
		}
		return "A detailed description is required."
	case "IncidentDate":
		return "Incident date is required."
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}

func appendUnique(msgs []string, msg string) []string {
	if slices.Contains(msgs, msg) {
		return msgs
	}
	return append(msgs, msg)
}
