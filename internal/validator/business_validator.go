package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/unilink-hq/placement-service/internal/models"
)

// Resume upload ceilings in bytes. Initial submissions carry a tighter
// limit than replacements.
const (
	MaxResumeSizeCreate  = 5 * 1024 * 1024
	MaxResumeSizeReplace = 10 * 1024 * 1024
)

// AllowedResumeContentTypes lists the accepted resume document types.
var AllowedResumeContentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts go-playground validation errors into the
// API error shape.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, ferr := range verrs {
			errors = append(errors, ValidationError{
				Field:   ferr.Field(),
				Message: getErrorMessage(ferr),
				Value:   ferr.Value(),
				Rule:    ferr.Tag(),
			})
		}
		return errors
	}
	return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateOpportunityCreate validates opportunity creation business rules
func (bv *BusinessValidator) ValidateOpportunityCreate(req *OpportunityCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateOpportunityBusinessRules(req)...)

	return errors
}

// ValidateOpportunityUpdate validates opportunity update business rules
func (bv *BusinessValidator) ValidateOpportunityUpdate(req *OpportunityUpdateRequest, existing *models.Opportunity) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateOpportunityUpdateRules(req, existing)...)

	return errors
}

// ValidateApplicationCreate validates application submission business rules,
// including the resume metadata for the initial upload.
func (bv *BusinessValidator) ValidateApplicationCreate(req *ApplicationCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, ValidateResume(req.ResumeContentType, req.ResumeSize, MaxResumeSizeCreate)...)

	return errors
}

// ValidateResume enforces the document type and the given size ceiling.
func ValidateResume(contentType string, size int64, maxSize int64) ValidationErrors {
	var errors ValidationErrors

	if !isAllowedResumeType(contentType) {
		errors = append(errors, ValidationError{
			Field:   "resume",
			Message: "must be a PDF or Word document",
			Value:   contentType,
			Rule:    "document_type",
		})
	}

	if size > maxSize {
		errors = append(errors, ValidationError{
			Field:   "resume",
			Message: fmt.Sprintf("must not exceed %d MB", maxSize/(1024*1024)),
			Value:   size,
			Rule:    "max_size",
		})
	}

	return errors
}

// ValidateInterviewSchedule validates interview scheduling conditions
func (bv *BusinessValidator) ValidateInterviewSchedule(req *ScheduleInterviewRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	return errors
}

func isAllowedResumeType(contentType string) bool {
	// Strip parameters such as "; charset=..." before matching.
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	for _, allowed := range AllowedResumeContentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-255 characters)
	bv.validate.RegisterValidation("opportunity_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 255
	})

	// Deadline validation (must be in future)
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true // Optional field
		}

		// Handle both *time.Time and time.Time
		var date time.Time
		if field.Kind() == reflect.Ptr {
			date = field.Elem().Interface().(time.Time)
		} else {
			date = field.Interface().(time.Time)
		}

		return date.After(time.Now())
	})

	// opportunity type validation
	bv.validate.RegisterValidation("opportunity_type", func(fl validator.FieldLevel) bool {
		oType := fl.Field().String()
		validTypes := []models.OpportunityType{models.TypeInternship, models.TypeJob, models.TypeProject, models.TypeResearch}
		for _, vt := range validTypes {
			if models.OpportunityType(oType) == vt {
				return true
			}
		}
		return false
	})

	// opportunity status validation
	bv.validate.RegisterValidation("opportunity_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []models.OpportunityStatus{models.OpportunityDraft, models.OpportunityActive, models.OpportunityClosed, models.OpportunityArchived}
		for _, vs := range validStatuses {
			if models.OpportunityStatus(status) == vs {
				return true
			}
		}
		return false
	})

	// application status validation
	bv.validate.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		return models.ApplicationStatus(fl.Field().String()).IsValid()
	})

	// resume document type validation
	bv.validate.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return isAllowedResumeType(fl.Field().String())
	})
}

// validateOpportunityBusinessRules validates business rules for opportunity creation
func (bv *BusinessValidator) validateOpportunityBusinessRules(req *OpportunityCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Start date must not precede the application deadline
	if req.StartDate != nil && req.StartDate.Before(req.ApplicationDeadline) {
		errors = append(errors, ValidationError{
			Field:   "start_date",
			Message: "must not be before the application deadline",
			Value:   req.StartDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// validateOpportunityUpdateRules validates business rules for opportunity updates
func (bv *BusinessValidator) validateOpportunityUpdateRules(req *OpportunityUpdateRequest, existing *models.Opportunity) ValidationErrors {
	var errors ValidationErrors

	// Archived opportunities are read-only except for status
	if existing.Status == models.OpportunityArchived && req.Status == nil {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "archived opportunities can only change status",
			Value:   existing.Status,
			Rule:    "business_logic",
		})
	}

	// Deadline moves must stay in the future
	if req.ApplicationDeadline != nil && req.ApplicationDeadline.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "application_deadline",
			Message: "must be in the future",
			Value:   req.ApplicationDeadline,
			Rule:    "business_logic",
		})
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "eqfield":
		return "must match " + err.Param()
	case "uuid4":
		return "must be a valid identifier"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "opportunity_title":
		return "must be between 1 and 255 characters"
	case "future_date":
		return "must be in the future"
	case "opportunity_type":
		return "must be a valid opportunity type"
	case "opportunity_status":
		return "must be a valid opportunity status"
	case "application_status":
		return "must be a valid application status"
	case "document_type":
		return "must be a PDF or Word document"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
