package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

type customTag struct {
	tag     string
	message string
	fn      govalidator.Func
}

// customTags are the domain rules on top of the built-in validators.
var customTags = []customTag{
	{tag: "attendance_status", message: "{0} must be one of PRESENT, ABSENT or LATE", fn: validAttendanceStatus},
}

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for _, ct := range customTags {
		_ = v.RegisterValidation(ct.tag, ct.fn)
		registerMessage(v, ct.tag, ct.message)
	}

	v.RegisterStructValidation(classDateRange, model.ClassRequest{})
	registerMessage(v, "date_range", "{0} must not be before start_date")
}

func registerMessage(v *govalidator.Validate, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(tr ut.Translator) error {
			return tr.Add(tag, message, true)
		},
		func(tr ut.Translator, fe govalidator.FieldError) string {
			msg, _ := tr.T(tag, fe.Field())
			return msg
		},
	)
}

func validAttendanceStatus(fl govalidator.FieldLevel) bool {
	_, err := model.ParseAttendanceStatus(fl.Field().String())
	return err == nil
}

// classDateRange rejects an end date before the start date. Unparseable dates
// are left to the datetime tag.
func classDateRange(sl govalidator.StructLevel) {
	req := sl.Current().Interface().(model.ClassRequest)
	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return
	}
	end, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(req.EndDate, "end_date", "EndDate", "date_range", "")
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Validate runs the binding rules on a value decoded outside of Gin, such as a
// WebSocket message. Returns nil when v is valid.
func Validate(v any) map[string]string {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
