package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/middleware"
	"supernova/models"
	"supernova/services"
)

var (
	zipPattern     = regexp.MustCompile(`^\d{5,6}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("zip", matches(zipPattern))
	_ = v.RegisterValidation("pincode", matches(pincodePattern))
	_ = v.RegisterValidation("phone", matches(phonePattern))
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, fieldError{Field: field, Message: validationMessage(field, fe)})
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": out})
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + sizeUnit(fe.Kind())
	case "max":
		return field + " must be at most " + fe.Param() + sizeUnit(fe.Kind())
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be " + fe.Param() + " or more"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "objectid":
		return field + " must be a valid id"
	case "zip":
		return field + " must be 5 or 6 digits"
	case "pincode":
		return field + " must be 6 digits"
	case "phone":
		return field + " must be 10 digits"
	default:
		return field + " is invalid"
	}
}

// sizeUnit names what min/max count: characters for strings, items for
// collections, nothing for numbers.
func sizeUnit(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	default:
		return ""
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "error", err, "request_id", c.GetString(middleware.RequestIDHeader))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondDescriptive answers 500 {success:false, message} when err matches one
// of the listed failures and falls back to respondError for everything else,
// so store and driver errors never reach the client.
func respondDescriptive(c *gin.Context, err error, descriptive ...error) {
	for _, target := range descriptive {
		if errors.Is(err, target) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
	}
	respondError(c, err)
}

// objectIDParam parses a path parameter, answering 400 when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentSession(c *gin.Context) *models.Session {
	return middleware.SessionFrom(c)
}
