package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindInvalidState      Kind = "INVALID_STATE"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindMissingInput      Kind = "MISSING_INPUT"
	KindValidation        Kind = "VALIDATION"
	KindUpstreamFailure   Kind = "UPSTREAM_FAILURE"
	KindInternal          Kind = "INTERNAL"
)

const (
	internalMessage = "Internal server error"
	stackLines      = 12
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

type FieldProblem struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, kind Kind, err error, msg string, detail any) {
	if err == nil {
		err = errors.New(msg)
	}

	resp := NewResponse(status, kind, msg)
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

func NewResponse(status int, kind Kind, msg string) Response {
	resp := Response{Status: status}
	resp.Error.Kind = kind
	resp.Error.Message = msg
	return resp
}

// Abort maps a usecase error onto its HTTP status and kind.
func Abort(c *gin.Context, err error) {
	status, kind := Classify(err)
	msg := errs.PublicMessage(err)
	if status == http.StatusInternalServerError || msg == "" {
		slog.ErrorContext(c.Request.Context(), "unhandled error",
			"path", c.Request.URL.Path,
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, stackLines))
		msg = internalMessage
	}

	var transition *reservation.TransitionError
	if errors.As(err, &transition) {
		msg = transition.Error()
	}
	AbortWithError(c, status, kind, err, msg, nil)
}

// AbortBinding reports a request that failed binding or validation.
func AbortBinding(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]FieldProblem, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, FieldProblem{Field: fe.Field(), Problem: problemFor(fe)})
		}
		AbortWithError(c, http.StatusBadRequest, KindValidation, err, "Invalid request", problems)
		return
	}
	AbortWithError(c, http.StatusBadRequest, KindValidation, err, "Invalid request format", nil)
}

func Classify(err error) (int, Kind) {
	switch {
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict, KindInvalidTransition
	case errors.Is(err, errs.ErrReservationNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, KindForbidden
	case errors.Is(err, errs.ErrInvalidState):
		return http.StatusConflict, KindInvalidState
	case errors.Is(err, errs.ErrMissingInput):
		return http.StatusBadRequest, KindMissingInput
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, errs.ErrUpstreamFailure):
		return http.StatusBadGateway, KindUpstreamFailure
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

func problemFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// UseJSONFieldNames makes validation problems report json/form names instead of Go field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.Split(f.Tag.Get(tag), ",")[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}
