// Package problem writes RFC 7807 Problem Details responses for gin handlers.
package problem

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/apperr"
)

// ContentType is the media type for Problem Details responses.
const ContentType = "application/problem+json"

// Detail is an RFC 7807 Problem Details body.
type Detail struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Extras   map[string]any `json:"extensions,omitempty"`
}

func (d Detail) Error() string {
	if d.Detail != "" {
		return fmt.Sprintf("%s: %s", d.Title, d.Detail)
	}
	return d.Title
}

func (d Detail) WithDetail(detail string) Detail {
	d.Detail = detail
	return d
}

func (d Detail) WithExtension(key string, value any) Detail {
	ext := make(map[string]any, len(d.Extras)+1)
	for k, v := range d.Extras {
		ext[k] = v
	}
	ext[key] = value
	d.Extras = ext
	return d
}

// Templates per error kind.
var (
	NotFound = Detail{
		Type:   "/problems/" + string(apperr.KindNotFound),
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}
	Validation = Detail{
		Type:   "/problems/" + string(apperr.KindValidation),
		Title:  "Validation Error",
		Status: http.StatusUnprocessableEntity,
	}
	Conflict = Detail{
		Type:   "/problems/" + string(apperr.KindConstraintViolation),
		Title:  "Constraint Violation",
		Status: http.StatusConflict,
	}
	Internal = Detail{
		Type:   "/problems/" + string(apperr.KindStoreFault),
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
	TooManyRequests = Detail{
		Type:   "/problems/rate-limited",
		Title:  "Too Many Requests",
		Status: http.StatusTooManyRequests,
	}
)

// internalDetail replaces the message of server-side failures.
const internalDetail = "an unexpected error occurred"

// Respond writes p, filling in the instance from the request path.
func Respond(c *gin.Context, p Detail) {
	if p.Instance == "" {
		p.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

// FromError maps err onto a problem by its apperr kind. Store faults and
// unknown errors hide their message.
func FromError(err error) Detail {
	var p Detail
	if errors.As(err, &p) {
		return p
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return NotFound.WithDetail(err.Error())
	case apperr.KindValidation:
		return Validation.WithDetail(err.Error())
	case apperr.KindConstraintViolation:
		return Conflict.WithDetail(err.Error())
	default:
		return Internal.WithDetail(internalDetail)
	}
}

// Error writes the problem for err and records err on the gin context so
// the access log can report it.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	Respond(c, FromError(err))
}

// NotFoundFor writes a 404 for a missing entity id.
func NotFoundFor(c *gin.Context, entity string, id int64) {
	Error(c, apperr.NotFound(entity, id))
}

// ValidationFailed writes a 422 with per-field messages.
func ValidationFailed(c *gin.Context, detail string, fields map[string]string) {
	p := Validation.WithDetail(detail)
	if len(fields) > 0 {
		p = p.WithExtension("fields", fields)
	}
	_ = c.Error(apperr.Validation("%s", detail))
	Respond(c, p)
}
