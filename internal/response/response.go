// Package response writes JSON replies and maps apperror kinds to HTTP.
package response

import (
	"net/http"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/pkg/i18n"
	"github.com/fekuna/omnipos-ordering-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Responder struct {
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func New(tr *i18n.Translator, log logger.ZapLogger) *Responder {
	return &Responder{tr: tr, logger: log}
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// T localizes id for the request's Accept-Language.
func (r *Responder) T(c *gin.Context, id string, data map[string]interface{}) string {
	return r.tr.Localize(id, data, c.GetHeader("Accept-Language"))
}

// Error writes {error, details?}. fallbackID is used for errors that carry
// no message id of their own. Internal errors are logged and their text
// goes into details.
func (r *Responder) Error(c *gin.Context, err error, fallbackID string) {
	status := StatusOf(err)
	id, data := apperror.MessageOf(err, fallbackID)

	body := gin.H{"error": r.T(c, id, data)}
	if status == http.StatusInternalServerError {
		r.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// Message writes {message} with a localized text.
func (r *Responder) Message(c *gin.Context, status int, id string, data map[string]interface{}) {
	c.JSON(status, gin.H{"message": r.T(c, id, data)})
}

// BadRequest is shorthand for a validation reply with a message id.
func (r *Responder) BadRequest(c *gin.Context, id string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": r.T(c, id, nil)})
}
