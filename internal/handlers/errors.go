package handlers

import (
	"errors"

	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/internal/session"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

// appError maps service errors onto HTTP errors. Unknown errors become a
// generic 500 so storage details stay out of responses.
func appError(err error) *response.AppError {
	switch {
	case errors.Is(err, services.ErrChapterNotFound):
		return response.NewNotFound("chapter not found")
	case errors.Is(err, services.ErrNovelNotFound):
		return response.NewNotFound("novel not found")
	case errors.Is(err, services.ErrInvalidRating):
		return response.NewBadRequest(err.Error())
	case errors.Is(err, services.ErrMissingOriginal):
		return response.NewBadRequest(err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		return response.NewConflict(err.Error())
	case errors.Is(err, services.ErrTranslatorNotConfigured):
		return response.NewServerError(err.Error())
	case errors.Is(err, services.ErrTranslationFailed):
		return response.NewBadGateway(services.ErrTranslationFailed.Error())
	case errors.Is(err, session.ErrUnknownUser):
		return response.NewUnauthorized(err.Error())
	case errors.Is(err, session.ErrIdentityRequired):
		return response.NewUnauthorized(err.Error())
	default:
		return response.NewServerError("internal server error")
	}
}

func logFailure(c *gin.Context, err error, msg string) {
	event := logger.Warn()
	if appError(err).HTTPStatus >= 500 {
		event = logger.Error()
	}
	event.Err(err).Str("path", c.Request.URL.Path).Msg(msg)
}

// failAction answers a mutating endpoint with {success:false, error}.
func failAction(c *gin.Context, err error, msg string) {
	logFailure(c, err, msg)
	response.ActionFailed(c, appError(err))
}

// failRead answers a read endpoint with the mapped error status.
func failRead(c *gin.Context, err error, msg string) {
	logFailure(c, err, msg)
	response.Error(c, appError(err))
}
