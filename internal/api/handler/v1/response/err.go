package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorMsg       string `json:"error,omitempty"`

	cause error
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.cause),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     http.StatusText(http.StatusBadRequest),
		ErrorMsg:       err.Error(),
		cause:          err,
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     http.StatusText(http.StatusNotFound),
		ErrorMsg:       fmt.Sprintf("%s with %s %v not found", resource, field, value),
	}
}

func ErrRequestTooLarge(limit int64) *Err {
	return &Err{
		HTTPStatusCode: http.StatusRequestEntityTooLarge,
		StatusText:     http.StatusText(http.StatusRequestEntityTooLarge),
		ErrorMsg:       fmt.Sprintf("file exceeds the limit of %d bytes", limit),
	}
}

// ErrInternalServerError hides err from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorMsg:       "something went wrong, please try again later",
		cause:          err,
	}
}
