package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// DataResponse is the success envelope: {"data": ...}.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as an error envelope. The status comes from
// the AppError err maps to; see apperrors.From.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK writes data with status 200.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
