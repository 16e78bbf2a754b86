package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
)

// respondServiceErr maps service-layer errors onto the response envelope.
// Every failure is surfaced; nothing is swallowed into logs alone.
func respondServiceErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnsupportedMedia):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
