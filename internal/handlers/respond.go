package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/thereayou/lecture-live/internal/errs"
)

// fail отправляет ошибку с success-флагом и машинно-проверяемым видом
func fail(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{
		"success": false,
		"message": err.Error(),
		"kind":    errs.KindOf(err),
	})
}
