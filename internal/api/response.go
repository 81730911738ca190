package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/errcode"
)

// Error bodies carry a coarse machine-readable code next to the message;
// the parent application switches on the code.
func Error(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.CodeUnauthorized})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, errcode.CodeUnauthorized, "unauthorized")
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.CodeBadRequest, msg)
}

func PaymentRequired(c *gin.Context, msg string) {
	Error(c, http.StatusPaymentRequired, errcode.CodePaymentRequired, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, errcode.CodeNotFound, msg)
}

func Conflict(c *gin.Context, msg string) {
	Error(c, http.StatusConflict, errcode.CodeConflict, msg)
}

func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.CodeInternal, msg)
}
