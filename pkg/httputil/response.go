package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medibook/booking-api/pkg/errors"
)

// Message is the generic confirmation payload returned by mutating endpoints.
type Message struct {
	Message string `json:"message"`
}

// ListResponse wraps a collection together with its unpaginated count.
type ListResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}

// RespondWithMessage sends a confirmation message
func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Message{Message: message})
}

// RespondWithList sends a collection plus its total count
func RespondWithList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, ListResponse{Data: data, Count: count})
}

// RespondWithError translates an error into its HTTP status and detail body.
// Internal failures never leak their cause to the caller.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{"detail": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
