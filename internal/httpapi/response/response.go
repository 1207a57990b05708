package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// DataEnvelope always carries the data key, so an absent value is sent as
// null rather than omitted.
type DataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, code string, err error) {
	RespondError(c, status, code, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondSuccess(c *gin.Context, message string) {
	RespondOK(c, SuccessEnvelope{Success: true, Message: message})
}

func RespondData(c *gin.Context, data any) {
	RespondOK(c, DataEnvelope{Success: true, Data: data})
}
