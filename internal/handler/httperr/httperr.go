package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the error envelope every endpoint returns on failure.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func New(status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Message = msg
	return resp
}

// AbortWithError records the original error on the context for the access
// log and writes the public envelope.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	resp := New(status, msg, detail)
	if err != nil {
		_ = c.Error(gin.Error{
			Err:  err,
			Type: gin.ErrorTypePublic,
			Meta: resp,
		})
	}
	c.AbortWithStatusJSON(status, resp)
}
