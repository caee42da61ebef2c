package response

import (
	"net/http"

	appErrors "github.com/charlesng35/accountd/pkg/errors"
	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response defines the base API payload. Extra carries endpoint specific
// top-level fields such as token or verifyCode.
type Response struct {
	Status string
	Msg    string
	Code   string
	Error  string
	Extra  gin.H
}

// Body flattens the envelope into the JSON object sent to clients.
func (r Response) Body() gin.H {
	body := make(gin.H, len(r.Extra)+4)
	for k, v := range r.Extra {
		body[k] = v
	}
	body["status"] = r.Status
	body["msg"] = r.Msg
	if r.Code != "" {
		body["code"] = r.Code
	}
	if r.Error != "" {
		body["error"] = r.Error
	}
	return body
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, msg string, extra gin.H) {
	c.JSON(statusCode, Response{
		Status: StatusSuccess,
		Msg:    msg,
		Extra:  extra,
	}.Body())
}

// Error writes a JSON error response derived from an AppError. Internal
// details are only surfaced for 5xx failures.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := Response{
		Status: StatusError,
		Msg:    appErr.Message,
		Code:   appErr.Code,
	}
	if status >= http.StatusInternalServerError && appErr.Internal != nil {
		resp.Error = appErr.Internal.Error()
	}

	c.JSON(status, resp.Body())
}

// Abort writes an error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
