package middleware

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/marketbay/marketplace-api/apperrors"
)

// ErrorHandler is the single boundary that turns taxonomy errors pushed via
// c.Error into HTTP responses with the uniform {"status": false, "message"}
// body. Unexpected errors become 500s and are logged with the caller and
// operation for debugging; credentials never appear in either channel.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var appErr *apperrors.AppError
		if !errors.As(last.Err, &appErr) {
			appErr = apperrors.Internal("internal server error", last.Err)
		}

		if appErr.Kind == apperrors.KindInternal {
			userID, _ := c.Get("user_id")
			log.Printf("❌ %s %s user=%v: %v", c.Request.Method, c.Request.URL.Path, userID, appErr.Err)
		}

		body := gin.H{"status": false, "message": appErr.Message}
		if gin.Mode() != gin.ReleaseMode && appErr.Err != nil {
			body["error"] = appErr.Err.Error()
		}
		c.JSON(appErr.StatusCode(), body)
	}
}
