package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes payload as the 200 response body. Success responses carry the
// payload directly; only errors get the envelope from Error.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}
