// Package http holds the thin request/response surface over the durable
// store adapter and the coordination core.
package http

import "github.com/gin-gonic/gin"

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

func SuccessResponse(c *gin.Context, code int, data gin.H) {
	data["success"] = true
	c.JSON(code, data)
}
