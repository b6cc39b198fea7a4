package handler

import "github.com/gin-gonic/gin"

// apiResponse is the envelope every endpoint returns.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}
