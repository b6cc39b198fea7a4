package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
)

// handleError maps service errors onto the HTTP taxonomy. Anything that is
// not a typed APIError surfaces as an opaque 500.
func handleError(c *gin.Context, log *logger.Logger, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		respond(c, apiErr.Status, nil, apiErr.Message)
		return
	}

	log.Error("User handler: unexpected error",
		"path", c.FullPath(),
		"error", err.Error())
	respond(c, http.StatusInternalServerError, nil, "internal server error")
}
