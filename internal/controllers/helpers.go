package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"landscape_dispatch/internal/apperr"
)

// writeError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a 500 and gets logged; taxonomy errors are the caller's
// problem and are returned verbatim.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.Validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.NotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.Conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.InvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.UpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "order service unavailable, try again"})
	default:
		logrus.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
