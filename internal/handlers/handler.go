// Package handlers exposes the services over HTTP. Handlers bind and check
// the request shape, call one service operation and translate its error.
package handlers

import (
	"errors"
	"net/http"

	"foodcart_back_end/internal/middleware"
	"foodcart_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError writes the client-facing form of err. Anything that is not an
// AppError is reported as a 500 and only its cause is logged.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		logger.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Int("status", appErr.Status).
			Msg("request failed")
	}
	c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// currentActor returns the authenticated caller or writes a 401.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": models.ErrUnauthorized.Message})
		return models.Actor{}, false
	}
	return actor, true
}

// formImage returns the uploaded image in field, or nil when none was sent.
// The caller must close the returned file.
func formImage(c *gin.Context, field string) (*models.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, models.ErrInvalidImage.Wrap(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}
