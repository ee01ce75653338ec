package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherai-insight/internal/app"
	"gopherai-insight/internal/transport/http/middleware"
	"gopherai-insight/internal/transport/http/response"
)

// writeError maps a service error onto the response envelope. fallback is
// the message used for store and internal failures.
func writeError(c *gin.Context, err error, fallback string) {
	var parseErr *app.ParseError
	var storeErr *app.StoreError

	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidMode):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrUsernameExists):
		response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.As(err, &parseErr):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidDatasetFile, err.Error())
	case errors.Is(err, app.ErrUnsupportedMediaType):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMediaType, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrDatasetNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDatasetNotFound, err.Error())
	case errors.Is(err, app.ErrTurnInFlight):
		response.Error(c, http.StatusConflict, response.CodeTurnInFlight, err.Error())
	case errors.As(err, &storeErr):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, fallback)
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}
