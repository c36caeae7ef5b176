package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cloudpitch/davbridge/internal/logging"
	"github.com/cloudpitch/davbridge/internal/models"
	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

// storeError maps a storage backend failure to the HTTP error returned to
// the API caller. A 404 from the backend stays a 404; everything else the
// backend reports becomes a 502. The original error rides along as the
// internal error so the log keeps the remote status and body.
func storeError(err error) error {
	var reqErr *nextcloud.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode == http.StatusNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "remote path not found").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("remote request failed with status %d", reqErr.StatusCode)).SetInternal(err)
	}

	var parseErr *nextcloud.ParseError
	if errors.As(err, &parseErr) {
		return echo.NewHTTPError(http.StatusBadGateway, "remote returned an unreadable response").SetInternal(err)
	}

	return echo.NewHTTPError(http.StatusBadGateway, "remote request failed").SetInternal(err)
}

// JSONErrorHandler renders every error as the JSON error envelope.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = fmt.Sprintf("%v", he.Message)
		}
	}

	if code >= http.StatusInternalServerError {
		logging.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", code),
			zap.Error(err),
		)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(code)
	} else {
		sendErr = c.JSON(code, models.ErrorResponse{Status: "error", Detail: detail})
	}
	if sendErr != nil {
		logging.L().Error("write error response", zap.Error(sendErr))
	}
}
