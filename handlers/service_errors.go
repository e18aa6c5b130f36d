package handlers

import (
	"net/http"

	"github.com/upb/web-core/internal/bizerr"
	"github.com/upb/web-core/utils"
	"go.uber.org/zap"
)

// HandleBizError maps an error to a {code, message, data} JSON response.
// Errors that are not BizErrors are logged and answered with a generic 500.
func HandleBizError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	bizErr, ok := bizerr.As(err)
	if !ok {
		logger.Error("unhandled error type", zap.Error(err))
		bizErr = bizerr.ErrSystem
	} else if bizErr.Code.HTTPStatus() >= http.StatusInternalServerError {
		// Log internal errors but return the business message only
		logger.Error("internal server error", zap.Error(err))
	} else {
		logger.Debug("handled business error",
			zap.Int("code", int(bizErr.Code)),
			zap.String("message", bizErr.Message),
			zap.Any("data", bizErr.Data))
	}

	if err := utils.WriteBizError(w, bizErr); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		HandleBizError(w, bizerr.Newf(bizerr.CodeParamError, "Validation failed").
			WithData(utils.GetValidationFields(err)), logger)
		return
	}

	// Generic validation error
	HandleBizError(w, bizerr.Wrap(bizerr.CodeParamError, "invalid request body", err), logger)
}
