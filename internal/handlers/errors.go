package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/service"
	"asthma-care-server/internal/utils"
)

// respondError maps service errors onto HTTP statuses. Failures on the clinic
// sheet are logged; caller mistakes are not.
func respondError(c *gin.Context, logger *zap.Logger, err error, hn string) {
	hn = clinical.NormalizeHN(hn)
	switch {
	case errors.Is(err, service.ErrPatientNotFound):
		utils.NotFound(c, fmt.Sprintf("patient HN %s not found", hn))
	case errors.Is(err, service.ErrDuplicateHN):
		utils.Conflict(c, fmt.Sprintf("HN %s is already registered", hn))
	case errors.Is(err, service.ErrInvalidHN):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrAppendFailed):
		logger.Error("Clinic sheet write failed",
			zap.String("path", c.FullPath()),
			zap.String("hn", hn),
			zap.Error(err),
		)
		utils.BadGateway(c, service.ErrAppendFailed.Error())
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		utils.InternalServerError(c, err.Error())
	}
}
