package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

// dayGroupQuery reads the dayGroup query parameter, accepting the short
// aliases (A, B, SQS, TQS) as well as the canonical labels.
func dayGroupQuery(c *gin.Context, required bool) (models.DayGroup, error) {
	raw := c.Query("dayGroup")
	if raw == "" {
		if required {
			return "", appErrors.Clone(appErrors.ErrValidation, "dayGroup is required")
		}
		return "", nil
	}
	g, ok := models.ParseDayGroup(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown dayGroup "+raw)
	}
	return g, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
