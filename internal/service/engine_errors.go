package service

import (
	"errors"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

// translateEngineError maps scheduling core errors to HTTP-aware errors.
// Conflict messages keep the occupant name so the client can show it.
func translateEngineError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, engine.ErrSlotOccupied):
		return appErrors.Wrap(err, appErrors.ErrSlotOccupied.Code, appErrors.ErrSlotOccupied.Status, err.Error())
	case errors.Is(err, engine.ErrChairFull):
		return appErrors.Wrap(err, appErrors.ErrChairFull.Code, appErrors.ErrChairFull.Status, err.Error())
	case errors.Is(err, engine.ErrTimeOverlap):
		return appErrors.Wrap(err, appErrors.ErrTimeOverlap.Code, appErrors.ErrTimeOverlap.Status, err.Error())
	case errors.Is(err, engine.ErrSlotEmpty), errors.Is(err, engine.ErrPatientNotFound):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, err.Error())
	case errors.Is(err, engine.ErrUnknownChair), errors.Is(err, engine.ErrInvalidTurn),
		errors.Is(err, engine.ErrInvalidDayGroup), errors.Is(err, engine.ErrMissingPatient):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	case errors.Is(err, engine.ErrNoNameColumn):
		return appErrors.Wrap(err, appErrors.ErrNoNameColumn.Code, appErrors.ErrNoNameColumn.Status, appErrors.ErrNoNameColumn.Message)
	case errors.Is(err, engine.ErrNothingImported):
		return appErrors.Wrap(err, appErrors.ErrNothingImport.Code, appErrors.ErrNothingImport.Status, appErrors.ErrNothingImport.Message)
	case errors.Is(err, engine.ErrMalformedSnapshot):
		return appErrors.Wrap(err, appErrors.ErrInvalidBackup.Code, appErrors.ErrInvalidBackup.Status, appErrors.ErrInvalidBackup.Message)
	case errors.Is(err, engine.ErrDataProtected):
		return appErrors.Wrap(err, appErrors.ErrDataProtected.Code, appErrors.ErrDataProtected.Status, appErrors.ErrDataProtected.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
