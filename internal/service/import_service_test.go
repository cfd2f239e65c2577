package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

func occupant(data models.ScheduleData, g models.DayGroup, chair string, turn int) *models.Patient {
	for _, c := range data.Group(g) {
		if c.ChairNumber == chair {
			return c.Turn(turn)
		}
	}
	return nil
}

func TestParseCSVSemicolonWithBOM(t *testing.T) {
	raw := "\xef\xbb\xbfNome;Poltrona;Horário\nmaria;9;05:30\n;;\njoao;3;11:00\n"

	table, err := ParseCSV(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "Poltrona", "Horário"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "maria", table.Rows[0]["Nome"])
	assert.Equal(t, "11:00", table.Rows[1]["Horário"])
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNothingImport.Code, appErrors.FromError(err).Code)

	_, err = ParseCSV(strings.NewReader("Nome,Poltrona\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNothingImport.Code, appErrors.FromError(err).Code)
}

func TestImportCSVPlacesBedChair(t *testing.T) {
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	metrics := NewMetricsService()
	svc := NewImportService(schedule, metrics, nil, nil)

	summary, err := svc.ImportCSV(context.Background(), models.DayGroupMonWedFri, strings.NewReader("Paciente,Poltrona,Horário\nmaria silva,9,05:30\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProcessedRows)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, int64(1), summary.Version)

	data, _ := schedule.Snapshot()
	p := occupant(data, models.DayGroupMonWedFri, engine.BedChairLabel, 1)
	require.NotNil(t, p)
	assert.Equal(t, "MARIA SILVA", p.Name)
	assert.Equal(t, "05:30", p.StartTime)
}

func TestImportRowsUpdatesExistingOccupant(t *testing.T) {
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	schedule.Reset(scheduleWith(seated("03", 2, "keep-me", "JOAO SOUZA", "10:30")), models.SourceMaster)
	svc := NewImportService(schedule, nil, nil, nil)

	summary, err := svc.ImportRows(context.Background(), dto.ImportRequest{
		DayGroup: models.DayGroupMonWedFri,
		Headers:  []string{"Nome", "Cadeira", "Hora"},
		Rows:     []map[string]interface{}{{"Nome": "joao", "Cadeira": "3", "Hora": "10:30"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Inserted)

	data, _ := schedule.Snapshot()
	p := occupant(data, models.DayGroupMonWedFri, "03", 2)
	require.NotNil(t, p)
	assert.Equal(t, "keep-me", p.ID)
}

func TestImportFailures(t *testing.T) {
	schedule := NewScheduleService(engine.DefaultRules(), nil, nil)
	svc := NewImportService(schedule, nil, nil, nil)

	_, err := svc.ImportCSV(context.Background(), "SEG", strings.NewReader("Nome\nana\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ImportCSV(context.Background(), models.DayGroupMonWedFri, strings.NewReader("Coluna,Outra\na,b\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoNameColumn.Code, appErrors.FromError(err).Code)

	_, err = svc.ImportRows(context.Background(), dto.ImportRequest{DayGroup: models.DayGroupMonWedFri})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Equal(t, int64(0), schedule.Version())
}
