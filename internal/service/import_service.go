package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

type scheduleApplier interface {
	Apply(ctx context.Context, reason string, fn MutateFunc) (models.ScheduleData, int64, error)
}

// ImportService applies spreadsheet rows to the schedule.
type ImportService struct {
	schedule  scheduleApplier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
}

// NewImportService constructs the service.
func NewImportService(schedule scheduleApplier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{schedule: schedule, metrics: metrics, validator: validate, logger: logger, newID: uuid.NewString}
}

// ImportRows imports rows parsed by the client.
func (s *ImportService) ImportRows(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid import payload")
	}
	return s.run(ctx, req.DayGroup, req.Table())
}

// ImportCSV parses a CSV upload and imports it into the given day group.
func (s *ImportService) ImportCSV(ctx context.Context, g models.DayGroup, r io.Reader) (*models.ImportSummary, error) {
	table, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, g, table)
}

func (s *ImportService) run(ctx context.Context, g models.DayGroup, table models.ImportTable) (*models.ImportSummary, error) {
	if !g.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day group")
	}

	var result engine.ImportResult
	_, version, err := s.schedule.Apply(ctx, "import", func(current models.ScheduleData) (models.ScheduleData, error) {
		res, err := engine.ResolveImport(current, table, g, s.newID)
		result = res
		if err != nil {
			return models.ScheduleData{}, err
		}
		return res.Data, nil
	})

	for _, skip := range result.Skips {
		s.logger.Warn("import placement skipped",
			zap.Int("row", skip.Row),
			zap.String("name", skip.Name),
			zap.String("chair", skip.Chair),
			zap.String("reason", skip.Reason),
		)
	}
	if err != nil {
		return nil, err
	}

	summary := result.Summary
	summary.Version = version
	s.metrics.RecordImport(summary)
	s.logger.Info("import applied",
		zap.String("day_group", string(g)),
		zap.Int("processed_rows", summary.ProcessedRows),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.SkippedPlacements),
	)
	return &summary, nil
}

// ParseCSV reads a spreadsheet export. The first row holds the headers; the
// separator is ';' when the header line has more semicolons than commas.
func ParseCSV(r io.Reader) (models.ImportTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.ImportTable{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffSeparator(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return models.ImportTable{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv")
	}
	if len(records) == 0 {
		return models.ImportTable{}, appErrors.Clone(appErrors.ErrNothingImport, "the file is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	table := models.ImportTable{Headers: headers}
	for _, rec := range records[1:] {
		row := make(map[string]interface{}, len(headers))
		blank := true
		for i, h := range headers {
			if h == "" || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			table.Rows = append(table.Rows, row)
		}
	}
	if len(table.Rows) == 0 {
		return table, appErrors.Wrap(errors.New("no data rows"), appErrors.ErrNothingImport.Code, appErrors.ErrNothingImport.Status, "the file has no data rows")
	}
	return table, nil
}

func sniffSeparator(raw []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(raw)).ReadString('\n')
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
