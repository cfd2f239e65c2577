package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/export"
)

// Export kinds.
const (
	ExportMap      = "map"
	ExportRoster   = "roster"
	ExportRecords  = "records"
	ExportTemplate = "template"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ClinicName string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the schedule as CSV or PDF reports.
type ExportService struct {
	schedule scheduleReader
	csv      datasetRenderer
	pdf      datasetRenderer
	cfg      ExportConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(schedule scheduleReader, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedule: schedule,
		csv:      csv,
		pdf:      pdf,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders one export. Map exports need a day group; roster exports
// use it as a filter when given.
func (s *ExportService) Generate(ctx context.Context, kind, format string, g models.DayGroup) (*ExportFile, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}

	data, _ := s.schedule.Snapshot()
	var (
		dataset export.Dataset
		err     error
	)
	switch kind {
	case ExportMap:
		dataset, err = s.mapDataset(data, g)
	case ExportRoster:
		dataset = s.rosterDataset(data, g)
	case ExportRecords:
		dataset = recordsDataset(data)
	case ExportTemplate:
		dataset = templateDataset()
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export %s", kind))
	}
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)
	if format == FormatPDF {
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	} else {
		body, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{Filename: s.filename(kind, g, format), ContentType: contentType, Body: body}, nil
}

func (s *ExportService) filename(kind string, g models.DayGroup, format string) string {
	parts := []string{"hemo", kind}
	if g.Valid() && kind != ExportRecords && kind != ExportTemplate {
		parts = append(parts, groupSlug(g))
	}
	parts = append(parts, s.now().Format("2006-01-02"))
	return strings.Join(parts, "_") + "." + format
}

func groupSlug(g models.DayGroup) string {
	if g == models.DayGroupMonWedFri {
		return "seg-qua-sex"
	}
	return "ter-qui-sab"
}

// mapDataset lays out time rows against chair columns.
func (s *ExportService) mapDataset(data models.ScheduleData, g models.DayGroup) (export.Dataset, error) {
	if !g.Valid() {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, "dayGroup is required for the occupancy map")
	}
	matrix := engine.BuildMatrix(data, g, s.schedule.Grid())
	headers := make([]string, 0, len(matrix.Chairs)+1)
	headers = append(headers, "Time")
	for _, col := range matrix.Chairs {
		headers = append(headers, col.ChairNumber)
	}

	grid := s.schedule.Grid()
	rows := make([]map[string]string, 0, len(matrix.Slots))
	for i, minute := range grid.Slots() {
		row := map[string]string{"Time": matrix.Slots[i]}
		for _, col := range matrix.Chairs {
			cell, ok := col.Cells[minute]
			if !ok {
				continue
			}
			switch cell.Kind {
			case models.CellPatient:
				row[col.ChairNumber] = fmt.Sprintf("%s (%s)", cell.Name, cell.Treatment)
			case models.CellBlockedPatient:
				row[col.ChairNumber] = "occupied"
			case models.CellSetup, models.CellBlockedSetup:
				row[col.ChairNumber] = "CLEANING"
			}
		}
		rows = append(rows, row)
	}
	return export.Dataset{
		Title:       "Occupancy map " + string(g),
		Subtitle:    s.subtitle(),
		Headers:     headers,
		Rows:        rows,
		Orientation: export.Landscape,
	}, nil
}

// rosterDataset lists each occupied turn with its session window.
func (s *ExportService) rosterDataset(data models.ScheduleData, g models.DayGroup) export.Dataset {
	headers := []string{"Day group", "Chair", "Turn", "Patient", "Therapy", "Frequency", "Start", "End", "Duration"}
	rows := make([]map[string]string, 0)
	for _, rec := range engine.Flatten(data) {
		if g.Valid() && rec.DayGroup != g {
			continue
		}
		start := engine.TimeToMinutes(rec.StartTime)
		end := start + engine.ParseDurationMinutes(rec.Duration)
		rows = append(rows, map[string]string{
			"Day group": string(rec.DayGroup),
			"Chair":     rec.ChairNumber,
			"Turn":      strconv.Itoa(rec.Turn),
			"Patient":   rec.Name,
			"Therapy":   string(rec.Treatment),
			"Frequency": string(rec.Frequency),
			"Start":     engine.MinutesToTime(start),
			"End":       engine.MinutesToTime(end),
			"Duration":  rec.Duration,
		})
	}
	title := "Patient roster"
	if g.Valid() {
		title += " " + string(g)
	}
	return export.Dataset{Title: title, Subtitle: s.subtitle(), Headers: headers, Rows: rows, Orientation: export.Landscape}
}

func recordsDataset(data models.ScheduleData) export.Dataset {
	headers := []string{"uniqueId", "id", "name", "treatment", "startTime", "duration", "frequency", "specificDays", "checked", "dayGroup", "chairNumber", "turn"}
	rows := make([]map[string]string, 0)
	for _, rec := range engine.Flatten(data) {
		days := make([]string, 0, len(rec.SpecificDays))
		for _, d := range rec.SpecificDays {
			days = append(days, string(d))
		}
		rows = append(rows, map[string]string{
			"uniqueId":     rec.UniqueID,
			"id":           rec.ID,
			"name":         rec.Name,
			"treatment":    string(rec.Treatment),
			"startTime":    rec.StartTime,
			"duration":     rec.Duration,
			"frequency":    string(rec.Frequency),
			"specificDays": strings.Join(days, ","),
			"checked":      strconv.FormatBool(rec.Checked),
			"dayGroup":     string(rec.DayGroup),
			"chairNumber":  rec.ChairNumber,
			"turn":         strconv.Itoa(rec.Turn),
		})
	}
	return export.Dataset{Title: "Schedule records", Headers: headers, Rows: rows, Orientation: export.Landscape}
}

// templateDataset is a spreadsheet the importer recognizes, with one example row.
func templateDataset() export.Dataset {
	headers := []string{"Name", "Chair", "Start", "Days", "Treatment", "Duration"}
	rows := []map[string]string{{
		"Name":      "PATIENT NAME",
		"Chair":     "01",
		"Start":     "05:30",
		"Days":      "SEG,QUA,SEX",
		"Treatment": "HD",
		"Duration":  "04:00",
	}}
	return export.Dataset{Title: "Import template", Headers: headers, Rows: rows}
}

func (s *ExportService) subtitle() string {
	name := s.cfg.ClinicName
	stamp := s.now().Format("2006-01-02 15:04")
	if name == "" {
		return stamp
	}
	return name + " - " + stamp
}
