package engine

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

var (
	ErrNoNameColumn    = errors.New("could not find a patient name column")
	ErrNothingImported = errors.New("no rows could be placed")
)

const (
	defaultImportStart    = "05:30"
	defaultImportDuration = "04:00"
	midnight              = "00:00"
)

// Header synonyms per field, compared after normalization.
var (
	nameHeaders      = []string{"NOME", "PACIENTE", "NOMES", "NAME", "PATIENT"}
	chairHeaders     = []string{"POLTRONA", "CADEIRA", "LOCAL", "POLT", "NR", "LEITO", "CHAIR", "BED", "SEAT"}
	timeHeaders      = []string{"HORARIO", "HORA", "INICIO", "H.INICIO", "START"}
	daysHeaders      = []string{"DIAS", "ESCALA", "FREQ", "SEMANA", "DAYS", "WEEK"}
	treatmentHeaders = []string{"TIPO", "TRATAMENTO", "TERAPIA", "TREATMENT", "THERAPY", "MODALITY"}
	durationHeaders  = []string{"TEMPO", "DURACAO", "SESSAO", "DURATION", "LENGTH"}
)

var (
	nonAlnum    = regexp.MustCompile(`[^A-Z0-9]`)
	clockPrefix = regexp.MustCompile(`^(\d{1,2}):(\d{2})`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	humanHours  = regexp.MustCompile(`(?i)^(\d{1,2})\s*h\s*(\d{0,2})`)
	dayFraction = regexp.MustCompile(`^0?\.\d+$`)
)

// ImportResult is the next snapshot plus the import accounting. Skips are for logging.
type ImportResult struct {
	Data    models.ScheduleData
	Summary models.ImportSummary
	Skips   []models.ImportSkip
}

type importRow struct {
	name      string
	chair     string
	startTime string
	duration  string
	treatment models.Treatment
	frequency models.Frequency
	groups    []models.DayGroup
	days      []models.Weekday
}

// DetectColumns matches table headers to fields.
func DetectColumns(headers []string) (models.ImportColumns, error) {
	cols := models.ImportColumns{
		Name:      findHeader(headers, nameHeaders),
		Chair:     findHeader(headers, chairHeaders),
		Time:      findHeader(headers, timeHeaders),
		Days:      findHeader(headers, daysHeaders),
		Treatment: findHeader(headers, treatmentHeaders),
		Duration:  findHeader(headers, durationHeaders),
	}
	if cols.Name == "" {
		return cols, ErrNoNameColumn
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	return nonAlnum.ReplaceAllString(NormalizeName(h), "")
}

func findHeader(headers, candidates []string) string {
	for _, h := range headers {
		nh := normalizeHeader(h)
		if nh == "" {
			continue
		}
		for _, c := range candidates {
			if strings.Contains(nh, normalizeHeader(c)) {
				return h
			}
		}
	}
	return ""
}

// ResolveImport merges table rows into data. Rows are placed by start-time
// turn into each rotation their days select; an occupant with the same first
// name is updated in place, otherwise newID supplies a fresh identifier.
func ResolveImport(data models.ScheduleData, table models.ImportTable, active models.DayGroup, newID func() string) (ImportResult, error) {
	if !active.Valid() {
		return ImportResult{}, ErrInvalidDayGroup
	}
	headers := table.Headers
	if len(headers) == 0 && len(table.Rows) > 0 {
		for k := range table.Rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}
	cols, err := DetectColumns(headers)
	if err != nil {
		return ImportResult{}, err
	}

	next := Clone(data)
	res := ImportResult{Summary: models.ImportSummary{Columns: cols}}
	for i, raw := range table.Rows {
		rowNum := i + 1
		row, ok := parseImportRow(raw, cols, active)
		if !ok {
			continue
		}
		placed := 0
		id := newID()
		for _, g := range row.groups {
			chairs := next.Group(g)
			idx := chairIndex(chairs, row.chair)
			if idx < 0 {
				res.Skips = append(res.Skips, models.ImportSkip{Row: rowNum, Name: row.name, Chair: row.chair, Reason: fmt.Sprintf("chair not in roster for %s", g)})
				continue
			}
			groupDays := restrictStrict(row.days, g)
			if len(groupDays) == 0 && row.frequency != models.FrequencyDaily && cols.Days != "" {
				res.Skips = append(res.Skips, models.ImportSkip{Row: rowNum, Name: row.name, Chair: row.chair, Reason: "no weekday recognized"})
				continue
			}
			if len(groupDays) == 0 {
				groupDays = g.Weekdays()
			}
			turn := turnForStart(TimeToMinutes(row.startTime))
			p := &models.Patient{
				ID:           id,
				Name:         row.name,
				Treatment:    row.treatment,
				StartTime:    row.startTime,
				Duration:     row.duration,
				Frequency:    row.frequency,
				SpecificDays: groupDays,
			}
			if existing := chairs[idx].Turn(turn); existing != nil && MatchesSamePerson(existing.Name, row.name) {
				p.ID = existing.ID
				p.Checked = existing.Checked
				res.Summary.Updated++
			} else {
				res.Summary.Inserted++
			}
			chairs[idx].SetTurn(turn, p)
			placed++
		}
		// Only rows that landed in at least one chair count as processed; rows
		// whose every placement was skipped show up in Skips instead.
		if placed > 0 {
			res.Summary.ProcessedRows++
		}
	}
	res.Summary.SkippedPlacements = len(res.Skips)
	if res.Summary.ProcessedRows == 0 {
		return res, ErrNothingImported
	}
	res.Data = next
	return res, nil
}

func parseImportRow(raw map[string]interface{}, cols models.ImportColumns, active models.DayGroup) (importRow, bool) {
	name := strings.ToUpper(strings.TrimSpace(cellString(raw[cols.Name])))
	if name == "" {
		return importRow{}, false
	}
	row := importRow{
		name:      name,
		chair:     UnassignedChair,
		startTime: defaultImportStart,
		duration:  defaultImportDuration,
		treatment: models.TreatmentHD,
		frequency: models.FrequencyThrice,
	}
	if cols.Chair != "" && cellPresent(raw[cols.Chair]) {
		row.chair = ResolveChairLabel(cellString(raw[cols.Chair]))
	}
	if cols.Time != "" {
		row.startTime = ParseImportTime(raw[cols.Time])
	}
	if cols.Duration != "" && cellPresent(raw[cols.Duration]) {
		row.duration = ParseImportTime(raw[cols.Duration])
	}
	if cols.Treatment != "" {
		t := strings.ToUpper(cellString(raw[cols.Treatment]))
		switch {
		case strings.Contains(t, "HDF"):
			row.treatment = models.TreatmentHDF
		case strings.Contains(t, "DP"):
			row.treatment = models.TreatmentDP
		}
	}
	if cols.Days != "" && cellPresent(raw[cols.Days]) {
		row.groups, row.days, row.frequency = detectDays(cellString(raw[cols.Days]), active)
	} else {
		row.groups = []models.DayGroup{active}
		row.days = active.Weekdays()
	}
	return row, true
}

// detectDays reads weekday hints from free text. Digits follow the Brazilian
// convention where 2 is Monday and 6 is Friday.
func detectDays(text string, active models.DayGroup) ([]models.DayGroup, []models.Weekday, models.Frequency) {
	d := NormalizeName(text)
	has := func(tokens ...string) bool {
		for _, t := range tokens {
			if strings.Contains(d, t) {
				return true
			}
		}
		return false
	}
	found := map[models.Weekday]bool{
		models.Monday:    has("SEG", "2", "MON"),
		models.Tuesday:   has("TER", "3", "TUE"),
		models.Wednesday: has("QUA", "4", "WED"),
		models.Thursday:  has("QUI", "5", "THU"),
		models.Friday:    has("SEX", "6", "FRI"),
		models.Saturday:  has("SAB", "SA"),
	}
	daily := has("DIARIO", "TODOS", "6X", "DAILY", "ALL") ||
		(found[models.Monday] && found[models.Tuesday] && found[models.Wednesday] && found[models.Thursday] && found[models.Friday])
	if daily {
		return models.DayGroups(), models.AllWeekdays(), models.FrequencyDaily
	}

	var days []models.Weekday
	for _, w := range models.AllWeekdays() {
		if found[w] {
			days = append(days, w)
		}
	}
	groups := TargetGroups(days, active)
	freq := models.FrequencyThrice
	switch {
	case len(days) == 2:
		freq = models.FrequencyTwice
	case len(days) > 3:
		freq = models.FrequencyDaily
	}
	return groups, days, freq
}

func restrictStrict(days []models.Weekday, g models.DayGroup) []models.Weekday {
	out := make([]models.Weekday, 0, len(days))
	for _, d := range days {
		if g.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// turnForStart assigns turns by clock: before 09:00, before 14:00, then afternoon.
func turnForStart(minutes int) int {
	switch {
	case minutes >= 14*60:
		return 3
	case minutes >= 9*60:
		return 2
	default:
		return 1
	}
}

// ParseImportTime reads a spreadsheet time cell. It accepts Excel day
// fractions, "HH:MM[:SS]", bare digits ("8", "530", "1400") and "14h30".
// Anything else becomes "00:00".
func ParseImportTime(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return midnight
	case float64:
		return excelFraction(t)
	case float32:
		return excelFraction(float64(t))
	case int:
		return ParseImportTime(strconv.Itoa(t))
	case int64:
		return ParseImportTime(strconv.FormatInt(t, 10))
	}

	s := strings.TrimSpace(cellString(v))
	if m := clockPrefix.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", h, m[2])
	}
	if digitsOnly.MatchString(s) {
		switch len(s) {
		case 1, 2:
			h, _ := strconv.Atoi(s)
			return fmt.Sprintf("%02d:00", h)
		case 3:
			return "0" + s[:1] + ":" + s[1:]
		case 4:
			return s[:2] + ":" + s[2:]
		}
	}
	if dayFraction.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return excelFraction(f)
		}
	}
	if m := humanHours.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm := m[2]
		for len(mm) < 2 {
			mm += "0"
		}
		return fmt.Sprintf("%02d:%s", h, mm)
	}
	return midnight
}

func excelFraction(v float64) string {
	frac := v - math.Floor(v)
	if frac < 0.0001 {
		return midnight
	}
	seconds := int(math.Round(frac * 86400))
	return MinutesToTime(seconds / 60)
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func cellPresent(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return true
}
