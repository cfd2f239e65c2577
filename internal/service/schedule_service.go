package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/engine"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
)

// ChangeEvent announces a committed snapshot.
type ChangeEvent struct {
	Data    models.ScheduleData
	Version int64
	Reason  string
	// AllowEmpty lets the save replace a populated store with an empty snapshot.
	AllowEmpty bool
	// Wipe asks persistence to clear every stored copy instead of saving.
	Wipe bool
	// Persisted marks a snapshot that already matches the store, such as a fresh load.
	Persisted bool
}

// ChangeListener observes commits. Listeners run synchronously in commit
// order and must not write to the schedule.
type ChangeListener func(ChangeEvent)

// MutateFunc derives the next snapshot from the current one.
type MutateFunc func(current models.ScheduleData) (models.ScheduleData, error)

// ScheduleService owns the in-memory schedule. Writes are serialized and
// swap whole snapshots, bumping the version on every commit.
type ScheduleService struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex

	data    models.ScheduleData
	version int64
	source  models.SourceTag

	rules     engine.Rules
	validator *validator.Validate
	logger    *zap.Logger
	newID     func() string
	listeners []ChangeListener
}

// NewScheduleService starts with an empty roster until a snapshot is loaded.
func NewScheduleService(rules engine.Rules, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules.Grid == (engine.Grid{}) {
		rules.Grid = engine.DefaultGrid()
	}
	return &ScheduleService{
		data:      engine.NewEmptySchedule(),
		source:    models.SourceEmpty,
		rules:     rules,
		validator: validate,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Subscribe registers a listener for future commits.
func (s *ScheduleService) Subscribe(l ChangeListener) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Grid returns the time grid the schedule is laid out on.
func (s *ScheduleService) Grid() engine.Grid {
	return s.rules.Grid
}

// Snapshot returns a private copy of the current schedule and its version.
func (s *ScheduleService) Snapshot() (models.ScheduleData, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return engine.Clone(s.data), s.version
}

// Version returns the current snapshot version.
func (s *ScheduleService) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns the whole schedule.
func (s *ScheduleService) Get(ctx context.Context) *dto.ScheduleResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &dto.ScheduleResponse{Data: engine.Clone(s.data), Version: s.version, Source: s.source}
}

// Records lists every occupied slot.
func (s *ScheduleService) Records(ctx context.Context) []models.FlatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return engine.Flatten(s.data)
}

// ReplaceRecords rebuilds the schedule from a flat list.
func (s *ScheduleService) ReplaceRecords(ctx context.Context, req dto.ReplaceRecordsRequest) (*dto.MutationResponse, error) {
	next := engine.Rebuild(req.Records)
	return s.commitResponse(ctx, "replace_records", func(models.ScheduleData) (models.ScheduleData, error) {
		return next, nil
	})
}

// Matrix lays out one day group on the time grid.
func (s *ScheduleService) Matrix(ctx context.Context, g models.DayGroup) (*models.OccupancyMatrix, error) {
	if !g.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day group")
	}
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	matrix := engine.BuildMatrix(data, g, s.rules.Grid)
	return &matrix, nil
}

// TimeSlots lists the grid rows offered by edit forms.
func (s *ScheduleService) TimeSlots() []string {
	return s.rules.Grid.SlotLabels()
}

// SavePatient writes a patient to the selected chairs of every target day group.
func (s *ScheduleService) SavePatient(ctx context.Context, req dto.SavePatientRequest) (*dto.SavePatientResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid patient payload")
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = s.newID()
	}
	patient := req.Patient(id)
	patient.Name = strings.ToUpper(strings.TrimSpace(patient.Name))

	saveReq := engine.SaveRequest{
		Patient:  patient,
		Chairs:   req.Chairs,
		Turn:     req.Turn,
		DayGroup: req.DayGroup,
	}
	if req.Editing != nil {
		m := req.Editing.Membership()
		saveReq.Editing = &m
	}

	resp, err := s.commitResponse(ctx, "save_patient", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.SavePatient(current, s.rules, saveReq)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("patient saved", zap.String("patient_id", id), zap.Strings("chairs", req.Chairs), zap.Int("turn", req.Turn))
	return &dto.SavePatientResponse{Patient: patient, MutationResponse: *resp}, nil
}

// UpdatePatient patches the fields of every slot held by the patient.
func (s *ScheduleService) UpdatePatient(ctx context.Context, id string, req dto.UpdatePatientRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid patient update")
	}
	upd := engine.PatientUpdate{
		Treatment: req.Treatment,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Frequency: req.Frequency,
		Checked:   req.Checked,
	}
	if req.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*req.Name))
		upd.Name = &name
	}
	return s.commitResponse(ctx, "update_patient", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.UpdatePatientFields(current, s.rules, id, upd)
	})
}

// MovePatient relocates one slot to another chair, turn or day group.
func (s *ScheduleService) MovePatient(ctx context.Context, req dto.MovePatientRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid move payload")
	}
	return s.commitResponse(ctx, "move_patient", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.MovePatient(current, s.rules, req.From.Membership(), req.To.Membership())
	})
}

// DropPatient places a dragged slot in the first free turn of the target chair.
func (s *ScheduleService) DropPatient(ctx context.Context, req dto.DropPatientRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid drop payload")
	}
	return s.commitResponse(ctx, "drop_patient", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.DropPatient(current, s.rules, req.From.Membership(), req.TargetChair, req.StartTime)
	})
}

// DeletePatient clears every slot held by the patient in both day groups.
func (s *ScheduleService) DeletePatient(ctx context.Context, id string) (*dto.MutationResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patient id is required")
	}
	return s.commitResponse(ctx, "delete_patient", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.DeletePatient(current, id)
	})
}

// Lookup lists a patient's weekly sessions by name.
func (s *ScheduleService) Lookup(ctx context.Context, name string) (*models.PatientSchedule, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	result := engine.FindSessions(data, name)
	if len(result.Sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no sessions found for "+strings.TrimSpace(name))
	}
	return &result, nil
}

// Enrollments groups slots by patient id.
func (s *ScheduleService) Enrollments(ctx context.Context) []models.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return engine.Enrollments(s.data)
}

// ApplyEnrollment rewrites a patient and every slot it holds in one commit.
func (s *ScheduleService) ApplyEnrollment(ctx context.Context, id string, req dto.EnrollmentRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	patient := req.Patient(id)
	patient.Name = strings.ToUpper(strings.TrimSpace(patient.Name))
	enrollment := models.Enrollment{Patient: patient}
	for _, ref := range req.Memberships {
		enrollment.Memberships = append(enrollment.Memberships, ref.Membership())
	}
	return s.commitResponse(ctx, "apply_enrollment", func(current models.ScheduleData) (models.ScheduleData, error) {
		return engine.ApplyEnrollment(current, s.rules, enrollment)
	})
}

// Drift reports patients whose copies disagree.
func (s *ScheduleService) Drift(ctx context.Context) []models.Drift {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return engine.DetectDrift(s.data)
}

// Replace installs a whole snapshot, as a backup restore does.
func (s *ScheduleService) Replace(ctx context.Context, data models.ScheduleData, reason string) (*dto.MutationResponse, error) {
	next := engine.Normalize(data)
	return s.commitResponse(ctx, reason, func(models.ScheduleData) (models.ScheduleData, error) {
		return next, nil
	})
}

// Wipe empties the schedule and asks persistence to clear the stored copies.
func (s *ScheduleService) Wipe(ctx context.Context) (*dto.MutationResponse, error) {
	_, version, err := s.commit(ctx, "wipe", func(models.ScheduleData) (models.ScheduleData, error) {
		return engine.NewEmptySchedule(), nil
	}, true, true)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("schedule wiped", zap.Int64("version", version))
	return &dto.MutationResponse{Version: version}, nil
}

// Reset installs a snapshot read from the store. It is announced as persisted
// so no save is scheduled for it.
func (s *ScheduleService) Reset(data models.ScheduleData, source models.SourceTag) int64 {
	s.mu.Lock()
	s.data = engine.Normalize(data)
	s.source = source
	s.version++
	event := ChangeEvent{Data: s.data, Version: s.version, Reason: "load", Persisted: true}
	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(event)
	s.notifyMu.Unlock()
	return event.Version
}

// Apply runs fn against the current snapshot under the write lock and commits its result.
func (s *ScheduleService) Apply(ctx context.Context, reason string, fn MutateFunc) (models.ScheduleData, int64, error) {
	return s.commit(ctx, reason, fn, false, false)
}

func (s *ScheduleService) commitResponse(ctx context.Context, reason string, fn MutateFunc) (*dto.MutationResponse, error) {
	next, version, err := s.commit(ctx, reason, fn, false, false)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Version: version, RecordCount: engine.CountRecords(next)}, nil
}

func (s *ScheduleService) commit(ctx context.Context, reason string, fn MutateFunc, allowEmpty, wipe bool) (models.ScheduleData, int64, error) {
	if err := ctx.Err(); err != nil {
		return models.ScheduleData{}, 0, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "request cancelled")
	}

	s.mu.Lock()
	next, err := fn(s.data)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("schedule mutation rejected", zap.String("reason", reason), zap.Error(err))
		return models.ScheduleData{}, 0, translateEngineError(err)
	}
	s.data = next
	s.version++
	event := ChangeEvent{Data: next, Version: s.version, Reason: reason, AllowEmpty: allowEmpty, Wipe: wipe}
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(event)
	s.notifyMu.Unlock()
	return next, event.Version, nil
}

// notify must be called with notifyMu held.
func (s *ScheduleService) notify(event ChangeEvent) {
	for _, l := range s.listeners {
		l(event)
	}
}
