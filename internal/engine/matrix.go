package engine

import (
	"sort"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// BuildMatrix lays out one rotation on the grid. Patients are placed first on
// every chair, then setup blocks fill the free rows after each session.
func BuildMatrix(data models.ScheduleData, g models.DayGroup, grid Grid) models.OccupancyMatrix {
	chairs := data.Group(g)
	out := models.OccupancyMatrix{
		DayGroup: g,
		Slots:    grid.SlotLabels(),
		Chairs:   make([]models.ChairColumn, 0, len(chairs)),
	}
	placed := make([]map[int]models.Cell, len(chairs))
	sessions := make([][]placedSession, len(chairs))
	for i, chair := range chairs {
		placed[i], sessions[i] = placePatients(chair, grid)
	}
	for i, chair := range chairs {
		out.Chairs = append(out.Chairs, models.ChairColumn{
			ChairNumber: chair.ChairNumber,
			Cells:       placeSetups(placed[i], sessions[i], grid),
		})
	}
	return out
}

type placedSession struct {
	start int
	span  int
}

type turnPatient struct {
	turn    int
	patient *models.Patient
}

// sortedOccupants returns the chair's patients ordered by start time; ties keep turn order.
func sortedOccupants(chair models.ChairSchedule) []turnPatient {
	list := make([]turnPatient, 0, models.TurnsPerChair)
	for n := 1; n <= models.TurnsPerChair; n++ {
		if p := chair.Turn(n); p != nil {
			list = append(list, turnPatient{turn: n, patient: p})
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return TimeToMinutes(list[i].patient.StartTime) < TimeToMinutes(list[j].patient.StartTime)
	})
	return list
}

// placePatients writes a spanning patient cell plus blocked rows for each
// occupant. Overlapping sessions are not corrected: a later start overwrites.
func placePatients(chair models.ChairSchedule, grid Grid) (map[int]models.Cell, []placedSession) {
	cells := make(map[int]models.Cell)
	sessions := make([]placedSession, 0, models.TurnsPerChair)
	for _, tp := range sortedOccupants(chair) {
		start := grid.SnapToGrid(TimeToMinutes(tp.patient.StartTime))
		span := grid.SpanSlots(ParseDurationMinutes(tp.patient.Duration))
		if span < 1 {
			span = 1
		}
		cells[start] = models.Cell{
			Kind:      models.CellPatient,
			PatientID: tp.patient.ID,
			Name:      tp.patient.Name,
			Treatment: string(tp.patient.Treatment),
			Turn:      tp.turn,
			Span:      span,
		}
		for k := 1; k < span; k++ {
			cells[start+k*grid.SlotMinutes] = models.Cell{
				Kind:      models.CellBlockedPatient,
				PatientID: tp.patient.ID,
				Turn:      tp.turn,
			}
		}
		sessions = append(sessions, placedSession{start: start, span: span})
	}
	return cells, sessions
}

// placeSetups returns a new map with a setup block after each session, sized
// by the free rows available before the next occupied row or closing time.
func placeSetups(patients map[int]models.Cell, sessions []placedSession, grid Grid) map[int]models.Cell {
	out := make(map[int]models.Cell, len(patients))
	for k, v := range patients {
		out[k] = v
	}
	want := grid.SpanSlots(grid.SetupMinutes)
	for _, s := range sessions {
		setupStart := s.start + s.span*grid.SlotMinutes
		if setupStart >= grid.CloseMinutes {
			continue
		}
		free := 0
		for k := 0; k < want; k++ {
			at := setupStart + k*grid.SlotMinutes
			if at >= grid.CloseMinutes {
				break
			}
			if _, taken := out[at]; taken {
				break
			}
			free++
		}
		if free == 0 {
			continue
		}
		out[setupStart] = models.Cell{Kind: models.CellSetup, Span: free}
		for k := 1; k < free; k++ {
			out[setupStart+k*grid.SlotMinutes] = models.Cell{Kind: models.CellBlockedSetup}
		}
	}
	return out
}
