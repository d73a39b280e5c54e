// ABOUTME: Weekly view of the slot grid for rendering
// ABOUTME: Lays out days x lanes x half-hour rows with merged multi-slot cells
package schedule

import (
	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
)

// DayNames are the grid columns in ISO week order.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type CellKind string

const (
	CellEmpty   CellKind = "empty"
	CellStart   CellKind = "start"
	CellBlocked CellKind = "blocked"
)

type Cell struct {
	Lane        string              `json:"lane"`
	Kind        CellKind            `json:"kind"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Rows        int                 `json:"rows,omitempty"`
	Bookable    bool                `json:"bookable"`
}

type Day struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	IsToday bool   `json:"isToday"`
}

type Row struct {
	Hour  float64  `json:"hour"`
	Label string   `json:"label"`
	Full  bool     `json:"full"`
	Cells [][]Cell `json:"cells"` // [day][lane]
}

type Week struct {
	Monday string   `json:"monday"`
	Days   []Day    `json:"days"`
	Lanes  []string `json:"lanes"`
	Rows   []Row    `json:"rows"`
}

// Week renders the seven days starting at monday.
func (g *Grid) Week(monday string) (*Week, error) {
	keys, err := dates.WeekKeys(monday)
	if err != nil {
		return nil, err
	}

	today := ""
	if g.clock != nil {
		today = g.clock.Today()
	}

	w := &Week{Monday: monday, Lanes: g.lanes}
	for i, k := range keys {
		w.Days = append(w.Days, Day{Name: DayNames[i], Date: k, IsToday: k == today})
	}

	for _, hour := range g.slots {
		row := Row{
			Hour:  hour,
			Full:  hour == float64(int(hour)),
			Cells: make([][]Cell, len(keys)),
		}
		if row.Full {
			row.Label = dates.HourLabel(hour)
		}
		for d, date := range keys {
			cells := make([]Cell, 0, len(g.lanes))
			for _, lane := range g.lanes {
				cells = append(cells, g.cell(lane, date, hour))
			}
			row.Cells[d] = cells
		}
		w.Rows = append(w.Rows, row)
	}

	return w, nil
}

func (g *Grid) cell(lane, date string, hour float64) Cell {
	if a := g.AppointmentAt(lane, date, hour); a != nil {
		return Cell{Lane: lane, Kind: CellStart, Appointment: a, Rows: int(a.Duration / SlotLength)}
	}
	if a := g.BlockedByPrior(lane, date, hour); a != nil {
		return Cell{Lane: lane, Kind: CellBlocked, Appointment: a}
	}
	return Cell{Lane: lane, Kind: CellEmpty, Bookable: g.Bookable(lane, date, hour)}
}
