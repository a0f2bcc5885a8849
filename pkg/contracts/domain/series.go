package domain

import (
	"time"
)

// SeriesPoint is one day of a product's sales history in long form.
// Calendar is nil when the sales row carries a day key the calendar
// table does not know about.
type SeriesPoint struct {
	DayKey   string         `json:"d"`
	ItemID   string         `json:"item_id"`
	StoreID  string         `json:"store_id"`
	Sales    int            `json:"sales"`
	Calendar *CalendarAttrs `json:"calendar,omitempty"`
}

// CalendarAttrs carries the calendar metadata joined onto a series point.
// Wday numbers the day of week with Monday as 1.
type CalendarAttrs struct {
	Date   time.Time `json:"date"`
	Wday   int       `json:"wday"`
	Month  int       `json:"month"`
	Year   int       `json:"year"`
	SnapCA bool      `json:"snap_ca"`
	SnapTX bool      `json:"snap_tx"`
	SnapWI bool      `json:"snap_wi"`
}

// Snap returns the SNAP flag for the state the store belongs to. Store
// identifiers are prefixed with their state code (CA_1, TX_2, WI_3).
func (p SeriesPoint) Snap() bool {
	if p.Calendar == nil {
		return false
	}
	switch {
	case len(p.StoreID) >= 2 && p.StoreID[:2] == "CA":
		return p.Calendar.SnapCA
	case len(p.StoreID) >= 2 && p.StoreID[:2] == "TX":
		return p.Calendar.SnapTX
	case len(p.StoreID) >= 2 && p.StoreID[:2] == "WI":
		return p.Calendar.SnapWI
	}
	return false
}

// CalendarDay is one row of the calendar table in typed form.
type CalendarDay struct {
	DayKey  string    `json:"d"`
	Date    time.Time `json:"date"`
	WmYrWk  int       `json:"wm_yr_wk"`
	Weekday string    `json:"weekday"`
	Wday    int       `json:"wday"`
	Month   int       `json:"month"`
	Year    int       `json:"year"`
	SnapCA  bool      `json:"snap_ca"`
	SnapTX  bool      `json:"snap_tx"`
	SnapWI  bool      `json:"snap_wi"`
}

// DateRange is the inclusive span of dates covered by the calendar table.
type DateRange struct {
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
}
