package dataset

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"demandcli/internal/config"
	"demandcli/pkg/contracts/domain"
)

// Assembler reshapes wide per-day sales rows into long time series joined
// with calendar metadata.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a time-series assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble selects the unique sales row for (itemID, storeID), melts its
// day columns into one point per day, attaches calendar attributes by day
// key and sorts chronologically. The result always has one point per day
// column of the sales row: days the calendar does not know about keep nil
// calendar attributes and sort after the dated points, in day-key order.
// An absent (itemID, storeID) pair yields an empty result, not an error.
func (a *Assembler) Assemble(sales, calendar *domain.Frame, itemID, storeID string) []domain.SeriesPoint {
	if sales == nil {
		return nil
	}

	itemIdx := sales.ColumnIndex("item_id")
	storeIdx := sales.ColumnIndex("store_id")
	if itemIdx < 0 || storeIdx < 0 {
		a.logger.Warn("sales table lacks identifier columns, cannot assemble series")
		return nil
	}

	var match []string
	for _, row := range sales.Rows {
		if row[itemIdx] == itemID && row[storeIdx] == storeID {
			match = row
			break
		}
	}
	if match == nil {
		a.logger.Debug("no sales row for product/store pair",
			slog.String("item_id", itemID),
			slog.String("store_id", storeID))
		return nil
	}

	dayColumns := sales.ColumnsWithPrefix(config.DayColumnPrefix)
	attrs := buildCalendarIndex(calendar)

	points := make([]domain.SeriesPoint, 0, len(dayColumns))
	for _, dayCol := range dayColumns {
		idx := sales.ColumnIndex(dayCol)
		points = append(points, domain.SeriesPoint{
			DayKey:   dayCol,
			ItemID:   itemID,
			StoreID:  storeID,
			Sales:    parseSales(match[idx]),
			Calendar: attrs[dayCol],
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		pi, pj := points[i], points[j]
		switch {
		case pi.Calendar != nil && pj.Calendar != nil:
			return pi.Calendar.Date.Before(pj.Calendar.Date)
		case pi.Calendar != nil:
			return true
		case pj.Calendar != nil:
			return false
		default:
			return dayNumber(pi.DayKey) < dayNumber(pj.DayKey)
		}
	})

	return points
}

// buildCalendarIndex maps day keys to parsed calendar attributes. Rows
// that fail to parse are skipped, which leaves their day keys unmatched.
func buildCalendarIndex(calendar *domain.Frame) map[string]*domain.CalendarAttrs {
	attrs := make(map[string]*domain.CalendarAttrs)
	if calendar == nil || !calendar.HasColumn("d") {
		return attrs
	}

	dIdx := calendar.ColumnIndex("d")
	for row := range calendar.Rows {
		dateCell, ok := calendar.Cell(row, "date")
		if !ok {
			continue
		}
		date, err := time.Parse(config.DateLayout, strings.TrimSpace(dateCell))
		if err != nil {
			continue
		}

		wday, err := calendar.Int(row, "wday")
		if err != nil {
			continue
		}
		month, err := calendar.Int(row, "month")
		if err != nil {
			continue
		}
		year, err := calendar.Int(row, "year")
		if err != nil {
			continue
		}

		attrs[calendar.Rows[row][dIdx]] = &domain.CalendarAttrs{
			Date:   date,
			Wday:   wday,
			Month:  month,
			Year:   year,
			SnapCA: flagSet(calendar, row, "snap_CA"),
			SnapTX: flagSet(calendar, row, "snap_TX"),
			SnapWI: flagSet(calendar, row, "snap_WI"),
		}
	}

	return attrs
}

func flagSet(frame *domain.Frame, row int, column string) bool {
	value, err := frame.Int(row, column)
	return err == nil && value != 0
}

// parseSales reads a daily count cell. Real artifacts carry integers;
// anything unparseable counts as zero rather than failing the assembly.
func parseSales(cell string) int {
	cell = strings.TrimSpace(cell)
	if value, err := strconv.Atoi(cell); err == nil {
		return value
	}
	if value, err := strconv.ParseFloat(cell, 64); err == nil {
		return int(value)
	}
	return 0
}

func dayNumber(dayKey string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(dayKey, config.DayColumnPrefix))
	if err != nil {
		return 0
	}
	return n
}
