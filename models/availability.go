package models

// Slot is one bookable interval on a barber's day, shop-local "HH:MM".
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Period groups slots into the coarse windows offered during time
// selection. Key is the stable identifier carried in button ids.
type Period string

const (
	PeriodNow      Period = "now"      // Starting within the next two hours
	PeriodLater    Period = "later"    // Rest of today before evening
	PeriodEvening  Period = "evening"  // From 17:00 onward
	PeriodTomorrow Period = "tomorrow" // Offered only when today is exhausted
)

// PeriodOrder is the presentation order for period menus.
var PeriodOrder = []Period{PeriodNow, PeriodLater, PeriodEvening, PeriodTomorrow}

// Valid reports whether p is a defined period.
func (p Period) Valid() bool {
	switch p {
	case PeriodNow, PeriodLater, PeriodEvening, PeriodTomorrow:
		return true
	}
	return false
}

// Label is the customer-facing name for the period.
func (p Period) Label() string {
	switch p {
	case PeriodNow:
		return "Now"
	case PeriodLater:
		return "Later today"
	case PeriodEvening:
		return "Evening"
	case PeriodTomorrow:
		return "Tomorrow"
	}
	return string(p)
}

// DayAvailability is the resolved picture for one barber and date:
// which slots remain open, bucketed by period.
type DayAvailability struct {
	BarberID string          `json:"barber_id"`
	Date     string          `json:"date"` // Shop-local "2006-01-02"
	Periods  map[Period][]Slot `json:"periods"`
}

// HasAny reports whether any period holds at least one open slot.
func (d *DayAvailability) HasAny() bool {
	for _, slots := range d.Periods {
		if len(slots) > 0 {
			return true
		}
	}
	return false
}
