package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "barberflow/database/repository/booking"
	"barberflow/models"
)

// eveningStartMin is where the "evening" period begins (17:00).
const eveningStartMin = 17 * 60

// nowWindowMin is how far ahead a slot may start and still count as
// "now" (two hours).
const nowWindowMin = 2 * 60

// AvailabilityResolver computes open slots from shop hours, the
// barber's weekly schedule, and existing bookings. Results are
// recomputed on every call; the booking insert is the arbiter of who
// actually gets a slot.
type AvailabilityResolver struct {
	Bookings bookingRepo.BookingRepository
}

// Slots returns the open slots for one barber and date, ascending by
// start time. A candidate survives when it fits inside both the shop's
// hours and the barber's working window, misses the lunch break,
// overlaps no slot-holding booking, and (for today) does not start in
// the past.
func (r *AvailabilityResolver) Slots(ctx context.Context, shop *models.Shop, barber *models.Barber, date string, durationMin int, now time.Time) ([]models.Slot, error) {
	loc, err := time.LoadLocation(shop.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid shop timezone %q: %w", shop.Settings.Timezone, err)
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	sched := barber.ScheduleFor(day.Weekday())
	if !sched.Working {
		return nil, nil
	}

	open, err := parseHHMM(shop.Settings.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid shop open time: %w", err)
	}
	close, err := parseHHMM(shop.Settings.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid shop close time: %w", err)
	}

	workStart, err := parseHHMM(sched.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid barber start time: %w", err)
	}
	workEnd, err := parseHHMM(sched.End)
	if err != nil {
		return nil, fmt.Errorf("invalid barber end time: %w", err)
	}
	if workStart < open {
		workStart = open
	}
	if workEnd > close {
		workEnd = close
	}

	hasLunch := shop.Settings.LunchStart != "" && shop.Settings.LunchEnd != ""
	var lunchStart, lunchEnd int
	if hasLunch {
		if lunchStart, err = parseHHMM(shop.Settings.LunchStart); err != nil {
			return nil, fmt.Errorf("invalid lunch start: %w", err)
		}
		if lunchEnd, err = parseHHMM(shop.Settings.LunchEnd); err != nil {
			return nil, fmt.Errorf("invalid lunch end: %w", err)
		}
	}

	blocking, err := r.Bookings.BlockingForDay(ctx, shop.ID, barber.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing bookings: %w", err)
	}
	type interval struct{ start, end int }
	busy := make([]interval, 0, len(blocking))
	for _, b := range blocking {
		bs, err := parseHHMM(b.StartTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s has invalid start time: %w", b.ID, err)
		}
		be, err := parseHHMM(b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s has invalid end time: %w", b.ID, err)
		}
		busy = append(busy, interval{bs, be})
	}

	localNow := now.In(loc)
	nowMin := -1
	if date == localNow.Format("2006-01-02") {
		nowMin = localNow.Hour()*60 + localNow.Minute()
	}

	step := shop.Settings.SlotIntervalMin
	if step <= 0 {
		step = 30
	}

	var slots []models.Slot
	for start := open; start+durationMin <= close; start += step {
		end := start + durationMin
		if start < workStart || end > workEnd {
			continue
		}
		if hasLunch && start < lunchEnd && end > lunchStart {
			continue
		}
		if nowMin >= 0 && start < nowMin {
			continue
		}
		conflict := false
		for _, b := range busy {
			if start < b.end && end > b.start {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		slots = append(slots, models.Slot{Start: formatHHMM(start), End: formatHHMM(end)})
	}
	return slots, nil
}

// Periods buckets today's open slots into now / later / evening. When
// today has nothing left, tomorrow's slots are offered under the
// single "tomorrow" period; an empty Periods map means no availability
// either day.
func (r *AvailabilityResolver) Periods(ctx context.Context, shop *models.Shop, barber *models.Barber, durationMin int, now time.Time) (*models.DayAvailability, error) {
	loc, err := time.LoadLocation(shop.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid shop timezone %q: %w", shop.Settings.Timezone, err)
	}
	localNow := now.In(loc)
	today := localNow.Format("2006-01-02")

	slots, err := r.Slots(ctx, shop, barber, today, durationMin, now)
	if err != nil {
		return nil, err
	}
	if len(slots) > 0 {
		return &models.DayAvailability{
			BarberID: barber.ID,
			Date:     today,
			Periods:  bucketByTime(slots, localNow),
		}, nil
	}

	tomorrow := localNow.AddDate(0, 0, 1).Format("2006-01-02")
	tomorrowSlots, err := r.Slots(ctx, shop, barber, tomorrow, durationMin, now)
	if err != nil {
		return nil, err
	}
	avail := &models.DayAvailability{
		BarberID: barber.ID,
		Date:     today,
		Periods:  map[models.Period][]models.Slot{},
	}
	if len(tomorrowSlots) > 0 {
		avail.Date = tomorrow
		avail.Periods[models.PeriodTomorrow] = tomorrowSlots
	}
	return avail, nil
}

// bucketByTime assigns each slot to the first period that fits: within
// two hours of now, then evening, then the rest of today.
func bucketByTime(slots []models.Slot, localNow time.Time) map[models.Period][]models.Slot {
	nowMin := localNow.Hour()*60 + localNow.Minute()
	buckets := make(map[models.Period][]models.Slot)
	for _, s := range slots {
		start, err := parseHHMM(s.Start)
		if err != nil {
			continue
		}
		switch {
		case start <= nowMin+nowWindowMin:
			buckets[models.PeriodNow] = append(buckets[models.PeriodNow], s)
		case start >= eveningStartMin:
			buckets[models.PeriodEvening] = append(buckets[models.PeriodEvening], s)
		default:
			buckets[models.PeriodLater] = append(buckets[models.PeriodLater], s)
		}
	}
	return buckets
}

// parseHHMM converts a zero-padded "HH:MM" string to minutes from
// midnight.
func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatHHMM converts minutes from midnight back to "HH:MM".
func formatHHMM(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
