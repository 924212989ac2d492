package services

import (
	"strings"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fi"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/ie"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/no"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/us"
)

// maxWorkdaySpan bounds day-by-day counting.
const maxWorkdaySpan = 3660

// CountryNone counts workdays without any public holidays.
const CountryNone = "NONE"

// HolidayCalendar answers business-day questions for calendar deadlines.
type HolidayCalendar struct {
	calendars map[string]*cal.BusinessCalendar
}

func NewHolidayCalendar() *HolidayCalendar {
	h := &HolidayCalendar{
		calendars: make(map[string]*cal.BusinessCalendar),
	}
	h.calendars["US"] = newBusinessCalendar("United States", us.Holidays...)
	h.calendars["GB"] = newBusinessCalendar("United Kingdom", gb.Holidays...)
	h.calendars["DE"] = newBusinessCalendar("Germany", de.Holidays...)
	h.calendars["FR"] = newBusinessCalendar("France", fr.Holidays...)
	h.calendars["JP"] = newBusinessCalendar("Japan", jp.Holidays...)
	h.calendars["AU"] = newBusinessCalendar("Australia", au.HolidaysNSW...)
	h.calendars["CA"] = newBusinessCalendar("Canada", ca.Holidays...)
	h.calendars["NZ"] = newBusinessCalendar("New Zealand", nz.Holidays...)
	h.calendars["IT"] = newBusinessCalendar("Italy", it.Holidays...)
	h.calendars["ES"] = newBusinessCalendar("Spain", es.Holidays...)
	h.calendars["NL"] = newBusinessCalendar("Netherlands", nl.Holidays...)
	h.calendars["BE"] = newBusinessCalendar("Belgium", be.Holidays...)
	h.calendars["AT"] = newBusinessCalendar("Austria", at.Holidays...)
	h.calendars["CH"] = newBusinessCalendar("Switzerland", ch.Holidays...)
	h.calendars["SE"] = newBusinessCalendar("Sweden", se.Holidays...)
	h.calendars["NO"] = newBusinessCalendar("Norway", no.Holidays...)
	h.calendars["DK"] = newBusinessCalendar("Denmark", dk.Holidays...)
	h.calendars["FI"] = newBusinessCalendar("Finland", fi.Holidays...)
	h.calendars["PL"] = newBusinessCalendar("Poland", pl.Holidays...)
	h.calendars["PT"] = newBusinessCalendar("Portugal", pt.Holidays...)
	h.calendars["IE"] = newBusinessCalendar("Ireland", ie.Holidays...)
	h.calendars["BR"] = newBusinessCalendar("Brazil", br.Holidays...)
	return h
}

func newBusinessCalendar(name string, holidays ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(holidays...)
	return c
}

// IsWorkday falls back to Monday-Friday for "NONE" and unknown countries.
func (h *HolidayCalendar) IsWorkday(t time.Time, countryCode string) bool {
	c, ok := h.calendars[strings.ToUpper(countryCode)]
	if !ok {
		return !cal.IsWeekend(t)
	}
	return c.IsWorkday(t)
}

// Supports reports whether countryCode names a holiday calendar. "NONE"
// selects plain Monday-Friday weeks.
func (h *HolidayCalendar) Supports(countryCode string) bool {
	code := strings.ToUpper(countryCode)
	if code == CountryNone {
		return true
	}
	_, ok := h.calendars[code]
	return ok
}

// WorkdaysBetween counts workdays after from's day up to and including
// to's day. It is zero when to is not after from.
func (h *HolidayCalendar) WorkdaysBetween(from, to time.Time, countryCode string) int {
	start := truncateDay(from)
	end := truncateDay(to)
	n := 0
	for d, i := start.AddDate(0, 0, 1), 0; !d.After(end) && i < maxWorkdaySpan; d, i = d.AddDate(0, 0, 1), i+1 {
		if h.IsWorkday(d, countryCode) {
			n++
		}
	}
	return n
}

// NextWorkday returns the first workday on or after t's day.
func (h *HolidayCalendar) NextWorkday(t time.Time, countryCode string) time.Time {
	d := truncateDay(t)
	for i := 0; i < 31 && !h.IsWorkday(d, countryCode); i++ {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDays counts calendar days from from's date to to's date, each
// read in its own location.
func calendarDays(from, to time.Time) int {
	a := models.Date{Time: from}.Day().Time
	b := models.Date{Time: to}.Day().Time
	return int(b.Sub(a).Hours() / 24)
}
