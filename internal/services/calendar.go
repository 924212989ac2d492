package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/api"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/metrics"
	"github.com/rs/zerolog"
)

// CalendarMode names where the held events came from.
type CalendarMode string

const (
	ModeLive   CalendarMode = "live"
	ModeCached CalendarMode = "cached"
	ModeMock   CalendarMode = "mock"
)

// Offline reports whether the events did not come from the backend.
func (m CalendarMode) Offline() bool { return m != ModeLive }

// MockEvents is the fixed placeholder set shown when neither the backend
// nor the cache can supply events.
func MockEvents(now time.Time) []models.CalendarEvent {
	today := models.Date{Time: now}.Day()
	at := func(days, hour int) models.Date {
		return models.Date{Time: today.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)}
	}
	standupEnd := at(0, 10)
	reviewEnd := at(2, 16)
	return []models.CalendarEvent{
		{ID: 1, Title: "Team Standup", Type: models.EventMeeting, Start: at(0, 9), End: &standupEnd},
		{ID: 2, Title: "Sprint Review", Type: models.EventMeeting, Start: at(2, 14), End: &reviewEnd},
		{ID: 3, Title: "Project Deadline", Type: models.EventDeadline, Start: at(7, 0), AllDay: true},
	}
}

// placeholderEvents is MockEvents with every event moved onto the next
// workday of the configured country.
func (c *CalendarController) placeholderEvents() []models.CalendarEvent {
	events := MockEvents(c.now())
	for i := range events {
		e := &events[i]
		days := calendarDays(e.Start.Time, c.holidays.NextWorkday(e.Start.Time, c.country))
		if days == 0 {
			continue
		}
		e.Start = models.Date{Time: e.Start.AddDate(0, 0, days)}
		if e.End != nil {
			end := models.Date{Time: e.End.AddDate(0, 0, days)}
			e.End = &end
		}
	}
	return events
}

type CalendarController struct {
	client   *api.Client
	store    store.Store
	holidays *HolidayCalendar
	country  string
	toaster  *Toaster
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	events  []models.CalendarEvent
	mode    CalendarMode
	lastErr string

	// gen numbers fetches and committed changes; only the latest applies.
	gen uint64
}

// NewCalendarController counts workdays on country's holiday calendar. An
// unknown country falls back to plain Monday-Friday weeks.
func NewCalendarController(client *api.Client, st store.Store, holidays *HolidayCalendar, country string, toaster *Toaster) *CalendarController {
	c := &CalendarController{
		client:   client,
		store:    st,
		holidays: holidays,
		country:  strings.ToUpper(strings.TrimSpace(country)),
		toaster:  toaster,
		log:      logger.Component("calendar"),
		now:      time.Now,
		events:   []models.CalendarEvent{},
		mode:     ModeLive,
	}
	if !holidays.Supports(c.country) {
		c.log.Warn().Str("country", country).Msg("unknown holiday calendar, counting weekdays only")
		c.country = CountryNone
	}
	return c
}

// FetchEvents loads events live and refreshes the cache. When the backend
// fails it serves the cache, then the mock set; the failure is recorded in
// Err and the returned mode tells which source is held. A fetch overtaken
// by a later fetch or a committed change leaves the state alone.
func (c *CalendarController) FetchEvents(ctx context.Context) CalendarMode {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	resp, err := c.client.Get(ctx, "/events", nil)
	var list []models.CalendarEvent
	if err == nil {
		err = resp.List(&list)
	}
	if err == nil {
		c.set(gen, list, ModeLive, "")
		return c.Mode()
	}

	msg := requestError(err, "Failed to fetch events").Message
	c.log.Warn().Err(err).Msg("event fetch failed, falling back")
	if cached, ok := c.loadCache(); ok {
		c.set(gen, cached, ModeCached, msg)
		return c.Mode()
	}
	c.set(gen, c.placeholderEvents(), ModeMock, msg)
	return c.Mode()
}

func (c *CalendarController) CreateEvent(ctx context.Context, in EventInput) (models.CalendarEvent, error) {
	if err := in.Validate(); err != nil {
		c.setError(ErrorMessage(err))
		return models.CalendarEvent{}, err
	}
	resp, err := c.client.Post(ctx, "/events", in)
	if err != nil {
		return models.CalendarEvent{}, c.fail(err, "Failed to create event")
	}
	var ev models.CalendarEvent
	if err := resp.Item(&ev); err != nil {
		return models.CalendarEvent{}, c.fail(err, "Failed to create event")
	}
	c.commit(ctx, func(list []models.CalendarEvent) []models.CalendarEvent {
		return append(list, ev)
	})
	c.toaster.Success(resp.Message("Event created successfully"))
	return ev, nil
}

func (c *CalendarController) UpdateEvent(ctx context.Context, id uint, in EventInput) (models.CalendarEvent, error) {
	if err := in.Validate(); err != nil {
		c.setError(ErrorMessage(err))
		return models.CalendarEvent{}, err
	}
	resp, err := c.client.Put(ctx, fmt.Sprintf("/events/%d", id), in)
	if err != nil {
		return models.CalendarEvent{}, c.fail(err, "Failed to update event")
	}
	var ev models.CalendarEvent
	if err := resp.Item(&ev); err != nil {
		return models.CalendarEvent{}, c.fail(err, "Failed to update event")
	}
	c.commit(ctx, func(list []models.CalendarEvent) []models.CalendarEvent {
		for i := range list {
			if list[i].ID == id {
				list[i] = ev
			}
		}
		return list
	})
	c.toaster.Success(resp.Message("Event updated successfully"))
	return ev, nil
}

func (c *CalendarController) DeleteEvent(ctx context.Context, id uint) error {
	resp, err := c.client.Delete(ctx, fmt.Sprintf("/events/%d", id))
	if err != nil {
		return c.fail(err, "Failed to delete event")
	}
	c.commit(ctx, func(list []models.CalendarEvent) []models.CalendarEvent {
		kept := list[:0]
		for _, e := range list {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		return kept
	})
	c.toaster.Success(resp.Message("Event deleted successfully"))
	return nil
}

// commit applies a confirmed change. Placeholder events are never mixed
// with real ones: in mock mode the list is reloaded instead.
func (c *CalendarController) commit(ctx context.Context, change func([]models.CalendarEvent) []models.CalendarEvent) {
	if c.Mode() == ModeMock {
		c.FetchEvents(ctx)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.events = change(c.cloneLocked())
	c.lastErr = ""
	c.persistLocked()
}

// EventsOn returns events overlapping the calendar day of day.
func (c *CalendarController) EventsOn(day time.Time) []models.CalendarEvent {
	start := models.Date{Time: day}.Day().Time
	return c.EventsBetween(start, start.AddDate(0, 0, 1).Add(-time.Nanosecond))
}

// EventsBetween returns events overlapping [from, to], ordered by start.
func (c *CalendarController) EventsBetween(from, to time.Time) []models.CalendarEvent {
	out := []models.CalendarEvent{}
	for _, e := range c.Events() {
		if e.Start.After(to) || e.Until().Before(from) {
			continue
		}
		out = append(out, e)
	}
	sortByStart(out)
	return out
}

// Upcoming returns at most n events starting from now on.
func (c *CalendarController) Upcoming(n int) []models.CalendarEvent {
	now := c.now()
	out := []models.CalendarEvent{}
	for _, e := range c.Events() {
		if !e.Start.Before(now) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WorkdaysUntil counts business days between today and the event's start.
func (c *CalendarController) WorkdaysUntil(e models.CalendarEvent) int {
	return c.holidays.WorkdaysBetween(c.now(), e.Start.Time, c.country)
}

func (c *CalendarController) Events() []models.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cloneLocked()
}

func (c *CalendarController) Mode() CalendarMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *CalendarController) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// set applies the result of the fetch numbered gen. Live results also
// refresh the cache under the same lock, so a stale list is never written.
func (c *CalendarController) set(gen uint64, events []models.CalendarEvent, mode CalendarMode, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug().Uint64("gen", gen).Msg("discarding stale event fetch")
		return
	}
	c.events = events
	c.mode = mode
	c.lastErr = errMsg
	if mode == ModeLive {
		c.persistLocked()
	}
	metrics.CalendarSource.WithLabelValues(string(mode)).Inc()
	c.log.Debug().Str("mode", string(mode)).Int("count", len(events)).Msg("events loaded")
}

func (c *CalendarController) persistLocked() {
	data, err := json.Marshal(c.events)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode event cache")
		return
	}
	if err := c.store.Set(store.KeyCalendarEvents, string(data)); err != nil {
		c.log.Warn().Err(err).Msg("write event cache")
	}
}

func (c *CalendarController) loadCache() ([]models.CalendarEvent, bool) {
	raw, ok := c.store.Get(store.KeyCalendarEvents)
	if !ok || raw == "" {
		return nil, false
	}
	var events []models.CalendarEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		c.log.Warn().Err(err).Msg("discarding unreadable event cache")
		return nil, false
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return events, true
}

func (c *CalendarController) cloneLocked() []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *CalendarController) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *CalendarController) fail(err error, fallback string) error {
	reqErr := requestError(err, fallback)
	c.setError(reqErr.Message)
	c.toaster.Error(reqErr.Message)
	c.log.Warn().Err(err).Msg(fallback)
	return reqErr
}

func sortByStart(events []models.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start.Time) })
}
