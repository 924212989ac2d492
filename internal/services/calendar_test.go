package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/models"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/store"
)

func newCalendarEnv(t *testing.T) (*testEnv, *CalendarController) {
	t.Helper()
	env := newEnv(t)
	return env, NewCalendarController(env.client, env.store, NewHolidayCalendar(), "US", env.toaster)
}

func TestCalendar_LiveFetchPersistsCache(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.mock.AddEvent(models.CalendarEvent{Title: "Kickoff", Type: models.EventMeeting, Start: models.Date{Time: time.Now().Add(time.Hour)}})
	env.login(t)

	if mode := cc.FetchEvents(context.Background()); mode != ModeLive {
		t.Fatalf("expected live fetch, got %s", mode)
	}
	if cc.Mode() != ModeLive || cc.Mode().Offline() {
		t.Errorf("expected live mode, got %s", cc.Mode())
	}
	if got := cc.Events(); len(got) != 1 || got[0].Title != "Kickoff" {
		t.Errorf("unexpected events %+v", got)
	}

	raw, ok := env.store.Get(store.KeyCalendarEvents)
	if !ok {
		t.Fatal("expected cached events")
	}
	var cached []models.CalendarEvent
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || len(cached) != 1 {
		t.Errorf("unexpected cache %q: %v", raw, err)
	}
}

func TestCalendar_FallsBackToCache(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.mock.AddEvent(models.CalendarEvent{Title: "Kickoff", Start: models.Date{Time: time.Now()}})
	env.login(t)
	cc.FetchEvents(context.Background())

	env.mock.Fail("GET", "/events", http.StatusServiceUnavailable, "Maintenance")
	if mode := cc.FetchEvents(context.Background()); mode != ModeCached {
		t.Errorf("expected cached mode, got %s", mode)
	}
	if got := cc.Events(); len(got) != 1 || got[0].Title != "Kickoff" {
		t.Errorf("unexpected events %+v", got)
	}
	if cc.Err() != "Maintenance" {
		t.Errorf("unexpected error %q", cc.Err())
	}

	env.mock.Recover("GET", "/events")
	cc.FetchEvents(context.Background())
	if cc.Mode() != ModeLive || cc.Err() != "" {
		t.Errorf("expected recovery to live, got %s %q", cc.Mode(), cc.Err())
	}
}

func TestCalendar_FallsBackToMockEvents(t *testing.T) {
	env, cc := newCalendarEnv(t)
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	cc.now = func() time.Time { return now }
	env.login(t)
	env.mock.Fail("GET", "/events", http.StatusInternalServerError, "boom")

	cc.FetchEvents(context.Background())
	if cc.Mode() != ModeMock || !cc.Mode().Offline() {
		t.Errorf("expected mock mode, got %s", cc.Mode())
	}
	got := cc.Events()
	if len(got) != 3 {
		t.Fatalf("expected 3 mock events, got %d", len(got))
	}
	if _, ok := env.store.Get(store.KeyCalendarEvents); ok {
		t.Error("mock events must not be cached")
	}
	if got := cc.EventsOn(now); len(got) != 1 || got[0].Title != "Team Standup" {
		t.Errorf("unexpected events today %+v", got)
	}
}

func TestCalendar_UnreadableCacheUsesMock(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.store.Set(store.KeyCalendarEvents, "{not json")
	env.login(t)
	env.mock.Fail("GET", "/events", http.StatusInternalServerError, "boom")

	cc.FetchEvents(context.Background())
	if cc.Mode() != ModeMock {
		t.Errorf("expected mock mode, got %s", cc.Mode())
	}
}

func TestCalendar_MutationsUpdateCache(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.login(t)
	ctx := context.Background()
	cc.FetchEvents(ctx)

	start := models.Date{Time: time.Now().Add(48 * time.Hour)}
	ev, err := cc.CreateEvent(ctx, EventInput{Title: "Retro", Type: models.EventMeeting, Start: start})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if got := cc.Events(); len(got) != 1 || got[0].ID != ev.ID {
		t.Errorf("expected created event held, got %+v", got)
	}

	if _, err := cc.UpdateEvent(ctx, ev.ID, EventInput{Title: "Retrospective", Start: start}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	raw, _ := env.store.Get(store.KeyCalendarEvents)
	var cached []models.CalendarEvent
	json.Unmarshal([]byte(raw), &cached)
	if len(cached) != 1 || cached[0].Title != "Retrospective" {
		t.Errorf("cache not updated: %s", raw)
	}

	env.mock.Fail("DELETE", "/events/:id", http.StatusInternalServerError, "nope")
	if err := cc.DeleteEvent(ctx, ev.ID); err == nil {
		t.Fatal("expected delete failure")
	}
	if len(cc.Events()) != 1 {
		t.Error("failed delete must keep the event")
	}
	env.mock.Recover("DELETE", "/events/:id")

	if err := cc.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if len(cc.Events()) != 0 {
		t.Error("expected event removed")
	}
	raw, _ = env.store.Get(store.KeyCalendarEvents)
	if raw != "[]" {
		t.Errorf("expected empty cache, got %s", raw)
	}
}

func TestCalendar_MutationInMockModeReloads(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.login(t)
	ctx := context.Background()
	env.mock.Fail("GET", "/events", http.StatusInternalServerError, "boom")
	cc.FetchEvents(ctx)
	env.mock.Recover("GET", "/events")

	if _, err := cc.CreateEvent(ctx, EventInput{Title: "Real", Start: models.Date{Time: time.Now()}}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if cc.Mode() != ModeLive {
		t.Errorf("expected live mode after reload, got %s", cc.Mode())
	}
	if got := cc.Events(); len(got) != 1 || got[0].Title != "Real" {
		t.Errorf("placeholders should be replaced by real events, got %+v", got)
	}
}

func TestCalendar_EventValidation(t *testing.T) {
	env, cc := newCalendarEnv(t)
	env.login(t)
	start := models.NewDate(2024, 6, 10)
	end := models.NewDate(2024, 6, 9)

	_, err := cc.CreateEvent(context.Background(), EventInput{Start: start, End: &end})
	fields := FieldErrors(err)
	if fields["title"] == "" || fields["end"] == "" {
		t.Errorf("expected title and end errors, got %v", fields)
	}
	if n := env.mock.Calls("POST", "/events"); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}

func TestCalendar_Queries(t *testing.T) {
	_, cc := newCalendarEnv(t)
	now := time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC) // Friday
	cc.now = func() time.Time { return now }
	at := func(day, hour int) models.Date {
		return models.Date{Time: time.Date(2024, 12, day, hour, 0, 0, 0, time.UTC)}
	}
	workshopEnd := at(23, 17)
	cc.events = []models.CalendarEvent{
		{ID: 1, Title: "Yesterday", Start: at(19, 9)},
		{ID: 4, Title: "Release", Start: at(27, 9)},
		{ID: 2, Title: "Workshop", Start: at(21, 9), End: &workshopEnd},
		{ID: 3, Title: "Standup", Start: at(20, 15)},
	}

	if got := cc.EventsOn(at(22, 0).Time); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("multi-day event should overlap the 22nd, got %+v", got)
	}

	got := cc.EventsBetween(at(20, 0).Time, at(24, 0).Time)
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Errorf("expected events ordered by start, got %+v", got)
	}

	up := cc.Upcoming(2)
	if len(up) != 2 || up[0].ID != 3 || up[1].ID != 2 {
		t.Errorf("unexpected upcoming %+v", up)
	}
	if all := cc.Upcoming(10); len(all) != 3 {
		t.Errorf("expected 3 upcoming, got %d", len(all))
	}

	// Mon 23, Tue 24, Thu 26, Fri 27; Christmas is skipped.
	if got := cc.WorkdaysUntil(models.CalendarEvent{Start: at(27, 9)}); got != 4 {
		t.Errorf("WorkdaysUntil = %d, expected 4", got)
	}
}

func TestCalendar_StaleFetchKeepsCommittedChange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ctx context.Context, cc *CalendarController, existing models.CalendarEvent) error
		want   []string
	}{
		{
			name: "create",
			mutate: func(ctx context.Context, cc *CalendarController, _ models.CalendarEvent) error {
				_, err := cc.CreateEvent(ctx, EventInput{Title: "Planning", Type: models.EventMeeting, Start: models.Date{Time: time.Now().Add(48 * time.Hour)}})
				return err
			},
			want: []string{"Kickoff", "Planning"},
		},
		{
			name: "update",
			mutate: func(ctx context.Context, cc *CalendarController, existing models.CalendarEvent) error {
				_, err := cc.UpdateEvent(ctx, existing.ID, EventInput{Title: "Kickoff (moved)", Start: existing.Start})
				return err
			},
			want: []string{"Kickoff (moved)"},
		},
		{
			name: "delete",
			mutate: func(ctx context.Context, cc *CalendarController, existing models.CalendarEvent) error {
				return cc.DeleteEvent(ctx, existing.ID)
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			existing := env.mock.AddEvent(models.CalendarEvent{Title: "Kickoff", Type: models.EventMeeting, Start: models.Date{Time: time.Now().Add(24 * time.Hour)}})
			env.login(t)
			ctx := context.Background()

			client, gate := env.gatedClient("GET", "/events")
			cc := NewCalendarController(client, env.store, NewHolidayCalendar(), "US", env.toaster)
			cc.events = []models.CalendarEvent{existing}

			done := make(chan CalendarMode, 1)
			go func() { done <- cc.FetchEvents(ctx) }()
			<-gate.Arrived()

			if err := tt.mutate(ctx, cc, existing); err != nil {
				t.Fatalf("mutation: %v", err)
			}
			gate.Release()
			<-done

			titles := []string{}
			for _, e := range cc.Events() {
				titles = append(titles, e.Title)
			}
			if fmt.Sprint(titles) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v after the late fetch, got %v", tt.want, titles)
			}

			raw, _ := env.store.Get(store.KeyCalendarEvents)
			var cached []models.CalendarEvent
			if err := json.Unmarshal([]byte(raw), &cached); err != nil {
				t.Fatalf("unreadable cache %q: %v", raw, err)
			}
			if len(cached) != len(tt.want) {
				t.Errorf("expected %d cached events, got %s", len(tt.want), raw)
			}
		})
	}
}

func TestCalendar_PlaceholdersSkipNonWorkdays(t *testing.T) {
	env, cc := newCalendarEnv(t)
	// Tuesday: the sprint review would land on Independence Day.
	cc.now = func() time.Time { return time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC) }
	env.login(t)
	env.mock.Fail("GET", "/events", http.StatusInternalServerError, "boom")

	if mode := cc.FetchEvents(context.Background()); mode != ModeMock {
		t.Fatalf("expected mock mode, got %s", mode)
	}
	byTitle := map[string]models.CalendarEvent{}
	for _, e := range cc.Events() {
		byTitle[e.Title] = e
	}

	review := byTitle["Sprint Review"]
	if got := review.Start.Format("2006-01-02 15:04"); got != "2024-07-05 14:00" {
		t.Errorf("expected review moved to Friday 14:00, got %s", got)
	}
	if review.End == nil || review.End.Format("2006-01-02 15:04") != "2024-07-05 16:00" {
		t.Errorf("expected review end moved with it, got %v", review.End)
	}
	if got := byTitle["Team Standup"].Start.Format("2006-01-02"); got != "2024-07-02" {
		t.Errorf("standup on a workday must stay, got %s", got)
	}
	// 2024-07-09 is a Tuesday.
	if got := byTitle["Project Deadline"].Start.Format("2006-01-02"); got != "2024-07-09" {
		t.Errorf("unexpected deadline %s", got)
	}
}

func TestCalendar_UnknownCountryCountsWeekdays(t *testing.T) {
	env := newEnv(t)
	cc := NewCalendarController(env.client, env.store, NewHolidayCalendar(), "xx", env.toaster)
	if cc.country != CountryNone {
		t.Errorf("expected fallback to %s, got %s", CountryNone, cc.country)
	}
	cc.now = func() time.Time { return time.Date(2024, 12, 23, 9, 0, 0, 0, time.UTC) }
	ev := models.CalendarEvent{Start: models.NewDate(2024, 12, 27)}
	// Tue..Fri including Christmas.
	if n := cc.WorkdaysUntil(ev); n != 4 {
		t.Errorf("expected 4 weekdays, got %d", n)
	}

	us := NewCalendarController(env.client, env.store, NewHolidayCalendar(), " us ", env.toaster)
	if us.country != "US" {
		t.Errorf("expected normalized US, got %q", us.country)
	}
	us.now = cc.now
	if n := us.WorkdaysUntil(ev); n != 3 {
		t.Errorf("expected 3 US workdays around Christmas, got %d", n)
	}
}
