package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/config"
)

func newTestDBStore(t *testing.T) *DBStore {
	t.Helper()
	dsn := fmt.Sprintf("file:store_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := OpenDB("sqlite", dsn)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	s, err := NewDBStore(db)
	if err != nil {
		t.Fatalf("NewDBStore: %v", err)
	}
	return s
}

func exerciseStore(t *testing.T, s Store) {
	if _, ok := s.Get(KeyAuthToken); ok {
		t.Fatal("expected missing key on empty store")
	}

	if err := s.Set(KeyAuthToken, "tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := s.Get(KeyAuthToken); !ok || v != "tok-1" {
		t.Errorf("expected tok-1, got %q (ok=%v)", v, ok)
	}

	if err := s.Set(KeyAuthToken, "tok-2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _ := s.Get(KeyAuthToken); v != "tok-2" {
		t.Errorf("expected overwrite to tok-2, got %q", v)
	}

	if err := s.Set(KeyCalendarEvents, "[]"); err != nil {
		t.Fatalf("Set events: %v", err)
	}

	if err := s.Remove(KeyAuthToken); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.Get(KeyAuthToken); ok {
		t.Error("expected key removed")
	}
	if v, ok := s.Get(KeyCalendarEvents); !ok || v != "[]" {
		t.Errorf("unrelated key affected by Remove: %q", v)
	}

	if err := s.Remove("missing"); err != nil {
		t.Errorf("removing a missing key should not fail: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestDBStore(t *testing.T) {
	exerciseStore(t, newTestDBStore(t))
}

func TestDBStore_EmptyValue(t *testing.T) {
	s := newTestDBStore(t)
	if err := s.Set(KeyCalendarEvents, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := s.Get(KeyCalendarEvents); !ok || v != "" {
		t.Errorf("expected present empty value, got %q (ok=%v)", v, ok)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StoreConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", s)
	}

	s, err = Open(config.StoreConfig{Driver: "sqlite", DSN: "file:open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	if _, ok := s.(*DBStore); !ok {
		t.Errorf("expected *DBStore, got %T", s)
	}

	if _, err := Open(config.StoreConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
