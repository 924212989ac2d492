package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"date only", `"2024-03-15"`, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", `"2024-03-15T10:30:00Z"`, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"no zone", `"2024-03-15T10:30:00"`, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"null", `null`, time.Time{}, false},
		{"empty", `""`, time.Time{}, false},
		{"garbage", `"next tuesday"`, time.Time{}, true},
		{"number", `20240315`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !d.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, d.Time)
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	data, _ := json.Marshal(NewDate(2024, 1, 2))
	if string(data) != `"2024-01-02"` {
		t.Errorf("expected date-only output, got %s", data)
	}

	data, _ = json.Marshal(Date{time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)})
	if string(data) != `"2024-01-02T09:00:00Z"` {
		t.Errorf("expected RFC3339 output, got %s", data)
	}

	data, _ = json.Marshal(Date{})
	if string(data) != "null" {
		t.Errorf("expected null for zero date, got %s", data)
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{`12.5`, 12.5, false},
		{`"12.50"`, 12.5, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
	}

	for _, tt := range tests {
		var n Number
		err := json.Unmarshal([]byte(tt.input), &n)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if n.Float() != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.input, tt.expected, n.Float())
		}
	}
}

func TestFlexID_UnmarshalJSON(t *testing.T) {
	var n struct {
		ID FlexID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id":42}`), &n); err != nil || n.ID != "42" {
		t.Errorf("numeric id: got %q, err %v", n.ID, err)
	}
	if err := json.Unmarshal([]byte(`{"id":"a-b"}`), &n); err != nil || n.ID != "a-b" {
		t.Errorf("string id: got %q, err %v", n.ID, err)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range Roles {
		if !ValidRole(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if ValidRole("admin") {
		t.Error("admin should not be a valid role")
	}
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		user     User
		expected string
	}{
		{User{FirstName: "Ana", LastName: "Diaz"}, "Ana Diaz"},
		{User{FirstName: "Ana"}, "Ana"},
		{User{Username: "ana"}, "ana"},
		{User{Email: "ana@example.com"}, "ana@example.com"},
	}
	for _, tt := range tests {
		if got := tt.user.FullName(); got != tt.expected {
			t.Errorf("FullName() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestProject_Overdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	past := NewDate(2024, 6, 9)
	today := NewDate(2024, 6, 10)

	if !(Project{Status: ProjectActive, EndDate: &past}).Overdue(now) {
		t.Error("active project past its end date should be overdue")
	}
	if (Project{Status: ProjectActive, EndDate: &today}).Overdue(now) {
		t.Error("project ending today is not overdue")
	}
	if (Project{Status: ProjectCompleted, EndDate: &past}).Overdue(now) {
		t.Error("completed project is never overdue")
	}
	if (Project{Status: ProjectActive}).Overdue(now) {
		t.Error("project without end date is never overdue")
	}
}

func TestInvitation_Usable(t *testing.T) {
	now := time.Now()
	inv := Invitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}
	if !inv.Usable(now) {
		t.Error("pending unexpired invitation should be usable")
	}
	inv.ExpiresAt = now.Add(-time.Hour)
	if inv.Usable(now) {
		t.Error("expired invitation should not be usable")
	}
	inv = Invitation{Status: InvitationAccepted, ExpiresAt: now.Add(time.Hour)}
	if inv.Usable(now) {
		t.Error("accepted invitation should not be usable")
	}
}
