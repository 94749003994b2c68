package models

import "testing"

func TestParseObjectStatus(t *testing.T) {
	for _, raw := range []string{"active", "new", "archived", "deleted"} {
		if _, err := ParseObjectStatus(raw); err != nil {
			t.Errorf("ParseObjectStatus(%q) unexpected error: %v", raw, err)
		}
	}
	if _, err := ParseObjectStatus("published"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestVisible(t *testing.T) {
	visible := map[ObjectStatus]bool{
		StatusActive:   true,
		StatusNew:      true,
		StatusArchived: true,
		StatusDeleted:  false,
	}
	for status, want := range visible {
		if got := status.Visible(); got != want {
			t.Errorf("%s.Visible() = %v, want %v", status, got, want)
		}
	}
}

func TestFullName(t *testing.T) {
	cases := []struct {
		entry RosterEntry
		want  string
	}{
		{RosterEntry{Surname: "Ivanov", Name: "Ivan", Patronymic: "Ivanovich"}, "Ivanov Ivan Ivanovich"},
		{RosterEntry{Surname: "Ivanov", Name: "Ivan"}, "Ivanov Ivan"},
		{RosterEntry{Name: "Ivan"}, "Ivan"},
		{RosterEntry{}, ""},
	}
	for _, c := range cases {
		if got := c.entry.FullName(); got != c.want {
			t.Errorf("FullName() = %q, want %q", got, c.want)
		}
	}
}
