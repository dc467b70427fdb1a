package models

import "testing"

func TestAssignmentStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to AssignmentStatus
		allowed  bool
	}{
		{StatusAssigned, StatusInTransit, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusAssigned, StatusFailed, true},
		{StatusAssigned, StatusDelivered, false},
		{StatusAssigned, StatusAssigned, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, true},
		{StatusInTransit, StatusFailed, true},
		{StatusInTransit, StatusAssigned, false},
		{StatusDelivered, StatusAssigned, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusAssigned, false},
		{StatusCancelled, StatusInTransit, false},
		{StatusFailed, StatusAssigned, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestAssignmentStatusTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[AssignmentStatus]bool{
		StatusAssigned:  false,
		StatusInTransit: false,
		StatusDelivered: true,
		StatusCancelled: true,
		StatusFailed:    true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestParseAssignmentStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want AssignmentStatus
		ok   bool
	}{
		{"Assigned", StatusAssigned, true},
		{"In Transit", StatusInTransit, true},
		{"Delivered", StatusDelivered, true},
		{"Cancelled", StatusCancelled, true},
		{"Canceled", StatusCancelled, true}, // legacy single-l spelling
		{"Failed", StatusFailed, true},
		{"  Delivered  ", StatusDelivered, true},
		{"delivered", "", false},
		{"Lost", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseAssignmentStatus(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseAssignmentStatus(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	valid := []string{"0712345678", "9999999999"}
	invalid := []string{"", "071234567", "07123456789", "07123abc78", "+254712345"}

	for _, p := range valid {
		if !ValidatePhone(p) {
			t.Errorf("ValidatePhone(%q) = false, want true", p)
		}
	}
	for _, p := range invalid {
		if ValidatePhone(p) {
			t.Errorf("ValidatePhone(%q) = true, want false", p)
		}
	}
}
