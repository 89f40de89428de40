package auth

import (
	"testing"
	"time"
)

func TestCanActOn(t *testing.T) {
	cases := []struct {
		name             string
		actor            Actor
		subjectManagerID string
		want             bool
	}{
		{"admin any subject", Actor{ID: "a1", Role: RoleAdministrator}, "someone-else", true},
		{"admin subject without manager", Actor{ID: "a1", Role: RoleAdministrator}, "", true},
		{"manager of subject", Actor{ID: "m1", Role: RoleManager}, "m1", true},
		{"manager of other team", Actor{ID: "m1", Role: RoleManager}, "m2", false},
		{"manager subject without manager", Actor{ID: "m1", Role: RoleManager}, "", false},
		{"employee never", Actor{ID: "e1", Role: RoleEmployee}, "e1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanActOn(tc.actor, tc.subjectManagerID); got != tc.want {
				t.Fatalf("CanActOn(%+v, %q) = %v, want %v", tc.actor, tc.subjectManagerID, got, tc.want)
			}
		})
	}
}

func TestCanBackdate(t *testing.T) {
	today := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)
	tomorrow := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	manager := Actor{ID: "m1", Role: RoleManager}
	admin := Actor{ID: "a1", Role: RoleAdministrator}

	if !CanBackdate(manager, yesterday, today) {
		t.Fatal("manager should backdate past dates")
	}
	if CanBackdate(manager, today, today) {
		t.Fatal("manager must not log attendance for today")
	}
	if CanBackdate(manager, tomorrow, today) {
		t.Fatal("manager must not log attendance for future dates")
	}

	if !CanBackdate(admin, today, today) {
		t.Fatal("admin may log attendance for today")
	}
	if !CanBackdate(admin, tomorrow, today) {
		t.Fatal("admin may log attendance for any date")
	}

	if CanBackdate(Actor{ID: "e1", Role: RoleEmployee}, yesterday, today) {
		t.Fatal("employees may not backdate attendance")
	}
}
