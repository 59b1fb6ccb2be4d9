package model

import "testing"

func TestChoicesValid(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"BAE", ProjectType("BAE").Valid()},
		{"FRE", ProjectType("FRE").Valid()},
		{"IOS", ProjectType("IOS").Valid()},
		{"AND", ProjectType("AND").Valid()},
		{"LOW", Priority("LOW").Valid()},
		{"MED", Priority("MED").Valid()},
		{"HIGH", Priority("HIGH").Valid()},
		{"BUG", Tag("BUG").Valid()},
		{"FEAT", Tag("FEAT").Valid()},
		{"TASK", Tag("TASK").Valid()},
		{"TODO", Status("TODO").Valid()},
		{"INPR", Status("INPR").Valid()},
		{"FINI", Status("FINI").Valid()},
	}
	for _, tt := range tests {
		if !tt.valid {
			t.Errorf("%s should be a valid choice", tt.name)
		}
	}

	invalid := []bool{
		ProjectType("Back-End").Valid(),
		ProjectType("").Valid(),
		Priority("URGENT").Valid(),
		Tag("bug").Valid(),
		Status("DONE").Valid(),
	}
	for i, v := range invalid {
		if v {
			t.Errorf("invalid case %d accepted", i)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := ProjectBackEnd.Label(); got != "Back-End" {
		t.Errorf("ProjectBackEnd.Label() = %q", got)
	}
	if got := StatusInProgress.Label(); got != "In Progress" {
		t.Errorf("StatusInProgress.Label() = %q", got)
	}
	if got := PriorityMedium.Label(); got != "Medium" {
		t.Errorf("PriorityMedium.Label() = %q", got)
	}
	if got := TagFeature.Label(); got != "Feature" {
		t.Errorf("TagFeature.Label() = %q", got)
	}
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
	if (&User{IsSuperuser: true, IsActive: false}).IsAdmin() {
		t.Error("inactive superuser must not be admin")
	}
	if (&User{IsStaff: true, IsActive: true}).IsAdmin() {
		t.Error("staff without superuser flag must not be admin")
	}
	if !(&User{IsSuperuser: true, IsActive: true}).IsAdmin() {
		t.Error("active superuser must be admin")
	}
}
