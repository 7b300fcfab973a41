package models

import (
	"testing"
)

func TestDisplayTableIsComplete(t *testing.T) {
	seen := map[string]bool{}
	for dt := DisasterType(0); dt < numDisasterTypes; dt++ {
		d := dt.Display()
		if d.Slug == "" || d.Label == "" || d.Icon == "" || d.Gradient == "" {
			t.Errorf("type %d has incomplete display %+v", dt, d)
		}
		if seen[d.Slug] {
			t.Errorf("duplicate slug %q", d.Slug)
		}
		seen[d.Slug] = true
	}
	if got := len(AllDisasterTypes()); got != int(numDisasterTypes) {
		t.Errorf("AllDisasterTypes() returned %d types, want %d", got, numDisasterTypes)
	}
}

func TestParseDisasterType(t *testing.T) {
	tests := []struct {
		in   string
		want DisasterType
	}{
		{"earthquake", DisasterEarthquake},
		{" Flood ", DisasterFlood},
		{"HURRICANE", DisasterHurricane},
		{"typhoon", DisasterHurricane},
		{"fire", DisasterWildfire},
		{"meteor", DisasterOther},
		{"", DisasterOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDisasterType(tt.in); got != tt.want {
				t.Errorf("ParseDisasterType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutOfRangeDisplayFallsBack(t *testing.T) {
	if got := DisasterType(99).Display().Slug; got != "other" {
		t.Errorf("Display() slug = %q, want other", got)
	}
}

func TestUserPatchApply(t *testing.T) {
	u := &User{ID: "1", Name: "Ana", Email: "ana@example.com", Role: RoleUser, Score: 10}
	name := "Ana Maria"
	UserPatch{Name: &name}.Apply(u)

	if u.Name != "Ana Maria" {
		t.Errorf("Name = %q, want Ana Maria", u.Name)
	}
	if u.Email != "ana@example.com" || u.Score != 10 || u.Role != RoleUser {
		t.Errorf("unrelated fields changed: %+v", u)
	}
}

func TestUserClone(t *testing.T) {
	u := &User{ID: "1", QuizHistory: []QuizAttempt{{QuizID: "q1", Score: 3}}}
	c := u.Clone()
	c.QuizHistory[0].Score = 9
	c.Name = "changed"

	if u.QuizHistory[0].Score != 3 || u.Name != "" {
		t.Error("Clone shares state with the original")
	}
	var nilUser *User
	if nilUser.Clone() != nil || nilUser.IsAdmin() {
		t.Error("nil user should clone to nil and not be admin")
	}
}

func TestSessionIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"zero", Session{}, true},
		{"token only", Session{Token: "t"}, true},
		{"user only", Session{User: &User{ID: "1"}}, true},
		{"both", Session{Token: "t", User: &User{ID: "1"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuizResultPercent(t *testing.T) {
	if got := (QuizResult{Score: 3, Total: 4}).Percent(); got != 75 {
		t.Errorf("Percent() = %v, want 75", got)
	}
	if got := (QuizResult{}).Percent(); got != 0 {
		t.Errorf("Percent() of empty result = %v, want 0", got)
	}
}
