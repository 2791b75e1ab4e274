package services

import (
	"testing"
	"time"

	"github.com/medcamp/camp-system/models"
)

func testCamps() []models.Camp {
	return []models.Camp{
		{ID: 1, Name: "Free Eye Camp", Location: "Dhaka", Fees: 500, ParticipantCount: 12, DateTime: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Dental Checkup", Location: "Chittagong", Fees: 100, ParticipantCount: 40, DateTime: time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "Cardio Screening", Location: "Sylhet", Fees: 300, ParticipantCount: 25, DateTime: time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)},
	}
}

func TestFilterCampsByLocation(t *testing.T) {
	got := FilterCamps(testCamps(), "dhaka")
	if len(got) != 1 {
		t.Fatalf("expected 1 camp, got %d", len(got))
	}
	if got[0].ID != 1 {
		t.Errorf("expected camp 1, got %d", got[0].ID)
	}
}

func TestFilterCampsByName(t *testing.T) {
	got := FilterCamps(testCamps(), "DENTAL")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("case-insensitive name match failed: %+v", got)
	}
}

func TestFilterCampsByDate(t *testing.T) {
	got := FilterCamps(testCamps(), "2026-09-15")
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("date match failed: %+v", got)
	}
}

func TestFilterCampsEmptyTermReturnsAll(t *testing.T) {
	got := FilterCamps(testCamps(), "  ")
	if len(got) != 3 {
		t.Fatalf("expected all camps, got %d", len(got))
	}
}

func TestSortCampsByFees(t *testing.T) {
	got := SortCamps(testCamps(), SortCampFees)
	fees := []float64{got[0].Fees, got[1].Fees, got[2].Fees}
	want := []float64{100, 300, 500}
	for i := range want {
		if fees[i] != want[i] {
			t.Fatalf("fees order: got %v, want %v", fees, want)
		}
	}
}

func TestSortCampsByMostRegistered(t *testing.T) {
	got := SortCamps(testCamps(), SortMostRegistered)
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Fatalf("mostRegistered order wrong: %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSortCampsAlphabetical(t *testing.T) {
	got := SortCamps(testCamps(), SortAlphabetical)
	if got[0].Name != "Cardio Screening" || got[2].Name != "Free Eye Camp" {
		t.Fatalf("alphabetical order wrong: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestSortCampsUnknownKeyKeepsOrder(t *testing.T) {
	camps := testCamps()
	got := SortCamps(camps, SortKey("bogus"))
	for i := range camps {
		if got[i].ID != camps[i].ID {
			t.Fatalf("unknown sort key must keep original order, got %+v", got)
		}
	}
}

func TestSortCampsDoesNotMutateInput(t *testing.T) {
	camps := testCamps()
	_ = SortCamps(camps, SortCampFees)
	if camps[0].ID != 1 {
		t.Fatal("SortCamps mutated its input slice")
	}
}

func TestFilterThenSortCompose(t *testing.T) {
	camps := append(testCamps(), models.Camp{ID: 4, Name: "Dhaka Dental Camp", Location: "Dhaka", Fees: 50})
	got := SortCamps(FilterCamps(camps, "dhaka"), SortCampFees)
	if len(got) != 2 {
		t.Fatalf("expected 2 camps, got %d", len(got))
	}
	if got[0].ID != 4 || got[1].ID != 1 {
		t.Fatalf("composed filter+sort wrong: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestParseCampDateLayouts(t *testing.T) {
	cases := []string{
		"2026-09-10T09:00:00Z",
		"2026-09-10T09:00",
		"2026-09-10 09:00",
		"2026-09-10",
	}
	for _, raw := range cases {
		if _, err := parseCampDate(raw); err != nil {
			t.Errorf("parseCampDate(%q) failed: %v", raw, err)
		}
	}
	if _, err := parseCampDate("10/09/2026"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestStatusForDate(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	if got := statusForDate(now.Add(48*time.Hour), now); got != models.CampStatusUpcoming {
		t.Errorf("future camp: got %s", got)
	}
	if got := statusForDate(now.Add(-2*time.Hour), now); got != models.CampStatusOngoing {
		t.Errorf("camp within last day: got %s", got)
	}
	if got := statusForDate(now.Add(-48*time.Hour), now); got != models.CampStatusCompleted {
		t.Errorf("past camp: got %s", got)
	}
}

func TestValidateCampInput(t *testing.T) {
	valid := CampInput{
		Name:        "Free Eye Camp",
		Location:    "Dhaka",
		DateTime:    "2026-09-10T09:00",
		Fees:        500,
		DoctorName:  "Dr. Rahman",
		Description: "Free checkup",
	}
	if _, err := validateCampInput(valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	missingName := valid
	missingName.Name = "  "
	if _, err := validateCampInput(missingName); err != ErrCampFieldsRequired {
		t.Errorf("empty name: got %v", err)
	}

	negative := valid
	negative.Fees = -1
	if _, err := validateCampInput(negative); err != ErrCampNegativeFees {
		t.Errorf("negative fees: got %v", err)
	}

	badDate := valid
	badDate.DateTime = "next tuesday"
	if _, err := validateCampInput(badDate); err != ErrCampInvalidDate {
		t.Errorf("bad date: got %v", err)
	}
}
