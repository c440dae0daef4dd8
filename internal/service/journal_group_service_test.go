package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-journal-api/internal/models"
)

func strPtr(s string) *string { return &s }

func groupEntry(id string, hour int, mutate ...func(*models.JournalEntry)) models.JournalEntry {
	entry := models.JournalEntry{
		ID:          id,
		TeacherID:   "t1",
		TeacherName: "Budi",
		DayOfWeek:   models.DayMonday,
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		HourLabel:   "07:00-07:45",
		HourIndex:   hour,
		ClassName:   "X-1",
		SubjectName: "Matematika",
		Category:    models.CategoryOnSchedule,
	}
	for _, fn := range mutate {
		fn(&entry)
	}
	return entry
}

func TestGroupForDisplayMergesFullContext(t *testing.T) {
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1),
		groupEntry("j2", 2),
		groupEntry("j3", 3),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 1)
	assert.Equal(t, "1-3", groups[0].HourLabel)
	assert.Equal(t, []string{"j1", "j2", "j3"}, groups[0].MemberIDs)
	assert.Equal(t, []int{1, 2, 3}, groups[0].MemberHourIndices)
}

func TestGroupForDisplayMergesAcrossHourGaps(t *testing.T) {
	// Hour adjacency is not part of the group key: a free period between two
	// blocks of the same lesson still yields one display row.
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1),
		groupEntry("j2", 2),
		groupEntry("j3", 3),
		groupEntry("j5", 5),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 1)
	assert.Equal(t, "1-3, 5", groups[0].HourLabel)
	assert.Equal(t, []int{1, 2, 3, 5}, groups[0].MemberHourIndices)
}

func TestGroupForDisplaySplitsOnContextChange(t *testing.T) {
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1, func(e *models.JournalEntry) { e.Material = strPtr("Aljabar") }),
		groupEntry("j2", 2, func(e *models.JournalEntry) { e.Material = strPtr("Aljabar") }),
		groupEntry("j3", 3, func(e *models.JournalEntry) { e.Material = strPtr("Geometri") }),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, "1-2", groups[0].HourLabel)
	assert.Equal(t, "3", groups[1].HourLabel)
}

func TestGroupForDisplaySplitsOnCategory(t *testing.T) {
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1),
		groupEntry("j2", 2, func(e *models.JournalEntry) { e.Category = models.CategorySubstituted; e.SubstituteTeacher = strPtr("Sari") }),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 2)
}

func TestGroupForDisplayNilAndEmptyOptionalDiffer(t *testing.T) {
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1),
		groupEntry("j2", 2, func(e *models.JournalEntry) { e.Material = strPtr("") }),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 2)
}

func TestGroupForDisplayOrdering(t *testing.T) {
	svc := NewJournalGroupService()
	entries := []models.JournalEntry{
		groupEntry("j1", 1),
		groupEntry("j2", 1, func(e *models.JournalEntry) {
			e.Date = time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
			e.DayOfWeek = models.DayTuesday
		}),
		groupEntry("j3", 1, func(e *models.JournalEntry) { e.TeacherID = "t2"; e.TeacherName = "Ani" }),
	}

	groups := svc.GroupForDisplay(entries)
	require.Len(t, groups, 3)
	// Newest date first, then teacher name ascending.
	assert.Equal(t, "j2", groups[0].MemberIDs[0])
	assert.Equal(t, "j3", groups[1].MemberIDs[0])
	assert.Equal(t, "j1", groups[2].MemberIDs[0])
}

func TestGroupForDisplayEmpty(t *testing.T) {
	svc := NewJournalGroupService()
	groups := svc.GroupForDisplay(nil)
	require.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestFormatHourRanges(t *testing.T) {
	cases := []struct {
		name  string
		hours []int
		want  string
	}{
		{"empty", nil, ""},
		{"single", []int{4}, "4"},
		{"contiguous", []int{1, 2, 3}, "1-3"},
		{"gap", []int{1, 2, 3, 5}, "1-3, 5"},
		{"unsorted", []int{5, 1, 3, 2}, "1-3, 5"},
		{"duplicates", []int{2, 2, 3}, "2-3"},
		{"multiple runs", []int{1, 3, 4, 7, 8, 9}, "1, 3-4, 7-9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatHourRanges(tc.hours))
		})
	}
}

func TestExpandHourRanges(t *testing.T) {
	hours, err := ExpandHourRanges("1-3, 5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 5}, hours)

	hours, err = ExpandHourRanges("")
	require.NoError(t, err)
	assert.Empty(t, hours)

	_, err = ExpandHourRanges("3-1")
	require.Error(t, err)

	_, err = ExpandHourRanges("abc")
	require.Error(t, err)
}

func TestHourRangesRoundTrip(t *testing.T) {
	sets := [][]int{
		{1},
		{1, 2, 3},
		{1, 2, 3, 5},
		{2, 4, 6, 8},
		{1, 2, 5, 6, 9},
	}
	for _, hours := range sets {
		label := FormatHourRanges(hours)
		expanded, err := ExpandHourRanges(label)
		require.NoError(t, err)
		assert.Equal(t, hours, expanded, "label %q", label)
	}
}
