package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/models"
)

// JournalGroupService collapses per-hour journal rows into display rows and
// renders their hour coverage as compact ranges. The transform is pure and
// shared by the list API and the exporters so both stay consistent.
type JournalGroupService struct{}

// NewJournalGroupService constructs the grouping service.
func NewJournalGroupService() *JournalGroupService {
	return &JournalGroupService{}
}

// GroupForDisplay merges rows sharing their full teaching context into one
// logical entry each. Hour adjacency is deliberately NOT part of the group
// key: rows with a gap in hour index still merge when every context field
// matches, and only the rendered range string reflects the gap.
func (s *JournalGroupService) GroupForDisplay(entries []models.JournalEntry) []dto.GroupedJournalEntry {
	if len(entries) == 0 {
		return []dto.GroupedJournalEntry{}
	}

	sorted := make([]models.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.TeacherName != b.TeacherName {
			return a.TeacherName < b.TeacherName
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.HourIndex < b.HourIndex
	})

	groups := make([]dto.GroupedJournalEntry, 0, len(sorted))
	var current *dto.GroupedJournalEntry

	for _, entry := range sorted {
		if current != nil && sameGroupContext(current.JournalEntry, entry) {
			current.MemberIDs = append(current.MemberIDs, entry.ID)
			current.MemberHourIndices = append(current.MemberHourIndices, entry.HourIndex)
			continue
		}
		if current != nil {
			current.HourLabel = FormatHourRanges(current.MemberHourIndices)
			groups = append(groups, *current)
		}
		current = &dto.GroupedJournalEntry{
			JournalEntry:      entry,
			MemberIDs:         []string{entry.ID},
			MemberHourIndices: []int{entry.HourIndex},
		}
	}
	current.HourLabel = FormatHourRanges(current.MemberHourIndices)
	groups = append(groups, *current)

	return groups
}

// sameGroupContext is the full-context group key: teacher, date, class,
// subject, category, material, reflection, substitute teacher and status.
func sameGroupContext(a, b models.JournalEntry) bool {
	return a.TeacherID == b.TeacherID &&
		a.Date.Equal(b.Date) &&
		a.ClassName == b.ClassName &&
		a.SubjectName == b.SubjectName &&
		a.Category == b.Category &&
		equalOptional(a.Material, b.Material) &&
		equalOptional(a.Reflection, b.Reflection) &&
		equalOptional(a.SubstituteTeacher, b.SubstituteTeacher) &&
		equalOptional(a.SubstituteStatus, b.SubstituteStatus)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FormatHourRanges renders a set of hour indices as comma-separated maximal
// runs: {1,2,3,5} becomes "1-3, 5". Duplicates are collapsed.
func FormatHourRanges(hours []int) string {
	if len(hours) == 0 {
		return ""
	}

	sorted := make([]int, len(hours))
	copy(sorted, hours)
	sort.Ints(sorted)

	var tokens []string
	runStart, runEnd := sorted[0], sorted[0]
	flush := func() {
		if runStart == runEnd {
			tokens = append(tokens, strconv.Itoa(runStart))
			return
		}
		tokens = append(tokens, fmt.Sprintf("%d-%d", runStart, runEnd))
	}
	for _, hour := range sorted[1:] {
		if hour == runEnd || hour == runEnd+1 {
			runEnd = hour
			continue
		}
		flush()
		runStart, runEnd = hour, hour
	}
	flush()

	return strings.Join(tokens, ", ")
}

// ExpandHourRanges parses a compacted range string back into the sorted set
// of hour indices it covers. It is the exact inverse of FormatHourRanges.
func ExpandHourRanges(label string) ([]int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return []int{}, nil
	}

	seen := make(map[int]bool)
	var hours []int
	for _, token := range strings.Split(label, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if start, end, ok := strings.Cut(token, "-"); ok {
			from, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil {
				return nil, fmt.Errorf("invalid range token %q", token)
			}
			to, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("invalid range token %q", token)
			}
			if to < from {
				return nil, fmt.Errorf("descending range token %q", token)
			}
			for hour := from; hour <= to; hour++ {
				if !seen[hour] {
					seen[hour] = true
					hours = append(hours, hour)
				}
			}
			continue
		}
		hour, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid hour token %q", token)
		}
		if !seen[hour] {
			seen[hour] = true
			hours = append(hours, hour)
		}
	}
	sort.Ints(hours)
	return hours, nil
}
