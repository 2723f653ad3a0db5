package normalize

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"date only", "2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 zulu", "2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"naive isoformat", "2024-01-05T10:30:00", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"naive with micros", "2024-01-05T10:30:00.123456", time.Date(2024, 1, 5, 10, 30, 0, 123456000, time.UTC)},
		{"space separated", "2024-01-05 10:30:00", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"minutes only", "2024-01-05T10:30", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2024-01-05 ", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDate_WithOffset(t *testing.T) {
	got, err := ParseDate("2024-01-05T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC).Equal(got))
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "05/01/2024", "2024-13-01"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestNormalize_SortsAndGroups(t *testing.T) {
	raw := models.StudentData{
		Grades: []models.RawRecord{
			{"course_id": "MATH", "score": 80.0, "date": "2024-01-03"},
			{"course_id": "CS101", "score": 70.0, "date": "2024-01-02"},
			{"course_id": "CS101", "score": 50.0, "date": "2024-01-01"},
			{"course_id": "MATH", "score": 90, "date": "2024-01-01", "max_score": 100, "grade_type": "quiz"},
		},
	}

	out, err := Normalize(raw, Options{})
	require.NoError(t, err)
	require.Len(t, out.Grades, 4)

	for i := 1; i < len(out.Grades); i++ {
		assert.False(t, out.Grades[i].Date.Before(out.Grades[i-1].Date), "grades must be date-sorted")
	}
	// Equal dates keep input order.
	assert.Equal(t, "CS101", out.Grades[0].CourseID)
	assert.Equal(t, "MATH", out.Grades[1].CourseID)
	assert.Equal(t, "quiz", out.Grades[1].GradeType)
	require.NotNil(t, out.Grades[1].MaxScore)
	assert.Equal(t, 100.0, *out.Grades[1].MaxScore)

	require.Len(t, out.GradesByCourse, 2)
	assert.Equal(t, "CS101", out.GradesByCourse[0].Key)
	assert.Equal(t, "MATH", out.GradesByCourse[1].Key)
	require.Len(t, out.GradesByCourse[0].Records, 2)
	assert.Equal(t, 50.0, *out.GradesByCourse[0].Records[0].Score)
	assert.Equal(t, 70.0, *out.GradesByCourse[0].Records[1].Score)
	assert.Empty(t, out.Skipped)
}

func TestNormalize_UngradedScore(t *testing.T) {
	raw := models.StudentData{
		Grades: []models.RawRecord{
			{"course_id": "CS101", "date": "2024-01-01"},
			{"course_id": "CS101", "score": nil, "date": "2024-01-02"},
		},
	}

	out, err := Normalize(raw, Options{Strict: true})
	require.NoError(t, err)
	require.Len(t, out.Grades, 2)
	for _, g := range out.Grades {
		assert.False(t, g.Graded())
	}
}

func TestNormalize_SkipsMalformedRows(t *testing.T) {
	raw := models.StudentData{
		Grades: []models.RawRecord{
			{"course_id": "CS101", "score": 80.0, "date": "2024-01-01"},
			{"score": 80.0, "date": "2024-01-01"},
			{"course_id": "CS101", "score": "eighty", "date": "2024-01-01"},
		},
		Attendance: []models.RawRecord{
			{"course_id": "CS101", "status": "Present", "date": "2024-01-01"},
			{"course_id": "CS101", "status": "excused", "date": "2024-01-01"},
			{"course_id": "CS101", "status": "absent", "date": "not a date"},
		},
		StudyHabits: []models.RawRecord{
			{"subject": "Math", "duration": 30, "date": "2024-01-01T09:00:00"},
			{"subject": "Math", "duration_minutes": 45.0, "date": "2024-01-01T10:00:00"},
			{"subject": "Math", "duration": -5, "date": "2024-01-01"},
			{"subject": "Math", "date": "2024-01-01"},
		},
	}

	out, err := Normalize(raw, Options{})
	require.NoError(t, err)

	assert.Len(t, out.Grades, 1)
	require.Len(t, out.Attendance, 1)
	assert.Equal(t, models.StatusPresent, out.Attendance[0].Status)
	require.Len(t, out.StudyHabits, 2)
	assert.Equal(t, 45.0, out.StudyHabits[1].DurationMinutes)

	want := []models.SkippedRecord{
		{Category: CategoryGrades, Index: 1, Field: "course_id", Reason: "missing"},
		{Category: CategoryGrades, Index: 2, Field: "score", Reason: "expected number, got string"},
		{Category: CategoryAttendance, Index: 1, Field: "status", Reason: "must be one of present, absent, late"},
		{Category: CategoryStudyHabits, Index: 2, Field: "duration", Reason: "must not be negative"},
		{Category: CategoryStudyHabits, Index: 3, Field: "duration", Reason: "missing"},
	}
	require.Len(t, out.Skipped, 6)
	assert.Equal(t, want[:3], out.Skipped[:3])
	assert.Equal(t, CategoryAttendance, out.Skipped[3].Category)
	assert.Equal(t, 2, out.Skipped[3].Index)
	assert.Equal(t, "date", out.Skipped[3].Field)
	assert.Equal(t, want[3:], out.Skipped[4:])
}

func TestNormalize_RejectsOversizedNumbers(t *testing.T) {
	raw := models.StudentData{
		Grades: []models.RawRecord{
			{"course_id": "CS101", "score": 1e308, "date": "2024-01-01"},
			{"course_id": "CS101", "score": -1e308, "date": "2024-01-02"},
			{"course_id": "CS101", "score": MaxMagnitude, "date": "2024-01-03"},
			{"course_id": "CS101", "score": 80.0, "max_score": 1e12, "date": "2024-01-04"},
		},
		StudyHabits: []models.RawRecord{
			{"subject": "Math", "duration": json.Number("1e15"), "date": "2024-01-01"},
		},
	}

	out, err := Normalize(raw, Options{})
	require.NoError(t, err)

	require.Len(t, out.Grades, 2)
	assert.Equal(t, MaxMagnitude, *out.Grades[0].Score)
	assert.Nil(t, out.Grades[1].MaxScore, "an oversized optional field is dropped")
	assert.Empty(t, out.StudyHabits)

	require.Len(t, out.Skipped, 3)
	for _, sk := range out.Skipped {
		assert.Equal(t, "magnitude exceeds 1e9", sk.Reason)
	}

	_, err = Normalize(raw, Options{Strict: true})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalize_StrictAbortsOnFirstMalformedRow(t *testing.T) {
	raw := models.StudentData{
		Attendance: []models.RawRecord{
			{"course_id": "CS101", "status": "present", "date": "2024-01-01"},
			{"course_id": "CS101", "date": "2024-01-02"},
			{"course_id": 42, "status": "present", "date": "2024-01-03"},
		},
	}

	_, err := Normalize(raw, Options{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))

	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, CategoryAttendance, mre.Category)
	assert.Equal(t, 1, mre.Index)
	assert.Equal(t, "status", mre.Field)
}

func TestNormalize_WindowIsInclusive(t *testing.T) {
	raw := models.StudentData{
		StudyHabits: []models.RawRecord{
			{"subject": "Math", "duration": 10, "date": "2024-01-01"},
			{"subject": "Math", "duration": 20, "date": "2024-01-10"},
			{"subject": "Math", "duration": 30, "date": "2024-01-20"},
			{"subject": "Math", "duration": 40, "date": "2024-01-21"},
		},
	}

	out, err := Normalize(raw, Options{Window: Window{
		Start: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	require.Len(t, out.StudyHabits, 2)
	assert.Equal(t, 20.0, out.StudyHabits[0].DurationMinutes)
	assert.Equal(t, 30.0, out.StudyHabits[1].DurationMinutes)
}

func TestNormalize_AcceptsDecodedTypes(t *testing.T) {
	var raw models.StudentData
	body := `{"grades":[{"course_id":"CS101","score":88.5,"date":"2024-02-01T12:00:00Z"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	raw.StudyHabits = []models.RawRecord{
		{"subject": "Physics", "duration": json.Number("25"), "date": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	out, err := Normalize(raw, Options{Strict: true})
	require.NoError(t, err)
	require.Len(t, out.Grades, 1)
	assert.Equal(t, 88.5, *out.Grades[0].Score)
	require.Len(t, out.StudyHabits, 1)
	assert.Equal(t, 25.0, out.StudyHabits[0].DurationMinutes)
}

func TestNormalize_EmptyInput(t *testing.T) {
	out, err := Normalize(models.StudentData{}, Options{Strict: true})
	require.NoError(t, err)
	assert.Empty(t, out.Grades)
	assert.Empty(t, out.Attendance)
	assert.Empty(t, out.StudyHabits)
	assert.Nil(t, out.GradesByCourse)
	assert.Empty(t, out.Skipped)
}

func TestGroup_PreservesOrderWithinKey(t *testing.T) {
	groups := Group([]string{"b1", "a1", "b2", "a2", "c1"}, func(s string) string { return s[:1] })
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Key)
	assert.Equal(t, []string{"a1", "a2"}, groups[0].Records)
	assert.Equal(t, []string{"b1", "b2"}, groups[1].Records)
	assert.Equal(t, []string{"c1"}, groups[2].Records)
}

func TestValidateCarried(t *testing.T) {
	tests := []struct {
		name      string
		raw       models.StudentData
		wantCat   string
		wantField string
	}{
		{
			name: "valid rows",
			raw: models.StudentData{
				Assignments: []models.RawRecord{
					{"course_id": "CS101", "title": "HW1", "due_date": "2024-01-05"},
					{"course_id": "CS101"},
				},
				PerformanceMetrics: []models.RawRecord{
					{"metric_type": "gpa", "value": json.Number("3.4"), "date": "2024-01-01"},
				},
			},
		},
		{
			name:      "assignment without course",
			raw:       models.StudentData{Assignments: []models.RawRecord{{"title": "HW1"}}},
			wantCat:   CategoryAssignments,
			wantField: "course_id",
		},
		{
			name:      "assignment with bad due date",
			raw:       models.StudentData{Assignments: []models.RawRecord{{"course_id": "CS101", "due_date": "soon"}}},
			wantCat:   CategoryAssignments,
			wantField: "due_date",
		},
		{
			name:      "assignment with numeric status",
			raw:       models.StudentData{Assignments: []models.RawRecord{{"course_id": "CS101", "status": 3}}},
			wantCat:   CategoryAssignments,
			wantField: "status",
		},
		{
			name: "metric without type",
			raw: models.StudentData{PerformanceMetrics: []models.RawRecord{
				{"value": 3.1, "date": "2024-01-01"},
			}},
			wantCat:   CategoryPerformanceMetrics,
			wantField: "metric_type",
		},
		{
			name: "metric without value",
			raw: models.StudentData{PerformanceMetrics: []models.RawRecord{
				{"metric_type": "gpa", "date": "2024-01-01"},
			}},
			wantCat:   CategoryPerformanceMetrics,
			wantField: "value",
		},
		{
			name: "metric without date",
			raw: models.StudentData{PerformanceMetrics: []models.RawRecord{
				{"metric_type": "gpa", "value": 3.1},
			}},
			wantCat:   CategoryPerformanceMetrics,
			wantField: "date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCarried(tt.raw)
			if tt.wantCat == "" {
				require.NoError(t, err)
				return
			}
			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre), "got %v", err)
			assert.Equal(t, tt.wantCat, mre.Category)
			assert.Equal(t, tt.wantField, mre.Field)
		})
	}
}
