package models

// Trend labels the direction of a fitted series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// TrendInfo describes one group's score trend.
type TrendInfo struct {
	Trend    Trend   `json:"trend"`
	Average  float64 `json:"average"`
	Variance float64 `json:"variance"`
}

// --- Grades ---

// GradeAnalysis is the grade analyzer output. The zero value marshals to {}.
type GradeAnalysis struct {
	Stats    *GradeStats          `json:"stats,omitempty"`
	Trends   map[string]TrendInfo `json:"trends,omitempty"`
	Patterns []GradePattern       `json:"patterns,omitempty"`
}

// Empty reports whether the analyzer saw no records.
func (a GradeAnalysis) Empty() bool { return a.Stats == nil }

type GradeStats struct {
	AverageScore         float64 `json:"average_score"`
	HighestScore         float64 `json:"highest_score"`
	LowestScore          float64 `json:"lowest_score"`
	ScoreStd             float64 `json:"score_std"`
	TotalAssignments     int     `json:"total_assignments"`
	CompletedAssignments int     `json:"completed_assignments"`
}

// Grade pattern kinds.
const (
	PatternGradeRange  = "grade_range"
	PatternProgression = "progression"
)

// GradePattern is a tagged finding: exactly one of ScoreBucket or
// CourseProgression is set, matching Type. Their fields are inlined in JSON.
type GradePattern struct {
	Type string `json:"type"`
	*ScoreBucket
	*CourseProgression
}

// ScoreBucket is one bar of the score histogram.
type ScoreBucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CourseProgression compares a course's first and last graded score.
type CourseProgression struct {
	CourseID   string  `json:"course_id"`
	Trend      Trend   `json:"trend"`
	StartScore float64 `json:"start_score"`
	EndScore   float64 `json:"end_score"`
}

// --- Attendance ---

// AttendanceAnalysis is the attendance analyzer output. The zero value marshals to {}.
type AttendanceAnalysis struct {
	Stats    *AttendanceStats            `json:"stats,omitempty"`
	Patterns map[string]CourseAttendance `json:"patterns,omitempty"`
	Trends   *AttendanceTrends           `json:"trends,omitempty"`
}

// Empty reports whether the analyzer saw no records.
func (a AttendanceAnalysis) Empty() bool { return a.Stats == nil }

type AttendanceStats struct {
	TotalSessions    int     `json:"total_sessions"`
	AttendedSessions int     `json:"attended_sessions"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

type CourseAttendance struct {
	AttendanceRate float64 `json:"attendance_rate"`
	TotalSessions  int     `json:"total_sessions"`
	MissedSessions int     `json:"missed_sessions"`
}

// AttendanceTrends holds date-keyed rate series. ByCourse is only populated on
// the top-level value.
type AttendanceTrends struct {
	DailyRates   map[string]float64           `json:"daily_rates"`
	WeeklyTrends map[string]float64           `json:"weekly_trends"`
	Patterns     []DayPattern                 `json:"patterns"`
	ByCourse     map[string]*AttendanceTrends `json:"by_course,omitempty"`
}

// DayPattern flags a weekday (0=Monday) with a low present fraction.
type DayPattern struct {
	Type           string  `json:"type"`
	Day            int     `json:"day"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// --- Study habits ---

// StudyHabitsAnalysis is the study-habit analyzer output. The zero value marshals to {}.
type StudyHabitsAnalysis struct {
	Stats    *StudyStats             `json:"stats,omitempty"`
	Patterns map[string]SubjectStudy `json:"patterns,omitempty"`
	Trends   *StudyTrends            `json:"trends,omitempty"`
}

// Empty reports whether the analyzer saw no records.
func (a StudyHabitsAnalysis) Empty() bool { return a.Stats == nil }

type StudyStats struct {
	TotalStudyMinutes   float64 `json:"total_study_minutes"`
	TotalStudyHours     float64 `json:"total_study_hours"`
	AverageDailyMinutes float64 `json:"average_daily_minutes"`
	TotalSessions       int     `json:"total_sessions"`
	UniqueSubjects      int     `json:"unique_subjects"`
}

type SubjectStudy struct {
	TotalMinutes           float64 `json:"total_minutes"`
	TotalHours             float64 `json:"total_hours"`
	AverageSessionDuration float64 `json:"average_session_duration"`
	Frequency              int     `json:"frequency"`
}

type StudyTrends struct {
	DailyMinutes map[string]float64 `json:"daily_minutes"`
	WeeklyTrends map[string]float64 `json:"weekly_trends"`
	Patterns     []HourPattern      `json:"patterns"`
}

// HourPattern is the mean session length for sessions starting in Hour.
type HourPattern struct {
	Type            string  `json:"type"`
	Hour            int     `json:"hour"`
	AverageDuration float64 `json:"average_duration"`
}

// --- Predictions, improvement areas, summary ---

// Predictions maps group keys to point estimates.
type Predictions struct {
	FinalGrades map[string]float64 `json:"final_grades,omitempty"`
	Attendance  map[string]float64 `json:"attendance,omitempty"`
	StudyHabits map[string]float64 `json:"study_habits,omitempty"`
}

// Improvement area types and severities.
const (
	AreaAcademic    = "academic"
	AreaAttendance  = "attendance"
	AreaStudyHabits = "study_habits"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type ImprovementArea struct {
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type Summary struct {
	OverallPerformance OverallPerformance `json:"overall_performance"`
	KeyFindings        KeyFindings        `json:"key_findings"`
	ImprovementAreas   int                `json:"improvement_areas"`
	Predictions        Predictions        `json:"predictions"`
}

type OverallPerformance struct {
	GradeAverage   float64 `json:"grade_average"`
	AttendanceRate float64 `json:"attendance_rate"`
	StudyHours     float64 `json:"study_hours"`
}

type KeyFindings struct {
	GradeTrends        []string `json:"grade_trends"`
	AttendancePatterns []string `json:"attendance_patterns"`
	StudyPatterns      []string `json:"study_patterns"`
}

// AnalysisResult is the root output of one analysis call. It is never mutated
// after the engine returns it.
type AnalysisResult struct {
	GradeAnalysis       GradeAnalysis       `json:"grade_analysis"`
	AttendanceAnalysis  AttendanceAnalysis  `json:"attendance_analysis"`
	StudyHabitsAnalysis StudyHabitsAnalysis `json:"study_habits_analysis"`
	Predictions         Predictions         `json:"predictions"`
	ImprovementAreas    []ImprovementArea   `json:"improvement_areas"`
	Summary             Summary             `json:"summary"`
}
