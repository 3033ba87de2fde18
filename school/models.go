package school

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DeadlineWindow is how long a homework stays open after it is created
const DeadlineWindow = 24 * time.Hour

// timeLayouts are the formats the backend (and the deadline form input) produce
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses a backend timestamp. ok is false for empty or unknown formats.
func ParseTime(value string) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Text is a JSON value the backend sends either as a string or a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}

// StudentStats is the student dashboard summary
type StudentStats struct {
	Total        int  `json:"total"`
	Pending      int  `json:"pending"`
	Submitted    int  `json:"submitted"`
	AverageGrade Text `json:"average_grade"`
}

// TeacherStats is the teacher dashboard summary
type TeacherStats struct {
	TotalGroups   int `json:"total_groups"`
	TotalStudents int `json:"total_students"`
	TotalHomework int `json:"total_homework"`
	PendingGrades int `json:"pending_grades"`
}

// Homework status values as reported to students
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
	StatusExpired   = "expired"
)

// Homework is an assignment given to a group
type Homework struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Course          string `json:"course"`
	GroupName       string `json:"group_name"`
	Deadline        string `json:"deadline"`
	CreatedAt       string `json:"created_at"`
	Status          string `json:"status,omitempty"`
	Grade           Text   `json:"grade,omitempty"`
	MaxGrade        Text   `json:"max_grade,omitempty"`
	SubmissionCount int    `json:"submission_count,omitempty"`
	StudentCount    int    `json:"student_count,omitempty"`
}

// DeadlineTime returns the explicit deadline, or the end of the 24 hour
// window after creation when the backend sends none.
func (h Homework) DeadlineTime() (time.Time, bool) {
	if t, ok := ParseTime(h.Deadline); ok {
		return t, true
	}
	if created, ok := ParseTime(h.CreatedAt); ok {
		return created.Add(DeadlineWindow), true
	}
	return time.Time{}, false
}

// Expired reports whether the deadline has passed at now
func (h Homework) Expired(now time.Time) bool {
	deadline, ok := h.DeadlineTime()
	return ok && now.After(deadline)
}

// TimeRemaining returns the time left until the deadline, zero once it passed
func (h Homework) TimeRemaining(now time.Time) time.Duration {
	deadline, ok := h.DeadlineTime()
	if !ok || !deadline.After(now) {
		return 0
	}
	return deadline.Sub(now)
}

// Submission is a student's uploaded answer to a homework
type Submission struct {
	ID            int64  `json:"id"`
	HomeworkTitle string `json:"homework_title"`
	StudentName   string `json:"student_name"`
	SubmittedAt   string `json:"submitted_at"`
	Status        string `json:"status"`
	Grade         Text   `json:"grade,omitempty"`
	Feedback      string `json:"feedback,omitempty"`
	FileURL       string `json:"file_url"`
}

// Graded reports whether the submission has a grade
func (s Submission) Graded() bool {
	return s.Grade != ""
}

// Schedule is one lesson slot of the weekly timetable
type Schedule struct {
	CourseName  string `json:"course_name"`
	TeacherName string `json:"teacher_name"`
	DayOfWeek   Text   `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Room        string `json:"room"`
}

// Rating is a grade a student received
type Rating struct {
	HomeworkTitle string `json:"homework_title"`
	Course        string `json:"course"`
	Grade         Text   `json:"grade"`
	Feedback      string `json:"feedback"`
	GradedAt      string `json:"graded_at"`
}

// Group is a class a teacher runs
type Group struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CourseName   string `json:"course_name"`
	StudentCount int    `json:"student_count"`
	StartDate    string `json:"start_date"`
}

// NewHomework is the payload for creating a homework
type NewHomework struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Group       int64  `json:"group" validate:"required,gt=0"`
	Deadline    string `json:"deadline,omitempty"`
	MaxGrade    int    `json:"max_grade,omitempty" validate:"omitempty,min=1"`
}

// GradeRequest is the payload for grading a submission
type GradeRequest struct {
	Grade    int    `json:"grade" validate:"min=0"`
	Feedback string `json:"feedback"`
}
