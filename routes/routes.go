package routes

import "strings"

// Route path constants
// Backend endpoints and page paths are defined here so the manager, the
// domain client and the portal agree on them.
const (
	// Pages
	PageRoot    = "/"
	PageLogin   = "/login/"
	PageLogout  = "/logout/"
	PageStudent = "/student/"
	PageTeacher = "/teacher/"
	PageAdmin   = "/admin/"

	// Auth endpoints
	EndpointLogin        = "/login/"
	EndpointTokenRefresh = "/api/auth/token/refresh/"
	EndpointTokenVerify  = "/api/auth/verify/"

	// Homework endpoints
	EndpointHomework          = "/api/homework/"
	EndpointHomeworkStats     = "/api/homework/stats/"
	EndpointHomeworkRecent    = "/api/homework/recent/"
	EndpointTeacherStats      = "/api/homework/teacher-stats/"
	EndpointRecentSubmissions = "/api/homework/recent-submissions/"
	EndpointAllSubmissions    = "/api/homework/all-submissions/"
	EndpointSubmitHomework    = "/api/homework/submit/%d/"
	EndpointGradeSubmission   = "/api/homework/submission/%d/grade/"

	// Other domain endpoints
	EndpointMySchedule = "/api/schedules/my-schedule/"
	EndpointMyGrades   = "/api/ratings/my-grades/"
	EndpointMyGroups   = "/api/groups/my-groups/"

	// APIPrefix is the prefix shared by every authenticated backend endpoint
	APIPrefix = "/api/"
)

// Join appends path to base without doubling the separating slash.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
