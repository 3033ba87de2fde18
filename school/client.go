package school

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-school-portal/internal/errors"
	"github.com/jrsteele09/go-school-portal/routes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// maxBodySize bounds how much of a response body is read
const maxBodySize = 4 << 20

// Doer sends authenticated requests to the backend. *auth.Manager is the
// production implementation: it attaches the bearer token and handles the
// refresh-and-retry cycle.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
	URL(path string) string
}

// APIError is returned for any non-2xx backend response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client is a typed wrapper over the homework, schedule, rating and group endpoints.
// A session that ended during a call surfaces as auth.ErrSessionEnded.
type Client struct {
	doer     Doer
	validate *validator.Validate
}

// NewClient creates a Client sending its requests through doer
func NewClient(doer Doer) *Client {
	return &Client{
		doer:     doer,
		validate: validator.New(),
	}
}

// StudentStats returns the counters shown on the student dashboard
func (c *Client) StudentStats(ctx context.Context) (StudentStats, error) {
	var stats StudentStats
	err := c.getJSON(ctx, routes.EndpointHomeworkStats, &stats)
	return stats, errors.Wrap(err, "[Client.StudentStats]")
}

// RecentHomework returns the latest homework of the student's groups
func (c *Client) RecentHomework(ctx context.Context) ([]Homework, error) {
	items, err := getList[Homework](ctx, c, routes.EndpointHomeworkRecent)
	return items, errors.Wrap(err, "[Client.RecentHomework]")
}

// Homework returns every homework visible to the current user
func (c *Client) Homework(ctx context.Context) ([]Homework, error) {
	items, err := getList[Homework](ctx, c, routes.EndpointHomework)
	return items, errors.Wrap(err, "[Client.Homework]")
}

func (c *Client) MySchedule(ctx context.Context) ([]Schedule, error) {
	items, err := getList[Schedule](ctx, c, routes.EndpointMySchedule)
	return items, errors.Wrap(err, "[Client.MySchedule]")
}

func (c *Client) MyGrades(ctx context.Context) ([]Rating, error) {
	items, err := getList[Rating](ctx, c, routes.EndpointMyGrades)
	return items, errors.Wrap(err, "[Client.MyGrades]")
}

// TeacherStats returns the counters shown on the teacher dashboard
func (c *Client) TeacherStats(ctx context.Context) (TeacherStats, error) {
	var stats TeacherStats
	err := c.getJSON(ctx, routes.EndpointTeacherStats, &stats)
	return stats, errors.Wrap(err, "[Client.TeacherStats]")
}

func (c *Client) RecentSubmissions(ctx context.Context) ([]Submission, error) {
	items, err := getList[Submission](ctx, c, routes.EndpointRecentSubmissions)
	return items, errors.Wrap(err, "[Client.RecentSubmissions]")
}

func (c *Client) AllSubmissions(ctx context.Context) ([]Submission, error) {
	items, err := getList[Submission](ctx, c, routes.EndpointAllSubmissions)
	return items, errors.Wrap(err, "[Client.AllSubmissions]")
}

func (c *Client) MyGroups(ctx context.Context) ([]Group, error) {
	items, err := getList[Group](ctx, c, routes.EndpointMyGroups)
	return items, errors.Wrap(err, "[Client.MyGroups]")
}

// CreateHomework creates a homework for a group and returns the stored record
func (c *Client) CreateHomework(ctx context.Context, hw NewHomework) (Homework, error) {
	if err := c.validate.Struct(hw); err != nil {
		return Homework{}, errors.Wrapf(apperrors.ErrInvalidRequest, "[Client.CreateHomework] %v", err)
	}
	if hw.Deadline != "" {
		if _, ok := ParseTime(hw.Deadline); !ok {
			return Homework{}, errors.Wrapf(apperrors.ErrInvalidRequest, "[Client.CreateHomework] deadline %q", hw.Deadline)
		}
	}

	var created Homework
	if err := c.postJSON(ctx, routes.EndpointHomework, hw, &created); err != nil {
		return Homework{}, errors.Wrap(err, "[Client.CreateHomework]")
	}
	log.Info().Int64("homework", created.ID).Str("title", hw.Title).Msg("homework created")
	return created, nil
}

// GradeSubmission stores a grade and feedback for a submission
func (c *Client) GradeSubmission(ctx context.Context, submissionID int64, grade GradeRequest) error {
	if err := c.validate.Struct(grade); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidRequest, "[Client.GradeSubmission] %v", err)
	}
	path := fmt.Sprintf(routes.EndpointGradeSubmission, submissionID)
	if err := c.postJSON(ctx, path, grade, nil); err != nil {
		return errors.Wrap(err, "[Client.GradeSubmission]")
	}
	log.Info().Int64("submission", submissionID).Int("grade", grade.Grade).Msg("submission graded")
	return nil
}

// SubmitHomework uploads a file as the answer to a homework
func (c *Client) SubmitHomework(ctx context.Context, homeworkID int64, filename string, content io.Reader) error {
	if filename == "" || content == nil {
		return errors.Wrap(apperrors.ErrInvalidRequest, "[Client.SubmitHomework] file is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "[Client.SubmitHomework] create form file")
	}
	if _, err := io.Copy(part, content); err != nil {
		return errors.Wrap(err, "[Client.SubmitHomework] read file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "[Client.SubmitHomework] close form")
	}

	path := fmt.Sprintf(routes.EndpointSubmitHomework, homeworkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.doer.URL(path), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return errors.Wrap(err, "[Client.SubmitHomework] new request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if _, err := c.send(req); err != nil {
		return errors.Wrap(err, "[Client.SubmitHomework]")
	}
	log.Info().Int64("homework", homeworkID).Str("file", filename).Msg("homework submitted")
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.doer.URL(path), nil)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	body, err := c.send(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.doer.URL(path), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// send runs req through the doer and returns the body of a 2xx response
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(body, http.StatusText(resp.StatusCode))}
		log.Debug().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg(apiErr.Message)
		return nil, apiErr
	}
	return body, nil
}

// getList fetches a list endpoint. Both a bare JSON array and a paginated
// {"results": [...]} envelope are accepted.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw []byte) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	items := []T{}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.Wrap(err, "decode list")
		}
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, errors.Wrap(err, "decode page")
	}
	if page.Results != nil {
		items = page.Results
	}
	return items, nil
}

// errorMessage extracts {"error"} or {"detail"} from an error body
func errorMessage(body []byte, fallback string) string {
	var e struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Detail != "" {
			return e.Detail
		}
	}
	return fallback
}
