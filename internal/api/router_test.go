package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/api"
	"github.com/dvloznov/moneyflow/internal/api/handlers"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/jobs"
	jobsinmemory "github.com/dvloznov/moneyflow/internal/jobs/inmemory"
	"github.com/dvloznov/moneyflow/internal/logger"
	"github.com/dvloznov/moneyflow/internal/notify"
	"github.com/dvloznov/moneyflow/internal/pipeline"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/dvloznov/moneyflow/internal/store/inmemory"
	"github.com/shopspring/decimal"
)

const (
	userA = "8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"
	userB = "c9f0f895-fb98-4b91-9f2a-0a1b2c3d4e5f"
)

var today = civil.Date{Year: 2026, Month: 3, Day: 10}

// MockNotifier records the notifications the handlers trigger.
type MockNotifier struct {
	GoalContributions []decimal.Decimal
	FundsCreated      []string
	FundContributions []decimal.Decimal
}

func (m *MockNotifier) GoalContribution(ctx context.Context, goal domain.Goal, added decimal.Decimal, today civil.Date) {
	m.GoalContributions = append(m.GoalContributions, added)
}

func (m *MockNotifier) FundCreated(ctx context.Context, fund domain.Fund, today civil.Date) notify.Outcome {
	m.FundsCreated = append(m.FundsCreated, fund.ID)
	return notify.Sent
}

func (m *MockNotifier) FundContribution(ctx context.Context, fund domain.Fund, added decimal.Decimal, today civil.Date) notify.Outcome {
	m.FundContributions = append(m.FundContributions, added)
	return notify.Sent
}

// MockUploader is a mock implementation of handlers.Uploader.
type MockUploader struct {
	UploadFunc func(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error)
}

func (m *MockUploader) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, objectName, r, contentType)
	}
	return "gs://test-bucket/" + objectName, nil
}

type testServer struct {
	handler  http.Handler
	store    *store.Store
	jobs     *jobsinmemory.Store
	notifier *MockNotifier
}

func newTestServer(t *testing.T, uploader handlers.Uploader) *testServer {
	t.Helper()
	log := logger.NewWithWriter(io.Discard)

	st := inmemory.New(false)
	jobStore := jobsinmemory.NewStore()
	queue := jobsinmemory.NewQueue(10, jobStore)
	t.Cleanup(func() { queue.Close() })

	notifier := &MockNotifier{}
	clock := func() civil.Date { return today }
	ingestor := pipeline.NewIngestor(nil, extract.PlainText{}, st.Expenses, log)

	h := api.Handlers{
		Statements:    handlers.NewStatementsHandler(ingestor, uploader, queue, jobStore, log),
		Jobs:          handlers.NewJobsHandler(jobStore, log),
		Goals:         handlers.NewGoalsHandler(st.Users, st.Goals, notifier, clock, log),
		Funds:         handlers.NewFundsHandler(st.Users, st.Funds, notifier, clock, log),
		Notifications: handlers.NewNotificationsHandler(st.Events, log),
		Profile:       handlers.NewProfileHandler(st.Users, log),
		Expenses:      handlers.NewExpensesHandler(st.Expenses, log),
	}
	return &testServer{
		handler:  api.NewRouter(h, log),
		store:    st,
		jobs:     jobStore,
		notifier: notifier,
	}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createProfile(t *testing.T, userID string) {
	t.Helper()
	rec := s.do(t, http.MethodPut, "/api/profile", userID, map[string]string{
		"username": "asha", "email": "asha@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status %d: %s", rec.Code, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		userID string
		want   int
	}{
		{"health is public", "/health", "", http.StatusOK},
		{"missing user", "/api/goals", "", http.StatusUnauthorized},
		{"malformed user", "/api/goals", "not-a-uuid", http.StatusUnauthorized},
		{"valid user", "/api/goals", userA, http.StatusOK},
		{"unknown route", "/api/nope", userA, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, tt.userID, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header should be set")
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodOptions, "/api/goals", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "X-User-ID") {
		t.Error("X-User-ID should be an allowed header")
	}
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, nil)

	if rec := s.do(t, http.MethodGet, "/api/profile", userA, nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodPut, "/api/profile", userA, map[string]string{"email": "bad"}); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	s.createProfile(t, userA)

	rec := s.do(t, http.MethodGet, "/api/profile", userA, nil)
	var got map[string]string
	decode(t, rec, &got)
	if got["user_id"] != userA || got["email"] != "asha@example.com" {
		t.Errorf("unexpected profile: %v", got)
	}
}

func TestGoals(t *testing.T) {
	s := newTestServer(t, nil)

	body := map[string]interface{}{"name": "Laptop", "target_amount": 10000, "saved_amount": 5000, "target_date": "2026-06-30"}

	if rec := s.do(t, http.MethodPost, "/api/goals", userA, body); rec.Code != http.StatusConflict {
		t.Fatalf("goal without profile: status = %d, want 409", rec.Code)
	}

	s.createProfile(t, userA)

	rec := s.do(t, http.MethodPost, "/api/goals", userA, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID       string `json:"id"`
		Progress string `json:"progress_pct"`
		Status   string `json:"status"`
	}
	decode(t, rec, &created)
	if created.Progress != "50" || created.Status != notify.StatusOnTrack {
		t.Errorf("unexpected goal: %+v", created)
	}
	if len(s.notifier.GoalContributions) != 1 || !s.notifier.GoalContributions[0].Equal(decimal.NewFromInt(5000)) {
		t.Errorf("starting balance should be announced, got %v", s.notifier.GoalContributions)
	}

	rec = s.do(t, http.MethodPost, "/api/goals/"+created.ID+"/contributions", userA, map[string]interface{}{"amount": "2500"})
	if rec.Code != http.StatusOK {
		t.Fatalf("contribution: status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Saved string `json:"saved_amount"`
	}
	decode(t, rec, &updated)
	if updated.Saved != "7500" {
		t.Errorf("saved = %s, want 7500", updated.Saved)
	}
	if len(s.notifier.GoalContributions) != 2 {
		t.Errorf("contribution should notify, got %d calls", len(s.notifier.GoalContributions))
	}

	s.createProfile(t, userB)
	if rec := s.do(t, http.MethodPost, "/api/goals/"+created.ID+"/contributions", userB, map[string]interface{}{"amount": 1}); rec.Code != http.StatusNotFound {
		t.Errorf("other user's goal: status = %d, want 404", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/goals", userA, nil)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}
}

func TestGoals_Invalid(t *testing.T) {
	s := newTestServer(t, nil)
	s.createProfile(t, userA)

	tests := []struct {
		name      string
		path      string
		body      interface{}
		want      int
		wantField string
	}{
		{"saved above target", "/api/goals", map[string]interface{}{"name": "x", "target_amount": 100, "saved_amount": 200}, http.StatusBadRequest, "saved_amount"},
		{"missing name", "/api/goals", map[string]interface{}{"target_amount": 100}, http.StatusBadRequest, "name"},
		{"bad goal id", "/api/goals/42/contributions", map[string]interface{}{"amount": 10}, http.StatusNotFound, ""},
		{"unknown goal", "/api/goals/" + userB + "/contributions", map[string]interface{}{"amount": 10}, http.StatusNotFound, ""},
		{"zero amount", "/api/goals/" + userB + "/contributions", map[string]interface{}{"amount": 0}, http.StatusBadRequest, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, userA, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.wantField == "" {
				return
			}
			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			decode(t, rec, &resp)
			if _, ok := resp.Fields[tt.wantField]; !ok {
				t.Errorf("expected field %s, got %v", tt.wantField, resp.Fields)
			}
		})
	}
}

func TestContributions_ExceedTarget(t *testing.T) {
	tests := []struct {
		name     string
		create   string
		body     map[string]interface{}
		notified func(*MockNotifier) int
	}{
		{"goal", "/api/goals", map[string]interface{}{"name": "Bike", "target_amount": 1000, "saved_amount": 900},
			func(m *MockNotifier) int { return len(m.GoalContributions) }},
		{"fund", "/api/funds", map[string]interface{}{"name": "Buffer", "target_amount": 1000, "interval": "monthly"},
			func(m *MockNotifier) int { return len(m.FundContributions) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.createProfile(t, userA)

			rec := s.do(t, http.MethodPost, tt.create, userA, tt.body)
			if rec.Code != http.StatusCreated {
				t.Fatalf("create: status = %d: %s", rec.Code, rec.Body.String())
			}
			var created struct {
				ID string `json:"id"`
			}
			decode(t, rec, &created)
			before := tt.notified(s.notifier)

			rec = s.do(t, http.MethodPost, tt.create+"/"+created.ID+"/contributions", userA, map[string]interface{}{"amount": 5000})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			decode(t, rec, &resp)
			if _, ok := resp.Fields["amount"]; !ok {
				t.Errorf("expected amount field error, got %v", resp.Fields)
			}
			if got := tt.notified(s.notifier); got != before {
				t.Errorf("rejected contribution notified: %d calls, want %d", got, before)
			}

			rec = s.do(t, http.MethodPost, tt.create+"/"+created.ID+"/contributions", userA, map[string]interface{}{"amount": 100})
			if rec.Code != http.StatusOK {
				t.Fatalf("contribution up to target: status = %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFunds(t *testing.T) {
	s := newTestServer(t, nil)
	s.createProfile(t, userA)

	rec := s.do(t, http.MethodPost, "/api/funds", userA, map[string]interface{}{
		"name": "Rainy day", "target_amount": 60000, "interval": "Half-Yearly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var fund struct {
		ID           string `json:"id"`
		Interval     string `json:"interval"`
		Notification string `json:"notification"`
	}
	decode(t, rec, &fund)
	if fund.Interval != string(domain.IntervalHalfYearly) || fund.Notification != "sent" {
		t.Errorf("unexpected fund: %+v", fund)
	}

	rec = s.do(t, http.MethodPost, "/api/funds/"+fund.ID+"/contributions", userA, map[string]interface{}{"amount": 1500})
	if rec.Code != http.StatusOK {
		t.Fatalf("contribution: status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Saved string  `json:"saved_amount"`
		Last  *string `json:"last_contribution_at"`
	}
	decode(t, rec, &updated)
	if updated.Saved != "1500" || updated.Last == nil {
		t.Errorf("unexpected fund after contribution: %+v", updated)
	}
	if len(s.notifier.FundsCreated) != 1 || len(s.notifier.FundContributions) != 1 {
		t.Errorf("notifier calls: %+v", s.notifier)
	}

	if rec := s.do(t, http.MethodPost, "/api/funds", userA, map[string]interface{}{
		"name": "x", "target_amount": 10, "interval": "daily",
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown interval: status = %d, want 400", rec.Code)
	}
}

func TestPreview_JSON(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/statements/preview", userA, map[string]interface{}{
		"text":       "05/01/2026 UPI/Zomato Order 450.00 12450.00\n01/02/2026 Salary credit 50,000.00 62,450.00",
		"categories": []string{"Food", "Other"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res pipeline.Result
	decode(t, rec, &res)
	if len(res.Transactions) != 1 {
		t.Fatalf("debit-only default should keep 1 transaction, got %+v", res.Transactions)
	}
	if tx := res.Transactions[0]; tx.Amount != "450.00" || tx.Category != "Food" || tx.Direction != domain.DirectionDebit {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

func TestPreview_Multipart(t *testing.T) {
	s := newTestServer(t, nil)

	body, contentType := multipartBody(t, "statement.txt",
		"05/01/2026 UPI/Zomato Order 450.00 12450.00\n01/02/2026 Salary credit 50,000.00 62,450.00\n",
		map[string]string{"debit_only": "false"})
	req := httptest.NewRequest(http.MethodPost, "/api/statements/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", userA)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res pipeline.Result
	decode(t, rec, &res)
	if len(res.Transactions) != 2 || res.Document != "statement.txt" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestIngestAndJobs(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/statements/ingest", userA, map[string]interface{}{
		"gcs_uri": "gs://bucket/statements/a.pdf", "debit_only": false,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["status"] != string(jobs.JobStatusPending) {
		t.Errorf("status = %q, want pending", resp["status"])
	}

	job, err := s.jobs.GetJob(context.Background(), resp["job_id"])
	if err != nil {
		t.Fatalf("job not stored: %v", err)
	}
	if job.UserID != userA || job.DebitOnly {
		t.Errorf("unexpected job: %+v", job)
	}

	if rec := s.do(t, http.MethodGet, "/api/jobs/"+job.JobID, userA, nil); rec.Code != http.StatusOK {
		t.Errorf("own job: status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/jobs/"+job.JobID, userB, nil); rec.Code != http.StatusNotFound {
		t.Errorf("other user's job: status = %d, want 404", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/jobs", userB, nil)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 0 {
		t.Errorf("jobs leak across users: %d", list.Count)
	}

	rec = s.do(t, http.MethodPost, "/api/statements/ingest", userA, map[string]interface{}{"gcs_uri": "gs://bucket/statements/a.pdf"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate ingest: status = %d, want 409", rec.Code)
	}
	decode(t, rec, &resp)
	if resp["job_id"] != job.JobID {
		t.Errorf("conflict should name the running job, got %q", resp["job_id"])
	}

	if err := s.jobs.UpdateJobStatus(context.Background(), job.JobID, jobs.JobStatusCompleted, ""); err != nil {
		t.Fatal(err)
	}
	if rec := s.do(t, http.MethodPost, "/api/statements/ingest", userA, map[string]interface{}{"gcs_uri": "gs://bucket/statements/a.pdf"}); rec.Code != http.StatusAccepted {
		t.Errorf("re-ingest after completion: status = %d, want 202", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/api/statements/ingest", userB, map[string]interface{}{"gcs_uri": "gs://bucket/statements/a.pdf"}); rec.Code != http.StatusAccepted {
		t.Errorf("other user's ingest: status = %d, want 202", rec.Code)
	}

	if rec := s.do(t, http.MethodPost, "/api/statements/ingest", userA, map[string]string{"gcs_uri": "/tmp/a.pdf"}); rec.Code != http.StatusBadRequest {
		t.Errorf("non-gcs uri: status = %d, want 400", rec.Code)
	}
}

func TestUpload(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		body, contentType := multipartBody(t, "a.pdf", "%PDF", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-ID", userA)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("queues a job", func(t *testing.T) {
		var uploaded []byte
		uploader := &MockUploader{UploadFunc: func(ctx context.Context, objectName string, r io.Reader, contentType string) (string, error) {
			uploaded, _ = io.ReadAll(r)
			return "gs://test-bucket/" + objectName, nil
		}}
		s := newTestServer(t, uploader)

		body, contentType := multipartBody(t, "march.pdf", "%PDF-1.4", map[string]string{"categories": "Food, Other"})
		req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-ID", userA)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if string(uploaded) != "%PDF-1.4" {
			t.Errorf("uploaded %q", uploaded)
		}
		var resp map[string]string
		decode(t, rec, &resp)
		if !strings.HasPrefix(resp["gcs_uri"], "gs://test-bucket/statements/"+userA+"/") {
			t.Errorf("gcs_uri = %q", resp["gcs_uri"])
		}
		job, err := s.jobs.GetJob(context.Background(), resp["job_id"])
		if err != nil {
			t.Fatalf("job not stored: %v", err)
		}
		if !job.DebitOnly || len(job.Categories) != 2 || job.Categories[0] != "Food" {
			t.Errorf("unexpected job: %+v", job)
		}
	})
}

func TestCategorize(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/categorize", userA, map[string]interface{}{
		"description": "UPI/SWIGGY/Dinner", "categories": []string{"Food", "Other"},
	})
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["category"] != "Food" {
		t.Errorf("category = %q, want Food", resp["category"])
	}
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	ref := domain.EventRef{UserID: userA, TargetKind: domain.TargetGoal, TargetID: "g1", Key: notify.KeyGoalAchieved}
	if _, err := s.store.Events.Claim(ctx, ref, today); err != nil {
		t.Fatal(err)
	}
	if err := s.store.Events.Finish(ctx, ref, domain.EventSent, map[string]interface{}{"type": "goal_achieved"}); err != nil {
		t.Fatal(err)
	}

	rec := s.do(t, http.MethodGet, "/api/notifications?target_id=g1", userA, nil)
	var resp struct {
		Count         int `json:"count"`
		Notifications []struct {
			Key    string `json:"event_key"`
			Status string `json:"status"`
			Date   string `json:"event_date"`
		} `json:"notifications"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 || resp.Notifications[0].Key != notify.KeyGoalAchieved || resp.Notifications[0].Status != "sent" || resp.Notifications[0].Date != "2026-03-10" {
		t.Errorf("unexpected notifications: %+v", resp)
	}

	rec = s.do(t, http.MethodGet, "/api/notifications", userB, nil)
	decode(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("events leak across users: %d", resp.Count)
	}
}

func TestExpenses(t *testing.T) {
	s := newTestServer(t, nil)

	_, err := s.store.Expenses.InsertExpenses(context.Background(), []domain.Expense{
		{UserID: userA, Description: "UPI Zomato", Category: "Food", Amount: decimal.RequireFromString("450.00"), Date: today, Direction: domain.DirectionDebit, Source: domain.SourceStatement},
		{UserID: userA, Description: "Uber trip", Category: "Travel", Amount: decimal.RequireFromString("120.50"), Date: today, Direction: domain.DirectionDebit, Source: domain.SourceStatement},
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := s.do(t, http.MethodGet, "/api/expenses?limit=1", userA, nil)
	var resp struct {
		Count    int `json:"count"`
		Expenses []struct {
			Description string `json:"description"`
			Amount      string `json:"amount"`
			Source      string `json:"source"`
		} `json:"expenses"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 || resp.Expenses[0].Description != "Uber trip" || resp.Expenses[0].Amount != "120.5" || resp.Expenses[0].Source != "STATEMENT" {
		t.Errorf("unexpected expenses: %+v", resp)
	}

	rec = s.do(t, http.MethodGet, "/api/expenses", userB, nil)
	decode(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("expenses leak across users: %d", resp.Count)
	}
}
