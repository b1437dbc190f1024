package echo_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/customer-import/internal/application/importing"
	httpecho "github.com/mohammadpnp/customer-import/internal/interfaces/http/echo"
)

const taskID = "2f0b7c1e-8a55-4a3f-9b36-3c1f2a0d9e11"

type fakeListTasks struct {
	got app.ListTasksInput
}

func (f *fakeListTasks) Execute(ctx context.Context, in app.ListTasksInput) (app.ListTasksOutput, error) {
	f.got = in
	return app.ListTasksOutput{Items: []app.TaskOutput{{ID: taskID, Status: "SUCCESS"}}, Total: 1, Page: 1, Size: 20}, nil
}

type fakeGetTask struct {
	err error
}

func (f *fakeGetTask) Execute(ctx context.Context, in app.GetTaskInput) (app.TaskOutput, error) {
	if f.err != nil {
		return app.TaskOutput{}, f.err
	}
	return app.TaskOutput{ID: in.ID, Status: "PARTIAL_FAILURE", TotalCount: 3, AddedCount: 1, ExistingCount: 1, ErrorCount: 1}, nil
}

type fakeLatest struct {
	task *app.TaskOutput
}

func (f *fakeLatest) Execute(ctx context.Context) (*app.TaskOutput, error) {
	return f.task, nil
}

type fakeDeleteTasks struct {
	got app.DeleteTasksInput
}

func (f *fakeDeleteTasks) Execute(ctx context.Context, in app.DeleteTasksInput) (app.DeleteTasksOutput, error) {
	f.got = in
	return app.DeleteTasksOutput{DeletedTasks: int64(len(in.IDs))}, nil
}

type fakeRemark struct {
	err error
}

func (f *fakeRemark) Execute(ctx context.Context, in app.UpdateTaskRemarkInput) error {
	return f.err
}

type taskFakes struct {
	list   *fakeListTasks
	get    *fakeGetTask
	latest *fakeLatest
	delete *fakeDeleteTasks
	remark *fakeRemark
}

func newTaskServer(f taskFakes) *echo.Echo {
	e := echo.New()
	handler := httpecho.NewTaskHandler(f.list, f.get, f.latest, f.delete, f.remark)
	httpecho.RegisterRoutes(e, httpecho.Routes{Tasks: handler})
	return e
}

func defaultTaskFakes() taskFakes {
	return taskFakes{
		list:   &fakeListTasks{},
		get:    &fakeGetTask{},
		latest: &fakeLatest{},
		delete: &fakeDeleteTasks{},
		remark: &fakeRemark{},
	}
}

func TestTaskHandlerGet(t *testing.T) {
	t.Parallel()

	e := newTaskServer(defaultTaskFakes())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+taskID, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeData(t, rec)
	if data["status"] != "PARTIAL_FAILURE" || data["error_count"] != float64(1) {
		t.Fatalf("unexpected task: %#v", data)
	}
}

func TestTaskHandlerGetErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid id", app.ErrInvalidTaskID, http.StatusBadRequest},
		{"not found", app.ErrTaskNotFound, http.StatusNotFound},
		{"query failure", app.ErrTaskQuery, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := defaultTaskFakes()
			f.get.err = tc.err
			e := newTaskServer(f)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/whatever", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestTaskHandlerListPassesPaging(t *testing.T) {
	t.Parallel()

	f := defaultTaskFakes()
	e := newTaskServer(f)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?page=2&size=50", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.list.got.Page != 2 || f.list.got.Size != 50 {
		t.Fatalf("unexpected paging: %+v", f.list.got)
	}
}

func TestTaskHandlerLatestProcessingNone(t *testing.T) {
	t.Parallel()

	e := newTaskServer(defaultTaskFakes())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/latest-processing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"data\":null}\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestTaskHandlerLatestProcessing(t *testing.T) {
	t.Parallel()

	f := defaultTaskFakes()
	f.latest.task = &app.TaskOutput{ID: taskID, Status: "PROCESSING", TotalCount: 25000}
	e := newTaskServer(f)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/latest-processing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if data := decodeData(t, rec); data["id"] != taskID || data["total_count"] != float64(25000) {
		t.Fatalf("unexpected task: %#v", data)
	}
}

func TestTaskHandlerDeleteWithCustomers(t *testing.T) {
	t.Parallel()

	f := defaultTaskFakes()
	e := newTaskServer(f)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+taskID+"?with_customers=true", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !f.delete.got.WithCustomers || len(f.delete.got.IDs) != 1 || f.delete.got.IDs[0] != taskID {
		t.Fatalf("unexpected delete input: %+v", f.delete.got)
	}
}

func TestTaskHandlerBatchDelete(t *testing.T) {
	t.Parallel()

	f := defaultTaskFakes()
	e := newTaskServer(f)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/batch-delete", bytes.NewReader([]byte(`{"ids":["a","b"]}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["deleted_tasks"] != float64(2) {
		t.Fatalf("unexpected result: %#v", data)
	}
	if f.delete.got.WithCustomers {
		t.Fatal("customers should be kept by default")
	}
}

func TestTaskHandlerRemarkTooLong(t *testing.T) {
	t.Parallel()

	f := defaultTaskFakes()
	f.remark.err = app.ErrRemarkTooLong
	e := newTaskServer(f)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/"+taskID+"/remark", bytes.NewReader([]byte(`{"remark":"x"}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "remark_too_long" {
		t.Fatalf("unexpected code: %s", code)
	}
}
