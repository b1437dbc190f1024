package importing_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	app "github.com/mohammadpnp/customer-import/internal/application/importing"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

type fakeSpooler struct {
	stored *memStream
	err    error
	called bool
}

func (s *fakeSpooler) Spool(ctx context.Context, fileName string, r io.Reader, limit int64) (domain.StoredFile, int64, error) {
	s.called = true
	if s.err != nil {
		return nil, 0, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	s.stored = &memStream{name: fileName, data: data}
	return s.stored, int64(len(data)), nil
}

func startInput(name, body string) app.StartImportInput {
	return app.StartImportInput{FileName: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestStartImportSuccess(t *testing.T) {
	t.Parallel()

	spooler := &fakeSpooler{}
	tasks := &fakeTaskStore{nextID: "task-1"}
	scheduler := &inlineScheduler{}
	runner := &fakeRunner{}
	uc := app.NewStartImport(spooler, tasks, scheduler, runner, 1024, zerolog.Nop())

	out, err := uc.Execute(context.Background(), startInput("customers.csv", "name\nA\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.TaskID != "task-1" || out.Status != "PROCESSING" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(runner.runs) != 1 || runner.runs[0] != "task-1" {
		t.Fatalf("expected one run for task-1, got %v", runner.runs)
	}
	if !spooler.stored.wasRemoved() {
		t.Fatal("expected spooled file to be removed after the run")
	}
}

func TestStartImportRejectsBeforeCreatingTask(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   app.StartImportInput
		want error
	}{
		{"unsupported extension", startInput("customers.txt", "x"), domain.ErrUnsupportedFormat},
		{"empty", startInput("customers.csv", ""), app.ErrEmptyImportFile},
		{"too big", startInput("customers.csv", strings.Repeat("x", 11)), app.ErrImportFileTooBig},
		{"no body", app.StartImportInput{FileName: "customers.csv", Size: 1}, app.ErrInvalidImportFile},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			spooler := &fakeSpooler{}
			tasks := &fakeTaskStore{nextID: "task-1"}
			uc := app.NewStartImport(spooler, tasks, &inlineScheduler{}, &fakeRunner{}, 10, zerolog.Nop())

			_, err := uc.Execute(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if spooler.called {
				t.Fatal("expected spooler not to be called")
			}
			if len(tasks.created) != 0 {
				t.Fatal("expected no task to be created")
			}
		})
	}
}

func TestStartImportSpoolTooLarge(t *testing.T) {
	t.Parallel()

	spooler := &fakeSpooler{err: domain.ErrFileTooLarge}
	tasks := &fakeTaskStore{nextID: "task-1"}
	uc := app.NewStartImport(spooler, tasks, &inlineScheduler{}, &fakeRunner{}, 10, zerolog.Nop())

	in := startInput("customers.csv", "x")
	in.Size = -1
	_, err := uc.Execute(context.Background(), in)
	if !errors.Is(err, app.ErrImportFileTooBig) {
		t.Fatalf("expected ErrImportFileTooBig, got %v", err)
	}
	if len(tasks.created) != 0 {
		t.Fatal("expected no task to be created")
	}
}

func TestStartImportCreateTaskError(t *testing.T) {
	t.Parallel()

	spooler := &fakeSpooler{}
	tasks := &fakeTaskStore{createErr: errBoom}
	uc := app.NewStartImport(spooler, tasks, &inlineScheduler{}, &fakeRunner{}, 1024, zerolog.Nop())

	_, err := uc.Execute(context.Background(), startInput("customers.csv", "name\nA\n"))
	if !errors.Is(err, app.ErrCreateImportTask) {
		t.Fatalf("expected ErrCreateImportTask, got %v", err)
	}
	if !spooler.stored.wasRemoved() {
		t.Fatal("expected spooled file to be removed")
	}
}

func TestStartImportScheduleError(t *testing.T) {
	t.Parallel()

	spooler := &fakeSpooler{}
	tasks := &fakeTaskStore{nextID: "task-1"}
	runner := &fakeRunner{}
	uc := app.NewStartImport(spooler, tasks, &inlineScheduler{err: errBoom}, runner, 1024, zerolog.Nop())

	_, err := uc.Execute(context.Background(), startInput("customers.csv", "name\nA\n"))
	if !errors.Is(err, app.ErrScheduleImport) {
		t.Fatalf("expected ErrScheduleImport, got %v", err)
	}
	if len(runner.runs) != 0 {
		t.Fatal("expected no run")
	}
	if len(tasks.finished) != 1 || tasks.finished[0].status != domain.TaskStatusFailed {
		t.Fatalf("expected created task to be failed, got %+v", tasks.finished)
	}
	if !spooler.stored.wasRemoved() {
		t.Fatal("expected spooled file to be removed")
	}
}
