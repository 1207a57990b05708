package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/coursegate/internal/app"
	"github.com/alexanderramin/coursegate/internal/db"
	"github.com/alexanderramin/coursegate/internal/gate"
	"github.com/alexanderramin/coursegate/internal/progress"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/testutil"
)

var learner = app.Identity{UserID: "user-1", ClientID: "client-1"}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

type harness struct {
	db           *sql.DB
	records      *repository.SQLiteProgressRepo
	content      *repository.SQLiteContentRepo
	requirements *repository.SQLiteRequirementRepo
	attempts     *repository.SQLiteAttemptRepo
	submissions  *repository.SQLiteSubmissionRepo
	registry     *progress.Registry
	observer     *recordingObserver

	progress ProgressService
	reports  ReportService
	gates    GateService
	catalog  CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithUoW(t, nil)
}

func newHarnessWithUoW(t *testing.T, uowFor func(*sql.DB) db.UnitOfWork) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	if uowFor != nil {
		uow = uowFor(database)
	}
	h := &harness{
		db:           database,
		records:      repository.NewSQLiteProgressRepo(database),
		content:      repository.NewSQLiteContentRepo(database),
		requirements: repository.NewSQLiteRequirementRepo(database),
		attempts:     repository.NewSQLiteAttemptRepo(database),
		submissions:  repository.NewSQLiteSubmissionRepo(database),
		observer:     &recordingObserver{},
	}
	h.registry = progress.NewDefaultRegistry(h.records, h.attempts, h.submissions, progress.Options{})
	h.progress = NewProgressService(uow, h.records, h.content, h.registry, nil, h.observer)
	h.reports = NewReportService(h.content, h.registry, h.observer)
	h.gates = NewGateService(h.reports, h.requirements, gate.NewChecker(h.attempts, h.submissions), h.observer)
	h.catalog = NewCatalogService(uow, h.observer)
	return h
}
