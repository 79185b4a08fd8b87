package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/dbx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/projects"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/sessions"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeAccounts struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Account
	getErr    error
	createErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*models.Account{}}
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	f.byEmail[a.Email] = &cp
	return a, nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byEmail {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, id string, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byEmail {
		if a.ID == id {
			a.PasswordHash = hash
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeAccounts) DeleteByEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byEmail, email)
	return nil
}

type fakeSessions struct {
	mu        sync.Mutex
	byID      map[string]*models.Session
	createErr error
	findErr   error
	deleteErr error
	pruned    int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]*models.Session{}}
}

func (f *fakeSessions) Create(ctx context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSessions) Find(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var n int64
	for id, s := range f.byID {
		if s.AccountID == accountID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if s.ExpiresAt.Before(now) {
			delete(f.byID, id)
			n++
		}
	}
	f.pruned += int(n)
	return n, nil
}

type fakeProjects struct {
	mu      sync.Mutex
	byID    map[string]*models.Project
	seq     int
	listErr error
	err     error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{byID: map[string]*models.Project{}}
}

func (f *fakeProjects) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.seq++
	p.CreatedAt = time.Unix(int64(f.seq), 0)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakeProjects) Get(ctx context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Project, 0, len(f.byID))
	for _, p := range f.byID {
		if filter == models.ListPublished && p.Status != models.StatusPublished {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.byID[p.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.CreatedAt = old.CreatedAt
	f.seq++
	p.UpdatedAt = time.Unix(int64(f.seq), 0)
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakeProjects) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	accounts *fakeAccounts
	sessions *fakeSessions
	projects *fakeProjects
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts: newFakeAccounts(),
		sessions: newFakeSessions(),
		projects: newFakeProjects(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }
func (m *fakeRepoManager) Projects(dbx.DBTX) projects.Repository { return m.projects }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository { return m.sessions }
