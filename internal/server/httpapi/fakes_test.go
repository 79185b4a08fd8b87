package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "admin123"
	testToken    = "valid-token"
)

var testIdentity = &auth.Identity{AccountID: "acc-1", Email: testEmail}

type fakeAuth struct {
	mu       sync.Mutex
	live     map[string]bool
	loginErr error
	authErr  error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{live: map[string]bool{testToken: true}}
}

func (f *fakeAuth) Login(ctx context.Context, in validation.LoginInput) (*services.Session, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if in.Email != testEmail || in.Password != testPassword {
		return nil, common.ErrorInvalidCredentials
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[testToken] = true
	return &services.Session{Token: testToken, Identity: *testIdentity, ExpiresAt: time.Now().Add(common.SessionTTL)}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, token)
	return nil
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[token] {
		return nil, common.ErrSessionRevoked
	}
	id := *testIdentity
	return &id, nil
}

type fakeProjects struct {
	mu      sync.Mutex
	byID    map[string]*models.Project
	order   []string
	listErr error
	calls   int
	filter  models.ProjectFilter
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{byID: map[string]*models.Project{}}
}

func (f *fakeProjects) List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.filter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.Project{}
	for i := len(f.order) - 1; i >= 0; i-- {
		p := f.byID[f.order[i]]
		if p == nil || (filter == models.ListPublished && p.Status != models.StatusPublished) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) Get(ctx context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProjects) Create(ctx context.Context, in *validation.ProjectInput) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, err := in.Project()
	if err != nil {
		return nil, err
	}
	p.ID = "p" + string(rune('0'+len(f.order)+1))
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakeProjects) Update(ctx context.Context, id string, in *validation.ProjectInput) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, err := in.Project()
	if err != nil {
		return nil, err
	}
	if _, ok := f.byID[id]; !ok {
		return nil, common.ErrorNotFound
	}
	p.ID = id
	f.byID[id] = p
	return p, nil
}

func (f *fakeProjects) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeUploads struct {
	got []services.ImageFile
	err error
}

func (f *fakeUploads) Upload(ctx context.Context, files []services.ImageFile) ([]string, error) {
	f.got = files
	if f.err != nil {
		return nil, f.err
	}
	for _, file := range files {
		if file.Size > services.MaxImageBytes {
			return nil, validation.NewError(file.Name, "file too large (max 5 MB)")
		}
	}
	urls := make([]string, 0, len(files))
	for _, file := range files {
		urls = append(urls, "https://cdn.example.com/"+file.Name)
	}
	return urls, nil
}

type fakeContact struct{ got *validation.ContactInput }

func (f *fakeContact) Submit(ctx context.Context, in validation.ContactInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	f.got = &in
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testAPI struct {
	srv      *httptest.Server
	auth     *fakeAuth
	projects *fakeProjects
	uploads  *fakeUploads
	contact  *fakeContact
	handlers *Handlers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		auth:     newFakeAuth(),
		projects: newFakeProjects(),
		uploads:  &fakeUploads{},
		contact:  &fakeContact{},
	}
	logger := logging.Nop()
	api.handlers = &Handlers{
		Auth:     api.auth,
		Projects: api.projects,
		Uploads:  api.uploads,
		Contact:  api.contact,
		Sessions: NewSessionGateway(api.auth, logger, false),
		Logger:   logger,
	}
	api.srv = httptest.NewServer(NewRouter(api.handlers, true))
	t.Cleanup(api.srv.Close)
	return api
}

func authCookie() *http.Cookie {
	return &http.Cookie{Name: common.SessionCookieName, Value: testToken}
}

var errBoom = errors.New("boom")
