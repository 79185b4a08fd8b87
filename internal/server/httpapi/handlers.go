package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

type authService interface {
	authenticator
	Login(ctx context.Context, in validation.LoginInput) (*services.Session, error)
	Logout(ctx context.Context, token string) error
}

type projectService interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, in *validation.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, in *validation.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

type uploadService interface {
	Upload(ctx context.Context, files []services.ImageFile) ([]string, error)
}

type contactService interface {
	Submit(ctx context.Context, in validation.ContactInput) error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds the HTTP endpoints. Every field except DB is required.
type Handlers struct {
	Auth     authService
	Projects projectService
	Uploads  uploadService
	Contact  contactService
	Sessions *SessionGateway
	DB       pinger
	Logger   logging.Logger

	// PrivateDrafts restricts anonymous project lists to published entries.
	PrivateDrafts bool
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	s, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		outcome := "error"
		if errors.Is(err, common.ErrorInvalidCredentials) {
			outcome = "rejected"
		}
		loginAttempts.WithLabelValues(outcome).Inc()
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	loginAttempts.WithLabelValues("success").Inc()

	h.Sessions.SetCookie(w, r, s.Token, time.Until(s.ExpiresAt).Round(time.Second))
	writeJSON(w, http.StatusOK, loginResponse{Message: "login successful", Token: s.Token})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), h.Sessions.Token(r)); err != nil {
		h.Logger.Error(r.Context(), "session revocation failed", "error", err)
	}
	h.Sessions.ClearCookie(w, r)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{ID: id.AccountID, Email: id.Email})
}

// ListProjects always answers with a JSON array; a failure is signalled by
// the status code alone.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter := models.ListAll
	if r.URL.Query().Get("status") == models.StatusPublished || h.draftsHidden(r) {
		filter = models.ListPublished
	}

	list, err := h.Projects.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error(r.Context(), "listing projects failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, []*models.Project{})
		return
	}
	if list == nil {
		list = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

// draftsHidden reports whether r may only see published projects.
func (h *Handlers) draftsHidden(r *http.Request) bool {
	return h.PrivateDrafts && IdentityFromContext(r.Context()) == nil
}

// GetProject answers 404 for a draft the caller may not see, so hidden
// drafts are indistinguishable from absent ones.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && p.Status != models.StatusPublished && h.draftsHidden(r) {
		err = common.ErrorNotFound
	}
	if err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in validation.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.Projects.Create(r.Context(), &in)
	if err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in validation.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.Projects.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "project deleted"})
}

type uploadResponse struct {
	URLs []string `json:"urls"`
}

const (
	maxUploadFiles   = 10
	maxUploadRequest = maxUploadFiles*services.MaxImageBytes + 1<<20
	uploadMemory     = 8 << 20
)

func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["images"]
	if len(headers) > maxUploadFiles {
		writeError(r.Context(), w, h.Logger,
			validation.NewError("images", fmt.Sprintf("at most %d files per request", maxUploadFiles)))
		return
	}

	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unreadable file "+fh.Filename)
			return
		}
		files = append(files, f)
	}

	urls, err := h.Uploads.Upload(r.Context(), files)
	if err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	uploadedImages.Add(float64(len(urls)))
	writeJSON(w, http.StatusOK, uploadResponse{URLs: urls})
}

// readPart reads at most one byte past the image limit so that oversized
// files are detected without buffering them whole.
func readPart(fh *multipart.FileHeader) (services.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.ImageFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		return services.ImageFile{}, err
	}
	return services.ImageFile{Name: fh.Filename, Size: max(fh.Size, int64(len(data))), Data: data}, nil
}

func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in validation.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.Contact.Submit(r.Context(), in); err != nil {
		writeError(r.Context(), w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "message sent"})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		h.Logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Checks: map[string]string{"database": "down"}})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: map[string]string{"database": "ok"}})
}

var (
	_ authService    = (*services.AuthService)(nil)
	_ projectService = (*services.ProjectService)(nil)
	_ uploadService  = (*services.UploadService)(nil)
	_ contactService = (*services.ContactService)(nil)
)
