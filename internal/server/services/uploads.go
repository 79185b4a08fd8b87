package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/storage"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

// MaxImageBytes is the largest accepted image.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageFile is one uploaded file. Size is the size the client declared or
// the number of bytes read, whichever is larger, so a truncated read of an
// oversized file is still rejected.
type ImageFile struct {
	Name string
	Size int64
	Data []byte
}

type UploadService struct {
	store  storage.ImageStore
	folder string
	logger logging.Logger
	now    func() time.Time
}

func NewUploadService(store storage.ImageStore, folder string, logger logging.Logger) *UploadService {
	return &UploadService{store: store, folder: folder, logger: logger.With("module", "uploads"), now: time.Now}
}

// Upload checks every file first and stores nothing if any is rejected.
// Files are then stored one at a time in order; if one fails, the ones
// already stored are removed and an error wrapping
// common.ErrorUpstreamStorage is returned.
func (s *UploadService) Upload(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, validation.NewError("images", "no file provided")
	}

	types := make([]string, len(files))
	for i, f := range files {
		if f.Size > MaxImageBytes || int64(len(f.Data)) > MaxImageBytes {
			return nil, validation.NewError(f.Name, "file too large (max 5 MB)")
		}
		ct := http.DetectContentType(f.Data)
		if _, ok := imageExtensions[ct]; !ok {
			return nil, validation.NewError(f.Name, fmt.Sprintf("unsupported file type %s", ct))
		}
		types[i] = ct
	}

	urls := make([]string, 0, len(files))
	keys := make([]string, 0, len(files))
	for i, f := range files {
		key := storage.ObjectKey(s.folder, s.now(), imageExtensions[types[i]])
		url, err := s.store.Put(ctx, key, types[i], f.Data)
		if err != nil {
			s.logger.Error(ctx, "upload failed", "file", f.Name, "error", err)
			s.rollback(ctx, keys)
			if !errors.Is(err, common.ErrorUpstreamStorage) {
				err = fmt.Errorf("%w: %v", common.ErrorUpstreamStorage, err)
			}
			return nil, err
		}
		keys = append(keys, key)
		urls = append(urls, url)
	}

	s.logger.Info(ctx, "images uploaded", "count", len(urls))
	return urls, nil
}

func (s *UploadService) rollback(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(context.WithoutCancel(ctx), k); err != nil {
			s.logger.Warn(ctx, "rollback of uploaded object failed", "key", k, "error", err)
		}
	}
}
