package services

import (
	"context"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

// ContactService accepts messages from the public contact form. Messages are
// only logged.
type ContactService struct {
	logger logging.Logger
}

func NewContactService(logger logging.Logger) *ContactService {
	return &ContactService{logger: logger.With("module", "contact")}
}

func (s *ContactService) Submit(ctx context.Context, in validation.ContactInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	s.logger.Info(ctx, "contact message received",
		"name", in.Name, "email", in.Email, "subject", in.Subject, "message", in.Message)
	return nil
}
