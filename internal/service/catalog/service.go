package catalog

import (
	"github.com/beatfarda/studio-api/internal/model"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
)

// Service serves the immutable studio offering catalog.
type Service struct {
	services []model.Service
	byID     map[string]*model.Service
}

func NewService(services []model.Service) *Service {
	s := &Service{
		services: services,
		byID:     make(map[string]*model.Service, len(services)),
	}
	for i := range s.services {
		s.byID[s.services[i].ID] = &s.services[i]
	}
	return s
}

// List returns the full catalog in configuration order.
func (s *Service) List() []model.Service {
	return s.services
}

// Get resolves a service id.
func (s *Service) Get(id string) (*model.Service, error) {
	svc, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewInvalidService(id)
	}
	return svc, nil
}

// GetBookable resolves a service id, rejecting quote-based offerings that
// cannot be slotted into the calendar.
func (s *Service) GetBookable(id string) (*model.Service, error) {
	svc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !svc.Bookable() {
		return nil, apperrors.NewInvalidService(id)
	}
	return svc, nil
}
