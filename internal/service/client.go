package service

import (
	"context"
	"strings"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"

	"github.com/google/uuid"
)

type clientService struct {
	clientRepo repository.ClientRepository
	rentalRepo repository.RentalRepository
}

func NewClientService(clientRepo repository.ClientRepository, rentalRepo repository.RentalRepository) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		rentalRepo: rentalRepo,
	}
}

func validateClient(c *domain.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Mobile = strings.TrimSpace(c.Mobile)
	if c.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if c.Mobile == "" {
		return &domain.ValidationError{Field: "mobile", Reason: "is required"}
	}
	return nil
}

func (s *clientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, storeErr("clients.list", err)
	}
	return clients, nil
}

func (s *clientService) CreateClient(ctx context.Context, client *domain.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	client.ID = uuid.NewString()
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return storeErr("clients.create", err)
	}
	return nil
}

func (s *clientService) UpdateClient(ctx context.Context, client *domain.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return storeErr("clients.update", err)
	}
	return nil
}

// DeleteClient refuses while any rental, completed or not, still references the client.
func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	n, err := s.rentalRepo.CountByClient(ctx, id)
	if err != nil {
		return storeErr("rentals.count_by_client", err)
	}
	if n > 0 {
		logger.Warn("Refusing to delete client with rentals", "client_id", id, "rentals", n)
		return domain.ErrClientHasRentals
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return storeErr("clients.delete", err)
	}
	return nil
}
