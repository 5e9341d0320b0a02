package services

import (
	"context"
	"strings"

	"factures/internal/core"
	"factures/internal/log"
)

type ClientService struct {
	store  ClientStore
	cache  Purger
	logger *log.Logger
}

func NewClientService(store ClientStore, cache Purger, logger *log.Logger) *ClientService {
	if cache == nil {
		cache = noopPurger{}
	}
	return &ClientService{store: store, cache: cache, logger: orDefaultLogger(logger, log.ComponentClient)}
}

func (s *ClientService) ListClients(ctx context.Context) ([]core.ClientSummary, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to list clients", log.OpList, err, nil)
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int64) (core.ClientDetail, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to get client", log.OpRead, err, log.NewFields().WithClient(id))
		return core.ClientDetail{}, err
	}
	return c, nil
}

// SearchClients matches text against name, email and SIRET. Blank text lists everyone.
func (s *ClientService) SearchClients(ctx context.Context, text string) ([]core.Client, error) {
	clients, err := s.store.SearchClients(ctx, strings.TrimSpace(text))
	if err != nil {
		logFailure(ctx, s.logger, "Failed to search clients", log.OpSearch, err, nil)
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) CreateClient(ctx context.Context, in core.ClientInput) (int64, error) {
	if err := in.Validate(); err != nil {
		logFailure(ctx, s.logger, "Rejected client", log.OpCreate, err, nil)
		return 0, err
	}
	id, err := s.store.CreateClient(ctx, in)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to create client", log.OpCreate, err, nil)
		return 0, err
	}
	s.cache.Purge()
	return id, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id int64, in core.ClientInput) (bool, error) {
	if err := in.Validate(); err != nil {
		logFailure(ctx, s.logger, "Rejected client update", log.OpUpdate, err, log.NewFields().WithClient(id))
		return false, err
	}
	changed, err := s.store.UpdateClient(ctx, id, in)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to update client", log.OpUpdate, err, log.NewFields().WithClient(id))
		return false, err
	}
	if changed {
		s.cache.Purge()
	}
	return changed, nil
}

// DeleteClient fails with core.ErrClientHasInvoices while the client owns invoices.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteClient(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to delete client", log.OpDelete, err, log.NewFields().WithClient(id))
		return false, err
	}
	if deleted {
		s.cache.Purge()
	}
	return deleted, nil
}

func (s *ClientService) ClientCount(ctx context.Context) (int, error) {
	n, err := s.store.ClientCount(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to count clients", log.OpRead, err, nil)
		return 0, err
	}
	return n, nil
}
