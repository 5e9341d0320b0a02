package services

import (
	"context"

	"factures/internal/core"
	"factures/internal/log"
)

type CompanyService struct {
	store  CompanyStore
	logger *log.Logger
}

func NewCompanyService(store CompanyStore, logger *log.Logger) *CompanyService {
	return &CompanyService{store: store, logger: orDefaultLogger(logger, log.ComponentCompany)}
}

func (s *CompanyService) Get(ctx context.Context) (core.CompanyProfile, error) {
	p, err := s.store.GetCompanyProfile(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to read company profile", log.OpRead, err, nil)
		return core.CompanyProfile{}, err
	}
	return p, nil
}

func (s *CompanyService) Update(ctx context.Context, p core.CompanyProfile) error {
	if err := p.Validate(); err != nil {
		logFailure(ctx, s.logger, "Rejected company profile", log.OpUpdate, err, nil)
		return err
	}
	if err := s.store.UpdateCompanyProfile(ctx, p); err != nil {
		logFailure(ctx, s.logger, "Failed to update company profile", log.OpUpdate, err, nil)
		return err
	}
	return nil
}
