package timeline

import (
	"context"
	"log/slog"
)

// RepositoryPort abstracts the four source reads.
type RepositoryPort interface {
	ResolveDispatch(ctx context.Context, key string) (*Header, error)
	DamageEvents(ctx context.Context, barcodes []string) ([]Event, error)
	TransferEvents(ctx context.Context, barcodes []string) ([]Event, error)
	LedgerEvents(ctx context.Context, barcodes []string) ([]Event, error)
	ActiveStock(ctx context.Context, barcode string) (int64, error)
}

// Service assembles timelines. Reads only; it never mutates anything.
type Service struct {
	repo         RepositoryPort
	cache        *Cache
	logger       *slog.Logger
	defaultLimit int
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger, defaultLimit int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &Service{repo: repo, cache: cache, logger: logger, defaultLimit: defaultLimit}
}

// Get resolves a dispatch by id, order_ref or awb and assembles its timeline
// capped at limit events, newest first.
func (s *Service) Get(ctx context.Context, key string, limit int) (*Timeline, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	header, err := s.repo.ResolveDispatch(ctx, key)
	if err != nil {
		return nil, err
	}

	damageEvents, err := s.repo.DamageEvents(ctx, header.Barcodes)
	if err != nil {
		return nil, err
	}
	transferEvents, err := s.repo.TransferEvents(ctx, header.Barcodes)
	if err != nil {
		return nil, err
	}
	ledgerEvents, err := s.repo.LedgerEvents(ctx, header.Barcodes)
	if err != nil {
		return nil, err
	}

	events := Assemble(*header, damageEvents, transferEvents, ledgerEvents, limit)
	summary := Summarize(events)

	stock, err := s.cache.CurrentStock(ctx, header.Barcode, func(ctx context.Context) (int64, error) {
		return s.repo.ActiveStock(ctx, header.Barcode)
	})
	if err != nil {
		// the timeline is still useful without the stock figure
		s.logger.Warn("current stock lookup failed",
			slog.String("barcode", header.Barcode), slog.Any("error", err))
	} else {
		summary.CurrentStock = stock
	}

	return &Timeline{Dispatch: *header, Events: events, Summary: summary}, nil
}
