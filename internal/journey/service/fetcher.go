// Package service runs the Prospect Journey: it loads the source tables,
// derives the board and keeps the current view state fresh.
package service

import (
	"context"

	"clinic_intake_backend/internal/journey/domain"

	"golang.org/x/sync/errgroup"
)

// Source is the read side the fetcher needs.
type Source interface {
	ListOpenLeads(ctx context.Context) ([]domain.Lead, error)
	ListOpenCareRequests(ctx context.Context) ([]domain.CareRequest, error)
	ListPendingEpisodes(ctx context.Context) ([]domain.PendingEpisode, error)
	ListIntakeForms(ctx context.Context) ([]domain.IntakeForm, error)
	ListFinishedIntakes(ctx context.Context) ([]domain.Intake, error)
}

// Fetcher loads one snapshot. The five queries run concurrently and the
// first failure cancels the rest; a partial snapshot is never returned.
type Fetcher struct {
	src Source
}

// NewFetcher creates a fetcher over src.
func NewFetcher(src Source) *Fetcher {
	return &Fetcher{src: src}
}

// Fetch loads every source table.
func (f *Fetcher) Fetch(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Leads, err = f.src.ListOpenLeads(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.CareRequests, err = f.src.ListOpenCareRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.PendingEpisodes, err = f.src.ListPendingEpisodes(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.IntakeForms, err = f.src.ListIntakeForms(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Intakes, err = f.src.ListFinishedIntakes(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
