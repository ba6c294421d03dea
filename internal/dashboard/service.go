package dashboard

import (
	"context"
	"time"

	campaigndomain "crm_backend/internal/campaigns/domain"
	leadsdomain "crm_backend/internal/leads/domain"
	"crm_backend/internal/shared/access"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const metricsWindow = 30 * 24 * time.Hour

type LeadCounter interface {
	CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[leadsdomain.LeadStatus]int, error)
}

type QualifiedCounter interface {
	CountQualified(ctx context.Context, ownerID *uuid.UUID) (int, error)
}

type CampaignTotals interface {
	Totals(ctx context.Context, ownerID *uuid.UUID) (campaigndomain.Totals, error)
}

type MetricsReader interface {
	SellerMetricsSince(ctx context.Context, ownerID *uuid.UUID, since time.Time) (SellerMetrics, error)
}

// Summary is the landing page payload.
type Summary struct {
	TotalLeads    int
	LeadsByStatus map[leadsdomain.LeadStatus]int
	Qualified     int
	Campaigns     campaigndomain.Totals
	Metrics       SellerMetrics
}

type Service struct {
	leads     LeadCounter
	qualified QualifiedCounter
	campaigns CampaignTotals
	metrics   MetricsReader
	now       func() time.Time
}

func NewService(leads LeadCounter, qualified QualifiedCounter, campaigns CampaignTotals, metrics MetricsReader) *Service {
	return &Service{leads: leads, qualified: qualified, campaigns: campaigns, metrics: metrics, now: time.Now}
}

// Summary fetches every counter concurrently, scoped to the actor's leads.
func (s *Service) Summary(ctx context.Context, actor access.Actor) (Summary, error) {
	owner := actor.OwnerFilter()
	var out Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.leads.CountByStatus(gctx, owner)
		if err != nil {
			return err
		}
		out.LeadsByStatus = counts
		for _, n := range counts {
			out.TotalLeads += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.qualified.CountQualified(gctx, owner)
		out.Qualified = n
		return err
	})
	g.Go(func() error {
		t, err := s.campaigns.Totals(gctx, owner)
		out.Campaigns = t
		return err
	})
	g.Go(func() error {
		m, err := s.metrics.SellerMetricsSince(gctx, owner, s.now().Add(-metricsWindow))
		out.Metrics = m
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
