package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	campaigndomain "crm_backend/internal/campaigns/domain"
	leadsdomain "crm_backend/internal/leads/domain"
	"crm_backend/internal/shared/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownerSpy struct {
	owners []*uuid.UUID
	err    error
}

func (s *ownerSpy) seen(owner *uuid.UUID) { s.owners = append(s.owners, owner) }

type fakeLeads struct{ ownerSpy }

func (f *fakeLeads) CountByStatus(_ context.Context, owner *uuid.UUID) (map[leadsdomain.LeadStatus]int, error) {
	f.seen(owner)
	return map[leadsdomain.LeadStatus]int{
		leadsdomain.StatusNew:       3,
		leadsdomain.StatusQualified: 2,
	}, f.err
}

type fakeQualified struct{ ownerSpy }

func (f *fakeQualified) CountQualified(_ context.Context, owner *uuid.UUID) (int, error) {
	f.seen(owner)
	return 2, f.err
}

type fakeCampaigns struct{ ownerSpy }

func (f *fakeCampaigns) Totals(_ context.Context, owner *uuid.UUID) (campaigndomain.Totals, error) {
	f.seen(owner)
	return campaigndomain.Totals{Campaigns: 1, Sent: 10, Delivered: 8, Read: 4}, f.err
}

type fakeMetrics struct {
	ownerSpy
	since time.Time
}

func (f *fakeMetrics) SellerMetricsSince(_ context.Context, owner *uuid.UUID, since time.Time) (SellerMetrics, error) {
	f.seen(owner)
	f.since = since
	return SellerMetrics{LeadsGenerated: 5, Conversions: 1, Revenue: 1500}, f.err
}

func TestSummaryAggregatesCounters(t *testing.T) {
	leads, qual, camps, mets := &fakeLeads{}, &fakeQualified{}, &fakeCampaigns{}, &fakeMetrics{}
	svc := NewService(leads, qual, camps, mets)
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seller := uuid.New()
	sum, err := svc.Summary(context.Background(), access.Actor{ProfileID: seller, Roles: []string{"seller"}})
	require.NoError(t, err)

	assert.Equal(t, 5, sum.TotalLeads)
	assert.Equal(t, 2, sum.Qualified)
	assert.Equal(t, 10, sum.Campaigns.Sent)
	assert.Equal(t, 1500.0, sum.Metrics.Revenue)
	assert.Equal(t, now.Add(-metricsWindow), mets.since)
	for _, spy := range []*ownerSpy{&leads.ownerSpy, &qual.ownerSpy, &camps.ownerSpy, &mets.ownerSpy} {
		require.Len(t, spy.owners, 1)
		require.NotNil(t, spy.owners[0])
		assert.Equal(t, seller, *spy.owners[0])
	}
}

func TestSummaryAdminIsUnscoped(t *testing.T) {
	leads := &fakeLeads{}
	svc := NewService(leads, &fakeQualified{}, &fakeCampaigns{}, &fakeMetrics{})

	_, err := svc.Summary(context.Background(), access.Actor{ProfileID: uuid.New(), Roles: []string{access.RoleAdmin}})
	require.NoError(t, err)
	assert.Nil(t, leads.owners[0])
}

func TestSummaryPropagatesFailure(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeLeads{}, &fakeQualified{ownerSpy{err: boom}}, &fakeCampaigns{}, &fakeMetrics{})

	_, err := svc.Summary(context.Background(), access.Actor{ProfileID: uuid.New()})
	assert.ErrorIs(t, err, boom)
}
