package dashboard

import (
	"context"
	"time"

	"crm_backend/platform/db"

	"github.com/google/uuid"
)

// SellerMetrics aggregates the daily seller_metrics rows.
type SellerMetrics struct {
	LeadsGenerated int     `json:"leadsGenerated"`
	Conversions    int     `json:"conversions"`
	Revenue        float64 `json:"revenue"`
}

type metricsRepository struct {
	q db.Querier
}

// SellerMetricsSince sums metrics from the given day on. A nil ownerID covers
// every seller.
func (r *metricsRepository) SellerMetricsSince(ctx context.Context, ownerID *uuid.UUID, since time.Time) (SellerMetrics, error) {
	var m SellerMetrics
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(sum(leads_generated), 0), COALESCE(sum(conversions), 0), COALESCE(sum(revenue), 0)::float8
		FROM seller_metrics
		WHERE day >= $2::date AND ($1::uuid IS NULL OR seller_id = $1)`, ownerID, since,
	).Scan(&m.LeadsGenerated, &m.Conversions, &m.Revenue)
	return m, err
}
