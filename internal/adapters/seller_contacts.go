package adapters

import (
	"context"

	"crm_backend/internal/notification"
	sellersrepo "crm_backend/internal/sellers/repository"

	"github.com/google/uuid"
)

// SellerContacts resolves handoff recipients from seller profiles.
type SellerContacts struct {
	repo *sellersrepo.Repository
}

func NewSellerContacts(repo *sellersrepo.Repository) *SellerContacts {
	return &SellerContacts{repo: repo}
}

func (a *SellerContacts) SellerContact(ctx context.Context, sellerID uuid.UUID) (notification.SellerContact, error) {
	p, err := a.repo.GetByID(ctx, sellerID)
	if err != nil {
		return notification.SellerContact{}, err
	}
	return notification.SellerContact{
		Name:     p.Name,
		Email:    p.Email,
		WhatsApp: deref(p.WhatsAppNumber),
	}, nil
}

var _ notification.SellerContacts = (*SellerContacts)(nil)
