package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhajavat-web/efvb/internal/catalog"
)

// PlaceItem is one requested order line.
type PlaceItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type Service struct {
	repo          Repository
	catalog       Catalog
	fulfiller     Fulfiller
	users         UserLookup
	paymentSecret string
	logger        *zap.Logger
}

func NewService(repo Repository, cat Catalog, fulfiller Fulfiller, users UserLookup, paymentSecret string, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		catalog:       cat,
		fulfiller:     fulfiller,
		users:         users,
		paymentSecret: paymentSecret,
		logger:        logger,
	}
}

// Place creates a PENDING order. Lines are priced at the current
// effective price, and stock is reserved up front for physical items.
func (s *Service) Place(ctx context.Context, userID string, customer Customer, reqItems []PlaceItem) (Order, error) {
	if len(reqItems) == 0 {
		return Order{}, ErrEmptyOrder
	}

	var (
		items  []Item
		amount float64
	)
	for _, ri := range reqItems {
		p, err := s.catalog.GetByID(ctx, ri.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return Order{}, fmt.Errorf("product %s: %w", ri.ProductID, catalog.ErrNotFound)
			}
			return Order{}, fmt.Errorf("resolve product %s: %w", ri.ProductID, err)
		}

		qty := ri.Quantity
		if catalog.IsDigital(p.Type) {
			// One license per account regardless of requested count.
			qty = 1
		} else if err := s.catalog.DecrementStock(ctx, p.ID, qty); err != nil {
			return Order{}, fmt.Errorf("reserve stock for %s: %w", p.ID, err)
		}

		items = append(items, Item{
			ProductID: p.ID,
			Title:     p.Title,
			Type:      p.Type,
			Price:     p.EffectivePrice(),
			Quantity:  qty,
		})
		amount += p.EffectivePrice() * float64(qty)
	}

	o := Order{
		ID:       NewOrderID(),
		UserID:   userID,
		Customer: customer,
		Items:    items,
		Amount:   amount,
		Status:   StatusPending,
		Timeline: []TimelineEvent{{Status: StatusPending, Note: "order placed", At: time.Now().UTC()}},
	}
	if err := s.repo.Create(ctx, &o); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// VerifyAndFulfill validates a payment-gateway callback against the
// shared secret. On a valid signature the order moves to PAID and its
// digital lines land in the buyer's library. A replayed callback for an
// already-paid order is a no-op success.
func (s *Service) VerifyAndFulfill(ctx context.Context, orderID, paymentOrderID, paymentID, signature string) (Order, error) {
	if !VerifySignature(s.paymentSecret, paymentOrderID, paymentID, signature) {
		return Order{}, ErrInvalidSignature
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusPending {
		return o, nil
	}

	o.Status = StatusPaid
	o.Timeline = append(o.Timeline, TimelineEvent{
		Status: StatusPaid,
		Note:   "payment " + paymentID + " verified",
		At:     time.Now().UTC(),
	})
	if err := s.repo.Update(ctx, &o); err != nil {
		return Order{}, fmt.Errorf("mark order paid: %w", err)
	}

	s.fulfillDigital(ctx, o)
	return o, nil
}

// fulfillDigital grants digital lines to the account behind the
// checkout email. Fulfillment problems never fail the payment; they
// are logged for support to replay.
func (s *Service) fulfillDigital(ctx context.Context, o Order) {
	var digital []Item
	for _, it := range o.Items {
		if catalog.IsDigital(it.Type) {
			digital = append(digital, it)
		}
	}
	if len(digital) == 0 {
		return
	}

	u, err := s.users.GetByEmail(ctx, o.Customer.Email)
	if err != nil {
		s.logger.Warn("no account for digital fulfillment",
			zap.String("orderId", o.ID), zap.String("email", o.Customer.Email), zap.Error(err))
		return
	}

	for _, it := range digital {
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		if err != nil {
			s.logger.Warn("digital line vanished from catalog",
				zap.String("orderId", o.ID), zap.String("productId", it.ProductID), zap.Error(err))
			continue
		}
		if err := s.fulfiller.GrantProduct(ctx, u.ID, p); err != nil {
			s.logger.Warn("failed to grant digital line",
				zap.String("orderId", o.ID), zap.String("productId", it.ProductID), zap.Error(err))
		}
	}
}

// Track returns an order by its public id.
func (s *Service) Track(ctx context.Context, orderID string) (Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// UpdateStatus records a manual status transition, optionally
// attaching a shipment AWB.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status, note, awb string) (Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	o.Status = status
	if awb != "" {
		o.AWB = awb
	}
	o.Timeline = append(o.Timeline, TimelineEvent{Status: status, Note: note, At: time.Now().UTC()})
	if err := s.repo.Update(ctx, &o); err != nil {
		return Order{}, fmt.Errorf("update order %s: %w", orderID, err)
	}
	return o, nil
}
