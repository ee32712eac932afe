package trade

import (
	"context"
	"errors"
	"time"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrOrderInFlight is returned when a request reuses the idempotency key of a
// placement that has not finished yet
var ErrOrderInFlight = shared.NewClassifiedError(shared.KindConflict, "IDEMPOTENCY_IN_FLIGHT",
	"A request with this Idempotency-Key is still being processed.")

// ProductPresenter renders products embedded in order lines
type ProductPresenter interface {
	Present(ctx context.Context, p *catalog.Product) appcatalog.ProductResponse
}

// OrderMetricsRecorder receives placement outcomes
type OrderMetricsRecorder interface {
	RecordOrderRejected(ctx context.Context, reason string)
}

// OrderService places and lists orders
type OrderService struct {
	scope          TransactionScope
	orderRepo      trade.OrderRepository
	presenter      ProductPresenter
	eventPublisher shared.EventPublisher
	replays        shared.IdempotencyStore
	replayTTL      time.Duration
	metrics        OrderMetricsRecorder
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	orderRepo trade.OrderRepository,
	presenter ProductPresenter,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:     scope,
		orderRepo: orderRepo,
		presenter: presenter,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher that receives OrderPlaced after commit
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReplayStore enables Idempotency-Key handling
func (s *OrderService) SetReplayStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.replays = store
	s.replayTTL = ttl
}

// SetMetrics sets the recorder for rejected placements
func (s *OrderService) SetMetrics(recorder OrderMetricsRecorder) {
	s.metrics = recorder
}

// PlaceOrder validates the cart, reserves stock and persists the order in one
// transaction. Lines are processed in input order and the first failing line
// aborts the whole placement with nothing persisted.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		telemetry.SpanAttrOrderLines, len(cmd.Lines),
		telemetry.SpanAttrAuthenticated, cmd.Customer.UserID != nil,
	)
	defer span.End()

	key := s.replayKey(cmd)
	fingerprint := ""
	telemetry.SetAttributes(span, telemetry.SpanAttrIdempotent, key != "")
	if key != "" {
		fingerprint = requestFingerprint(cmd)
		result, err := s.claim(ctx, key, fingerprint)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if result != nil {
			telemetry.SetAttributes(span,
				telemetry.SpanAttrReplayed, true,
				telemetry.SpanAttrOrderID, result.Order.ID)
			return result, nil
		}
	}

	order, err := s.place(ctx, cmd)
	if err != nil {
		telemetry.RecordError(span, err)
		if key != "" {
			s.releaseKey(ctx, key)
		}
		s.recordRejection(ctx, err)
		return nil, err
	}

	if key != "" {
		s.completeKey(ctx, key, replayRef(order.ID, fingerprint))
	}

	order.MarkPlaced()
	s.publishEvents(ctx, order)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrOrderTotal, order.TotalPrice.StringFixed(2))

	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total_price", order.TotalPrice.StringFixed(2)))

	return &PlaceOrderResult{Order: s.toOrderResponse(ctx, order)}, nil
}

// place runs the placement transaction
func (s *OrderService) place(ctx context.Context, cmd PlaceOrderCommand) (*trade.Order, error) {
	if len(cmd.Lines) == 0 {
		return nil, &trade.EmptyCartError{}
	}

	order := trade.NewOrder(cmd.Customer)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders := repos.OrderRepo()
		ledger := repos.StockLedger()

		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		for _, line := range cmd.Lines {
			if line.Quantity <= 0 {
				return &trade.InvalidQuantityError{ProductID: line.ProductID, Quantity: line.Quantity}
			}

			product, err := ledger.Reserve(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}

			item, err := order.AddItem(product, line.Quantity)
			if err != nil {
				return err
			}
			if err := orders.AddItem(ctx, item); err != nil {
				return err
			}
		}

		return orders.UpdateTotal(ctx, order.ID, order.TotalPrice)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// claim takes the idempotency key. A non-nil result means the request is a
// replay and must not place a new order.
func (s *OrderService) claim(ctx context.Context, key, fingerprint string) (*PlaceOrderResult, error) {
	state, ref, err := s.replays.Claim(ctx, key, s.replayTTL)
	if err != nil {
		return nil, shared.NewPersistenceError("claim idempotency key", err)
	}

	switch state {
	case shared.ReplayInFlight:
		return nil, ErrOrderInFlight
	case shared.ReplayCompleted:
		orderID, stored, err := parseReplayRef(ref)
		if err != nil {
			return nil, err
		}
		if stored != fingerprint {
			s.logger.Info("Idempotency key reused with a different request", zap.String("key", key))
			return nil, ErrIdempotencyKeyReused
		}
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Replayed order placement", zap.String("key", key), zap.Int64("order_id", orderID))
		return &PlaceOrderResult{Order: s.toOrderResponse(ctx, order), Replayed: true}, nil
	}
	return nil, nil
}

func (s *OrderService) releaseKey(ctx context.Context, key string) {
	ctx, cancel := cleanupContext(ctx)
	defer cancel()
	if err := s.replays.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *OrderService) completeKey(ctx context.Context, key, ref string) {
	ctx, cancel := cleanupContext(ctx)
	defer cancel()
	if err := s.replays.Complete(ctx, key, ref, s.replayTTL); err != nil {
		s.logger.Warn("Failed to complete idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *OrderService) recordRejection(ctx context.Context, err error) {
	var pe trade.PlacementError
	reason := telemetry.RejectReasonInternal
	if errors.As(err, &pe) {
		reason = pe.Code()
	}
	if s.metrics != nil {
		s.metrics.RecordOrderRejected(ctx, reason)
	}
	if reason == telemetry.RejectReasonInternal {
		s.logger.Error("Order placement failed", zap.Error(err))
		return
	}
	s.logger.Info("Order rejected", zap.String("reason", reason), zap.Error(err))
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	defer order.ClearDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	// The order is already committed; a failing subscriber must not fail the request.
	if err := s.eventPublisher.Publish(ctx, order.GetDomainEvents()...); err != nil {
		s.logger.Error("Failed to publish order events", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

// ListAll returns every order, newest first
func (s *OrderService) ListAll(ctx context.Context) ([]OrderResponse, error) {
	orders, _, err := s.orderRepo.FindAll(ctx, newestFirst())
	if err != nil {
		return nil, err
	}
	return s.toOrderResponses(ctx, orders), nil
}

// ListMine returns the orders owned by userID, newest first
func (s *OrderService) ListMine(ctx context.Context, userID int64) ([]OrderResponse, error) {
	orders, _, err := s.orderRepo.FindByUser(ctx, userID, newestFirst())
	if err != nil {
		return nil, err
	}
	return s.toOrderResponses(ctx, orders), nil
}

func newestFirst() shared.Filter {
	return shared.Filter{OrderBy: "created_at", OrderDir: "desc"}
}

func (s *OrderService) toOrderResponses(ctx context.Context, orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = s.toOrderResponse(ctx, &orders[i])
	}
	return out
}

func (s *OrderService) toOrderResponse(ctx context.Context, o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		}
		if item.Product != nil && s.presenter != nil {
			p := s.presenter.Present(ctx, item.Product)
			items[i].Product = &p
		}
	}
	return OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status.String(),
		TotalPrice:    o.TotalPrice.StringFixed(2),
		CreatedAt:     o.CreatedAt,
		Items:         items,
	}
}
