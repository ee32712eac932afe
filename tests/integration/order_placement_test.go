package integration

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func newOrderService(tdb *TestDB) *apptrade.OrderService {
	products := appcatalog.NewProductService(
		persistence.NewGormProductRepository(tdb.DB),
		persistence.NewGormCategoryRepository(tdb.DB),
		persistence.NewGormBrandRepository(tdb.DB),
		zap.NewNop(),
	)
	return apptrade.NewOrderService(
		persistence.NewGormOrderTransactionScope(tdb.DB),
		persistence.NewGormOrderRepository(tdb.DB),
		products,
		zap.NewNop(),
	)
}

func placeCmd(lines ...apptrade.OrderLineInput) apptrade.PlaceOrderCommand {
	return apptrade.PlaceOrderCommand{
		Lines:    lines,
		Customer: trade.Customer{Name: "Ada", Email: "ada@example.com"},
	}
}

func line(productID int64, qty int) apptrade.OrderLineInput {
	return apptrade.OrderLineInput{ProductID: productID, Quantity: qty}
}

func TestOrderPlacement_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock and snapshots prices", func(t *testing.T) {
		tdb := NewTestDB(t)
		seed := tdb.SeedCatalog(ctx)
		kettle := tdb.CreateProduct(ctx, seed, "Kettle", "49.90", 5)
		filter := tdb.CreateProduct(ctx, seed, "Filters", "4.99", 100)
		svc := newOrderService(tdb)

		result, err := svc.PlaceOrder(ctx, placeCmd(line(kettle.ID, 2), line(filter.ID, 3)))
		require.NoError(t, err)

		assert.Equal(t, "114.77", result.Order.TotalPrice)
		assert.Equal(t, string(trade.OrderStatusPending), result.Order.Status)
		require.Len(t, result.Order.Items, 2)
		assert.Equal(t, "49.90", result.Order.Items[0].UnitPrice)
		assert.Equal(t, 3, tdb.StockOf(kettle.ID))
		assert.Equal(t, 97, tdb.StockOf(filter.ID))

		// later price changes leave the order untouched
		require.NoError(t, kettle.ChangePrice(kettle.Price.Add(kettle.Price)))
		require.NoError(t, persistence.NewGormProductRepository(tdb.DB).Save(ctx, kettle))

		stored, err := persistence.NewGormOrderRepository(tdb.DB).FindByID(ctx, result.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, "114.77", stored.TotalPrice.StringFixed(2))
		assert.Equal(t, "49.90", stored.Items[0].UnitPrice.StringFixed(2))
	})

	t.Run("a failing line rolls back earlier lines", func(t *testing.T) {
		tdb := NewTestDB(t)
		seed := tdb.SeedCatalog(ctx)
		plenty := tdb.CreateProduct(ctx, seed, "Plenty", "1.00", 10)
		scarce := tdb.CreateProduct(ctx, seed, "Scarce", "1.00", 1)
		svc := newOrderService(tdb)

		_, err := svc.PlaceOrder(ctx, placeCmd(line(plenty.ID, 4), line(scarce.ID, 2)))
		require.Error(t, err)

		var stockErr *trade.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, scarce.ID, stockErr.ProductID)
		assert.Equal(t, 1, stockErr.Available)

		assert.Equal(t, 10, tdb.StockOf(plenty.ID))
		assert.Equal(t, 1, tdb.StockOf(scarce.ID))
		assert.Zero(t, tdb.Count("orders"))
		assert.Zero(t, tdb.Count("order_items"))
	})

	t.Run("unknown and inactive products", func(t *testing.T) {
		tdb := NewTestDB(t)
		seed := tdb.SeedCatalog(ctx)
		hidden := tdb.CreateProduct(ctx, seed, "Hidden", "2.00", 10)
		hidden.Deactivate()
		require.NoError(t, persistence.NewGormProductRepository(tdb.DB).Save(ctx, hidden))
		svc := newOrderService(tdb)

		var notFound *trade.ProductNotFoundError
		_, err := svc.PlaceOrder(ctx, placeCmd(line(999999, 1)))
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(999999), notFound.ProductID)

		_, err = svc.PlaceOrder(ctx, placeCmd(line(hidden.ID, 1)))
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, 10, tdb.StockOf(hidden.ID))
	})

	t.Run("invalid quantity and empty cart", func(t *testing.T) {
		tdb := NewTestDB(t)
		seed := tdb.SeedCatalog(ctx)
		p := tdb.CreateProduct(ctx, seed, "Thing", "2.00", 10)
		svc := newOrderService(tdb)

		_, err := svc.PlaceOrder(ctx, placeCmd(line(p.ID, 0)))
		var qtyErr *trade.InvalidQuantityError
		require.ErrorAs(t, err, &qtyErr)

		_, err = svc.PlaceOrder(ctx, placeCmd())
		var emptyErr *trade.EmptyCartError
		require.ErrorAs(t, err, &emptyErr)

		assert.Zero(t, tdb.Count("orders"))
	})
}

func TestOrderPlacement_NoOversell(t *testing.T) {
	ctx := context.Background()
	tdb := NewTestDB(t)
	seed := tdb.SeedCatalog(ctx)
	const stock = 10
	const buyers = 40
	p := tdb.CreateProduct(ctx, seed, "Limited Edition", "99.00", stock)
	svc := newOrderService(tdb)

	var placed, rejected atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < buyers; i++ {
		g.Go(func() error {
			_, err := svc.PlaceOrder(gctx, placeCmd(line(p.ID, 1)))
			var stockErr *trade.InsufficientStockError
			switch {
			case err == nil:
				placed.Add(1)
			case errors.As(err, &stockErr):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(stock), placed.Load())
	assert.Equal(t, int32(buyers-stock), rejected.Load())
	assert.Equal(t, 0, tdb.StockOf(p.ID))
	assert.Equal(t, int64(stock), tdb.Count("orders"))
	assert.Equal(t, int64(stock), tdb.Count("order_items"))
}

func TestOrderPlacement_Idempotency(t *testing.T) {
	ctx := context.Background()
	tdb := NewTestDB(t)
	seed := tdb.SeedCatalog(ctx)
	p := tdb.CreateProduct(ctx, seed, "Mug", "12.00", 5)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	svc := newOrderService(tdb)
	svc.SetReplayStore(store, time.Hour)

	cmd := placeCmd(line(p.ID, 2))
	cmd.IdempotencyKey = "retry-1"

	first, err := svc.PlaceOrder(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.PlaceOrder(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	assert.Equal(t, 3, tdb.StockOf(p.ID))
	assert.Equal(t, int64(1), tdb.Count("orders"))

	t.Run("a failed placement frees the key", func(t *testing.T) {
		bad := placeCmd(line(p.ID, 50))
		bad.IdempotencyKey = "retry-2"
		_, err := svc.PlaceOrder(ctx, bad)
		require.Error(t, err)

		good := placeCmd(line(p.ID, 1))
		good.IdempotencyKey = "retry-2"
		result, err := svc.PlaceOrder(ctx, good)
		require.NoError(t, err)
		assert.False(t, result.Replayed)
	})

	t.Run("the same key with a different cart is rejected", func(t *testing.T) {
		changed := placeCmd(line(p.ID, 1))
		changed.IdempotencyKey = "retry-1"

		_, err := svc.PlaceOrder(ctx, changed)
		assert.ErrorIs(t, err, apptrade.ErrIdempotencyKeyReused)
	})

	t.Run("another guest with the same key gets its own order", func(t *testing.T) {
		other := placeCmd(line(p.ID, 1))
		other.Customer = trade.Customer{Name: "Bob", Email: "bob@example.com"}
		other.IdempotencyKey = "retry-1"

		result, err := svc.PlaceOrder(ctx, other)
		require.NoError(t, err)
		assert.False(t, result.Replayed)
		assert.NotEqual(t, first.Order.ID, result.Order.ID)
		assert.Equal(t, "Bob", result.Order.CustomerName)
	})
}

func TestProductDelete_ReferencedByOrder(t *testing.T) {
	ctx := context.Background()
	tdb := NewTestDB(t)
	seed := tdb.SeedCatalog(ctx)
	ordered := tdb.CreateProduct(ctx, seed, "Ordered", "5.00", 5)
	unused := tdb.CreateProduct(ctx, seed, "Unused", "5.00", 5)

	_, err := newOrderService(tdb).PlaceOrder(ctx, placeCmd(line(ordered.ID, 1)))
	require.NoError(t, err)

	repo := persistence.NewGormProductRepository(tdb.DB)
	err = repo.Delete(ctx, ordered.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrProductInUse)

	require.NoError(t, repo.Delete(ctx, unused.ID))
	exists, err := repo.ExistsBySlug(ctx, unused.Slug)
	require.NoError(t, err)
	assert.False(t, exists)
}
