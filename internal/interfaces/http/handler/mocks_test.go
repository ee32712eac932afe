package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/identity"
	apptrade "github.com/storefront/backend/internal/application/trade"
)

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]appcatalog.CategoryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcatalog.CategoryResponse), args.Error(1)
}

func (m *mockCatalogService) ListBrands(ctx context.Context) ([]appcatalog.BrandResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcatalog.BrandResponse), args.Error(1)
}

func (m *mockCatalogService) ListProducts(ctx context.Context, query appcatalog.ProductListQuery) (*appcatalog.ProductPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductPage), args.Error(1)
}

func (m *mockCatalogService) GetProductBySlug(ctx context.Context, slug string) (*appcatalog.ProductResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductResponse), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, cmd apptrade.PlaceOrderCommand) (*apptrade.PlaceOrderResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.PlaceOrderResult), args.Error(1)
}

func (m *mockOrderService) ListAll(ctx context.Context) ([]apptrade.OrderResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apptrade.OrderResponse), args.Error(1)
}

func (m *mockOrderService) ListMine(ctx context.Context, userID int64) ([]apptrade.OrderResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apptrade.OrderResponse), args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req identity.LoginRequest) (*identity.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TokenResponse), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, req identity.RefreshRequest) (*identity.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TokenResponse), args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID int64) (*identity.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}
