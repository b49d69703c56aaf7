package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogsvc "github.com/corralonsoft/corralon-backend/internal/catalog"
	ordersvc "github.com/corralonsoft/corralon-backend/internal/orders"
	pricingsvc "github.com/corralonsoft/corralon-backend/internal/pricing"
	reservationsvc "github.com/corralonsoft/corralon-backend/internal/reservations"
	stocksvc "github.com/corralonsoft/corralon-backend/internal/stock"
	pkgAuth "github.com/corralonsoft/corralon-backend/pkg/auth"
	"github.com/corralonsoft/corralon-backend/pkg/config"
	"github.com/corralonsoft/corralon-backend/pkg/db/models"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
	"github.com/corralonsoft/corralon-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateModel(ctx context.Context, input catalogsvc.CreateModelInput) (*models.CatalogModel, error) {
	return &models.CatalogModel{}, nil
}

func (stubCatalogService) GetModel(ctx context.Context, id uuid.UUID) (*models.CatalogModel, error) {
	return &models.CatalogModel{ID: id}, nil
}

func (stubCatalogService) ListModels(ctx context.Context, product *enums.ProductCategory) ([]models.CatalogModel, error) {
	return nil, nil
}

func (stubCatalogService) UpdateModel(ctx context.Context, input catalogsvc.UpdateModelInput) (*models.CatalogModel, error) {
	return &models.CatalogModel{}, nil
}

func (stubCatalogService) DeleteModel(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubStockService struct{}

func (stubStockService) Create(ctx context.Context, input stocksvc.CreateStockInput) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}

func (stubStockService) Get(ctx context.Context, stockID uuid.UUID) (*stocksvc.Detail, error) {
	return &stocksvc.Detail{}, nil
}

func (stubStockService) List(ctx context.Context) ([]models.StockRecord, error) {
	return nil, nil
}

func (stubStockService) UpdateMetadata(ctx context.Context, input stocksvc.UpdateMetadataInput) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}

func (stubStockService) RecordMovement(ctx context.Context, input stocksvc.MovementInput) (*stocksvc.MutationResult, error) {
	return &stocksvc.MutationResult{}, nil
}

func (stubStockService) AddStock(ctx context.Context, input stocksvc.MovementInput) (*stocksvc.MutationResult, error) {
	return &stocksvc.MutationResult{}, nil
}

func (stubStockService) SubtractStock(ctx context.Context, input stocksvc.MovementInput) (*stocksvc.MutationResult, error) {
	return &stocksvc.MutationResult{}, nil
}

func (stubStockService) OverwriteQuantity(ctx context.Context, input stocksvc.OverwriteInput) (*stocksvc.MutationResult, error) {
	return &stocksvc.MutationResult{}, nil
}

func (stubStockService) Reconcile(ctx context.Context, stockID uuid.UUID) (*stocksvc.ReconcileResult, error) {
	return &stocksvc.ReconcileResult{StockID: stockID}, nil
}

func (stubStockService) ReconcileAll(ctx context.Context) (*stocksvc.ReconcileReport, error) {
	return &stocksvc.ReconcileReport{}, nil
}

type stubReservationService struct{}

func (stubReservationService) ReservedQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubReservationService) PendingQuantity(ctx context.Context, stockID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubReservationService) Availability(ctx context.Context, stockID uuid.UUID) (*reservationsvc.Breakdown, error) {
	return &reservationsvc.Breakdown{StockID: stockID}, nil
}

func (stubReservationService) HasActiveOrders(ctx context.Context, modelID uuid.UUID) (bool, error) {
	return false, nil
}

func (stubReservationService) Commitments(ctx context.Context, tx *gorm.DB, stockID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

type stubPricingService struct{}

func (stubPricingService) UpsertTier(ctx context.Context, modelID uuid.UUID, spec pricingsvc.TierSpec) (*models.PriceTier, error) {
	return &models.PriceTier{}, nil
}

func (stubPricingService) ListTiers(ctx context.Context, modelID uuid.UUID) ([]models.PriceTier, error) {
	return nil, nil
}

func (stubPricingService) Preview(ctx context.Context, input pricingsvc.BulkInput) (*pricingsvc.PreviewResult, error) {
	return &pricingsvc.PreviewResult{}, nil
}

func (stubPricingService) Commit(ctx context.Context, input pricingsvc.BulkInput) (*pricingsvc.CommitResult, error) {
	return &pricingsvc.CommitResult{}, nil
}

type stubOrderService struct{}

func (stubOrderService) CreateOrder(ctx context.Context, input ordersvc.CreateOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) ChangeStatus(ctx context.Context, input ordersvc.ChangeStatusInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}

func (stubOrderService) ListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*ordersvc.OrderPage, error) {
	return &ordersvc.OrderPage{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "corralon-test",
			ExpirationMinutes: 5,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		stubCatalogService{},
		stubStockService{},
		stubReservationService{},
		stubPricingService{},
		stubOrderService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      uuid.New(),
		DisplayName: "Marta Quiroga",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAPIGroupRejectsTamperedJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg)+"x")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token got %d", resp.Code)
	}
}
