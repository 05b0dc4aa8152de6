package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tugrulb/escrowmarket/internal/domain"
	"github.com/tugrulb/escrowmarket/internal/escrow"
	escrowmock "github.com/tugrulb/escrowmarket/internal/escrow/mock"
	"github.com/tugrulb/escrowmarket/internal/event"
	"github.com/tugrulb/escrowmarket/internal/reconcile"
	"github.com/tugrulb/escrowmarket/internal/repository"
	"github.com/tugrulb/escrowmarket/internal/service"
	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
	"github.com/tugrulb/escrowmarket/pkg/httputil"
	pkgkafka "github.com/tugrulb/escrowmarket/pkg/kafka"
	"github.com/tugrulb/escrowmarket/pkg/middleware"
)

const (
	testOrderID   = "550e8400-e29b-41d4-a716-446655440001"
	testProductID = "550e8400-e29b-41d4-a716-446655440020"
	testBuyerID   = "550e8400-e29b-41d4-a716-446655440030"
	testSellerID  = "550e8400-e29b-41d4-a716-446655440040"
)

// --- Mock OrderRepository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CreateWithReservation(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, expectedStatus string, update repository.StatusUpdate) error {
	args := m.Called(ctx, id, expectedStatus, update)
	return args.Error(0)
}

func (m *mockOrderRepository) AttachEscrow(ctx context.Context, id, escrowAddress, txSignature string) error {
	args := m.Called(ctx, id, escrowAddress, txSignature)
	return args.Error(0)
}

// --- Test Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:1"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testTracker(t *testing.T) *reconcile.Tracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return reconcile.NewTracker(client)
}

func testOrderService(t *testing.T, repo *mockOrderRepository) (*service.OrderService, *escrowmock.Client) {
	t.Helper()
	ledger := escrowmock.New()
	svc := service.NewOrderService(repo, ledger, testTracker(t), testEventProducer(), 250, testLogger())
	return svc, ledger
}

// setupOrderRouter creates a chi router matching the production route layout,
// with a fixed authenticated identity.
func setupOrderRouter(t *testing.T, repo *mockOrderRepository, userID string) http.Handler {
	t.Helper()
	svc, _ := testOrderService(t, repo)
	return setupOrderRouterWithService(svc, userID)
}

func setupOrderRouterWithService(svc *service.OrderService, userID string) http.Handler {
	handler := NewOrderHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", handler.CreateOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/reconcile/pending", handler.PendingEscrows)
		r.Get("/{id}", handler.GetOrder)
		r.Put("/{id}/status", handler.UpdateOrderStatus)
		r.Post("/{id}/escrow/retry", handler.RetryEscrow)
	})
	return withIdentity(r, userID)
}

// withIdentity injects a fixed authenticated identity, standing in for the
// Auth middleware used in production.
func withIdentity(next http.Handler, userID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithIdentity(r.Context(), middleware.Identity{
			UserID:        userID,
			WalletAddress: "Wa11et" + userID[len(userID)-6:],
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unavailableEscrowError() *escrow.Error {
	return &escrow.Error{Kind: escrow.KindUnavailable, Message: "gateway unreachable"}
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// sampleOrder returns a realistic order for use in test expectations.
func sampleOrder(status string) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:           testOrderID,
		ProductID:    testProductID,
		BuyerID:      testBuyerID,
		BuyerWallet:  "BuyerWa11et1111111111111111111111111111111",
		SellerID:     testSellerID,
		SellerWallet: "Se11erWa11et111111111111111111111111111111",
		Quantity:     2,
		UnitPrice:    5_000_000,
		TotalAmount:  10_000_000,
		Currency:     domain.CurrencySOL,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func jsonRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ============================================================================
// POST /api/v1/orders - CreateOrder
// ============================================================================

func TestCreateOrder_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("CreateWithReservation", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			order.SellerID = testSellerID
			order.SellerWallet = "Se11erWa11et111111111111111111111111111111"
			order.UnitPrice = 5_000_000
			order.TotalAmount = 10_000_000
			order.Currency = domain.CurrencySOL
			order.Status = domain.OrderStatusCreated
		}).Return(nil)
	repo.On("AttachEscrow", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	body, _ := json.Marshal(CreateOrderRequest{ProductID: testProductID, Quantity: 2})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["escrow_pending"])

	order, ok := data["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, testBuyerID, order["buyer_id"])
	assert.Equal(t, "CREATED", order["status"])
	assert.NotEmpty(t, order["escrow_address"])

	repo.AssertExpectations(t)
}

func TestCreateOrder_CarriesShippingAddress(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	const address = "221B Baker Street, London NW1 6XE"
	repo.On("CreateWithReservation", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ShippingAddress != nil && *o.ShippingAddress == address
	})).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			order.SellerID = testSellerID
			order.SellerWallet = "Se11erWa11et111111111111111111111111111111"
			order.UnitPrice = 5_000_000
			order.TotalAmount = 5_000_000
			order.Currency = domain.CurrencySOL
			order.Status = domain.OrderStatusCreated
		}).Return(nil)
	repo.On("AttachEscrow", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	body, _ := json.Marshal(CreateOrderRequest{ProductID: testProductID, Quantity: 1, ShippingAddress: address})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	order, ok := data["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, address, order["shipping_address"])

	repo.AssertExpectations(t)
}

func TestCreateOrder_ShippingAddressTooLong(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	body, _ := json.Marshal(CreateOrderRequest{
		ProductID:       testProductID,
		Quantity:        1,
		ShippingAddress: strings.Repeat("a", 201),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	repo.AssertNotCalled(t, "CreateWithReservation", mock.Anything, mock.Anything)
}

func TestCreateOrder_EscrowFailureStillCreated(t *testing.T) {
	repo := new(mockOrderRepository)
	svc, ledger := testOrderService(t, repo)
	ledger.FailWith = unavailableEscrowError()
	router := setupOrderRouterWithService(svc, testBuyerID)

	repo.On("CreateWithReservation", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	body, _ := json.Marshal(CreateOrderRequest{ProductID: testProductID, Quantity: 1})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["escrow_pending"])
	assert.NotEmpty(t, data["escrow_error"])

	repo.AssertNotCalled(t, "AttachEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", []byte(`{invalid json`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid request body")
}

func TestCreateOrder_ValidationError_MissingProduct(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	body, _ := json.Marshal(CreateOrderRequest{Quantity: 1})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.NotNil(t, resp.Error.Fields)
}

func TestCreateOrder_UnsupportedMediaType(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// GET /api/v1/orders/{id} - GetOrder
// ============================================================================

func TestGetOrder_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+testOrderID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, testOrderID, data["id"])
}

func TestGetOrder_NotParty(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, "550e8400-e29b-41d4-a716-446655440099")

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+testOrderID, nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOrder_InvalidID(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("GetByID", mock.Anything, testOrderID).Return(nil, apperrors.NotFound("order", testOrderID))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+testOrderID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// GET /api/v1/orders - ListOrders
// ============================================================================

func TestListOrders_DefaultsToBuyerRole(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.BuyerID != nil && *f.BuyerID == testBuyerID && f.SellerID == nil
	})).Return([]domain.Order{*sampleOrder(domain.OrderStatusCreated)}, 1, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var paginated httputil.PaginatedResponse[domain.Order]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&paginated))
	assert.Equal(t, 1, paginated.TotalCount)
	require.Len(t, paginated.Data, 1)
	assert.Equal(t, testOrderID, paginated.Data[0].ID)
}

func TestListOrders_SellerRoleWithStatus(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testSellerID)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.SellerID != nil && *f.SellerID == testSellerID &&
			f.Status != nil && *f.Status == domain.OrderStatusFunded &&
			f.Page == 2 && f.PerPage == 5
	})).Return([]domain.Order{}, 0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?role=SELLER&status=FUNDED&page=2&per_page=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListOrders_InvalidRole(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?role=ADMIN", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListOrders_InvalidPagination(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	for _, target := range []string{
		"/api/v1/orders?page=0",
		"/api/v1/orders?page=abc",
		"/api/v1/orders?per_page=101",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

// ============================================================================
// PUT /api/v1/orders/{id}/status - UpdateOrderStatus
// ============================================================================

func TestUpdateOrderStatus_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)
	repo.On("UpdateStatus", mock.Anything, testOrderID, domain.OrderStatusCreated, mock.MatchedBy(func(u repository.StatusUpdate) bool {
		return u.Status == domain.OrderStatusCancelled
	})).Return(nil)

	body, _ := json.Marshal(UpdateStatusRequest{Status: domain.OrderStatusCancelled})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPut, "/api/v1/orders/"+testOrderID+"/status", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "CANCELLED", data["status"])

	repo.AssertExpectations(t)
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	body, _ := json.Marshal(UpdateStatusRequest{Status: "SHIPPED_MAYBE"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPut, "/api/v1/orders/"+testOrderID+"/status", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)

	body, _ := json.Marshal(UpdateStatusRequest{Status: domain.OrderStatusCompleted})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPut, "/api/v1/orders/"+testOrderID+"/status", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_Stranger(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, "550e8400-e29b-41d4-a716-446655440099")

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)

	body, _ := json.Marshal(UpdateStatusRequest{Status: domain.OrderStatusCancelled})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPut, "/api/v1/orders/"+testOrderID+"/status", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// POST /api/v1/orders/{id}/escrow/retry - RetryEscrow
// ============================================================================

func TestRetryEscrow_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	repo.On("GetByID", mock.Anything, testOrderID).Return(sampleOrder(domain.OrderStatusCreated), nil)
	repo.On("AttachEscrow", mock.Anything, testOrderID, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders/"+testOrderID+"/escrow/retry", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["escrow_address"])

	repo.AssertExpectations(t)
}

func TestRetryEscrow_AlreadyAttached(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	order := sampleOrder(domain.OrderStatusCreated)
	addr := "escrowAddr111111111111111111111111111111111"
	order.EscrowAddress = &addr
	repo.On("GetByID", mock.Anything, testOrderID).Return(order, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/orders/"+testOrderID+"/escrow/retry", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================================================
// GET /api/v1/orders/reconcile/pending - PendingEscrows
// ============================================================================

func TestPendingEscrows_Empty(t *testing.T) {
	repo := new(mockOrderRepository)
	router := setupOrderRouter(t, repo, testBuyerID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/reconcile/pending", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, data)
}
