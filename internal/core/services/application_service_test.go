package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/core/services"
	"github.com/finflow/exchanger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ApplicationRepository ---
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) CreateApplication(ctx context.Context, app domain.Application) (*domain.Application, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) SetPaymentID(ctx context.Context, applicationID int64, paymentID string) error {
	args := m.Called(ctx, applicationID, paymentID)
	return args.Error(0)
}

func (m *MockApplicationRepository) FindPendingByPaymentID(ctx context.Context, paymentID string) (*domain.Application, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) SettleApplication(ctx context.Context, applicationID int64, accountNumber string, amount decimal.Decimal) error {
	args := m.Called(ctx, applicationID, accountNumber, amount)
	return args.Error(0)
}

func (m *MockApplicationRepository) ListApplicationsByUserID(ctx context.Context, userID string, limit int) ([]domain.Application, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

// --- Mock PaymentGateway ---
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, currencyCode, returnURL, description string) (*gateways.CreatePaymentResult, error) {
	args := m.Called(ctx, amount, currencyCode, returnURL, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateways.CreatePaymentResult), args.Error(1)
}

func (m *MockPaymentGateway) CapturePayment(ctx context.Context, paymentID string, amount decimal.Decimal, currencyCode string) error {
	args := m.Called(ctx, paymentID, amount, currencyCode)
	return args.Error(0)
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, paymentID string) (gateways.PaymentStatus, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(gateways.PaymentStatus), args.Error(1)
}

// --- Test Suite Setup ---
type ApplicationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockAppRepo     *MockApplicationRepository
	mockGateway     *MockPaymentGateway
	service         portssvc.ApplicationSvcFacade
	userID          string
	homeAccount     domain.Account
	paymentID       string
	pendingApp      domain.Application
	returnURL       string
}

func (suite *ApplicationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockAppRepo = new(MockApplicationRepository)
	suite.mockGateway = new(MockPaymentGateway)
	suite.returnURL = "https://example.test/payments/return"
	suite.service = services.NewApplicationService(suite.mockAccountRepo, suite.mockAppRepo, suite.mockGateway, suite.returnURL)

	suite.userID = uuid.NewString()
	suite.homeAccount = domain.Account{
		AccountID: 1,
		UserID:    &suite.userID,
		Number:    uuid.NewString(),
		Currency:  domain.Currency{CurrencyID: 1, NumericCode: "643", ShortName: "RUR", Symbol: "₽"},
		Balance:   decimal.RequireFromString("100.00"),
	}
	suite.paymentID = uuid.NewString()
	suite.pendingApp = domain.Application{
		ApplicationID: 7,
		AccountNumber: suite.homeAccount.Number,
		CurrencyCode:  "RUR",
		PaymentID:     &suite.paymentID,
		Amount:        decimal.RequireFromString("500.00"),
		Type:          domain.Refill,
		Status:        domain.StatusPending,
	}
}

func (suite *ApplicationServiceTestSuite) settlementPayload(paymentID, status string) []byte {
	return []byte(`{"event":"payment.` + status + `","object":{"id":"` + paymentID + `","status":"` + status + `"}}`)
}

// --- Test Cases ---

func (suite *ApplicationServiceTestSuite) TestCreateApplication_Success() {
	ctx := context.Background()
	req := dto.CreateApplicationRequest{Amount: decimal.RequireFromString("500.00"), Type: domain.Refill}

	suite.mockAccountRepo.On("FindUserAccountByCurrency", ctx, suite.userID, domain.HomeCurrencyCode).Return(&suite.homeAccount, nil).Once()
	suite.mockAppRepo.On("CreateApplication", ctx, mock.MatchedBy(func(app domain.Application) bool {
		return app.Status == domain.StatusPending &&
			app.AccountNumber == suite.homeAccount.Number &&
			app.Amount.Equal(req.Amount)
	})).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CreatePayment", ctx, req.Amount, "RUR", suite.returnURL, mock.AnythingOfType("string")).
		Return(&gateways.CreatePaymentResult{PaymentID: suite.paymentID, ConfirmationURL: "https://pay.test/confirm"}, nil).Once()
	suite.mockAppRepo.On("SetPaymentID", ctx, suite.pendingApp.ApplicationID, suite.paymentID).Return(nil).Once()

	resp, err := suite.service.CreateApplication(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Equal(suite.pendingApp.ApplicationID, resp.ApplicationID)
	suite.Equal("https://pay.test/confirm", resp.ConfirmationURL)
	suite.mockAppRepo.AssertExpectations(suite.T())
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *ApplicationServiceTestSuite) TestCreateApplication_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateApplicationRequest{Amount: decimal.Zero, Type: domain.Refill}

	_, err := suite.service.CreateApplication(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "CreateApplication", mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestCreateApplication_NoHomeAccount() {
	ctx := context.Background()
	req := dto.CreateApplicationRequest{Amount: decimal.RequireFromString("10.00"), Type: domain.Refill}

	suite.mockAccountRepo.On("FindUserAccountByCurrency", ctx, suite.userID, domain.HomeCurrencyCode).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateApplication(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ApplicationServiceTestSuite) TestCreateApplication_ProviderFailureStaysPending() {
	ctx := context.Background()
	req := dto.CreateApplicationRequest{Amount: decimal.RequireFromString("500.00"), Type: domain.Refill}

	suite.mockAccountRepo.On("FindUserAccountByCurrency", ctx, suite.userID, domain.HomeCurrencyCode).Return(&suite.homeAccount, nil).Once()
	suite.mockAppRepo.On("CreateApplication", ctx, mock.Anything).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CreatePayment", ctx, req.Amount, "RUR", suite.returnURL, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrUpstream).Once()

	_, err := suite.service.CreateApplication(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "SetPaymentID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestSettlement_Success() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "waiting_for_capture")

	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CapturePayment", ctx, suite.paymentID, suite.pendingApp.Amount, "RUR").Return(nil).Once()
	suite.mockGateway.On("GetPayment", ctx, suite.paymentID).Return(gateways.PaymentSucceeded, nil).Once()
	suite.mockAppRepo.On("SettleApplication", ctx, suite.pendingApp.ApplicationID, suite.pendingApp.AccountNumber, suite.pendingApp.Amount).Return(nil).Once()

	err := suite.service.HandleSettlementNotification(ctx, payload)

	suite.Require().NoError(err)
	suite.mockAppRepo.AssertExpectations(suite.T())
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *ApplicationServiceTestSuite) TestSettlement_UnknownPaymentIsNoOp() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "succeeded")

	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.HandleSettlementNotification(ctx, payload)

	suite.Require().NoError(err)
	suite.mockGateway.AssertNotCalled(suite.T(), "CapturePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "SettleApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestSettlement_RepeatedNotificationIsNoOp() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "succeeded")

	// First delivery settles the application.
	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CapturePayment", ctx, suite.paymentID, suite.pendingApp.Amount, "RUR").Return(nil).Once()
	suite.mockGateway.On("GetPayment", ctx, suite.paymentID).Return(gateways.PaymentSucceeded, nil).Once()
	suite.mockAppRepo.On("SettleApplication", ctx, suite.pendingApp.ApplicationID, suite.pendingApp.AccountNumber, suite.pendingApp.Amount).Return(nil).Once()

	suite.Require().NoError(suite.service.HandleSettlementNotification(ctx, payload))

	// Second delivery no longer finds a pending application and must not
	// credit again.
	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(nil, apperrors.ErrNotFound).Once()

	suite.Require().NoError(suite.service.HandleSettlementNotification(ctx, payload))

	suite.mockAppRepo.AssertExpectations(suite.T())
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *ApplicationServiceTestSuite) TestSettlement_RacingDeliveryLosesQuietly() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "succeeded")

	// Both deliveries saw the application pending, but another one committed
	// first: the status guard in the store rejects the second settle. The
	// money is already credited, so this delivery is acknowledged, not retried.
	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CapturePayment", ctx, suite.paymentID, suite.pendingApp.Amount, "RUR").Return(nil).Once()
	suite.mockGateway.On("GetPayment", ctx, suite.paymentID).Return(gateways.PaymentSucceeded, nil).Once()
	suite.mockAppRepo.On("SettleApplication", ctx, suite.pendingApp.ApplicationID, suite.pendingApp.AccountNumber, suite.pendingApp.Amount).
		Return(fmt.Errorf("%w: application 7 is not pending", apperrors.ErrNotFound)).Once()

	err := suite.service.HandleSettlementNotification(ctx, payload)

	suite.Require().NoError(err)
	suite.mockAppRepo.AssertExpectations(suite.T())
}

func (suite *ApplicationServiceTestSuite) TestSettlement_InvalidPayload() {
	ctx := context.Background()

	err := suite.service.HandleSettlementNotification(ctx, []byte("not json"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidPayload)
}

func (suite *ApplicationServiceTestSuite) TestSettlement_MissingPaymentID() {
	ctx := context.Background()

	err := suite.service.HandleSettlementNotification(ctx, []byte(`{"event":"payment.succeeded","object":{"status":"succeeded"}}`))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidPayload)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "FindPendingByPaymentID", mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestSettlement_CaptureFailureLeavesPending() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "waiting_for_capture")

	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CapturePayment", ctx, suite.paymentID, suite.pendingApp.Amount, "RUR").Return(apperrors.ErrUpstream).Once()

	err := suite.service.HandleSettlementNotification(ctx, payload)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "SettleApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestSettlement_NonSuccessStatusRejected() {
	ctx := context.Background()
	payload := suite.settlementPayload(suite.paymentID, "waiting_for_capture")

	suite.mockAppRepo.On("FindPendingByPaymentID", ctx, suite.paymentID).Return(&suite.pendingApp, nil).Once()
	suite.mockGateway.On("CapturePayment", ctx, suite.paymentID, suite.pendingApp.Amount, "RUR").Return(nil).Once()
	suite.mockGateway.On("GetPayment", ctx, suite.paymentID).Return(gateways.PaymentCanceled, nil).Once()

	err := suite.service.HandleSettlementNotification(ctx, payload)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSettlementRejected)
	suite.mockAppRepo.AssertNotCalled(suite.T(), "SettleApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApplicationServiceTestSuite) TestListApplications_DefaultLimit() {
	ctx := context.Background()
	suite.mockAppRepo.On("ListApplicationsByUserID", ctx, suite.userID, 20).Return([]domain.Application{suite.pendingApp}, nil).Once()

	apps, err := suite.service.ListApplications(ctx, suite.userID, -1)

	suite.Require().NoError(err)
	suite.Len(apps, 1)
	suite.mockAppRepo.AssertExpectations(suite.T())
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
