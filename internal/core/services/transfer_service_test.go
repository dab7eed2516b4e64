package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/core/services"
	"github.com/finflow/exchanger/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepositoryFacade ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindUserAccountByCurrency(ctx context.Context, userID string, currencyCode string) (*domain.Account, error) {
	args := m.Called(ctx, userID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByNumbersForUpdate(ctx context.Context, tx pgx.Tx, numbers []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, tx, deltas)
	return args.Error(0)
}

// --- Mock TransferRepository ---
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, pair [2]domain.Transaction, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, pair, deltas)
	return args.Error(0)
}

func (m *MockTransferRepository) ListTransactionsByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock ConversionSvcFacade ---
type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Convert(ctx context.Context, debitCurrency, creditCurrency string, debitAmount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, debitCurrency, creditCurrency, debitAmount)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// captureNotifier records notifications on a channel so the asynchronous
// dispatch can be awaited without races.
type captureNotifier struct {
	notices chan gateways.TransferNotice
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{notices: make(chan gateways.TransferNotice, 1)}
}

func (n *captureNotifier) Notify(ctx context.Context, notice gateways.TransferNotice) {
	n.notices <- notice
}

// panicNotifier signals dispatch and then panics, standing in for a broken
// notifier implementation.
type panicNotifier struct {
	called chan struct{}
}

func (n *panicNotifier) Notify(ctx context.Context, notice gateways.TransferNotice) {
	close(n.called)
	panic("sms gateway unreachable")
}

// --- Test Suite Setup ---
type TransferServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockTransferRepo *MockTransferRepository
	mockConverter    *MockConversionService
	notifier         *captureNotifier
	service          portssvc.TransferSvcFacade
	userID           string
	otherUserID      string
	rubAccount       domain.Account
	usdAccount       domain.Account
	otherAccount     domain.Account
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTransferRepo = new(MockTransferRepository)
	suite.mockConverter = new(MockConversionService)
	suite.notifier = newCaptureNotifier()
	suite.service = services.NewTransferService(suite.mockAccountRepo, suite.mockTransferRepo, suite.mockConverter, suite.notifier)

	suite.userID = uuid.NewString()
	suite.otherUserID = uuid.NewString()

	rub := domain.Currency{CurrencyID: 1, NumericCode: "643", ShortName: "RUR", Symbol: "₽"}
	usd := domain.Currency{CurrencyID: 2, NumericCode: "840", ShortName: "USD", Symbol: "$"}

	suite.rubAccount = domain.Account{
		AccountID: 1,
		UserID:    &suite.userID,
		Number:    uuid.NewString(),
		Currency:  rub,
		Balance:   decimal.RequireFromString("1000.00"),
	}
	suite.usdAccount = domain.Account{
		AccountID: 2,
		UserID:    &suite.userID,
		Number:    uuid.NewString(),
		Currency:  usd,
		Balance:   decimal.RequireFromString("50.00"),
	}
	suite.otherAccount = domain.Account{
		AccountID: 3,
		UserID:    &suite.otherUserID,
		Number:    uuid.NewString(),
		Currency:  rub,
		Balance:   decimal.RequireFromString("10.00"),
	}
}

func (suite *TransferServiceTestSuite) transferRequest(sender, receiver domain.Account, kind domain.TransferKind, send, receive string) dto.TransferRequest {
	return dto.TransferRequest{
		SenderNumber:    sender.Number,
		AmountToSend:    decimal.RequireFromString(send),
		ReceiverNumber:  receiver.Number,
		AmountToReceive: decimal.RequireFromString(receive),
		ReceiverKind:    kind,
	}
}

// --- Test Cases ---

func (suite *TransferServiceTestSuite) TestTransfer_SelfSuccess() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.usdAccount, domain.TransferSelf, "901.23", "10.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.usdAccount.Number).Return(&suite.usdAccount, nil).Once()

	suite.mockTransferRepo.On("SaveTransfer", ctx,
		mock.MatchedBy(func(pair [2]domain.Transaction) bool {
			// Both rows carry the sent amount in the sender's currency.
			return pair[0].TransactionType == domain.Debit &&
				pair[1].TransactionType == domain.Credit &&
				pair[0].Amount.Equal(req.AmountToSend) &&
				pair[1].Amount.Equal(req.AmountToSend) &&
				pair[0].CurrencyCode == "RUR"
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return deltas[suite.rubAccount.Number].Equal(req.AmountToSend.Neg()) &&
				deltas[suite.usdAccount.Number].Equal(req.AmountToReceive)
		}),
	).Return(nil).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTransferRepo.AssertExpectations(suite.T())

	select {
	case <-suite.notifier.notices:
		suite.Fail("self transfer must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func (suite *TransferServiceTestSuite) TestTransfer_CounterpartySuccessNotifies() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.otherAccount, domain.TransferCounterparty, "100.00", "100.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().NoError(err)

	select {
	case notice := <-suite.notifier.notices:
		suite.Equal(suite.rubAccount.Number, notice.SenderNumber)
		suite.Equal(suite.otherAccount.Number, notice.ReceiverNumber)
		suite.True(notice.Amount.Equal(req.AmountToReceive))
	case <-time.After(time.Second):
		suite.Fail("expected a transfer notification")
	}
	suite.mockTransferRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.usdAccount, domain.TransferSelf, "100.00", "10.00")
	req.AmountToSend = decimal.Zero

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByNumber", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_SameAccount() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.rubAccount, domain.TransferSelf, "100.00", "100.00")

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransferServiceTestSuite) TestTransfer_SenderNotOwned() {
	ctx := context.Background()
	req := suite.transferRequest(suite.otherAccount, suite.rubAccount, domain.TransferSelf, "5.00", "5.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_UnknownSenderIsForbidden() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.usdAccount, domain.TransferSelf, "100.00", "10.00")
	req.SenderNumber = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, req.SenderNumber).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TransferServiceTestSuite) TestTransfer_SelfReceiverNotOwned() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.otherAccount, domain.TransferSelf, "100.00", "100.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_CounterpartyReceiverMissing() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.otherAccount, domain.TransferCounterparty, "100.00", "100.00")
	req.ReceiverNumber = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, req.ReceiverNumber).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.usdAccount, domain.TransferSelf, "1000.01", "11.09")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.usdAccount.Number).Return(&suite.usdAccount, nil).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_CommitFailureDoesNotNotify() {
	ctx := context.Background()
	req := suite.transferRequest(suite.rubAccount, suite.otherAccount, domain.TransferCounterparty, "100.00", "100.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", ctx, mock.Anything, mock.Anything).Return(apperrors.ErrInsufficientFunds).Once()

	err := suite.service.Transfer(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)

	select {
	case <-suite.notifier.notices:
		suite.Fail("failed transfer must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func (suite *TransferServiceTestSuite) TestTransfer_NotifierPanicDoesNotPropagate() {
	ctx := context.Background()
	notifier := &panicNotifier{called: make(chan struct{})}
	service := services.NewTransferService(suite.mockAccountRepo, suite.mockTransferRepo, suite.mockConverter, notifier)
	req := suite.transferRequest(suite.rubAccount, suite.otherAccount, domain.TransferCounterparty, "100.00", "100.00")

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.rubAccount.Number).Return(&suite.rubAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	err := service.Transfer(ctx, suite.userID, req)

	suite.Require().NoError(err)

	select {
	case <-notifier.called:
	case <-time.After(time.Second):
		suite.Fail("expected the notifier to be invoked")
	}
	// An escaping panic would crash the test binary; give the dispatch
	// goroutine time to unwind before the test ends.
	time.Sleep(50 * time.Millisecond)
}

func (suite *TransferServiceTestSuite) TestQuote_Success() {
	ctx := context.Background()
	req := dto.QuoteRequest{
		DebitAccount:   suite.usdAccount.Number,
		DebitCurrency:  "USD",
		CreditCurrency: "RUR",
		DebitAmount:    decimal.RequireFromString("10.00"),
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.usdAccount.Number).Return(&suite.usdAccount, nil).Once()
	suite.mockConverter.On("Convert", ctx, "USD", "RUR", req.DebitAmount).Return(decimal.RequireFromString("901.23"), nil).Once()

	quote, err := suite.service.Quote(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.True(quote.CreditAmount.Equal(decimal.RequireFromString("901.23")))
	suite.mockConverter.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestQuote_NotOwned() {
	ctx := context.Background()
	req := dto.QuoteRequest{
		DebitAccount:   suite.otherAccount.Number,
		DebitCurrency:  "RUR",
		CreditCurrency: "USD",
		DebitAmount:    decimal.RequireFromString("5.00"),
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.otherAccount.Number).Return(&suite.otherAccount, nil).Once()

	_, err := suite.service.Quote(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockConverter.AssertNotCalled(suite.T(), "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestQuote_InsufficientFunds() {
	ctx := context.Background()
	req := dto.QuoteRequest{
		DebitAccount:   suite.usdAccount.Number,
		DebitCurrency:  "USD",
		CreditCurrency: "RUR",
		DebitAmount:    decimal.RequireFromString("50.01"),
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.usdAccount.Number).Return(&suite.usdAccount, nil).Once()

	_, err := suite.service.Quote(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *TransferServiceTestSuite) TestListTransactions_DefaultLimit() {
	ctx := context.Background()
	suite.mockTransferRepo.On("ListTransactionsByUserID", ctx, suite.userID, 20).Return([]domain.Transaction{}, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, suite.userID, 0)

	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.mockTransferRepo.AssertExpectations(suite.T())
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
