package service

import (
	"context"
	"io"
	"reflect"
	"sort"
	"sync"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/models"
	storemodels "loan-ledger/internal/pkg/store/models"
)

// MockLoanEventPublisherInterface is a mock of LoanEventPublisherInterface.
type MockLoanEventPublisherInterface struct {
	ctrl     *gomock.Controller
	recorder *MockLoanEventPublisherInterfaceMockRecorder
}

type MockLoanEventPublisherInterfaceMockRecorder struct {
	mock *MockLoanEventPublisherInterface
}

func NewMockLoanEventPublisherInterface(ctrl *gomock.Controller) *MockLoanEventPublisherInterface {
	m := &MockLoanEventPublisherInterface{ctrl: ctrl}
	m.recorder = &MockLoanEventPublisherInterfaceMockRecorder{m}
	return m
}

func (m *MockLoanEventPublisherInterface) EXPECT() *MockLoanEventPublisherInterfaceMockRecorder {
	return m.recorder
}

func (m *MockLoanEventPublisherInterface) PublishLoanEvent(ctx context.Context, eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "PublishLoanEvent", ctx, eventType, loan, actorID, amount)
}

func (mr *MockLoanEventPublisherInterfaceMockRecorder) PublishLoanEvent(ctx, eventType, loan, actorID, amount interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PublishLoanEvent",
		reflect.TypeOf((*MockLoanEventPublisherInterface)(nil).PublishLoanEvent), ctx, eventType, loan, actorID, amount)
}

// MockNotifierInterface is a mock of NotifierInterface.
type MockNotifierInterface struct {
	ctrl     *gomock.Controller
	recorder *MockNotifierInterfaceMockRecorder
}

type MockNotifierInterfaceMockRecorder struct {
	mock *MockNotifierInterface
}

func NewMockNotifierInterface(ctrl *gomock.Controller) *MockNotifierInterface {
	m := &MockNotifierInterface{ctrl: ctrl}
	m.recorder = &MockNotifierInterfaceMockRecorder{m}
	return m
}

func (m *MockNotifierInterface) EXPECT() *MockNotifierInterfaceMockRecorder {
	return m.recorder
}

func (m *MockNotifierInterface) Notify(ctx context.Context, msg models.NotificationMessage) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Notify", ctx, msg)
}

func (mr *MockNotifierInterfaceMockRecorder) Notify(ctx, msg interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Notify",
		reflect.TypeOf((*MockNotifierInterface)(nil).Notify), ctx, msg)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ResolveUsers(ctx context.Context, ids []string) (map[string]storemodels.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).(map[string]storemodels.User)
	return users, args.Error(1)
}

type MockFamilyDirectory struct {
	mock.Mock
}

func (m *MockFamilyDirectory) IsMember(ctx context.Context, familyID, userID string) (bool, error) {
	args := m.Called(ctx, familyID, userID)
	return args.Bool(0), args.Error(1)
}

type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, body)
	return args.String(0), args.Error(1)
}

type MockKafkaPublisher struct {
	mock.Mock
}

func (m *MockKafkaPublisher) Publish(ctx context.Context, key, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockRuntimePubSubPublisher struct {
	mock.Mock
}

func (m *MockRuntimePubSubPublisher) Publish(ctx context.Context, topic string, msg []byte, attributes map[string]string) error {
	args := m.Called(ctx, topic, msg, attributes)
	return args.Error(0)
}

// memLoanRepo keeps loans in memory and enforces the version check the
// Mongo repository does with its conditional update.
type memLoanRepo struct {
	mu    sync.Mutex
	loans map[string]ledger.Loan

	applyErr    error
	removeErr   error
	applied     int
	beforeApply func()
}

func newMemLoanRepo() *memLoanRepo {
	return &memLoanRepo{loans: map[string]ledger.Loan{}}
}

func copyLoan(l ledger.Loan) ledger.Loan {
	l.PendingEffects = append([]ledger.Effect{}, l.PendingEffects...)
	l.RepaymentReceipts = append([]ledger.RepaymentReceipt{}, l.RepaymentReceipts...)
	if l.PendingRepayment != nil {
		p := *l.PendingRepayment
		l.PendingRepayment = &p
	}
	return l
}

func (r *memLoanRepo) Insert(_ context.Context, loan ledger.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[loan.ID] = copyLoan(loan)
	return nil
}

func (r *memLoanRepo) GetByID(_ context.Context, loanID string) (ledger.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[loanID]
	if !ok {
		return ledger.Loan{}, consts.ErrorLoanNotFound
	}
	return copyLoan(loan), nil
}

func (r *memLoanRepo) ListByParty(_ context.Context, userID string) ([]ledger.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []ledger.Loan{}
	for _, loan := range r.loans {
		if loan.IsParty(userID) {
			out = append(out, copyLoan(loan))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memLoanRepo) ApplyTransition(_ context.Context, t ledger.Transition) error {
	if r.beforeApply != nil {
		r.beforeApply()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	stored, ok := r.loans[t.Loan.ID]
	if !ok || stored.Version != t.ExpectedVersion {
		return consts.ErrorConcurrentUpdate
	}
	next := copyLoan(t.Loan)
	next.PendingEffects = append(append([]ledger.Effect{}, stored.PendingEffects...), t.Effects...)
	r.loans[t.Loan.ID] = next
	r.applied++
	return nil
}

func (r *memLoanRepo) RemovePendingEffect(_ context.Context, loanID, effectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removeErr != nil {
		return r.removeErr
	}
	loan := r.loans[loanID]
	kept := loan.PendingEffects[:0:0]
	for _, e := range loan.PendingEffects {
		if e.ID != effectID {
			kept = append(kept, e)
		}
	}
	loan.PendingEffects = kept
	r.loans[loanID] = loan
	return nil
}

func (r *memLoanRepo) FindWithPendingEffects(_ context.Context, limit int64) ([]ledger.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []ledger.Loan{}
	for _, loan := range r.loans {
		if len(loan.PendingEffects) > 0 {
			out = append(out, copyLoan(loan))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLoanRepo) NormalizeLegacyStatus(context.Context) (int64, error) {
	return 0, nil
}

func (r *memLoanRepo) bumpVersion(loanID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan := r.loans[loanID]
	loan.Version++
	r.loans[loanID] = loan
}

func (r *memLoanRepo) setRemoveErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeErr = err
}

func (r *memLoanRepo) stored(loanID string) ledger.Loan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyLoan(r.loans[loanID])
}

// memTransactionRepo treats a repeated effect id as already delivered.
type memTransactionRepo struct {
	mu      sync.Mutex
	records map[string]ledger.Effect
	order   []string
	appends int
	failFor map[string]bool
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{records: map[string]ledger.Effect{}, failFor: map[string]bool{}}
}

func (r *memTransactionRepo) Append(_ context.Context, effect ledger.Effect) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appends++
	if r.failFor[effect.UserID] {
		return "", consts.ErrorDependencyFailure
	}
	if _, ok := r.records[effect.ID]; !ok {
		r.records[effect.ID] = effect
		r.order = append(r.order, effect.ID)
	}
	return effect.ID, nil
}

func (r *memTransactionRepo) all() []ledger.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Effect, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

func (r *memTransactionRepo) setFailing(userID string, failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[userID] = failing
}
