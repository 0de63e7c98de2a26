package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/lock"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	tracing "loan-ledger/internal/pkg/otel"
	storemodels "loan-ledger/internal/pkg/store/models"
	"loan-ledger/internal/service/interfaces"
)

// Attachment is an uploaded file on its way to the attachment store.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateLoanRequest struct {
	ledger.CreateLoanInput
	Attachment *Attachment
}

type RepaymentRequest struct {
	LoanID       string
	ActingUserID string
	Amount       decimal.Decimal
	ReceiptURL   string
	Receipt      *Attachment
}

// LoanView is a loan with its parties resolved. Debtor is nil for an
// unregistered debtor.
type LoanView struct {
	Loan     ledger.Loan
	Creditor storemodels.User
	Debtor   *storemodels.User
}

type CategorizedView struct {
	ActionRequired []LoanView
	Lent           []LoanView
	Borrowed       []LoanView
	Repaid         []LoanView
}

type Dependencies struct {
	Loans        interfaces.LoanRepositoryInterface
	Transactions interfaces.TransactionRepositoryInterface
	Users        interfaces.UserDirectoryInterface
	Families     interfaces.FamilyDirectoryInterface
	Attachments  interfaces.AttachmentStoreInterface
	Locker       lock.Locker
	// Events and Notifier are optional.
	Events   interfaces.LoanEventPublisherInterface
	Notifier interfaces.NotifierInterface
	// DirectoryTimeout bounds party resolution. Zero means no extra bound.
	DirectoryTimeout time.Duration
}

type LoanLedgerService struct {
	ledger    *ledger.Ledger
	deps      Dependencies
	deliverer *EffectDeliverer
}

func NewLoanLedgerService(deps Dependencies, opts ...ledger.Option) *LoanLedgerService {
	return &LoanLedgerService{
		ledger:    ledger.New(opts...),
		deps:      deps,
		deliverer: NewEffectDeliverer(deps.Loans, deps.Transactions),
	}
}

func (s *LoanLedgerService) CreateLoan(ctx context.Context, req CreateLoanRequest) (ledger.Loan, error) {
	ctx, span := startSpan(ctx, "create", attribute.String("loan.creditor_id", req.CreditorID))
	loan, err := s.createLoan(ctx, req)
	endSpan(span, err)
	return loan, err
}

func (s *LoanLedgerService) createLoan(ctx context.Context, req CreateLoanRequest) (ledger.Loan, error) {
	loan, err := s.ledger.CreateLoan(req.CreateLoanInput)
	if err != nil {
		logger.CtxWarn(ctx, log_messages.TransitionRejected, zap.String("operation", "create"), zap.Error(err))
		return ledger.Loan{}, err
	}

	if loan.IsFamily() {
		member, err := s.deps.Families.IsMember(ctx, loan.FamilyID, loan.CreditorID)
		if err != nil {
			return ledger.Loan{}, err
		}
		if !member {
			logger.CtxWarn(ctx, log_messages.CreditorNotFamilyMember,
				zap.String("family_id", loan.FamilyID), zap.String("creditor_id", loan.CreditorID))
			return ledger.Loan{}, consts.ErrorNotFamilyMember
		}
	}

	if url := s.uploadOrDegrade(ctx, req.Attachment); url != "" {
		loan.AttachmentURL = url
	}

	if err := s.deps.Loans.Insert(ctx, loan); err != nil {
		return ledger.Loan{}, err
	}

	users := s.resolveUsers(ctx, loan.CreditorID, loan.DebtorID)
	s.announce(ctx, consts.EventLoanCreated, loan, loan.CreditorID, nil, users)
	return loan, nil
}

func (s *LoanLedgerService) ConfirmReceipt(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error) {
	return s.transition(ctx, "confirm_receipt", consts.EventLoanReceiptConfirmed, loanID, actingUserID,
		func(loan ledger.Loan, parties ledger.Parties) (ledger.Transition, error) {
			return s.ledger.ConfirmReceipt(loan, actingUserID, parties)
		})
}

func (s *LoanLedgerService) SubmitRepayment(ctx context.Context, req RepaymentRequest) (ledger.Loan, error) {
	return s.repaymentTransition(ctx, "submit_repayment", consts.EventLoanRepaymentSubmitted, req,
		func(loan ledger.Loan, receiptURL string, parties ledger.Parties) (ledger.Transition, error) {
			return s.ledger.SubmitRepayment(loan, req.ActingUserID, req.Amount, receiptURL, parties)
		})
}

func (s *LoanLedgerService) ConfirmRepayment(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error) {
	return s.transition(ctx, "confirm_repayment", consts.EventLoanRepaymentConfirmed, loanID, actingUserID,
		func(loan ledger.Loan, parties ledger.Parties) (ledger.Transition, error) {
			return s.ledger.ConfirmRepayment(loan, actingUserID, parties)
		})
}

func (s *LoanLedgerService) RecordRepaymentDirectly(ctx context.Context, req RepaymentRequest) (ledger.Loan, error) {
	return s.repaymentTransition(ctx, "record_repayment", consts.EventLoanRepaymentRecorded, req,
		func(loan ledger.Loan, receiptURL string, parties ledger.Parties) (ledger.Transition, error) {
			return s.ledger.RecordRepaymentDirectly(loan, req.ActingUserID, req.Amount, receiptURL, parties)
		})
}

// GetLoan returns one loan to one of its parties.
func (s *LoanLedgerService) GetLoan(ctx context.Context, loanID, viewerID string) (LoanView, error) {
	if viewerID == "" {
		return LoanView{}, consts.ErrorMissingActingUser
	}
	loan, err := s.deps.Loans.GetByID(ctx, loanID)
	if err != nil {
		return LoanView{}, err
	}
	if !loan.IsParty(viewerID) {
		return LoanView{}, fmt.Errorf("%w: viewer is not a party to the loan", consts.ErrorUnauthorized)
	}
	return s.enrich(ctx, []ledger.Loan{loan})[0], nil
}

func (s *LoanLedgerService) ListLoans(ctx context.Context, viewerID string) ([]LoanView, error) {
	if viewerID == "" {
		return nil, consts.ErrorMissingActingUser
	}
	loans, err := s.deps.Loans.ListByParty(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, loans), nil
}

func (s *LoanLedgerService) CategorizeLoans(ctx context.Context, viewerID string) (CategorizedView, error) {
	if viewerID == "" {
		return CategorizedView{}, consts.ErrorMissingActingUser
	}
	loans, err := s.deps.Loans.ListByParty(ctx, viewerID)
	if err != nil {
		return CategorizedView{}, err
	}
	buckets := ledger.Categorize(loans, viewerID)

	// one directory lookup for every bucket
	all := make([]ledger.Loan, 0, len(loans))
	all = append(all, buckets.ActionRequired...)
	all = append(all, buckets.Lent...)
	all = append(all, buckets.Borrowed...)
	all = append(all, buckets.Repaid...)
	views := s.enrich(ctx, all)

	n1 := len(buckets.ActionRequired)
	n2 := n1 + len(buckets.Lent)
	n3 := n2 + len(buckets.Borrowed)
	return CategorizedView{
		ActionRequired: views[:n1:n1],
		Lent:           views[n1:n2:n2],
		Borrowed:       views[n2:n3:n3],
		Repaid:         views[n3:],
	}, nil
}

// UploadAttachment stores a standalone file. Unlike uploads that ride along
// with a transition, a failure here is returned to the caller.
func (s *LoanLedgerService) UploadAttachment(ctx context.Context, file Attachment) (string, error) {
	if s.deps.Attachments == nil {
		return "", fmt.Errorf("%w: no attachment store configured", consts.ErrorAttachmentUploadFailed)
	}
	url, err := s.deps.Attachments.Upload(ctx, file.Filename, file.ContentType, file.Body)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorUploadingAttachment, err, zap.String("filename", file.Filename))
		return "", fmt.Errorf("%w: %v", consts.ErrorAttachmentUploadFailed, err)
	}
	logger.CtxInfo(ctx, log_messages.AttachmentUploaded, zap.String("url", url))
	return url, nil
}

type transitionFunc func(loan ledger.Loan, parties ledger.Parties) (ledger.Transition, error)

func (s *LoanLedgerService) transition(ctx context.Context, operation, eventType, loanID, actingUserID string, apply transitionFunc) (ledger.Loan, error) {
	ctx, span := startSpan(ctx, operation,
		attribute.String("loan.id", loanID),
		attribute.String("loan.acting_user_id", actingUserID),
	)
	loan, err := s.runTransition(ctx, operation, eventType, loanID, actingUserID, apply)
	endSpan(span, err)
	return loan, err
}

// runTransition runs one state change under the loan lock: load, apply,
// commit with the version check, then deliver the queued effects.
func (s *LoanLedgerService) runTransition(ctx context.Context, operation, eventType, loanID, actingUserID string, apply transitionFunc) (ledger.Loan, error) {
	if actingUserID == "" {
		return ledger.Loan{}, consts.ErrorMissingActingUser
	}
	if loanID == "" {
		return ledger.Loan{}, fmt.Errorf("%w: loan id is required", consts.ErrorInvalidRequest)
	}

	unlock, err := s.deps.Locker.Lock(ctx, loanID)
	if err != nil {
		logger.CtxWarn(ctx, log_messages.ErrorAcquiringLock, zap.String("loan_id", loanID), zap.Error(err))
		if errors.Is(err, lock.ErrNotAcquired) {
			return ledger.Loan{}, fmt.Errorf("%w: loan is busy", consts.ErrorConcurrentUpdate)
		}
		if ctx.Err() != nil {
			return ledger.Loan{}, ctx.Err()
		}
		return ledger.Loan{}, fmt.Errorf("%w: lock: %v", consts.ErrorDependencyFailure, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.CtxWarn(ctx, log_messages.ErrorReleasingLock, zap.String("loan_id", loanID), zap.Error(err))
		}
	}()

	loan, err := s.deps.Loans.GetByID(ctx, loanID)
	if err != nil {
		return ledger.Loan{}, err
	}

	users := s.resolveUsers(ctx, loan.CreditorID, loan.DebtorID, actingUserID)
	t, err := apply(loan, partiesOf(loan, users))
	if err != nil {
		logger.CtxWarn(ctx, log_messages.TransitionRejected,
			zap.String("operation", operation),
			zap.String("loan_id", loanID),
			zap.String("acting_user_id", actingUserID),
			zap.Error(err),
		)
		return ledger.Loan{}, err
	}

	if err := s.deps.Loans.ApplyTransition(ctx, t); err != nil {
		return ledger.Loan{}, err
	}
	if t.DebtorExpenseSkipped {
		logger.CtxInfo(ctx, log_messages.DebtorExpenseSkipped,
			zap.String("loan_id", loanID), zap.String("debtor_name", loan.DebtorName))
	}

	delivery := s.deliverer.Deliver(ctx, loanID, t.Effects)
	result := t.Loan
	result.PendingEffects = withoutDelivered(t.Loan.PendingEffects, delivery.Delivered)

	s.announce(ctx, eventType, t.Loan, actingUserID, effectAmount(t), users)
	return result, nil
}

// announce publishes the event and the counterparty notification. Both are
// best effort.
func (s *LoanLedgerService) announce(ctx context.Context, eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal, users map[string]storemodels.User) {
	if s.deps.Events != nil {
		s.deps.Events.PublishLoanEvent(ctx, eventType, loan, actorID, amount)
	}
	if s.deps.Notifier == nil {
		return
	}
	if msg, ok := notificationFor(eventType, loan, actorID, amount, users); ok {
		s.deps.Notifier.Notify(ctx, msg)
	}
}

type repaymentFunc func(loan ledger.Loan, receiptURL string, parties ledger.Parties) (ledger.Transition, error)

// repaymentTransition uploads an attached receipt only when the repayment
// would be accepted by the loan as it stands, then runs the transition under
// the lock. A receipt stored for a transition that is rejected after all is
// logged so it can be cleaned up.
func (s *LoanLedgerService) repaymentTransition(ctx context.Context, operation, eventType string, req RepaymentRequest, apply repaymentFunc) (ledger.Loan, error) {
	receiptURL := req.ReceiptURL
	if req.Receipt != nil && s.precheck(ctx, operation, req, apply) {
		if url := s.uploadOrDegrade(ctx, req.Receipt); url != "" {
			receiptURL = url
		}
	}

	loan, err := s.transition(ctx, operation, eventType, req.LoanID, req.ActingUserID,
		func(loan ledger.Loan, parties ledger.Parties) (ledger.Transition, error) {
			return apply(loan, receiptURL, parties)
		})
	if err != nil && receiptURL != req.ReceiptURL {
		logger.CtxWarn(ctx, log_messages.ReceiptOrphaned,
			zap.String("loan_id", req.LoanID), zap.String("url", receiptURL), zap.Error(err))
	}
	return loan, err
}

// precheck applies the repayment to an unlocked read of the loan. Nothing is
// stored; the locked transition repeats every check.
func (s *LoanLedgerService) precheck(ctx context.Context, operation string, req RepaymentRequest, apply repaymentFunc) bool {
	if req.ActingUserID == "" || req.LoanID == "" || s.deps.Attachments == nil {
		return false
	}
	loan, err := s.deps.Loans.GetByID(ctx, req.LoanID)
	if err == nil {
		_, err = apply(loan, req.ReceiptURL, ledger.Parties{})
	}
	if err != nil {
		logger.CtxInfo(ctx, log_messages.ReceiptUploadSkipped,
			zap.String("operation", operation), zap.String("loan_id", req.LoanID), zap.Error(err))
		return false
	}
	return true
}

// uploadOrDegrade returns "" when there is nothing to upload or the upload failed.
func (s *LoanLedgerService) uploadOrDegrade(ctx context.Context, file *Attachment) string {
	if file == nil || s.deps.Attachments == nil {
		return ""
	}
	url, err := s.deps.Attachments.Upload(ctx, file.Filename, file.ContentType, file.Body)
	if err != nil {
		logger.CtxWarn(ctx, log_messages.AttachmentUploadDegraded, zap.String("filename", file.Filename), zap.Error(err))
		return ""
	}
	logger.CtxInfo(ctx, log_messages.AttachmentUploaded, zap.String("url", url))
	return url
}

// resolveUsers never fails: a directory outage leaves names empty and the
// ledger falls back to generic ones.
func (s *LoanLedgerService) resolveUsers(ctx context.Context, ids ...string) map[string]storemodels.User {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			wanted = append(wanted, id)
		}
	}
	if len(wanted) == 0 || s.deps.Users == nil {
		return map[string]storemodels.User{}
	}

	lookupCtx := ctx
	if s.deps.DirectoryTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.deps.DirectoryTimeout)
		defer cancel()
	}
	users, err := s.deps.Users.ResolveUsers(lookupCtx, wanted)
	if err != nil {
		logger.CtxWarn(ctx, log_messages.ErrorResolvingUsers, zap.Strings("user_ids", wanted), zap.Error(err))
		return map[string]storemodels.User{}
	}
	return users
}

func (s *LoanLedgerService) enrich(ctx context.Context, loans []ledger.Loan) []LoanView {
	ids := make([]string, 0, len(loans)*2)
	for _, loan := range loans {
		ids = append(ids, loan.CreditorID, loan.DebtorID)
	}
	users := s.resolveUsers(ctx, ids...)

	views := make([]LoanView, 0, len(loans))
	for _, loan := range loans {
		view := LoanView{Loan: loan, Creditor: userOrPlaceholder(users, loan.CreditorID)}
		if loan.HasRegisteredDebtor() {
			debtor := userOrPlaceholder(users, loan.DebtorID)
			view.Debtor = &debtor
		}
		views = append(views, view)
	}
	return views
}

func userOrPlaceholder(users map[string]storemodels.User, id string) storemodels.User {
	if u, ok := users[id]; ok {
		return u
	}
	return storemodels.User{ID: id, FullName: consts.UnknownUserName}
}

// partiesOf leaves names of unknown users empty so descriptions use the fallbacks.
func partiesOf(loan ledger.Loan, users map[string]storemodels.User) ledger.Parties {
	return ledger.Parties{
		CreditorName: knownName(users, loan.CreditorID),
		DebtorName:   knownName(users, loan.DebtorID),
	}
}

func knownName(users map[string]storemodels.User, id string) string {
	u, ok := users[id]
	if !ok || u.FullName == consts.UnknownUserName {
		return ""
	}
	return u.FullName
}

func effectAmount(t ledger.Transition) *decimal.Decimal {
	if len(t.Effects) == 0 {
		return nil
	}
	amount := t.Effects[0].Amount
	return &amount
}

// withoutDelivered is the outbox as it stands after delivery.
func withoutDelivered(queued []ledger.Effect, delivered []string) []ledger.Effect {
	if len(delivered) == 0 {
		return queued
	}
	done := make(map[string]struct{}, len(delivered))
	for _, id := range delivered {
		done[id] = struct{}{}
	}
	out := make([]ledger.Effect, 0, len(queued))
	for _, e := range queued {
		if _, ok := done[e.ID]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.GetTracer().Start(ctx, "loan."+operation, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
