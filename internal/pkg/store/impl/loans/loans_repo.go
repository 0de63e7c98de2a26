package loans

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/consts"
	mongodb "loan-ledger/internal/pkg/db/mongo"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/store/models"
	"loan-ledger/internal/pkg/store/repository"
	"loan-ledger/internal/service/interfaces"
)

type LoanRepository struct {
	repo interfaces.LoanStoreInterface
}

func NewLoansRepository(client *mongodb.MongoClient) *LoanRepository {
	collection := client.Database.Collection(consts.LoansCollection)
	repo := repository.NewMongoRepository[models.Loan](collection)
	return &LoanRepository{repo: repo}
}

func NewLoanRepositoryWithInterface(repo interfaces.LoanStoreInterface) *LoanRepository {
	return &LoanRepository{repo: repo}
}

func (lr *LoanRepository) EnsureIndexes(ctx context.Context) error {
	return lr.repo.EnsureIndexes(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "creditorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "debtorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "pendingEffects.id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	)
}

func (lr *LoanRepository) Insert(ctx context.Context, loan ledger.Loan) error {
	doc, err := models.FromLedgerLoan(loan)
	if err != nil {
		return err
	}
	if _, err := lr.repo.Create(ctx, doc); err != nil {
		logger.CtxError(ctx, log_messages.ErrorInsertingLoan, err, zap.String("loan_id", loan.ID))
		return fmt.Errorf("%w: insert loan: %v", consts.ErrorDependencyFailure, err)
	}
	logger.CtxInfo(ctx, log_messages.LoanCreated, zap.String("loan_id", loan.ID))
	return nil
}

func (lr *LoanRepository) GetByID(ctx context.Context, loanID string) (ledger.Loan, error) {
	doc, err := lr.repo.FindOne(ctx, bson.M{"_id": loanID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxWarn(ctx, log_messages.LoanNotFound, zap.String("loan_id", loanID))
			return ledger.Loan{}, consts.ErrorLoanNotFound
		}
		logger.CtxError(ctx, log_messages.ErrorFetchingLoan, err, zap.String("loan_id", loanID))
		return ledger.Loan{}, fmt.Errorf("%w: fetch loan: %v", consts.ErrorDependencyFailure, err)
	}
	return doc.ToLedger()
}

// ListByParty returns every loan where the user is creditor or debtor,
// newest first. The result is not capped so categorized buckets stay
// complete; the cursor fetches ListPageSize documents per round trip.
func (lr *LoanRepository) ListByParty(ctx context.Context, userID string) ([]ledger.Loan, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creditorId": userID},
		bson.M{"debtorId": userID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetBatchSize(consts.ListPageSize)

	docs, err := lr.repo.Find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorListingLoans, err, zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: list loans: %v", consts.ErrorDependencyFailure, err)
	}
	logger.CtxDebug(ctx, "Fetched loans by party", zap.String("user_id", userID), zap.Int("count", len(docs)))
	return toLedgerLoans(ctx, docs), nil
}

// ApplyTransition commits the new loan state and queues its effects in one
// conditional write keyed on the expected version.
func (lr *LoanRepository) ApplyTransition(ctx context.Context, t ledger.Transition) error {
	next, err := models.FromLedgerLoan(t.Loan)
	if err != nil {
		return err
	}
	effects, err := models.FromLedgerEffects(t.Effects)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": t.Loan.ID, "version": t.ExpectedVersion}
	update := bson.M{
		"$set": bson.M{
			"status":            next.Status,
			"repaidAmount":      next.RepaidAmount,
			"pendingRepayment":  next.PendingRepayment,
			"repaymentReceipts": next.RepaymentReceipts,
			"confirmedAt":       next.ConfirmedAt,
			"updatedAt":         next.UpdatedAt,
			"version":           next.Version,
		},
	}
	if len(effects) > 0 {
		update["$push"] = bson.M{"pendingEffects": bson.M{"$each": effects}}
	}

	res, err := lr.repo.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorUpdatingLoan, err, zap.String("loan_id", t.Loan.ID))
		return fmt.Errorf("%w: update loan: %v", consts.ErrorDependencyFailure, err)
	}
	if res.MatchedCount == 0 {
		logger.CtxWarn(ctx, log_messages.LoanVersionConflict,
			zap.String("loan_id", t.Loan.ID), zap.Int64("expected_version", t.ExpectedVersion))
		return consts.ErrorConcurrentUpdate
	}
	logger.CtxInfo(ctx, log_messages.LoanTransitionCommitted,
		zap.String("loan_id", t.Loan.ID),
		zap.String("status", next.Status),
		zap.Int64("version", next.Version),
		zap.Int("effects", len(effects)),
	)
	return nil
}

// RemovePendingEffect drops a delivered effect from the outbox. The version
// is left alone so in-flight transitions are not invalidated.
func (lr *LoanRepository) RemovePendingEffect(ctx context.Context, loanID, effectID string) error {
	update := bson.M{"$pull": bson.M{"pendingEffects": bson.M{"id": effectID}}}
	if _, err := lr.repo.UpdateOne(ctx, bson.M{"_id": loanID}, update); err != nil {
		logger.CtxError(ctx, log_messages.ErrorRemovingPendingEffect, err,
			zap.String("loan_id", loanID), zap.String("effect_id", effectID))
		return fmt.Errorf("%w: pull effect: %v", consts.ErrorDependencyFailure, err)
	}
	return nil
}

func (lr *LoanRepository) FindWithPendingEffects(ctx context.Context, limit int64) ([]ledger.Loan, error) {
	filter := bson.M{"pendingEffects.0": bson.M{"$exists": true}}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	docs, err := lr.repo.Find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorListingOutbox, err)
		return nil, fmt.Errorf("%w: list outbox: %v", consts.ErrorDependencyFailure, err)
	}
	return toLedgerLoans(ctx, docs), nil
}

// NormalizeLegacyStatus rewrites "paid" to "repaid" and returns the number of loans touched.
func (lr *LoanRepository) NormalizeLegacyStatus(ctx context.Context) (int64, error) {
	res, err := lr.repo.UpdateMany(ctx,
		bson.M{"status": ledger.LegacyStatusPaid},
		bson.M{"$set": bson.M{"status": string(ledger.StatusRepaid)}},
	)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorNormalizingStatus, err)
		return 0, fmt.Errorf("%w: normalize status: %v", consts.ErrorDependencyFailure, err)
	}
	logger.CtxInfo(ctx, log_messages.LegacyStatusNormalized, zap.Int64("modified", res.ModifiedCount))
	return res.ModifiedCount, nil
}

// toLedgerLoans skips documents that cannot be decoded instead of failing the whole page.
func toLedgerLoans(ctx context.Context, docs []models.Loan) []ledger.Loan {
	out := make([]ledger.Loan, 0, len(docs))
	for _, doc := range docs {
		loan, err := doc.ToLedger()
		if err != nil {
			logger.CtxError(ctx, log_messages.ErrorDecodingLoan, err, zap.String("loan_id", doc.ID))
			continue
		}
		out = append(out, loan)
	}
	return out
}
