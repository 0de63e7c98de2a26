package transactions

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
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

type TransactionRepository struct {
	repo interfaces.TransactionStoreInterface
}

func NewTransactionsRepository(client *mongodb.MongoClient) *TransactionRepository {
	collection := client.Database.Collection(consts.TransactionsCollection)
	return &TransactionRepository{repo: repository.NewMongoRepository[models.Transaction](collection)}
}

func NewTransactionRepositoryWithInterface(repo interfaces.TransactionStoreInterface) *TransactionRepository {
	return &TransactionRepository{repo: repo}
}

// Append inserts the transaction under the effect id. A duplicate key means
// an earlier attempt already landed, which counts as success.
func (tr *TransactionRepository) Append(ctx context.Context, effect ledger.Effect) (string, error) {
	doc, err := models.TransactionFromEffect(effect)
	if err != nil {
		return "", err
	}

	if _, err := tr.repo.Create(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logger.CtxInfo(ctx, log_messages.TransactionAlreadyDelivered,
				zap.String("transaction_id", effect.ID), zap.String("loan_id", effect.LoanID))
			return effect.ID, nil
		}
		logger.CtxError(ctx, log_messages.ErrorAppendingTransaction, err,
			zap.String("transaction_id", effect.ID), zap.String("loan_id", effect.LoanID))
		return "", fmt.Errorf("%w: append transaction: %v", consts.ErrorDependencyFailure, err)
	}

	logger.CtxInfo(ctx, log_messages.TransactionAppended,
		zap.String("transaction_id", effect.ID),
		zap.String("loan_id", effect.LoanID),
		zap.String("type", string(effect.Type)),
		zap.String("user_id", effect.UserID),
	)
	return effect.ID, nil
}
