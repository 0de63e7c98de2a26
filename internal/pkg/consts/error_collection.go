package consts

import "loan-ledger/internal/pkg/models"

var (
	ErrorInvalidRequest = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_INVALID_REQUEST",
		Message: "Invalid request",
		Kind:    models.KindInvalidRequest,
	}
	ErrorMissingActingUser = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_ACTING_USER_MISSING",
		Message: "Acting user is required",
		Kind:    models.KindInvalidRequest,
	}
	ErrorSelfLoan = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_SELF_LOAN",
		Message: "Creditor and debtor must be different users",
		Kind:    models.KindInvalidRequest,
	}
	ErrorDebtorRequired = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_DEBTOR_REQUIRED",
		Message: "Either debtorId or debtorName is required",
		Kind:    models.KindInvalidRequest,
	}
	ErrorConfirmationNeedsRegisteredDebtor = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_CONFIRMATION_NEEDS_REGISTERED_DEBTOR",
		Message: "Receipt confirmation requires a registered debtor",
		Kind:    models.KindInvalidRequest,
	}
	ErrorUnauthorized = &models.CustomError{
		Code:    "LOAN_LEDGER_AUTHORIZATION_NOT_A_PARTY",
		Message: "Acting user is not allowed to perform this transition",
		Kind:    models.KindUnauthorized,
	}
	ErrorNotFamilyMember = &models.CustomError{
		Code:    "LOAN_LEDGER_AUTHORIZATION_NOT_FAMILY_MEMBER",
		Message: "Creditor is not a member of the family",
		Kind:    models.KindUnauthorized,
	}
	ErrorLoanNotFound = &models.CustomError{
		Code:    "LOAN_LEDGER_LOAN_NOT_FOUND",
		Message: "Loan not found",
		Kind:    models.KindNotFound,
	}
	ErrorInvalidState = &models.CustomError{
		Code:    "LOAN_LEDGER_STATE_INVALID",
		Message: "Loan is not in a state that allows this transition",
		Kind:    models.KindInvalidState,
	}
	ErrorFamilyLoanDirectRepayment = &models.CustomError{
		Code:    "LOAN_LEDGER_STATE_FAMILY_LOAN_DIRECT_REPAYMENT",
		Message: "Direct repayments are only allowed on personal loans",
		Kind:    models.KindInvalidState,
	}
	ErrorInvalidAmount = &models.CustomError{
		Code:    "LOAN_LEDGER_VALIDATION_INVALID_AMOUNT",
		Message: "Amount must be positive and not exceed the outstanding balance",
		Kind:    models.KindInvalidAmount,
	}
	ErrorAlreadyPending = &models.CustomError{
		Code:    "LOAN_LEDGER_STATE_REPAYMENT_ALREADY_PENDING",
		Message: "A repayment is already awaiting confirmation",
		Kind:    models.KindAlreadyPending,
	}
	ErrorNoPendingRepayment = &models.CustomError{
		Code:    "LOAN_LEDGER_STATE_NO_PENDING_REPAYMENT",
		Message: "There is no pending repayment to confirm",
		Kind:    models.KindNoPendingRepayment,
	}
	ErrorConcurrentUpdate = &models.CustomError{
		Code:    "LOAN_LEDGER_CONCURRENT_UPDATE",
		Message: "Loan was modified concurrently, retry the request",
		Kind:    models.KindConcurrentUpdate,
	}
	ErrorDependencyFailure = &models.CustomError{
		Code:    "LOAN_LEDGER_DEPENDENCY_FAILURE",
		Message: "A required dependency failed",
		Kind:    models.KindDependencyFailure,
	}
	ErrorAttachmentUploadFailed = &models.CustomError{
		Code:    "LOAN_LEDGER_ATTACHMENT_UPLOAD_FAILED",
		Message: "Attachment upload failed",
		Kind:    models.KindDependencyFailure,
	}
)
