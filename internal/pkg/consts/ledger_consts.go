package consts

const (
	HeaderUserID        = "X-User-ID"
	HeaderRequestID     = "X-Request-ID"
	AttachmentFormField = "file"

	LockKeyPrefix      = "loan-ledger:lock:loan:"
	UserCacheKeyPrefix = "loan-ledger:user:"

	UnknownUserName = "Unknown user"

	// ListPageSize is the cursor batch size when reading every loan of a party.
	ListPageSize = 500
)

// SensitiveHeaders are masked in request logs.
var SensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-Api-Key"}

// Loan lifecycle events published to Kafka.
const (
	EventLoanCreated            = "loan.created"
	EventLoanReceiptConfirmed   = "loan.receipt_confirmed"
	EventLoanRepaymentSubmitted = "loan.repayment_submitted"
	EventLoanRepaymentConfirmed = "loan.repayment_confirmed"
	EventLoanRepaymentRecorded  = "loan.repayment_recorded"
)

// Counterparty notification types published to Pub/Sub.
const (
	NotificationLoanAwaitingConfirmation      = "LOAN_AWAITING_CONFIRMATION"
	NotificationLoanReceiptConfirmed          = "LOAN_RECEIPT_CONFIRMED"
	NotificationRepaymentAwaitingConfirmation = "REPAYMENT_AWAITING_CONFIRMATION"
	NotificationRepaymentConfirmed            = "REPAYMENT_CONFIRMED"
	NotificationRepaymentRecorded             = "REPAYMENT_RECORDED"
)
