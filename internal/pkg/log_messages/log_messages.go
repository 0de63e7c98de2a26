package log_messages

const (
	ServerStarting             = "Starting HTTP server"
	ServerStartFailure         = "failed to start server"
	ServerShutdown             = "Shutting down server..."
	ServerForcedShutdown       = "Server forced to shutdown"
	ServerExiting              = "Server exiting"
	FailedLoadingConfiguration = "Failed to load configuration"
	CleanupStarted             = "Starting cleanup of resources..."
	CleanupCompleted           = "All resources cleaned up successfully"
	RequestCompleted           = "Request completed"
	ErrorConnectingMongo       = "Failed to connect to MongoDB"
	ErrorPingingMongo          = "MongoDB ping failed"
	MongoConnecting            = "Connecting to MongoDB"
	MongoConnected             = "Successfully connected to MongoDB"
	ErrorConnectingRedis       = "Failed to connect to Redis"
	ErrorPingingRedis          = "Redis ping failed"
	ErrorBuildingRedisTLS      = "Failed to build Redis TLS config"
	RedisConnecting            = "Connecting to Redis"
	RedisConnected             = "Successfully connected to Redis"
	ErrorEnsuringIndexes       = "Failed to ensure indexes"
	ErrorCreatingKafkaProducer = "Failure in Kafka producer creation"
	ErrorCreatingPublisher     = "Failure in PubSub publisher creation"
	AttachmentStoreDisabled    = "Attachment store unavailable, uploads will be skipped"
	ErrorSettingUpTracing      = "Failed to set up tracing"
	ErrorRegisteringMetric     = "Failed to register HTTP metric"

	// Loan store
	LoanCreated                = "Loan created"
	LoanNotFound               = "Loan not found"
	LoanTransitionCommitted    = "Loan transition committed"
	LoanVersionConflict        = "Loan version changed before the update applied"
	LegacyStatusNormalized     = "Legacy loan statuses normalized"
	ErrorInsertingLoan         = "Failed to insert loan"
	ErrorFetchingLoan          = "Failed to fetch loan"
	ErrorListingLoans          = "Failed to list loans"
	ErrorUpdatingLoan          = "Failed to update loan"
	ErrorDecodingLoan          = "Failed to decode stored loan, skipping"
	ErrorListingOutbox         = "Failed to list loans with pending effects"
	ErrorRemovingPendingEffect = "Failed to remove delivered effect from loan"
	ErrorNormalizingStatus     = "Failed to normalize legacy loan statuses"

	// Transaction store
	TransactionAppended         = "Derived transaction appended"
	TransactionAlreadyDelivered = "Derived transaction already delivered"
	ErrorAppendingTransaction   = "Failed to append derived transaction"
	DebtorExpenseSkipped        = "debtor-side expense skipped: debtor not registered"
	ErrorDeliveringEffect       = "Failed to deliver derived transaction, left in outbox"
	OutboxDrainStarted          = "Outbox drain started"
	OutboxDrainCompleted        = "Outbox drain completed"
	OutboxDispatcherStarted     = "Outbox dispatcher started"
	OutboxDispatcherStopped     = "Outbox dispatcher stopped"
	ErrorOutboxDrain            = "Outbox drain failed"
	ErrorOutboxDispatcherSubmit = "Failed to submit outbox task"

	// Directories
	ErrorResolvingUsers     = "Failed to resolve users, using placeholders"
	ErrorReadingUserCache   = "Failed to read user cache"
	ErrorWritingUserCache   = "Failed to write user cache"
	ErrorCheckingMembership = "Failed to check family membership"
	CreditorNotFamilyMember = "Creditor is not a member of the family"

	// Attachments
	AttachmentUploaded       = "Attachment uploaded"
	ErrorUploadingAttachment = "Failed to upload attachment"
	AttachmentUploadDegraded = "Attachment upload failed, continuing without attachment"
	ReceiptUploadSkipped     = "Receipt not uploaded, repayment would be rejected"
	ReceiptOrphaned          = "Receipt stored for a rejected repayment"

	// Transitions
	TransitionRejected = "Loan transition rejected"
	ErrorAcquiringLock = "Failed to acquire loan lock"
	ErrorReleasingLock = "Failed to release loan lock"

	// Events and notifications
	ErrorPublishingLoanEvent    = "Failed to publish loan event"
	LoanEventPublished          = "Loan event published"
	ErrorPublishingNotification = "Failed to publish notification"
	NotificationPublished       = "Notification published"
	ErrorSerializingMessage     = "Failed to serialize message"
)
