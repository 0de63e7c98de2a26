package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"loan-ledger/internal/app/handlers"
	"loan-ledger/internal/app/middleware"
	"loan-ledger/internal/service"
)

type Options struct {
	ServiceName  string
	MaxFileBytes int64
}

func SetupRouter(loans service.LoanLedgerServiceInterface, drainer service.OutboxDrainerInterface, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(middleware.NewMetricMiddleware(otel.Meter(opts.ServiceName)))
	r.Use(middleware.AttachRequestDetails())

	healthHandler := handlers.NewHealthCheckHandler()
	loanHandler := handlers.NewLoanHandler(loans, opts.MaxFileBytes)
	attachmentHandler := handlers.NewAttachmentHandler(loans, opts.MaxFileBytes)
	outboxHandler := handlers.NewOutboxHandler(drainer)

	r.GET("/health", healthHandler.HealthCheck)
	r.POST("/outbox/drain", outboxHandler.Drain)

	authed := r.Group("/", middleware.RequireActingUser())
	authed.POST("/attachments", attachmentHandler.Upload)

	loanRoutes := authed.Group("/loans")
	loanRoutes.POST("", loanHandler.CreateLoan)
	loanRoutes.GET("", loanHandler.ListLoans)
	loanRoutes.GET("/categorized", loanHandler.CategorizeLoans)
	loanRoutes.GET("/:id", loanHandler.GetLoan)
	loanRoutes.POST("/:id/confirm-receipt", loanHandler.ConfirmReceipt)
	loanRoutes.POST("/:id/repayments", loanHandler.SubmitRepayment)
	loanRoutes.POST("/:id/repayments/confirm", loanHandler.ConfirmRepayment)
	loanRoutes.POST("/:id/repayments/direct", loanHandler.RecordRepaymentDirectly)

	return r
}
