package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	tracing "loan-ledger/internal/pkg/otel"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tracing.UseTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), "loan-ledger-test")
	t.Cleanup(func() { tracing.UseTracerProvider(noop.NewTracerProvider(), "") })
	return rec
}

func TestTransitions_AreTraced(t *testing.T) {
	rec := recordSpans(t)
	f := newFixture(t)
	f.knowsEveryone()
	ctx := context.Background()

	loan := f.createOutstanding(t, "200")
	_, err := f.svc.SubmitRepayment(ctx, RepaymentRequest{LoanID: loan.ID, ActingUserID: "ben", Amount: dec("50")})
	require.NoError(t, err)
	_, err = f.svc.ConfirmRepayment(ctx, loan.ID, "ben")
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "loan.create", spans[0].Name())
	assert.Equal(t, "loan.submit_repayment", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)

	failed := spans[2]
	assert.Equal(t, "loan.confirm_repayment", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	require.NotEmpty(t, failed.Events())
	assert.Equal(t, "exception", failed.Events()[0].Name)

	attrs := map[string]string{}
	for _, kv := range failed.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, loan.ID, attrs["loan.id"])
	assert.Equal(t, "ben", attrs["loan.acting_user_id"])
}
