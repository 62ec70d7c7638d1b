package usecase

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

// Not parallel: it swaps the package tracer.
func TestResultService_SpansRecordErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := usecaseTracer
	usecaseTracer = provider.Tracer("usecase-test")
	t.Cleanup(func() { usecaseTracer = prev })

	f := newPoolFixture(t)
	groupID := f.createWorldCupGroup(t, ownerAlice, 10000)

	ctx, root := provider.Tracer("usecase-test").Start(t.Context(), "request")
	_, err := f.results.SetMatchday(ctx, adminRoot, groupID, "group-A-match-1", "0")
	if !errors.Is(err, tournament.ErrInvalidMatchday) {
		t.Fatalf("expected invalid matchday, got %v", err)
	}
	if _, err := f.results.SetMatchday(ctx, adminRoot, groupID, "group-A-match-1", "3"); err != nil {
		t.Fatalf("set matchday: %v", err)
	}
	root.End()

	var got []sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "usecase.ResultService.SetMatchday" {
			got = append(got, span)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected two matchday spans, got %d", len(got))
	}
	if got[0].Status().Code != codes.Error || len(got[0].Events()) == 0 {
		t.Fatalf("failed call must mark the span: status=%+v events=%d", got[0].Status(), len(got[0].Events()))
	}
	if got[1].Status().Code == codes.Error {
		t.Fatalf("successful call must not mark the span: %+v", got[1].Status())
	}
}
