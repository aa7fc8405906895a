package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwriting/internal/config"
	"github.com/sells-group/underwriting/internal/finance"
	"github.com/sells-group/underwriting/internal/model"
)

// fakeExtractor returns canned records keyed by whether the input text
// grew past the original request (the recovery call).
type fakeExtractor struct {
	first    *model.DealRecord
	recovery *model.DealRecord
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (*model.DealRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > 1 && f.recovery != nil {
		return f.recovery, nil
	}
	return f.first, nil
}

type fakePages struct {
	pages []string
	err   error
}

func (f *fakePages) Pages(context.Context) ([]string, error) {
	return f.pages, f.err
}

func TestRunTraditionalFinancing(t *testing.T) {
	candidate := &model.DealRecord{}
	candidate.Property.Address = "450 Maple Court"
	candidate.Property.Units = model.F(20)
	candidate.Pricing.Price = model.F(1_000_000)
	candidate.PnL.GrossPotentialRent = model.F(150_000)
	candidate.PnL.OperatingExpenses = model.F(80_000)
	candidate.PnL.NOI = model.F(70_000)

	p := New(nil, &fakeExtractor{first: candidate}, nil)

	rec, err := p.Run(context.Background(), Input{
		RawText: "some offering memorandum text",
		Mode:    finance.ModeTraditional,
		Terms:   &finance.Terms{DownPaymentPct: 25, InterestRate: 6, TermYears: 30},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Metadata.RecordID)
	assert.False(t, rec.Metadata.ExtractedAt.IsZero())

	// Cascade fills price per unit and cap rate from extracted figures.
	assert.Equal(t, 50_000.0, model.Val(rec.Pricing.PricePerUnit))
	assert.InDelta(t, 0.07, model.Val(rec.PnL.CapRate), 1e-9)

	// Financing applied for the chosen mode.
	assert.Equal(t, 750_000.0, model.Val(rec.Pricing.LoanAmount))
	assert.Equal(t, 250_000.0, model.Val(rec.Pricing.DownPayment))
	require.True(t, model.Has(rec.Pricing.AnnualDebtService))

	// DSCR became computable on the post-financing pass.
	require.True(t, model.Has(rec.Underwriting.DSCR))
	assert.InDelta(t, 70_000 / *rec.Pricing.AnnualDebtService, *rec.Underwriting.DSCR, 1e-9)
	assert.Contains(t, rec.Metadata.CalculationsPerformed, "dscr")

	// The analysis panel is always attached.
	require.NotNil(t, rec.DealAnalysis)
	assert.InDelta(t, 7.0, rec.DealAnalysis.CapRatePct, 1e-9)
	assert.NotEmpty(t, rec.DealAnalysis.Verdict)

	assert.Empty(t, rec.Metadata.Warnings)
}

func TestRunExtractionFailure(t *testing.T) {
	p := New(nil, &fakeExtractor{err: eris.New("model unavailable")}, nil)

	_, err := p.Run(context.Background(), Input{RawText: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NL extraction")
}

func TestRunCandidateWinsOverDeterministic(t *testing.T) {
	// The NL candidate states a price; the raw text carries a different
	// one. The candidate is the higher-priority source.
	candidate := &model.DealRecord{}
	candidate.Pricing.Price = model.F(950_000)

	p := New(nil, &fakeExtractor{first: candidate}, nil)

	rec, err := p.Run(context.Background(), Input{
		RawText: "PRICING DETAIL\nList Price: $1,200,000\nNo. of Units: 24",
	})
	require.NoError(t, err)

	assert.Equal(t, 950_000.0, model.Val(rec.Pricing.Price))
	// Gaps still come from the deterministic channel.
	assert.Equal(t, 24.0, model.Val(rec.Property.Units))
}

func TestRunNoRecoveryWhenComplete(t *testing.T) {
	candidate := &model.DealRecord{}
	candidate.Property.Address = "1 Complete Way"
	candidate.Property.Units = model.F(10)
	candidate.Pricing.Price = model.F(500_000)
	candidate.PnL.GrossPotentialRent = model.F(90_000)
	candidate.PnL.OperatingExpenses = model.F(40_000)
	candidate.PnL.NOI = model.F(50_000)

	ext := &fakeExtractor{first: candidate}
	p := New(nil, ext, &fakePages{pages: []string{"pricing page"}})

	_, err := p.Run(context.Background(), Input{RawText: "text", PageRestricted: true})
	require.NoError(t, err)
	assert.Equal(t, 1, ext.calls)
}

func TestReconcile(t *testing.T) {
	candidate := &model.DealRecord{}
	candidate.PnL.NOI = model.F(70_000)

	p := New(nil, &fakeExtractor{}, nil)
	rec := p.Reconcile(candidate, "PRICING\nList Price: $1,000,000")

	assert.Equal(t, 1_000_000.0, model.Val(rec.Pricing.Price))
	assert.InDelta(t, 0.07, model.Val(rec.PnL.CapRate), 1e-9)
	assert.Nil(t, rec.DealAnalysis)
}

func TestNewDefaultsConfig(t *testing.T) {
	p := New(nil, &fakeExtractor{}, nil)
	require.NotNil(t, p.cfg)
	assert.Equal(t, config.Default().Recovery.FallbackPages, p.cfg.Recovery.FallbackPages)
	assert.True(t, len(p.cfg.Recovery.Keywords) > 0)
}

func TestRunRecoveryPipeline(t *testing.T) {
	// Scenario: the scoped text misses NOI and price; the full document
	// carries an operating summary page that supplies them.
	first := &model.DealRecord{}
	first.Property.Address = "77 Partial Pl"
	first.Property.Units = model.F(30)
	first.PnL.GrossPotentialRent = model.F(400_000)

	second := &model.DealRecord{}
	second.Property.Address = "77 Partial Pl"
	second.Property.Units = model.F(30)
	second.PnL.GrossPotentialRent = model.F(400_000)
	second.PnL.OperatingExpenses = model.F(160_000)
	second.PnL.NOI = model.F(240_000)
	second.Pricing.Price = model.F(2_400_000)

	ext := &fakeExtractor{first: first, recovery: second}
	pages := &fakePages{pages: []string{
		"cover page glossy photo",
		"operating summary with noi figures",
		"broker contact info",
	}}

	p := New(nil, ext, pages)

	rec, err := p.Run(context.Background(), Input{RawText: "scoped text", PageRestricted: true})
	require.NoError(t, err)

	assert.Equal(t, 2, ext.calls)
	assert.Equal(t, 240_000.0, model.Val(rec.PnL.NOI))
	assert.Equal(t, 2_400_000.0, model.Val(rec.Pricing.Price))
	assert.Equal(t, []int{2}, rec.Metadata.RecoveryPagesUsed)
	assert.Empty(t, rec.Metadata.RecoveryError)
}
