// Package pipeline orchestrates the deal-underwriting reconciliation
// flow: NL-extraction candidate and deterministic extraction are merged
// with first-truthy-wins precedence, missing numerics are filled by the
// derived-metrics cascade, financing is applied for the chosen mode,
// and a critically incomplete record triggers one recovery pass over an
// enlarged page set before the investment panel is computed.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwriting/internal/analysis"
	"github.com/sells-group/underwriting/internal/config"
	"github.com/sells-group/underwriting/internal/extract"
	"github.com/sells-group/underwriting/internal/finance"
	"github.com/sells-group/underwriting/internal/model"
)

// CandidateExtractor is the NL-extraction channel: an external model
// that turns raw text into a partial record. It is also the re-extract
// callback invoked by the recovery pass.
type CandidateExtractor interface {
	Extract(ctx context.Context, text string) (*model.DealRecord, error)
}

// PageSource exposes the full, unscoped per-page text of the original
// document, used only when recovery is triggered. Implementations wrap
// whatever OCR service produced the text.
type PageSource interface {
	Pages(ctx context.Context) ([]string, error)
}

// Input is one underwriting request. RawText is the text the user
// scoped the extraction to; PageRestricted marks it as a subset of a
// larger source, which is what arms the recovery pass. Mode and Terms
// are optional financing instructions.
type Input struct {
	RawText        string
	PageRestricted bool
	Mode           finance.Mode
	Terms          *finance.Terms
}

// Pipeline runs the reconciliation-and-computation flow. All
// collaborators are injected; the pipeline holds no mutable state, so
// one Pipeline is safe for concurrent callers.
type Pipeline struct {
	cfg       *config.Config
	extractor CandidateExtractor
	source    PageSource
}

// New creates a Pipeline. source may be nil when the caller cannot
// supply the full document (recovery is then skipped).
func New(cfg *config.Config, extractor CandidateExtractor, source PageSource) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		source:    source,
	}
}

// Run produces a fully-shaped record for the input. The only hard
// failure is the initial NL-extraction call; every later stage degrades
// into warnings and metadata instead of errors, so the caller always
// gets the best record obtainable once extraction succeeded.
func (p *Pipeline) Run(ctx context.Context, in Input) (*model.DealRecord, error) {
	recordID := uuid.NewString()
	log := zap.L().With(zap.String("record_id", recordID))
	log.Info("pipeline: starting underwriting run",
		zap.Int("raw_text_len", len(in.RawText)),
		zap.Bool("page_restricted", in.PageRestricted),
		zap.String("financing_mode", string(in.Mode)),
	)

	candidate, err := p.extractor.Extract(ctx, in.RawText)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: NL extraction")
	}

	rec := p.build(recordID, candidate, nil, in)

	if in.PageRestricted && criticallyIncomplete(rec) {
		rec = p.recover(ctx, log, rec, candidate, in)
	}

	rec.DealAnalysis = analysis.Compute(rec)

	log.Info("pipeline: underwriting run complete",
		zap.Int("completeness", completenessScore(rec)),
		zap.Int("warnings", len(rec.Metadata.Warnings)),
		zap.Float64("score", rec.DealAnalysis.Score),
		zap.String("verdict", rec.DealAnalysis.Verdict),
	)
	return rec, nil
}

// Reconcile merges an externally obtained NL candidate with the
// deterministic extraction of rawText and runs the cascade, without
// financing or recovery. This is the bare ingest interface for callers
// that drive the stages themselves.
func (p *Pipeline) Reconcile(candidate *model.DealRecord, rawText string) *model.DealRecord {
	return p.build(uuid.NewString(), candidate, nil, Input{RawText: rawText})
}

// build assembles one record from the extraction channels in priority
// order: the NL candidate seeds the record, the deterministic
// extractors fill gaps, and on a recovery rerun the second candidate
// fills whatever is still missing. Then the cascade, financing, and a
// second cascade pass (DSCR becomes computable once debt service
// exists) complete the numbers.
func (p *Pipeline) build(recordID string, candidate, recoveryCandidate *model.DealRecord, in Input) *model.DealRecord {
	rec := &model.DealRecord{
		Metadata: model.Metadata{
			RecordID:    recordID,
			ExtractedAt: time.Now().UTC(),
		},
	}

	model.Merge(rec, candidate)
	model.Merge(rec, extract.All(in.RawText))
	if recoveryCandidate != nil {
		model.Merge(rec, recoveryCandidate)
	}

	performed := runCascade(rec)
	if in.Mode != "" && in.Terms != nil {
		finance.Apply(rec, in.Mode, *in.Terms)
	}
	performed = append(performed, runCascade(rec)...)

	rec.Metadata.CalculationsPerformed = performed
	rec.Metadata.Warnings = validate(rec)
	return rec
}
