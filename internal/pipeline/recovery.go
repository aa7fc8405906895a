package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/underwriting/internal/model"
)

// criticalFieldCount is the number of fields completenessScore checks.
const criticalFieldCount = 6

// completenessScore counts how many of the critical fields are
// populated: address, unit count, price, GPR, operating expenses, NOI.
func completenessScore(rec *model.DealRecord) int {
	score := 0
	if rec.Property.Address != "" {
		score++
	}
	if model.Has(rec.Property.Units) {
		score++
	}
	if model.Has(rec.Pricing.Price) {
		score++
	}
	if model.Has(rec.PnL.GrossPotentialRent) {
		score++
	}
	if model.Has(rec.PnL.OperatingExpenses) {
		score++
	}
	if model.Has(rec.PnL.NOI) {
		score++
	}
	return score
}

// criticallyIncomplete reports whether any critical field is missing.
func criticallyIncomplete(rec *model.DealRecord) bool {
	return completenessScore(rec) < criticalFieldCount
}

// recover reruns extraction over an enlarged page set: pages from the
// full source whose text matches a recovery keyword (or the leading
// pages as fallback) are appended to the original text and the whole
// flow is rebuilt. The rebuilt record replaces the original only when
// it is strictly more complete. Failures never propagate; they are
// recorded on the original record and the original is returned.
func (p *Pipeline) recover(ctx context.Context, log *zap.Logger, orig, candidate *model.DealRecord, in Input) *model.DealRecord {
	if p.source == nil {
		log.Debug("pipeline: recovery skipped, no page source")
		return orig
	}

	pages, err := p.source.Pages(ctx)
	if err != nil {
		log.Warn("pipeline: recovery page fetch failed", zap.Error(err))
		orig.Metadata.RecoveryError = err.Error()
		return orig
	}
	if len(pages) == 0 {
		log.Debug("pipeline: recovery skipped, empty page source")
		return orig
	}

	pageNums, texts := selectPages(pages, p.cfg.Recovery.Keywords, p.cfg.Recovery.FallbackPages)
	log.Info("pipeline: running recovery pass",
		zap.Int("completeness", completenessScore(orig)),
		zap.Ints("pages", pageNums),
	)

	combined := in.RawText + "\n\n" + strings.Join(texts, "\n\n")
	recoveryCandidate, err := p.extractor.Extract(ctx, combined)
	if err != nil {
		log.Warn("pipeline: recovery extraction failed", zap.Error(err))
		orig.Metadata.RecoveryError = err.Error()
		return orig
	}

	in.RawText = combined
	rebuilt := p.build(orig.Metadata.RecordID, candidate, recoveryCandidate, in)

	before, after := completenessScore(orig), completenessScore(rebuilt)
	if after <= before {
		log.Info("pipeline: recovery did not improve record",
			zap.Int("before", before), zap.Int("after", after))
		return orig
	}

	rebuilt.Metadata.RecoveryPagesUsed = pageNums
	log.Info("pipeline: recovery improved record",
		zap.Int("before", before), zap.Int("after", after))
	return rebuilt
}

// selectPages picks the pages whose text contains a keyword, falling
// back to the first fallbackPages when nothing matches. Page numbers
// are 1-based.
func selectPages(pages []string, keywords []string, fallbackPages int) ([]int, []string) {
	var nums []int
	var texts []string
	for i, page := range pages {
		lower := strings.ToLower(page)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				nums = append(nums, i+1)
				texts = append(texts, page)
				break
			}
		}
	}
	if len(nums) > 0 {
		return nums, texts
	}

	n := fallbackPages
	if n <= 0 || n > len(pages) {
		n = len(pages)
	}
	for i := 0; i < n; i++ {
		nums = append(nums, i+1)
		texts = append(texts, pages[i])
	}
	return nums, texts
}
