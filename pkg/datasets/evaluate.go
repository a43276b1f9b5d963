package datasets

import (
	"context"

	"github.com/q0rtex/qortex-go/pkg/errors"
	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/processor"
)

// EvaluationReport summarizes a trace replay.
type EvaluationReport struct {
	Total          int
	Passed         int
	RealityFailed  int
	Errored        int
	MeanReality    float64
	MeanConfidence float64
}

// Evaluate replays recorded traces through a processor and aggregates
// the outcomes. Reality-floor rejections are counted, not fatal; any
// other error aborts the run.
func Evaluate(ctx context.Context, p *processor.Processor, examples []TraceExample) (*EvaluationReport, error) {
	report := &EvaluationReport{Total: len(examples)}
	logger := logging.GetLogger()

	var realitySum, confidenceSum float64
	for i, ex := range examples {
		result, err := p.ProcessInput(ctx, ex.Input, processor.InputKind(ex.Kind))
		if err != nil {
			if errors.Code(err) == errors.RealityTooLow {
				report.RealityFailed++
				continue
			}
			if errors.Code(err) == errors.Canceled {
				return nil, err
			}
			report.Errored++
			logger.Warn(ctx, "Trace %d failed: %v", i, err)
			continue
		}
		report.Passed++
		realitySum += result.RealityScore
		confidenceSum += result.Confidence
	}

	if report.Passed > 0 {
		report.MeanReality = realitySum / float64(report.Passed)
		report.MeanConfidence = confidenceSum / float64(report.Passed)
	}
	return report, nil
}
