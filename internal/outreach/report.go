package outreach

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/model"
)

const commonErrorsN = 5

// ErrorCount is one entry of the common errors table.
type ErrorCount struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

// Statistics aggregates a run's results.
type Statistics struct {
	TotalProspects              int                    `json:"total_prospects"`
	Successful                  int                    `json:"successful_processing"`
	Failed                      int                    `json:"failed"`
	SuccessRate                 float64                `json:"success_rate"`
	StepCounts                  map[model.Step]int     `json:"step_counts"`
	StepRates                   map[model.Step]float64 `json:"step_rates"`
	DeliveryStats               *delivery.Stats        `json:"email_delivery_stats,omitempty"`
	AveragePersonalizationScore float64                `json:"average_personalization_score"`
	CommonErrors                []ErrorCount           `json:"common_errors"`
	ProcessingTimestamp         time.Time              `json:"processing_timestamp"`
}

// Summarize computes Statistics for results. Delivery stats are attached
// only when ds records at least one send.
func Summarize(results []*model.ProcessingResult, ds *delivery.Stats) Statistics {
	st := Statistics{
		TotalProspects:      len(results),
		StepCounts:          map[model.Step]int{},
		StepRates:           map[model.Step]float64{},
		CommonErrors:        []ErrorCount{},
		ProcessingTimestamp: time.Now(),
	}

	errCounts := map[string]int{}
	var errOrder []string
	var scoreSum float64
	var scored int
	for _, r := range results {
		if r.Success {
			st.Successful++
		}
		for _, s := range r.StepsCompleted {
			st.StepCounts[s]++
		}
		for _, e := range r.Errors {
			if _, ok := errCounts[e]; !ok {
				errOrder = append(errOrder, e)
			}
			errCounts[e]++
		}
		if r.EmailContent != nil {
			scoreSum += r.EmailContent.PersonalizationScore
			scored++
		}
	}
	st.Failed = st.TotalProspects - st.Successful

	if st.TotalProspects > 0 {
		total := float64(st.TotalProspects)
		st.SuccessRate = float64(st.Successful) / total * 100
		for s, n := range st.StepCounts {
			st.StepRates[s] = float64(n) / total * 100
		}
	}
	if scored > 0 {
		st.AveragePersonalizationScore = scoreSum / float64(scored)
	}

	for _, e := range errOrder {
		st.CommonErrors = append(st.CommonErrors, ErrorCount{Error: e, Count: errCounts[e]})
	}
	sort.SliceStable(st.CommonErrors, func(i, j int) bool {
		return st.CommonErrors[i].Count > st.CommonErrors[j].Count
	})
	if len(st.CommonErrors) > commonErrorsN {
		st.CommonErrors = st.CommonErrors[:commonErrorsN]
	}

	if ds != nil && ds.TotalEmails > 0 {
		cp := *ds
		st.DeliveryStats = &cp
	}
	return st
}

// LogStatistics writes the final summary block.
func LogStatistics(st Statistics) {
	log := zap.L()
	log.Info("outreach: final statistics",
		zap.Int("total", st.TotalProspects),
		zap.Int("successful", st.Successful),
		zap.Int("failed", st.Failed),
		zap.Float64("success_rate", st.SuccessRate),
		zap.Float64("avg_personalization_score", st.AveragePersonalizationScore),
	)
	for _, s := range model.AllSteps() {
		if n, ok := st.StepCounts[s]; ok {
			log.Info("outreach: step completion",
				zap.String("step", string(s)),
				zap.Int("count", n),
				zap.Int("total", st.TotalProspects),
				zap.Float64("rate", st.StepRates[s]),
			)
		}
	}
	if st.DeliveryStats != nil {
		log.Info("outreach: delivery",
			zap.Float64("success_rate", st.DeliveryStats.SuccessRate),
			zap.Float64("avg_delivery_time_ms", st.DeliveryStats.AverageDeliveryTimeMS),
		)
	}
}

// ExportMetadata heads the results export.
type ExportMetadata struct {
	ExportTimestamp time.Time `json:"export_timestamp"`
	TotalProspects  int       `json:"total_prospects"`
	TotalResults    int       `json:"total_results"`
	SuccessRate     float64   `json:"success_rate"`
}

// Export is the document written by ExportResults.
type Export struct {
	Metadata ExportMetadata            `json:"metadata"`
	Results  []*model.ProcessingResult `json:"results"`
}

// ExportResults writes results to path as indented JSON. totalProspects is
// the number loaded, which exceeds len(results) after a cancelled run.
func ExportResults(path string, totalProspects int, results []*model.ProcessingResult) error {
	if results == nil {
		results = []*model.ProcessingResult{}
	}
	doc := Export{
		Metadata: ExportMetadata{
			ExportTimestamp: time.Now(),
			TotalProspects:  totalProspects,
			TotalResults:    len(results),
			SuccessRate:     Summarize(results, nil).SuccessRate,
		},
		Results: results,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "outreach: marshal results")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "outreach: write %s", path)
	}
	zap.L().Info("outreach: results exported", zap.String("path", path), zap.Int("results", len(results)))
	return nil
}
