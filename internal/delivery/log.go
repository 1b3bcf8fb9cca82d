package delivery

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Stats summarizes the outcome log.
type Stats struct {
	TotalEmails           int        `json:"total_emails"`
	Successful            int        `json:"successful"`
	Failed                int        `json:"failed"`
	SuccessRate           float64    `json:"success_rate"`
	AverageDeliveryTimeMS float64    `json:"average_delivery_time_ms"`
	LastEmailSent         *time.Time `json:"last_email_sent,omitempty"`
}

// Stats reports counts, the success rate and the mean delivery time of
// successful sends with a recorded duration.
func (c *Channel) Stats() Stats {
	log := c.Log()
	st := Stats{TotalEmails: len(log)}
	if len(log) == 0 {
		return st
	}

	var total int64
	var timed int
	var last time.Time
	for _, o := range log {
		if o.Success {
			st.Successful++
			if o.DeliveryTimeMS > 0 {
				total += o.DeliveryTimeMS
				timed++
			}
		} else {
			st.Failed++
		}
		if o.Timestamp.After(last) {
			last = o.Timestamp
		}
	}
	st.SuccessRate = float64(st.Successful) / float64(len(log)) * 100
	if timed > 0 {
		st.AverageDeliveryTimeMS = float64(total) / float64(timed)
	}
	st.LastEmailSent = &last
	return st
}

// Log returns a copy of the recorded outcomes in send order.
func (c *Channel) Log() []model.DeliveryOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.DeliveryOutcome, len(c.log))
	copy(out, c.log)
	return out
}

// Clear empties the outcome log.
func (c *Channel) Clear() {
	c.mu.Lock()
	c.log = nil
	c.mu.Unlock()
	zap.L().Info("delivery: log cleared")
}

// ExportLog writes the outcome log to path as CSV. An empty log writes
// nothing.
func (c *Channel) ExportLog(path string) error {
	log := c.Log()
	if len(log) == 0 {
		zap.L().Info("No delivery results to export")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "delivery: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := csvutil.NewEncoder(w).Encode(log); err != nil {
		return eris.Wrap(err, "delivery: encode log")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "delivery: flush log")
	}

	zap.L().Info("delivery: log exported", zap.String("path", path), zap.Int("rows", len(log)))
	return nil
}
