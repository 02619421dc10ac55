package sqsconsumer

import "encoding/json"

// cycleReport summarizes the outcomes of one receive cycle.
type cycleReport struct {
	BatchSize int           `json:"batchSize"`
	Success   int           `json:"success,omitempty"`
	Failure   int           `json:"failure,omitempty"`
	Exhausted int           `json:"exhausted,omitempty"`
	Errors    []errorReport `json:"errors,omitempty"`
}

type errorReport struct {
	MessageId string `json:"messageId"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
}

func (r *cycleReport) observe(o Outcome) {
	switch o.Status {
	case Success:
		r.Success++
	case Failure:
		r.Failure++
	case Exhausted:
		r.Exhausted++
	}
	if o.Err != nil {
		r.Errors = append(r.Errors, errorReport{
			MessageId: o.Message.ID,
			Attempts:  o.Attempts,
			Error:     o.Err.Error(),
		})
	}
}

func (c *Consumer) logReport(r cycleReport) {
	js, err := json.Marshal(r)
	if err != nil {
		c.logger.Warn("unable to marshal cycle report", "error", err)
		return
	}
	c.logger.Info("receive cycle settled", "report", string(js))
}
