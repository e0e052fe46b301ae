package alphavantage

import "github.com/rs/zerolog"

// CounterResetJob restores the client's daily request budget.
// It should be scheduled at midnight.
type CounterResetJob struct {
	client *Client
	log    zerolog.Logger
}

// NewCounterResetJob creates a new counter reset job.
func NewCounterResetJob(client *Client, log zerolog.Logger) *CounterResetJob {
	return &CounterResetJob{
		client: client,
		log:    log.With().Str("job", "alphavantage_counter_reset").Logger(),
	}
}

// Run resets the counter.
func (j *CounterResetJob) Run() error {
	used := j.client.dailyLimit - j.client.GetRemainingRequests()
	j.client.ResetDailyCounter()
	j.log.Info().Int("requests_used", used).Msg("Reset Alpha Vantage daily request counter")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CounterResetJob) Name() string {
	return "alphavantage_counter_reset"
}
