package rostercheck

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mergington/activities/pkg/logger"
)

type mutateFunc func(ctx context.Context, activity, email string) (string, error)

// tally counts request outcomes across workers.
type tally struct {
	ok, duplicate, full, failed atomic.Int64

	mu       sync.Mutex
	accepted []string
}

// submit runs mutate for every email using a worker pool. Emails whose
// request succeeded are returned in completion order.
func submit(ctx context.Context, cfg *Config, emails []string, mutate mutateFunc) *tally {
	t := &tally{}
	jobs := make(chan string, cfg.Workers*workerChannelMultiplier)

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for email := range jobs {
				if ctx.Err() != nil {
					t.failed.Add(1)
					continue
				}
				outcome, err := mutate(ctx, cfg.Activity, email)
				if err != nil {
					logger.Get().Debug(ctx, "request failed", logger.String("email", email), logger.Error(err))
				}
				t.record(email, outcome)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, email := range emails {
			select {
			case <-ctx.Done():
				return
			case jobs <- email:
			}
		}
	}()

	wg.Wait()
	return t
}

func (t *tally) record(email, outcome string) {
	switch outcome {
	case outcomeOK:
		t.ok.Add(1)
		t.mu.Lock()
		t.accepted = append(t.accepted, email)
		t.mu.Unlock()
	case outcomeDuplicate:
		t.duplicate.Add(1)
	case outcomeFull:
		t.full.Add(1)
	default:
		t.failed.Add(1)
	}
}

// doubled returns every email twice, interleaved so both copies race.
func doubled(emails []string) []string {
	out := make([]string, 0, len(emails)*2)
	for _, e := range emails {
		out = append(out, e, e)
	}
	return out
}
