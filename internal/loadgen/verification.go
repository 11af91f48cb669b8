package loadgen

import (
	"fmt"

	"github.com/okian/gradebook/internal/domain/model"
)

// verify checks that the history grew by the accepted submissions up to its
// capacity, is ordered newest first, and agrees with the stats totals.
func verify(r *Report, h historyResponse) error {
	want := r.PriorCount + r.Accepted
	if h.Capacity > 0 && want > h.Capacity {
		want = h.Capacity
	}
	if h.Count != want {
		return fmt.Errorf("%w: history holds %d records, want %d", ErrVerification, h.Count, want)
	}
	if len(h.Evaluations) != h.Count {
		return fmt.Errorf("%w: count %d disagrees with %d records", ErrVerification, h.Count, len(h.Evaluations))
	}
	if err := verifyOrder(h.Evaluations); err != nil {
		return err
	}
	if r.Stats.Total != h.Count {
		return fmt.Errorf("%w: stats total %d, history %d", ErrVerification, r.Stats.Total, h.Count)
	}
	sum := r.Stats.ExcellentCount + r.Stats.PassedCount + r.Stats.FailedCount + r.Stats.InvalidCount
	if sum != r.Stats.Total {
		return fmt.Errorf("%w: status counts sum to %d, total %d", ErrVerification, sum, r.Stats.Total)
	}
	return nil
}

func verifyOrder(history []model.Evaluation) error {
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			return fmt.Errorf("%w: record %d (%s) is newer than record %d (%s)", ErrVerification,
				i, history[i].ID, i-1, history[i-1].ID)
		}
	}
	return nil
}
