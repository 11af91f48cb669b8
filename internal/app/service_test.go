package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gradebook/internal/adapters/repository"
	"github.com/okian/gradebook/internal/domain/evaluation"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/validation"
)

// brokenStore fails every operation.
type brokenStore struct{ err error }

func (b brokenStore) Append(context.Context, model.Evaluation) error { return b.err }
func (b brokenStore) LoadAll(context.Context) ([]model.Evaluation, error) {
	return []model.Evaluation{}, fmt.Errorf("load: %w", repository.ErrCorrupt)
}
func (b brokenStore) Clear(context.Context) error { return b.err }
func (b brokenStore) Count(context.Context) int   { return 0 }
func (b brokenStore) Close() error                { return nil }

func submission(grades ...string) validation.Submission {
	keys := []string{"mathematics", "science", "english", "history", "computer_science"}
	s := validation.Submission{Subjects: map[string]string{}, AttendanceGradePoint: grades[len(grades)-1]}
	for i, k := range keys {
		s.Subjects[k] = grades[i]
	}
	return s
}

func newTestService(opts ...Option) *Service {
	seq := 0
	engine := evaluation.New(
		evaluation.WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		evaluation.WithIDGenerator(func() string { seq++; return fmt.Sprintf("eval-%d", seq) }),
	)
	return New(append([]Option{WithEngine(engine)}, opts...)...)
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a service with an in-memory history", t, func() {
		ctx := context.Background()
		svc := newTestService()

		Convey("When a valid submission is evaluated", func() {
			out, err := svc.Evaluate(ctx, submission("1.00", "1.25", "1.50", "1.75", "2.00", "1.50"))

			Convey("Then the outcome is persisted and classified", func() {
				So(err, ShouldBeNil)
				So(out.Persisted, ShouldBeTrue)
				So(out.PersistError, ShouldBeNil)
				So(out.Evaluation.ID, ShouldEqual, "eval-1")
				So(out.Evaluation.Status, ShouldEqual, model.StatusExcellent)
				So(out.Evaluation.FinalGrade, ShouldAlmostEqual, 9.0/6.0, 1e-9)
				So(out.Evaluation.AttendanceRawPercent, ShouldEqual, 92)
			})

			Convey("Then it heads the history", func() {
				history := svc.History(ctx)
				So(len(history), ShouldEqual, 1)
				So(history[0].ID, ShouldEqual, "eval-1")
			})
		})

		Convey("When a submission has invalid fields", func() {
			sub := submission("1.00", "", "4.00", "1.75", "abc", "1.50")
			out, err := svc.Evaluate(ctx, sub)

			Convey("Then one error per failing field is returned and nothing is stored", func() {
				So(errors.Is(err, validation.ErrInvalidSubmission), ShouldBeTrue)
				var fe validation.FieldErrors
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Fields(), ShouldResemble, []string{"science", "english", "computer_science"})
				So(out, ShouldResemble, Outcome{})
				So(svc.History(ctx), ShouldBeEmpty)
			})
		})

		Convey("When a failing subject is submitted", func() {
			out, err := svc.Evaluate(ctx, submission("5.00", "1.00", "1.00", "1.00", "1.00", "1.00"))

			Convey("Then a retake is required", func() {
				So(err, ShouldBeNil)
				So(out.Evaluation.NeedsRetake, ShouldBeTrue)
			})
		})
	})

	Convey("Given a service whose store cannot write", t, func() {
		ctx := context.Background()
		svc := newTestService(WithStore(brokenStore{err: repository.ErrUnavailable}))

		Convey("When a valid submission is evaluated", func() {
			out, err := svc.Evaluate(ctx, submission("2.00", "2.00", "2.00", "2.00", "2.00", "2.00"))

			Convey("Then the evaluation is still returned with the write failure", func() {
				So(err, ShouldBeNil)
				So(out.Persisted, ShouldBeFalse)
				So(errors.Is(out.PersistError, repository.ErrUnavailable), ShouldBeTrue)
				So(out.Evaluation.Status, ShouldEqual, model.StatusPassed)
			})
		})

		Convey("Then history and stats degrade to empty", func() {
			So(svc.History(ctx), ShouldBeEmpty)
			So(svc.Stats(ctx).Total, ShouldEqual, 0)
		})

		Convey("Then clearing reports failure", func() {
			res := svc.ClearHistory(ctx)
			So(res.Success, ShouldBeFalse)
			So(res.Message, ShouldNotBeBlank)
		})
	})
}

func TestService_HistoryAndStats(t *testing.T) {
	Convey("Given three evaluations", t, func() {
		ctx := context.Background()
		svc := newTestService()
		_, _ = svc.Evaluate(ctx, submission("1.00", "1.00", "1.00", "1.00", "1.00", "1.00"))
		_, _ = svc.Evaluate(ctx, submission("2.50", "2.50", "2.50", "2.50", "2.50", "2.50"))
		_, _ = svc.Evaluate(ctx, submission("5.00", "5.00", "5.00", "5.00", "5.00", "5.00"))

		Convey("Then history is newest first", func() {
			history := svc.History(ctx)
			So(len(history), ShouldEqual, 3)
			So(history[0].ID, ShouldEqual, "eval-3")
			So(history[2].ID, ShouldEqual, "eval-1")
		})

		Convey("Then stats count each status", func() {
			sum := svc.Stats(ctx)
			So(sum.Total, ShouldEqual, 3)
			So(sum.ExcellentCount, ShouldEqual, 1)
			So(sum.PassedCount, ShouldEqual, 1)
			So(sum.FailedCount, ShouldEqual, 1)
			So(sum.AvgFinalGrade, ShouldAlmostEqual, (1.0+2.5+5.0)/3, 1e-9)
		})

		Convey("Then a record can be fetched by id", func() {
			e, err := svc.Get(ctx, "eval-2")
			So(err, ShouldBeNil)
			So(e.Status, ShouldEqual, model.StatusPassed)

			_, err = svc.Get(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When the history is cleared", func() {
			res := svc.ClearHistory(ctx)

			Convey("Then it is empty and clearing again still succeeds", func() {
				So(res.Success, ShouldBeTrue)
				So(svc.History(ctx), ShouldBeEmpty)
				So(svc.ClearHistory(ctx).Success, ShouldBeTrue)
			})
		})
	})

	Convey("Given more than Capacity evaluations", t, func() {
		ctx := context.Background()
		svc := newTestService()
		for i := 0; i < repository.Capacity+3; i++ {
			_, err := svc.Evaluate(ctx, submission("1.50", "1.50", "1.50", "1.50", "1.50", "1.50"))
			So(err, ShouldBeNil)
		}

		Convey("Then only the newest Capacity are kept", func() {
			history := svc.History(ctx)
			So(len(history), ShouldEqual, repository.Capacity)
			So(history[0].ID, ShouldEqual, fmt.Sprintf("eval-%d", repository.Capacity+3))
			So(svc.Close(), ShouldBeNil)
		})
	})
}
