package evaluation_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/gradebook/internal/domain/evaluation"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
	. "github.com/smartystreets/goconvey/convey"
)

func uniform(p scale.GradePoint) map[subject.Key]scale.GradePoint {
	m := make(map[subject.Key]scale.GradePoint, subject.Count)
	for _, k := range subject.Keys() {
		m[k] = p
	}
	return m
}

func fixedEngine() *evaluation.Engine {
	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	return evaluation.New(
		evaluation.WithClock(func() time.Time { return ts }),
		evaluation.WithIDGenerator(func() string { return "eval-fixed" }),
	)
}

func TestEngine_Evaluate(t *testing.T) {
	Convey("Given an evaluation engine", t, func() {
		engine := fixedEngine()

		Convey("When every grade point is 2.00", func() {
			res := engine.Evaluate(uniform(2.00), 2.00, 82)

			Convey("Then the student passes with full graduation probability", func() {
				So(res.FinalGrade, ShouldEqual, 2.0)
				So(res.Status, ShouldEqual, model.StatusPassed)
				So(res.GraduationProbability, ShouldEqual, 100.0)
				So(res.NeedsRetake, ShouldBeFalse)
			})

			Convey("And the record is stamped and described", func() {
				So(res.ID, ShouldEqual, "eval-fixed")
				So(res.Timestamp, ShouldEqual, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC))
				So(len(res.SubjectGrades), ShouldEqual, subject.Count)
				for i, r := range res.SubjectGrades {
					So(r.SubjectKey, ShouldEqual, subject.Keys()[i])
					So(r.Description, ShouldEqual, "Good (80–84%)")
				}
				So(res.AttendanceDescription, ShouldEqual, "Good (80–84%)")
				So(res.AttendanceRawPercent, ShouldEqual, 82.0)
			})
		})

		Convey("When one subject is failing", func() {
			grades := uniform(1.00)
			grades[subject.ComputerScience] = 5.00
			res := engine.Evaluate(grades, 1.00, 99)

			Convey("Then a retake is required even though the mean is excellent", func() {
				So(res.NeedsRetake, ShouldBeTrue)
				So(res.FinalGrade, ShouldAlmostEqual, 10.0/6.0, 1e-12)
				So(res.Status, ShouldEqual, model.StatusExcellent)
				So(res.GraduationProbability, ShouldEqual, 100.0)
			})
		})

		Convey("When only attendance is failing", func() {
			res := engine.Evaluate(uniform(1.00), 5.00, 30)

			Convey("Then no retake is required", func() {
				So(res.NeedsRetake, ShouldBeFalse)
				So(res.AttendanceDescription, ShouldEqual, "Failing (<60%)")
			})
		})

		Convey("When the mean lands in the unclassified band", func() {
			res := engine.Evaluate(uniform(3.00), 2.00, 80)

			Convey("Then the status is INVALID and the probability still applies", func() {
				So(res.FinalGrade, ShouldAlmostEqual, 17.0/6.0, 1e-12)
				So(res.Status, ShouldEqual, model.StatusInvalid)
				So(res.GraduationProbability, ShouldEqual, 86.25)
			})
		})

		Convey("When the mean is failing", func() {
			grades := uniform(3.00)
			grades[subject.Mathematics] = 5.00
			res := engine.Evaluate(grades, 5.00, 10)

			Convey("Then the student fails and needs a retake", func() {
				So(res.Status, ShouldEqual, model.StatusFailed)
				So(res.NeedsRetake, ShouldBeTrue)
				So(res.GraduationProbability, ShouldEqual, 56.25)
			})
		})

		Convey("When a subject is missing", func() {
			grades := uniform(1.00)
			delete(grades, subject.History)

			Convey("Then the contract violation panics", func() {
				So(func() { engine.Evaluate(grades, 1.00, 99) }, ShouldPanic)
			})
		})
	})
}

func TestEngine_MeanProperty(t *testing.T) {
	Convey("Given random valid inputs", t, func() {
		engine := fixedEngine()
		points := scale.Points()
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data

		Convey("Then the final grade is the plain mean of six grade points", func() {
			for i := 0; i < 500; i++ {
				grades := make(map[subject.Key]scale.GradePoint, subject.Count)
				sum := 0.0
				for _, k := range subject.Keys() {
					p := points[rng.Intn(len(points))]
					grades[k] = p
					sum += float64(p)
				}
				att := points[rng.Intn(len(points))]
				sum += float64(att)

				res := engine.Evaluate(grades, att, 50)
				So(res.FinalGrade, ShouldAlmostEqual, sum/6, 1e-12)
				So(res.GraduationProbability, ShouldBeBetweenOrEqual, 0.0, 100.0)
			}
		})
	})
}

func TestEngine_Idempotent(t *testing.T) {
	Convey("Given the same inputs evaluated at different times", t, func() {
		calls := 0
		engine := evaluation.New(evaluation.WithClock(func() time.Time {
			calls++
			return time.Unix(int64(calls)*3600, 0)
		}))
		grades := uniform(1.75)
		grades[subject.English] = 2.50

		a := engine.Evaluate(grades, 1.25, 96)
		b := engine.Evaluate(grades, 1.25, 96)

		Convey("Then only identity and time differ", func() {
			So(a.Timestamp, ShouldNotEqual, b.Timestamp)
			So(a.ID, ShouldNotEqual, b.ID)
			So(a.FinalGrade, ShouldEqual, b.FinalGrade)
			So(a.Status, ShouldEqual, b.Status)
			So(a.GraduationProbability, ShouldEqual, b.GraduationProbability)
			So(a.NeedsRetake, ShouldEqual, b.NeedsRetake)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given final grades on the status boundaries", t, func() {
		So(evaluation.Classify(1.00), ShouldEqual, model.StatusExcellent)
		So(evaluation.Classify(1.9999), ShouldEqual, model.StatusExcellent)
		So(evaluation.Classify(2.00), ShouldEqual, model.StatusPassed)
		So(evaluation.Classify(2.75), ShouldEqual, model.StatusPassed)
		So(evaluation.Classify(3.0001), ShouldEqual, model.StatusFailed)
		So(evaluation.Classify(5.00), ShouldEqual, model.StatusFailed)

		Convey("And the (2.75, 3.00] gap stays unclassified", func() {
			So(evaluation.Classify(2.7501), ShouldEqual, model.StatusInvalid)
			So(evaluation.Classify(2.80), ShouldEqual, model.StatusInvalid)
			So(evaluation.Classify(3.00), ShouldEqual, model.StatusInvalid)
		})

		Convey("And grades below the scale are invalid", func() {
			So(evaluation.Classify(0.99), ShouldEqual, model.StatusInvalid)
		})
	})
}

func TestGraduationProbability(t *testing.T) {
	Convey("Given the graduation heuristic with five semesters done", t, func() {
		So(evaluation.GraduationProbability(1.5, 5), ShouldEqual, 100.0)
		So(evaluation.GraduationProbability(2.0, 5), ShouldEqual, 100.0)
		So(evaluation.GraduationProbability(2.5, 5), ShouldEqual, 100.0)
		So(evaluation.GraduationProbability(2.9, 5), ShouldEqual, 86.25)
		So(evaluation.GraduationProbability(3.0, 5), ShouldEqual, 86.25)
		So(evaluation.GraduationProbability(3.5, 5), ShouldEqual, 56.25)

		Convey("And the semester bonus is capped", func() {
			So(evaluation.GraduationProbability(2.5, 0), ShouldEqual, 95.0)
			So(evaluation.GraduationProbability(3.5, 8), ShouldEqual, 60.0)
			So(evaluation.GraduationProbability(3.5, 40), ShouldEqual, 60.0)
		})

		Convey("And the engine uses its configured semester count", func() {
			engine := evaluation.New(evaluation.WithSemestersCompleted(0))
			res := engine.Evaluate(uniform(2.50), 2.50, 72)
			So(res.GraduationProbability, ShouldEqual, 95.0)
		})
	})
}
