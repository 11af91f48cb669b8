package stats_test

import (
	"testing"

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregate(t *testing.T) {
	Convey("Given an empty history", t, func() {
		s := stats.Aggregate(nil)

		Convey("Then totals and averages are zero", func() {
			So(s, ShouldResemble, stats.Summary{})
		})
	})

	Convey("Given a mixed history", t, func() {
		records := []model.Evaluation{
			{Status: model.StatusExcellent, FinalGrade: 1.5, AttendanceRawPercent: 98},
			{Status: model.StatusPassed, FinalGrade: 2.5, AttendanceRawPercent: 80, NeedsRetake: true},
			{Status: model.StatusFailed, FinalGrade: 3.5, AttendanceRawPercent: 50, NeedsRetake: true},
			{Status: model.StatusInvalid, FinalGrade: 2.9, AttendanceRawPercent: 64},
		}
		s := stats.Aggregate(records)

		Convey("Then each status is counted", func() {
			So(s.Total, ShouldEqual, 4)
			So(s.ExcellentCount, ShouldEqual, 1)
			So(s.PassedCount, ShouldEqual, 1)
			So(s.FailedCount, ShouldEqual, 1)
			So(s.InvalidCount, ShouldEqual, 1)
			So(s.RetakeCount, ShouldEqual, 2)
		})

		Convey("And averages cover every record", func() {
			So(s.AvgFinalGrade, ShouldAlmostEqual, 2.6, 1e-12)
			So(s.AvgAttendance, ShouldAlmostEqual, 73.0, 1e-12)
		})
	})
}
