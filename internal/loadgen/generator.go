package loadgen

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
)

// Student profiles choose which slice of the scale grades are drawn from.
const (
	profileStrong = iota
	profileAverage
	profileStruggling
	profileMixed
	profileCount
)

// failingChance is the one-in-N chance a struggling student fails a subject.
const failingChance = 4

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// passingPoints are the scale points below the failing sentinel, best first.
func passingPoints() []scale.GradePoint {
	var out []scale.GradePoint
	for _, p := range scale.Points() {
		if !scale.IsFailing(float64(p)) {
			out = append(out, p)
		}
	}
	return out
}

func pick(points []scale.GradePoint, lo, hi int) scale.GradePoint {
	if hi > len(points) {
		hi = len(points)
	}
	return points[lo+randomInt(hi-lo)]
}

func format(p scale.GradePoint) string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// generateSubmission returns a submission that passes validation.
func generateSubmission() Submission {
	points := passingPoints()
	profile := randomInt(profileCount)

	grade := func() scale.GradePoint {
		switch profile {
		case profileStrong:
			return pick(points, 0, 4)
		case profileAverage:
			return pick(points, 3, 7)
		case profileStruggling:
			if randomInt(failingChance) == 0 {
				return scale.Failing
			}
			return pick(points, 6, len(points))
		default:
			return pick(points, 0, len(points))
		}
	}

	sub := Submission{Subjects: make(map[string]string, subject.Count)}
	for _, key := range subject.Keys() {
		sub.Subjects[string(key)] = format(grade())
	}
	att := grade()
	sub.AttendanceGradePoint = format(att)
	// Half of the submissions send an explicit percent near the tier's midpoint.
	if randomInt(2) == 0 {
		pct := scale.ApproxPercent(float64(att)) + float64(randomInt(5)) - 2
		if pct > 100 {
			pct = 100
		}
		sub.AttendancePercent = strconv.FormatFloat(pct, 'f', 1, 64)
	}
	return sub
}

// generateSubmissions creates n submissions.
func generateSubmissions(n int) []Submission {
	out := make([]Submission, n)
	for i := range out {
		out[i] = generateSubmission()
	}
	return out
}
