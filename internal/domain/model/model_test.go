package model_test

import (
	"testing"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	Convey("Given the score lifecycle states", t, func() {
		Convey("Then only known states are valid", func() {
			for _, s := range []model.Status{model.StatusDraft, model.StatusInProgress, model.StatusSubmitted, model.StatusValidated, model.StatusFinal} {
				So(s.Valid(), ShouldBeTrue)
			}
			So(model.Status("archived").Valid(), ShouldBeFalse)
			So(model.Status("").Valid(), ShouldBeFalse)
		})

		Convey("Then drafts and in-progress scores do not count toward consensus", func() {
			So(model.StatusDraft.Counted(), ShouldBeFalse)
			So(model.StatusInProgress.Counted(), ShouldBeFalse)
			So(model.StatusSubmitted.Counted(), ShouldBeTrue)
			So(model.StatusValidated.Counted(), ShouldBeTrue)
			So(model.StatusFinal.Counted(), ShouldBeTrue)
			So(len(model.CountedStatuses), ShouldEqual, 3)
		})

		Convey("Then only validated and final scores are locked", func() {
			So(model.StatusSubmitted.Locked(), ShouldBeFalse)
			So(model.StatusValidated.Locked(), ShouldBeTrue)
			So(model.StatusFinal.Locked(), ShouldBeTrue)
		})
	})
}

func TestRubric(t *testing.T) {
	Convey("Given a rubric with two criteria", t, func() {
		r := model.Rubric{
			ID: "r1",
			Criteria: []model.Criterion{
				{ID: "design", MaxPoints: 50},
				{ID: "build", MaxPoints: 50},
			},
		}

		Convey("Then the max total is the sum of criterion maxima", func() {
			So(r.MaxTotal(), ShouldEqual, 100)
		})

		Convey("Then criteria are found by id", func() {
			c, ok := r.Criterion("build")
			So(ok, ShouldBeTrue)
			So(c.MaxPoints, ShouldEqual, 50)

			_, ok = r.Criterion("speed")
			So(ok, ShouldBeFalse)
		})

		Convey("Then an empty rubric has a zero max total", func() {
			So(model.Rubric{}.MaxTotal(), ShouldEqual, 0)
		})
	})
}

func TestAdvisoryFromReport(t *testing.T) {
	Convey("Given a conflicting report", t, func() {
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		rep := model.ConsistencyReport{
			TeamID: "t1", CompetitionID: "c1", JudgeCount: 3,
			Mean: 85.67, Min: 80, Max: 95, SpreadPct: 17.5, ThresholdPct: 15,
		}

		adv := model.NewAdvisory(rep, "score-9", at)

		Convey("Then the advisory carries the report figures", func() {
			So(adv.TeamID, ShouldEqual, "t1")
			So(adv.CompetitionID, ShouldEqual, "c1")
			So(adv.JudgeCount, ShouldEqual, 3)
			So(adv.SpreadPct, ShouldEqual, 17.5)
			So(adv.TriggeredBy, ShouldEqual, "score-9")
			So(adv.CreatedAt.Equal(at), ShouldBeTrue)
		})
	})
}

func TestScoreKey(t *testing.T) {
	Convey("Given a score", t, func() {
		s := model.Score{JudgeID: "j", TeamID: "t", CompetitionID: "c"}
		So(s.Key(), ShouldResemble, model.ScoreKey{JudgeID: "j", TeamID: "t", CompetitionID: "c"})
	})
}
