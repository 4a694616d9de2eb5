package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/repository"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repository.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

func score(id, judge, team string, total float64, status model.Status) model.Score {
	return model.Score{
		ID: id, TeamID: team, CompetitionID: "comp-1", JudgeID: judge, RubricID: "robotics",
		Points:     map[string]float64{"design": total},
		TotalScore: total, NormalizedScore: total, Status: status,
		CreatedAt: base, UpdatedAt: base,
	}
}

func TestMigrations(t *testing.T) {
	Convey("Given a migrated database", t, func() {
		db := openDB(t)

		Convey("Then every table exists", func() {
			for _, table := range []string{"rubric_templates", "rubric_criteria", "scores", "consistency_advisories"} {
				var name string
				err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
				So(err, ShouldBeNil)
			}
		})

		Convey("Then migrating again is a no-op", func() {
			So(repository.Migrate(db), ShouldBeNil)
		})
	})
}

func TestScoreStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewSQLStore(openDB(t))
		So(store.Ping(ctx), ShouldBeNil)

		Convey("When a score is inserted", func() {
			mins := 25
			submitted := base.Add(time.Hour)
			sc := score("s1", "judge-1", "team-1", 85, model.StatusSubmitted)
			sc.Notes = "tidy cabling"
			sc.DurationMinutes = &mins
			sc.SubmittedAt = &submitted
			sc.Fingerprint = model.Fingerprint{UserAgent: "tablet", IP: "10.1.1.1", CapturedAt: base}
			So(store.Insert(ctx, sc), ShouldBeNil)

			Convey("Then it round-trips by id and key", func() {
				got, err := store.Get(ctx, "s1")
				So(err, ShouldBeNil)
				So(got.Points, ShouldResemble, sc.Points)
				So(got.Notes, ShouldEqual, "tidy cabling")
				So(*got.DurationMinutes, ShouldEqual, 25)
				So(got.SubmittedAt.Equal(submitted), ShouldBeTrue)
				So(got.CreatedAt.Equal(base), ShouldBeTrue)
				So(got.Fingerprint.IP, ShouldEqual, "10.1.1.1")
				So(got.Status, ShouldEqual, model.StatusSubmitted)

				byKey, err := store.FindByKey(ctx, sc.Key())
				So(err, ShouldBeNil)
				So(byKey.ID, ShouldEqual, "s1")
			})

			Convey("Then a second score for the same key is rejected", func() {
				err := store.Insert(ctx, score("s2", "judge-1", "team-1", 10, model.StatusDraft))
				So(errors.Is(err, repository.ErrDuplicateKey), ShouldBeTrue)
				So(errors.Is(err, model.ErrScoreExists), ShouldBeTrue)
			})

			Convey("Then an update rewrites the row", func() {
				sc.TotalScore = 90
				sc.Points = map[string]float64{"design": 90}
				sc.Status = model.StatusInProgress
				sc.SubmittedAt = nil
				sc.DurationMinutes = nil
				So(store.Update(ctx, sc), ShouldBeNil)

				got, err := store.Get(ctx, "s1")
				So(err, ShouldBeNil)
				So(got.TotalScore, ShouldEqual, 90)
				So(got.Status, ShouldEqual, model.StatusInProgress)
				So(got.SubmittedAt, ShouldBeNil)
				So(got.DurationMinutes, ShouldBeNil)
			})
		})

		Convey("When looking up a missing score", func() {
			_, err := store.Get(ctx, "missing")
			So(errors.Is(err, model.ErrScoreNotFound), ShouldBeTrue)

			_, err = store.FindByKey(ctx, model.ScoreKey{JudgeID: "j", TeamID: "t", CompetitionID: "c"})
			So(errors.Is(err, model.ErrScoreNotFound), ShouldBeTrue)

			err = store.Update(ctx, score("missing", "j", "t", 1, model.StatusDraft))
			So(errors.Is(err, model.ErrScoreNotFound), ShouldBeTrue)
		})

		Convey("When scores in several states exist", func() {
			So(store.Insert(ctx, score("a", "judge-1", "team-1", 80, model.StatusSubmitted)), ShouldBeNil)
			So(store.Insert(ctx, score("b", "judge-2", "team-1", 82, model.StatusFinal)), ShouldBeNil)
			So(store.Insert(ctx, score("c", "judge-3", "team-1", 10, model.StatusInProgress)), ShouldBeNil)
			So(store.Insert(ctx, score("d", "judge-1", "team-2", 95, model.StatusValidated)), ShouldBeNil)

			Convey("Then filtering by counted statuses skips work in progress", func() {
				got, err := store.ListByTeam(ctx, "team-1", "comp-1", model.CountedStatuses)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got[0].JudgeID, ShouldEqual, "judge-1")
				So(got[1].JudgeID, ShouldEqual, "judge-2")
			})

			Convey("Then a nil filter returns every status", func() {
				got, err := store.ListByTeam(ctx, "team-1", "comp-1", nil)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
			})

			Convey("Then the leaderboard ranks counted means", func() {
				So(store.Insert(ctx, score("e", "judge-2", "team-2", 85, model.StatusSubmitted)), ShouldBeNil)

				entries, err := store.Leaderboard(ctx, "comp-1", 10)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].TeamID, ShouldEqual, "team-2")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].JudgeCount, ShouldEqual, 2)
				So(entries[0].MeanScore, ShouldEqual, 90)
				So(entries[1].TeamID, ShouldEqual, "team-1")
				So(entries[1].MeanScore, ShouldEqual, 81)

				top, err := store.Leaderboard(ctx, "comp-1", 1)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 1)

				_, err = store.Leaderboard(ctx, "comp-1", 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})
	})
}

func TestRubricStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a saved rubric", t, func() {
		store := repository.NewSQLStore(openDB(t))
		r := model.Rubric{
			ID: "robotics", Name: "Robotics", Category: "junior",
			Criteria: []model.Criterion{
				{ID: "build", Name: "Build", MaxPoints: 50, Position: 2},
				{ID: "design", Name: "Design", MaxPoints: 50, Position: 1},
			},
		}
		So(store.SaveRubric(ctx, r), ShouldBeNil)

		Convey("Then it loads with criteria in position order", func() {
			got, err := store.Rubric(ctx, "robotics")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Robotics")
			So(got.MaxTotal(), ShouldEqual, 100)
			So(got.Criteria[0].ID, ShouldEqual, "design")
		})

		Convey("Then saving again replaces the criteria", func() {
			r.Criteria = []model.Criterion{{ID: "overall", MaxPoints: 10}}
			So(store.SaveRubric(ctx, r), ShouldBeNil)

			got, err := store.Rubric(ctx, "robotics")
			So(err, ShouldBeNil)
			So(len(got.Criteria), ShouldEqual, 1)
			So(got.Criteria[0].Position, ShouldEqual, 1)
		})

		Convey("Then an unknown rubric is not found", func() {
			_, err := store.Rubric(ctx, "nope")
			So(errors.Is(err, model.ErrRubricNotFound), ShouldBeTrue)
		})
	})
}

func TestAdvisoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given stored advisories", t, func() {
		store := repository.NewSQLStore(openDB(t))
		for i, comp := range []string{"comp-1", "comp-1", "comp-2"} {
			a := model.Advisory{
				ID: string(rune('a' + i)), TeamID: "team-1", CompetitionID: comp,
				JudgeCount: 3, Mean: 85.67, Min: 80, Max: 95, SpreadPct: 17.5, ThresholdPct: 15,
				TriggeredBy: "s1", CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			So(store.SaveAdvisory(ctx, a), ShouldBeNil)
		}

		Convey("Then they list newest first per competition", func() {
			got, err := store.ListAdvisories(ctx, "comp-1", 10)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "b")
			So(got[0].SpreadPct, ShouldEqual, 17.5)
		})

		Convey("Then an empty competition lists all", func() {
			got, err := store.ListAdvisories(ctx, "", 10)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[0].ID, ShouldEqual, "c")
		})

		Convey("Then a non-positive limit is rejected", func() {
			_, err := store.ListAdvisories(ctx, "", 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestTimestampPrecision(t *testing.T) {
	ctx := context.Background()

	Convey("Given timestamps with whole seconds and trailing zero nanoseconds", t, func() {
		store := repository.NewSQLStore(openDB(t))
		stamps := []time.Time{
			base,
			base.Add(10 * time.Nanosecond),
			base.Add(290_000_000 * time.Nanosecond),
			base.Add(292_902_730 * time.Nanosecond),
			base.Add(123_456_789 * time.Nanosecond),
		}
		for i, ts := range stamps {
			sc := score(fmt.Sprintf("s%d", i), fmt.Sprintf("judge-%d", i), "team-1", 50, model.StatusSubmitted)
			sc.CreatedAt, sc.UpdatedAt = ts, ts
			submitted := ts
			sc.SubmittedAt = &submitted
			So(store.Insert(ctx, sc), ShouldBeNil)
			So(store.SaveAdvisory(ctx, model.Advisory{
				ID: fmt.Sprintf("a%d", i), TeamID: "team-1", CompetitionID: "comp-1", CreatedAt: ts,
			}), ShouldBeNil)
		}

		Convey("Then every score reads back with the same instant", func() {
			for i, ts := range stamps {
				got, err := store.Get(ctx, fmt.Sprintf("s%d", i))
				So(err, ShouldBeNil)
				So(got.CreatedAt.Equal(ts), ShouldBeTrue)
				So(got.UpdatedAt.Equal(ts), ShouldBeTrue)
				So(got.SubmittedAt.Equal(ts), ShouldBeTrue)
			}
		})

		Convey("Then the team listing reads every row", func() {
			got, err := store.ListByTeam(ctx, "team-1", "comp-1", model.CountedStatuses)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, len(stamps))
		})

		Convey("Then advisories read back in time order", func() {
			got, err := store.ListAdvisories(ctx, "comp-1", 10)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, len(stamps))
			So(got[0].ID, ShouldEqual, "a3")
			So(got[len(got)-1].ID, ShouldEqual, "a0")
		})
	})
}
