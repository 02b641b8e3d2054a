package model_test

import (
	"testing"

	model "github.com/okian/roboscout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestAverageAndBest(t *testing.T) {
	convey.Convey("Given score sequences", t, func() {
		convey.Convey("When the sequence is empty", func() {
			convey.Convey("Then average and best default to zero", func() {
				convey.So(model.Average(nil), convey.ShouldEqual, 0.0)
				convey.So(model.Best(nil), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the sequence holds values", func() {
			scores := []int{7, 3, 11, 3}

			convey.Convey("Then average is sum over length and best is the max", func() {
				convey.So(model.Average(scores), convey.ShouldEqual, 6.0)
				convey.So(model.Best(scores), convey.ShouldEqual, 11)
			})
		})
	})
}

func TestTeamAggregateFinalize(t *testing.T) {
	convey.Convey("Given a team aggregate", t, func() {
		agg := model.NewTeamAggregate(model.TeamIdentity{ID: 1, Code: "90241A"})

		convey.Convey("When qualification scores are 10, 20, 30 and there are no eliminations", func() {
			agg.QualScores = []int{10, 20, 30}
			agg.Finalize()

			convey.Convey("Then the summary matches", func() {
				convey.So(agg.QualAverage, convey.ShouldEqual, 20.0)
				convey.So(agg.BestQual, convey.ShouldEqual, 30)
				convey.So(agg.ElimAverage, convey.ShouldEqual, 0.0)
				convey.So(agg.SkillAverage, convey.ShouldEqual, 0.0)
				convey.So(agg.Code(), convey.ShouldEqual, "90241A")
			})

			convey.Convey("Then finalizing again changes nothing", func() {
				agg.QualScores = append(agg.QualScores, 1000)
				agg.Finalize()
				convey.So(agg.QualAverage, convey.ShouldEqual, 20.0)
				convey.So(agg.BestQual, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When skills are recorded", func() {
			agg.DriverScores = []int{40, 55}
			agg.ProgrammingScores = []int{12}
			agg.CombinedSkills = []int{67, 33}
			agg.Finalize()

			convey.Convey("Then best runs and skill average are derived", func() {
				convey.So(agg.BestDriver(), convey.ShouldEqual, 55)
				convey.So(agg.BestProgramming(), convey.ShouldEqual, 12)
				convey.So(agg.SkillAverage, convey.ShouldEqual, 50.0)
			})
		})
	})
}

func TestSkillType(t *testing.T) {
	convey.Convey("Given skill type wire forms", t, func() {
		convey.So(model.SkillTypeFromName("driver"), convey.ShouldEqual, model.SkillDriver)
		convey.So(model.SkillTypeFromName(" Programming "), convey.ShouldEqual, model.SkillProgramming)
		convey.So(model.SkillTypeFromName("package"), convey.ShouldEqual, model.SkillUnknown)
		convey.So(model.SkillTypeFromCode(1), convey.ShouldEqual, model.SkillDriver)
		convey.So(model.SkillTypeFromCode(2), convey.ShouldEqual, model.SkillProgramming)
		convey.So(model.SkillTypeFromCode(3), convey.ShouldEqual, model.SkillUnknown)
		convey.So(model.SkillProgramming.String(), convey.ShouldEqual, "programming")
		convey.So(model.SkillUnknown.String(), convey.ShouldEqual, "unknown")
	})
}

func TestAllianceHas(t *testing.T) {
	convey.Convey("Given an alliance", t, func() {
		a := model.Alliance{Color: "red", Score: 40, TeamIDs: []int64{5, 9}}
		convey.So(a.Has(9), convey.ShouldBeTrue)
		convey.So(a.Has(7), convey.ShouldBeFalse)
	})
}
