package model_test

import (
	"math"
	"slices"
	"testing"

	model "github.com/okian/homerun/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCompareSeason(t *testing.T) {
	convey.Convey("Given season labels", t, func() {
		convey.Convey("When both are numeric", func() {
			convey.Convey("Then they should compare numerically", func() {
				convey.So(model.CompareSeason("2022", "2023"), convey.ShouldEqual, -1)
				convey.So(model.CompareSeason("2023", "2022"), convey.ShouldEqual, 1)
				convey.So(model.CompareSeason("2023", "2023.0"), convey.ShouldEqual, 0)
				convey.So(model.CompareSeason("9", "10"), convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When neither is numeric", func() {
			convey.Convey("Then they should compare lexicographically", func() {
				convey.So(model.CompareSeason("2022-23", "2023-24"), convey.ShouldEqual, -1)
				convey.So(model.CompareSeason("1a", "spring"), convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When only one is numeric", func() {
			convey.Convey("Then the numeric label should come first", func() {
				convey.So(model.CompareSeason("spring", "2023"), convey.ShouldEqual, 1)
				convey.So(model.CompareSeason("10", "1a"), convey.ShouldEqual, -1)
				convey.So(model.CompareSeason("1a", "9"), convey.ShouldEqual, 1)
				convey.So(model.CompareSeason("nan", "2023"), convey.ShouldEqual, 1)
				convey.So(model.CompareSeason("2023", "Inf"), convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When mixed labels are sorted", func() {
			labels := []string{"1a", "10", "spring", "9", "nan", "2022-23"}
			slices.SortStableFunc(labels, model.CompareSeason)

			convey.Convey("Then the order should be total and stable", func() {
				convey.So(labels, convey.ShouldResemble, []string{"9", "10", "1a", "2022-23", "nan", "spring"})
				for i := range labels {
					for j := i + 1; j < len(labels); j++ {
						convey.So(model.CompareSeason(labels[i], labels[j]), convey.ShouldBeLessThanOrEqualTo, 0)
					}
				}
			})
		})
	})
}

func TestSeasonNumber(t *testing.T) {
	convey.Convey("Given season labels to parse", t, func() {
		f, ok := model.SeasonNumber(" 2023 ")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(f, convey.ShouldEqual, 2023)

		for _, s := range []string{"nan", "NaN", "inf", "-Infinity", "2022-23", ""} {
			_, ok := model.SeasonNumber(s)
			convey.So(ok, convey.ShouldBeFalse)
		}
	})
}

func TestCompareFloat(t *testing.T) {
	convey.Convey("Given float comparisons with NaN", t, func() {
		nan := math.NaN()

		convey.Convey("Then ascending order should place NaN last", func() {
			convey.So(model.CompareFloat(1, 2), convey.ShouldEqual, -1)
			convey.So(model.CompareFloat(2, 1), convey.ShouldEqual, 1)
			convey.So(model.CompareFloat(nan, 1), convey.ShouldEqual, 1)
			convey.So(model.CompareFloat(1, nan), convey.ShouldEqual, -1)
			convey.So(model.CompareFloat(nan, nan), convey.ShouldEqual, 0)
		})

		convey.Convey("Then descending order should also place NaN last", func() {
			convey.So(model.CompareFloatDesc(1, 2), convey.ShouldEqual, 1)
			convey.So(model.CompareFloatDesc(2, 1), convey.ShouldEqual, -1)
			convey.So(model.CompareFloatDesc(nan, 5), convey.ShouldEqual, 1)
			convey.So(model.CompareFloatDesc(5, nan), convey.ShouldEqual, -1)
		})
	})
}
