package types_test

import (
	"encoding/json"
	"math"
	"testing"

	types "github.com/okian/homerun/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an entry with a missing exit velocity", t, func() {
		entry := types.Entry{
			Rank:            1,
			Player:          "Aaron Judge",
			MaxHomeruns:     62,
			MaxExitVelocity: types.Float(math.NaN()),
			MaxHitDistance:  types.Float(140.2),
			Events:          3,
		}

		Convey("When encoding it", func() {
			b, err := json.Marshal(entry)

			Convey("Then the missing value should be null", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual,
					`{"rank":1,"player":"Aaron Judge","max_homeruns":62,"max_exit_velocity":null,"max_hit_distance":140.2,"events":3}`)
			})
		})
	})
}

func TestFloat(t *testing.T) {
	Convey("Given float values", t, func() {
		So(types.Float(math.Inf(1)), ShouldBeNil)
		So(types.Float(math.NaN()), ShouldBeNil)
		So(*types.Float(0), ShouldEqual, 0.0)
	})
}

func TestCommentary(t *testing.T) {
	Convey("Given a commentary", t, func() {
		b, err := json.Marshal(types.Commentary{VideoLink: "https://v/1", Commentary: "text"})
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"video_link":"https://v/1","commentary":"text"}`)
	})
}
