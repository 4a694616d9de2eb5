package rubricfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/rubricfile"
)

const sample = `
rubrics:
  - id: robotics-junior
    name: Junior Robotics
    category: junior
    criteria:
      - {id: design, name: Design, max_points: 20}
      - {id: build, name: Build quality, max_points: 30}
  - id: presentation
    name: Presentation
    criteria:
      - {id: delivery, max_points: 10}
`

func TestLoad(t *testing.T) {
	Convey("Given a rubric file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "rubrics.yaml")
		So(os.WriteFile(path, []byte(sample), 0o600), ShouldBeNil)

		rubrics, err := rubricfile.Load(path)

		Convey("Then every rubric is decoded in file order", func() {
			So(err, ShouldBeNil)
			So(len(rubrics), ShouldEqual, 2)
			So(rubrics[0].ID, ShouldEqual, "robotics-junior")
			So(rubrics[0].MaxTotal(), ShouldEqual, 50)
			So(rubrics[0].Criteria[1].Position, ShouldEqual, 2)
			So(rubrics[1].Category, ShouldEqual, "")
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := rubricfile.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct{ name, doc string }{
		{"empty document", ``},
		{"no rubrics", `rubrics: []`},
		{"missing id", "rubrics:\n  - name: x\n"},
		{"negative maximum", "rubrics:\n  - id: a\n    name: A\n    criteria:\n      - {id: c, max_points: -1}\n"},
		{"duplicate rubric", "rubrics:\n  - {id: a, name: A}\n  - {id: a, name: B}\n"},
		{"duplicate criterion", "rubrics:\n  - id: a\n    name: A\n    criteria:\n      - {id: c, max_points: 1}\n      - {id: c, max_points: 2}\n"},
		{"unknown field", "rubrics:\n  - {id: a, name: A, weight: 3}\n"},
	}

	Convey("Given malformed rubric documents", t, func() {
		for _, tc := range cases {
			Convey("When the document has "+tc.name, func() {
				_, err := rubricfile.Decode(strings.NewReader(tc.doc))
				So(err, ShouldNotBeNil)
			})
		}
	})
}
