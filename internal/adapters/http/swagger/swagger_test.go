package swagger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewSpec(t *testing.T) {
	convey.Convey("Given the reflected OpenAPI document", t, func() {
		spec, err := NewSpec()

		convey.Convey("Then every operation is described", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(spec.Info.Title, convey.ShouldEqual, title)
			for _, path := range []string{
				"/api/scores",
				"/api/scores/{scoreID}",
				"/api/scores/{scoreID}/submit",
				"/api/consistency",
				"/api/competitions/{competitionID}/teams/{teamID}/scores",
				"/api/competitions/{competitionID}/leaderboard",
				"/api/rubrics",
				"/api/rubrics/{rubricID}",
				"/api/advisories",
				"/healthz",
			} {
				_, ok := spec.Paths.MapOfPathItemValues[path]
				convey.So(ok, convey.ShouldBeTrue)
			}
		})
	})
}

func TestRegister(t *testing.T) {
	convey.Convey("Given a router with the docs registered", t, func() {
		r := chi.NewRouter()
		Register(r)

		convey.Convey("When fetching /openapi.json", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", http.NoBody))

			convey.Convey("Then the document is valid JSON", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/json; charset=utf-8")
				var doc map[string]any
				convey.So(json.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
				convey.So(doc["openapi"], convey.ShouldNotBeEmpty)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "X-Judge-ID")
			})
		})

		convey.Convey("When fetching the Swagger UI", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/", http.NoBody))

			convey.Convey("Then it points at the document", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.json")
			})
		})
	})
}

func TestRegisterWithNilRouter(t *testing.T) {
	convey.Convey("Given a nil router", t, func() {
		convey.So(func() { Register(nil) }, convey.ShouldPanic)
	})
}
