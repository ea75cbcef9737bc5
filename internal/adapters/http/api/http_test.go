package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/acclaimhq/acclaim/internal/adapters/http/api"
	service "github.com/acclaimhq/acclaim/internal/app"
	"github.com/acclaimhq/acclaim/internal/domain/model"
	"github.com/acclaimhq/acclaim/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// testServer boots a real orchestrator behind the router.
func testServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	svc := service.New(service.WithWorkerCount(2))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	ts := httptest.NewServer(api.NewServer(svc, svc).Router())
	t.Cleanup(ts.Close)
	return ts, svc
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func registerEmployee(t *testing.T, ts *httptest.Server, id string) {
	t.Helper()
	body := fmt.Sprintf(`{"id":%q,"name":"Rosa Vega","email":"%s@acclaim.test"}`, id, id)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/employees", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register employee: status %d", resp.StatusCode)
	}
}

func effortBody(id string, impact int, at time.Time) string {
	return fmt.Sprintf(`{
		"id": %q,
		"employee_id": "emp-1",
		"source": "issue-tracker",
		"type": "bug-fix",
		"title": "fixed the flaky retry loop",
		"impact": %d,
		"at": %q
	}`, id, impact, at.Format(time.RFC3339))
}

func TestEmployeeEndpoints(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts, _ := testServer(t)

		Convey("POST /employees registers and conflicts on repeat", func() {
			body := `{"id":"emp-1","name":"Rosa Vega","email":"rosa@acclaim.test"}`
			resp, payload := doJSON(t, http.MethodPost, ts.URL+"/employees", body)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(payload["status"], ShouldEqual, "registered")

			resp, _ = doJSON(t, http.MethodPost, ts.URL+"/employees", body)
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
		})

		Convey("POST /employees without a name is a bad request", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/employees", `{"id":"emp-2","email":"x@acclaim.test"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /employees/{id} returns the record or 404", func() {
			registerEmployee(t, ts, "emp-1")

			resp, payload := doJSON(t, http.MethodGet, ts.URL+"/employees/emp-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["id"], ShouldEqual, "emp-1")

			resp, _ = doJSON(t, http.MethodGet, ts.URL+"/employees/ghost", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestEffortIntake(t *testing.T) {
	Convey("Given a running server with one employee", t, func() {
		ts, _ := testServer(t)
		registerEmployee(t, ts, "emp-1")
		now := time.Now().UTC().Add(-time.Hour)

		Convey("A valid effort is accepted", func() {
			resp, payload := doJSON(t, http.MethodPost, ts.URL+"/efforts", effortBody("e-1", 7, now))
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			So(payload["status"], ShouldEqual, "accepted")
			So(payload["duplicate"], ShouldEqual, false)
		})

		Convey("A duplicate id acknowledges without reprocessing", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/efforts", effortBody("e-1", 7, now))
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			resp, payload := doJSON(t, http.MethodPost, ts.URL+"/efforts", effortBody("e-1", 7, now))
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["duplicate"], ShouldEqual, true)
		})

		Convey("An out-of-range impact is a bad request", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/efforts", effortBody("e-2", 11, now))
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Malformed JSON is a bad request", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/efforts", `{"id":`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestBadgeEndpoints(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts, svc := testServer(t)
		registerEmployee(t, ts, "emp-1")

		Convey("GET /badges lists the active catalog", func() {
			resp, payload := doJSON(t, http.MethodGet, ts.URL+"/badges", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			badges := payload["badges"].([]any)
			So(len(badges), ShouldEqual, 6)
		})

		Convey("POST /evaluate/{id} reports newly earned badges", func() {
			// Five recent high-impact bug fixes satisfy problem-solver.
			for i := 0; i < 5; i++ {
				e := model.Effort{
					ID: fmt.Sprintf("e-%d", i), EmployeeID: "emp-1",
					Source: model.SourceIssueTracker, Type: model.TypeBugFix,
					Title: "fix", Impact: 7,
					At: time.Now().UTC().Add(-time.Duration(i+1) * time.Hour),
				}
				So(svc.ProcessEffort(context.Background(), e), ShouldBeNil)
			}
			// Processing already awarded along the way, so the endpoint
			// reports nothing new but the ledger holds the badge.
			resp, payload := doJSON(t, http.MethodPost, ts.URL+"/evaluate/emp-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["newly_awarded"], ShouldNotBeNil)

			resp, payload = doJSON(t, http.MethodGet, ts.URL+"/progress/emp-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			progress := payload["progress"].(map[string]any)
			So(progress["problem-solver"], ShouldEqual, 100)
		})

		Convey("POST /evaluate for an unknown employee is 404", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/evaluate/ghost", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDigestEndpoints(t *testing.T) {
	Convey("Given a running server with a week of processed efforts", t, func() {
		ts, svc := testServer(t)
		registerEmployee(t, ts, "emp-1")

		weekStart, _ := model.WeekOf(time.Now().UTC().Add(-14 * 24 * time.Hour))
		for i := 0; i < 3; i++ {
			e := model.Effort{
				ID: fmt.Sprintf("e-%d", i), EmployeeID: "emp-1",
				Source: model.SourceVersionControl, Type: model.TypeFeatureWork,
				Title: "shipped", Impact: 6 + i,
				At: weekStart.Add(time.Duration(i*24+9) * time.Hour),
			}
			So(svc.ProcessEffort(context.Background(), e), ShouldBeNil)
		}
		day := weekStart.Format(time.DateOnly)

		Convey("GET before generation is 404", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/digest/emp-1?weekStart="+day, "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Generate then fetch round-trips", func() {
			resp, payload := doJSON(t, http.MethodPost, ts.URL+"/digest/emp-1/generate?weekStart="+day, "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["total_efforts"], ShouldEqual, 3)

			resp, payload = doJSON(t, http.MethodGet, ts.URL+"/digest/emp-1?weekStart="+day, "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["total_efforts"], ShouldEqual, 3)
			So(payload["impact_score"], ShouldEqual, 70.0)
		})

		Convey("A non-Monday weekStart is a bad request", func() {
			tuesday := weekStart.Add(24 * time.Hour).Format(time.DateOnly)
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/digest/emp-1/generate?weekStart="+tuesday, "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A missing weekStart is a bad request", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/digest/emp-1/generate", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOpsEndpoints(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts, _ := testServer(t)

		Convey("GET /healthz reports ok", func() {
			resp, payload := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["status"], ShouldEqual, "ok")
		})

		Convey("GET /stats exposes service counters", func() {
			resp, payload := doJSON(t, http.MethodGet, ts.URL+"/stats", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(payload["started"], ShouldEqual, true)
		})

		Convey("GET /metrics serves the Prometheus registry", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

// exhaustedDeps fails every employee lookup the way the orchestrator does
// once its store retries run out.
type exhaustedDeps struct {
	api.Dependencies
}

func (exhaustedDeps) GetEmployee(context.Context, string) (model.Employee, error) {
	return model.Employee{}, fmt.Errorf("find employee: %w", service.ErrRetriesExhausted)
}

func TestStoreOutageMapsToServiceUnavailable(t *testing.T) {
	Convey("Given a backend whose store retries are exhausted", t, func() {
		ts := httptest.NewServer(api.NewServer(exhaustedDeps{}, nil).Router())
		t.Cleanup(ts.Close)

		Convey("GET /employees/{id} answers 503", func() {
			resp, payload := doJSON(t, http.MethodGet, ts.URL+"/employees/emp-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			So(payload["code"], ShouldEqual, "unavailable")
		})
	})
}
