package goalform

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-goalform/pkg/controller"
	"github.com/goliatone/go-goalform/pkg/testsupport"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/tools"); got != "/tools/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("tools", WithRoutePath("goals")); got != "/tools/goals" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath(""); got != "/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandlers(t *testing.T) {
	mux := http.NewServeMux()
	routes, err := RegisterRoutes(mux, "/tools",
		WithBackend(&stubBackend{payload: testsupport.SamplePayload()}),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := Routes{Page: "/tools/", Submit: "/tools/goal", Assets: "/tools/assets/"}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}

	req := httptest.NewRequest(http.MethodGet, "/tools/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	doc := testsupport.ParseDocument(t, rec.Body.Bytes())
	if got := testsupport.Attr(doc.ByID(controller.FormID), "action"); got != "/tools/goal" {
		t.Fatalf("form action = %q", got)
	}
	if got := testsupport.Attr(doc.All("link")[0], "href"); got != "/tools/assets/goalform.css" {
		t.Fatalf("stylesheet = %q", got)
	}

	res := postGoal(t, mux, "/tools/goal", "Learn guitar", "")
	body, _ := io.ReadAll(res.Body)
	if testsupport.ParseDocument(t, body).ByID("task-1-1") == nil {
		t.Fatalf("expected results from mounted submit route")
	}

	req = httptest.NewRequest(http.MethodGet, "/tools/assets/goalform.css", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected stylesheet, got %d", rec.Code)
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}

func TestComponent_Options(t *testing.T) {
	c := New(WithSubmitPath("/submit"), WithTitle("Plan"))
	opts := c.Options()
	if opts.SubmitPath != "/submit" || opts.Title != "Plan" || opts.RoutePath != "/" {
		t.Fatalf("unexpected options %+v", opts)
	}

	var nilComponent *Component
	if nilComponent.Options().SubmitPath != "/goal" {
		t.Fatalf("nil component should expose defaults")
	}
}
