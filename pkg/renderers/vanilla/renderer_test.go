package vanilla

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/testsupport"
)

func TestRenderer_RendersPhasesAsChecklists(t *testing.T) {
	renderer := mustRenderer(t)

	output, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	markup := testsupport.ParseMarkup(t, output)

	if diff := cmp.Diff([]string{`Goal: "Learn guitar"`}, markup.Texts("h2")); diff != "" {
		t.Fatalf("goal heading mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Basics"}, markup.Texts("h3")); diff != "" {
		t.Fatalf("phase headings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Buy a guitar", "Learn chords"}, markup.Texts("label")); diff != "" {
		t.Fatalf("task labels mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []string{"task-1-1", "task-1-2"} {
		input := markup.ByID(id)
		if input == nil {
			t.Fatalf("expected checkbox %q", id)
		}
		if got := testsupport.Attr(input, "type"); got != "checkbox" {
			t.Fatalf("checkbox %q type = %q", id, got)
		}
		if got := testsupport.Attr(input, "name"); got != id {
			t.Fatalf("checkbox %q name = %q", id, got)
		}
		if testsupport.HasAttr(input, "checked") {
			t.Fatalf("checkbox %q should start unchecked", id)
		}
	}

	var labelTargets []string
	for _, label := range markup.All("label") {
		labelTargets = append(labelTargets, testsupport.Attr(label, "for"))
	}
	if diff := cmp.Diff([]string{"task-1-1", "task-1-2"}, labelTargets); diff != "" {
		t.Fatalf("label targets mismatch (-want +got):\n%s", diff)
	}

	containers := markup.All("div")
	if len(containers) != 2 {
		t.Fatalf("expected phases container plus one phase, got %d divs", len(containers))
	}
	if !testsupport.HasClass(containers[0], string(ClassPhases)) {
		t.Fatalf("first div should be the phases container")
	}
	if !testsupport.HasClass(containers[1], string(ClassPhase)) {
		t.Fatalf("second div should be a phase")
	}
	lists := markup.All("ul")
	if len(lists) != 1 || !testsupport.HasClass(lists[0], string(ClassTaskList)) {
		t.Fatalf("expected one task list, got %d", len(lists))
	}
}

func TestRenderer_NumbersTasksPerPhase(t *testing.T) {
	renderer := mustRenderer(t)

	data := breakdown.GoalBreakdown{
		Goal: "Run a marathon",
		Phases: []breakdown.Phase{
			{Name: "Base", Tasks: []string{"Walk daily"}},
			{Name: "Empty", Tasks: []string{}},
			{Name: "Build", Tasks: []string{"Run 5k", "Run 10k"}},
		},
	}

	output, err := renderer.Render(context.Background(), data, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := testsupport.ParseMarkup(t, output)

	var ids []string
	for _, input := range markup.All("input") {
		ids = append(ids, testsupport.Attr(input, "id"))
	}
	if diff := cmp.Diff([]string{"task-1-1", "task-3-1", "task-3-2"}, ids); diff != "" {
		t.Fatalf("checkbox ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Base", "Empty", "Build"}, markup.Texts("h3")); diff != "" {
		t.Fatalf("phase headings mismatch (-want +got):\n%s", diff)
	}
	if got := len(markup.All("ul")); got != 3 {
		t.Fatalf("expected a list per phase including the empty one, got %d", got)
	}
}

func TestRenderer_EscapesUntrustedText(t *testing.T) {
	renderer := mustRenderer(t)

	data := breakdown.GoalBreakdown{
		Goal: `<img src=x onerror="alert(1)">`,
		Phases: []breakdown.Phase{
			{Name: "<script>alert('phase')</script>", Tasks: []string{"a & b <b>bold</b>"}},
		},
	}

	output, err := renderer.Render(context.Background(), data, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := testsupport.ParseMarkup(t, output)

	for _, tag := range []string{"script", "img", "b"} {
		if got := len(markup.All(tag)); got != 0 {
			t.Fatalf("expected no <%s> elements, got %d", tag, got)
		}
	}
	if diff := cmp.Diff([]string{`Goal: "<img src=x onerror="alert(1)">"`}, markup.Texts("h2")); diff != "" {
		t.Fatalf("goal text mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"<script>alert('phase')</script>"}, markup.Texts("h3")); diff != "" {
		t.Fatalf("phase text mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a & b <b>bold</b>"}, markup.Texts("label")); diff != "" {
		t.Fatalf("task text mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_IsDeterministic(t *testing.T) {
	renderer := mustRenderer(t)
	data := testsupport.SampleBreakdown()

	first, err := renderer.Render(context.Background(), data, render.RenderOptions{})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(context.Background(), data, render.RenderOptions{})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRenderer_Options(t *testing.T) {
	renderer := mustRenderer(t)

	output, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{
		Checked:  map[string]bool{"task-1-2": true},
		HideGoal: true,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := testsupport.ParseMarkup(t, output)

	if got := len(markup.All("h2")); got != 0 {
		t.Fatalf("expected goal heading hidden, got %d", got)
	}
	if testsupport.HasAttr(markup.ByID("task-1-1"), "checked") {
		t.Fatalf("task-1-1 should be unchecked")
	}
	if !testsupport.HasAttr(markup.ByID("task-1-2"), "checked") {
		t.Fatalf("task-1-2 should be checked")
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	renderer := mustRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.Render(ctx, testsupport.SampleBreakdown(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_TemplatesFSOverride(t *testing.T) {
	files := fstest.MapFS{
		"results.tmpl": &fstest.MapFile{Data: []byte(`<ul>{% for phase in phases %}<li>{{ phase.name }}</li>{% endfor %}</ul><iframe src="x"></iframe>`)},
	}
	renderer, err := New(WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	markup := testsupport.ParseMarkup(t, output)
	if diff := cmp.Diff([]string{"Basics"}, markup.Texts("li")); diff != "" {
		t.Fatalf("custom template output mismatch (-want +got):\n%s", diff)
	}
	if got := len(markup.All("iframe")); got != 0 {
		t.Fatalf("expected iframe stripped from custom template output")
	}
}

func TestRenderer_TemplatesDirOverridesSingleFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "results.tmpl"), []byte(`<p class="custom">{{ goal }}</p>`), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	renderer, err := New(WithTemplatesDir(dir))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Learn guitar"}, testsupport.ParseMarkup(t, output).Texts("p")); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}

	page, err := renderer.RenderPage(context.Background(), Page{Action: "/goal"})
	if err != nil {
		t.Fatalf("render page from embedded fallback: %v", err)
	}
	if testsupport.ParseDocument(t, page).ByID(render.FormElementID) == nil {
		t.Fatalf("expected embedded page template to be used")
	}
}

func TestRenderPage_ReadyState(t *testing.T) {
	renderer := mustRenderer(t)

	output, err := renderer.RenderPage(context.Background(), Page{
		Action:     "/goal",
		Stylesheet: "/assets/goalform.css",
		Hidden: []render.HiddenField{
			render.CSRFToken("_csrf", "tok"),
			render.Hidden("", "dropped"),
		},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	doc := testsupport.ParseDocument(t, output)

	form := doc.ByID(render.FormElementID)
	if form == nil {
		t.Fatalf("expected form #%s", render.FormElementID)
	}
	if got := testsupport.Attr(form, "action"); got != "/goal" {
		t.Fatalf("form action = %q", got)
	}
	if got := testsupport.Attr(form, "method"); got != "post" {
		t.Fatalf("form method = %q", got)
	}

	textareas := doc.All("textarea")
	if len(textareas) != 1 || testsupport.Attr(textareas[0], "name") != render.GoalFieldName {
		t.Fatalf("expected a single goal textarea")
	}

	var hiddenNames []string
	for _, input := range doc.All("input") {
		if testsupport.Attr(input, "type") == "hidden" {
			hiddenNames = append(hiddenNames, testsupport.Attr(input, "name"))
		}
	}
	if diff := cmp.Diff([]string{"_csrf"}, hiddenNames); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	loading := doc.ByID(render.LoadingElementID)
	if !testsupport.HasClass(loading, string(ClassHidden)) {
		t.Fatalf("loading indicator should be hidden in ready state")
	}
	errorArea := doc.ByID(render.ErrorElementID)
	if !testsupport.HasClass(errorArea, string(ClassHidden)) {
		t.Fatalf("error area should be hidden in ready state")
	}
	if got := testsupport.Text(errorArea); got != "" {
		t.Fatalf("error area should be empty, got %q", got)
	}
	results := doc.ByID(render.ResultsElementID)
	if results == nil || results.FirstChild != nil {
		t.Fatalf("results container should exist and be empty")
	}

	links := doc.All("link")
	if len(links) != 1 || testsupport.Attr(links[0], "href") != "/assets/goalform.css" {
		t.Fatalf("expected stylesheet link")
	}
	if diff := cmp.Diff([]string{defaultTitle}, doc.Texts("title")); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPage_ErrorAndResults(t *testing.T) {
	renderer := mustRenderer(t)

	results, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render results: %v", err)
	}

	output, err := renderer.RenderPage(context.Background(), Page{
		Goal:         "Learn <guitar>",
		ErrorVisible: true,
		ErrorMessage: "An error occurred: <boom>",
		Results:      results,
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	doc := testsupport.ParseDocument(t, output)

	errorArea := doc.ByID(render.ErrorElementID)
	if testsupport.HasClass(errorArea, string(ClassHidden)) {
		t.Fatalf("error area should be visible")
	}
	if got := testsupport.Text(errorArea); got != "An error occurred: <boom>" {
		t.Fatalf("error text = %q", got)
	}
	if got := testsupport.Text(doc.All("textarea")[0]); got != "Learn <guitar>" {
		t.Fatalf("textarea should keep the submitted goal, got %q", got)
	}
	if doc.ByID("task-1-2") == nil {
		t.Fatalf("expected results embedded in the page")
	}
}

func TestRenderPage_ThemeTokens(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens: map[string]string{
				"surface":  "#101010",
				"brand":    "#123456",
				"bad;key":  "red",
				"injected": "red; background: url(x)",
			},
		},
	}}

	renderer, err := New(WithThemeSelector(selector, " acme ", "dark"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.RenderPage(context.Background(), Page{})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	bodies := testsupport.ParseDocument(t, output).All("body")
	if len(bodies) != 1 {
		t.Fatalf("expected one body, got %d", len(bodies))
	}
	body := bodies[0]

	if got := testsupport.Attr(body, "style"); got != "--goalform-brand: #123456; --goalform-surface: #101010" {
		t.Fatalf("style = %q", got)
	}
	if got := testsupport.Attr(body, "data-theme"); got != "acme" {
		t.Fatalf("data-theme = %q", got)
	}
	if got := testsupport.Attr(body, "data-theme-variant"); got != "dark" {
		t.Fatalf("data-theme-variant = %q", got)
	}
	if diff := cmp.Diff([]selectorCall{{name: "acme", variant: "dark"}}, selector.calls, cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPage_ThemeSelectorError(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("no such theme")}
	renderer, err := New(WithThemeSelector(selector, "missing", ""))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = renderer.RenderPage(context.Background(), Page{})
	if err == nil || !strings.Contains(err.Error(), "no such theme") {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := mustRenderer(t)
	if renderer.Name() != "vanilla" {
		t.Fatalf("name = %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", renderer.ContentType())
	}
}

func TestAssetsFS_ServesStylesheet(t *testing.T) {
	data, err := fsReadFile(StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".hidden") {
		t.Fatalf("stylesheet should define the hidden class")
	}
}

func fsReadFile(name string) ([]byte, error) {
	f, err := AssetsFS().Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

func TestRenderer_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.tmpl")
	if err := os.WriteFile(path, []byte(`<p>first</p>`), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	renderer, err := New(WithTemplatesDir(dir))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	render1, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(path, []byte(`<p>second</p>`), 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	if !renderer.Reload() {
		t.Fatalf("expected reload to reset the engine cache")
	}
	render2, err := renderer.Render(context.Background(), testsupport.SampleBreakdown(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := testsupport.ParseMarkup(t, render1).Texts("p"); !cmp.Equal([]string{"first"}, got) {
		t.Fatalf("first render = %v", got)
	}
	if got := testsupport.ParseMarkup(t, render2).Texts("p"); !cmp.Equal([]string{"second"}, got) {
		t.Fatalf("second render = %v", got)
	}
}
