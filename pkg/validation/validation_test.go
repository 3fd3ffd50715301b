package validation

import "testing"

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("expected empty report to be valid")
	}
	if r.Errors == nil || r.Warnings == nil || r.Info == nil {
		t.Error("expected non-nil slices so JSON renders [] rather than null")
	}
	if r.Summary != "0 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestSeverityFollowsAdder(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Level: LevelConfig, Message: "water.max must exceed water.min", Path: "scene.water"})
	r.AddWarning(Result{Level: LevelSource, Message: "flood extent unavailable"})
	r.AddInfo(Result{Level: LevelScene, Message: "no rain: weather is dry"})

	if r.Valid {
		t.Error("expected a config error to invalidate the report")
	}
	if got := r.Errors[0].Severity; got != SeverityError {
		t.Errorf("expected error severity, got %s", got)
	}
	if got := r.Warnings[0].Severity; got != SeverityWarning {
		t.Errorf("expected warning severity, got %s", got)
	}
	if got := r.Info[0].Severity; got != SeverityInfo {
		t.Errorf("expected info severity, got %s", got)
	}
	if r.Summary != "1 errors, 1 warnings, 1 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestSourceWarningsKeepReportValid(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelSource, Message: "weather unavailable"})
	r.AddWarning(Result{Level: LevelSource, Message: "river discharge unavailable"})
	if !r.Valid {
		t.Error("expected unavailable sources to leave the report valid")
	}
	if err := r.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// The snapshot command merges the scene graph checks into the dashboard
// findings.
func TestMergeSceneIntoDashboard(t *testing.T) {
	dashboard := NewReport()
	dashboard.AddWarning(Result{Level: LevelSource, Message: "flood extent unavailable"})

	graph := NewReport()
	graph.AddError(Result{Level: LevelScene, Message: `duplicate entity ID "building-1"`})
	graph.AddWarning(Result{Level: LevelScene, Message: `label "label-1" can be occluded by buildings`})

	dashboard.Merge(graph)

	if dashboard.Valid {
		t.Error("expected merged scene error to invalidate the report")
	}
	if len(dashboard.Errors) != 1 || len(dashboard.Warnings) != 2 {
		t.Errorf("expected 1 error and 2 warnings, got %d and %d", len(dashboard.Errors), len(dashboard.Warnings))
	}
	if dashboard.Summary != "1 errors, 2 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", dashboard.Summary)
	}
}

func TestMergeNilAndValid(t *testing.T) {
	r := NewReport()
	r.Merge(nil)

	other := NewReport()
	other.AddInfo(Result{Level: LevelConfig, Message: "sources.timeout is 0"})
	r.Merge(other)

	if !r.Valid {
		t.Error("expected merge of valid reports to stay valid")
	}
	if len(r.Info) != 1 {
		t.Errorf("expected 1 info, got %d", len(r.Info))
	}
}

func TestErr(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Level: LevelConfig, Message: "out of range", Path: "server.port"})
	r.AddError(Result{Level: LevelScene, Message: "scene graph is nil"})
	r.AddWarning(Result{Level: LevelSource, Message: "ignored"})

	err := r.Err()
	if err == nil {
		t.Fatal("expected error for invalid report")
	}
	want := "server.port: out of range; scene graph is nil"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
