package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/rushteam/eventrec/learning"
	"github.com/rushteam/eventrec/recommend"
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("EVENTREC_CONFIG", "")
	t.Setenv("EVENTREC_STORAGE_BACKEND", "file")
	t.Setenv("EVENTREC_STORAGE_PATH", filepath.Join(dir, "storage"))
	t.Setenv("EVENTREC_LOG_LEVEL", "disabled")
	return dir
}

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	root, a := newRootCmd()
	defer a.close()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.Bytes(), err
}

func TestCLI_LogTrainRecommend(t *testing.T) {
	dir := setup(t)

	logs := [][3]string{
		{"u1", "e1", "attend"},
		{"u1", "e1", "ATTENDED"},
		{"u2", "e1", "ATTENDED"},
		{"u2", "e2", "SAVE"},
	}
	for _, l := range logs {
		if _, err := run(t, "log", "add", "--user", l[0], "--event", l[1], "--action", l[2]); err != nil {
			t.Fatalf("log add: %v", err)
		}
	}

	out, err := run(t, "log", "list")
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil || len(records) != 4 {
		t.Fatalf("log list = %s, %v", out, err)
	}
	for i, r := range records {
		ts, _ := r["timestamp"].(string)
		if ts == "" || strings.HasPrefix(ts, "0001-") || !strings.HasSuffix(ts, "Z") {
			t.Errorf("record %d timestamp = %q, want write time in UTC", i, ts)
		}
	}

	out, err = run(t, "train", "--parallel")
	if err != nil {
		t.Fatal(err)
	}
	var report learning.Report
	if err := json.Unmarshal(out, &report); err != nil {
		t.Fatal(err)
	}
	if report.Records != 4 || len(report.Jobs) != 5 {
		t.Errorf("report = %+v", report)
	}

	out, err = run(t, "weights")
	if err != nil {
		t.Fatal(err)
	}
	var w struct {
		Source  string             `json:"source"`
		Weights map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal(out, &w); err != nil {
		t.Fatal(err)
	}
	if w.Source != "learned" || w.Weights["popularity"] != 0.4 || w.Weights["collab"] != 0.2 {
		t.Errorf("weights = %+v", w)
	}

	reqPath := filepath.Join(dir, "request.json")
	req := `{"user":{"user_id":"u1","latitude":0,"longitude":0,"interests":["music"]},
		"events":[{"event_id":"e2","latitude":0,"longitude":0,"category":["music"],"start_time":"not a time"},
		          {"event_id":"e1","latitude":0,"longitude":0,"category":["music"],"start_time":"not a time"}]}`
	if err := os.WriteFile(reqPath, []byte(req), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "recommend", "--input", reqPath)
	if err != nil {
		t.Fatal(err)
	}
	var resp recommend.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatal(err)
	}
	// e2 有热度（SAVE）且与 u1 参加过的 e1 相似；e1 在学习到的权重下没有得分
	if len(resp.Results) != 2 || resp.Results[0].EventID != "e2" || resp.Results[1].Score != 0 {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestCLI_UnknownJob(t *testing.T) {
	setup(t)
	if _, err := run(t, "train", "--job", "bogus"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestCLI_WeightsDefault(t *testing.T) {
	setup(t)
	out, err := run(t, "weights")
	if err != nil {
		t.Fatal(err)
	}
	var w struct {
		Source string `json:"source"`
	}
	_ = json.Unmarshal(out, &w)
	if w.Source != "default" {
		t.Errorf("source = %q, want default", w.Source)
	}
}
