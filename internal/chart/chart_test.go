package chart

import (
	"encoding/json"
	"html"
	"math"
	"strings"
	"testing"

	"asicrev/internal/core"
)

// decodeOption extracts and parses the option JSON carried by rendered markup.
func decodeOption(t *testing.T, out string) map[string]any {
	t.Helper()
	prefix := OptionAttr + `="`
	i := strings.Index(out, prefix)
	if i < 0 {
		t.Fatalf("no %s attribute in %s", OptionAttr, out)
	}
	rest := out[i+len(prefix):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		t.Fatalf("unterminated %s attribute", OptionAttr)
	}
	var option map[string]any
	if err := json.Unmarshal([]byte(html.UnescapeString(rest[:j])), &option); err != nil {
		t.Fatalf("option is not valid JSON: %v", err)
	}
	return option
}

func seriesData(t *testing.T, option map[string]any) []any {
	t.Helper()
	series, ok := option["series"].([]any)
	if !ok || len(series) != 1 {
		t.Fatalf("expected one series, got %v", option["series"])
	}
	data, _ := series[0].(map[string]any)["data"].([]any)
	return data
}

func TestRenderContainsSeries(t *testing.T) {
	out := string(Render([]core.DisplayPoint{
		{Timestamp: "2024-01-01T00:00:00Z", Value: 200},
		{Timestamp: "2024-01-01T01:00:00Z", Value: 300},
	}, Options{}))

	if !strings.Contains(out, `id="`+ElementID+`"`) {
		t.Fatalf("missing chart container: %s", out)
	}
	option := decodeOption(t, out)
	data := seriesData(t, option)
	if len(data) != 2 || data[1].(map[string]any)["value"] != 300.0 {
		t.Fatalf("unexpected series data %v", data)
	}
	xAxis, _ := option["xAxis"].([]any)
	if len(xAxis) == 0 {
		t.Fatalf("missing x axis in %v", option)
	}
	labels, _ := xAxis[0].(map[string]any)["data"].([]any)
	if len(labels) != 2 || labels[0] != "2024-01-01T00:00:00Z" {
		t.Fatalf("x axis not bound to timestamps: %v", labels)
	}
}

// Repeated swaps must be able to re-run chart setup, so the markup carries no
// script that declares globals.
func TestRenderHasNoInlineScript(t *testing.T) {
	for i := 0; i < 2; i++ {
		out := string(Render([]core.DisplayPoint{{Timestamp: "t", Value: 1}}, Options{}))
		if strings.Contains(out, "<script") || strings.Contains(out, "echarts.init") {
			t.Fatalf("chart markup must not contain inline script: %s", out)
		}
	}
}

func TestRenderNonFiniteKeepsValidJSON(t *testing.T) {
	out := string(Render([]core.DisplayPoint{
		{Timestamp: "a", Value: math.NaN()},
		{Timestamp: "b", Value: math.Inf(1)},
		{Timestamp: "c", Value: 1},
	}, Options{}))
	data := seriesData(t, decodeOption(t, out))
	if len(data) != 3 || data[0].(map[string]any)["value"] != "-" {
		t.Fatalf("non-finite values should become gaps: %v", data)
	}
}

func TestRenderHeight(t *testing.T) {
	if out := string(Render(nil, Options{})); !strings.Contains(out, "400px") {
		t.Errorf("expected default height in output")
	}
	if out := string(Render(nil, Options{Height: 250})); !strings.Contains(out, "250px") {
		t.Errorf("expected custom height in output")
	}
}

func TestRenderEmptySeries(t *testing.T) {
	out := string(Render([]core.DisplayPoint{}, Options{}))
	if !strings.Contains(out, ElementID) {
		t.Fatalf("empty series should still render a container")
	}
}

func TestPlotValue(t *testing.T) {
	if plotValue(math.NaN()) != "-" || plotValue(math.Inf(1)) != "-" || plotValue(math.Inf(-1)) != "-" {
		t.Fatal("non-finite values must map to the missing-data marker")
	}
	if plotValue(1.5) != 1.5 {
		t.Fatal("finite values must pass through")
	}
}

func TestScriptURL(t *testing.T) {
	if !strings.HasPrefix(ScriptURL(), AssetsHost) || !strings.HasSuffix(ScriptURL(), "echarts.min.js") {
		t.Fatalf("unexpected script url %q", ScriptURL())
	}
}
