package http

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"asicrev/internal/core"
	"asicrev/internal/form"
)

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		v    float64
		unit core.Unit
		want string
	}{
		{500, core.UnitUSD, "500.00"},
		{0.025, core.UnitBTC, "0.02500000"},
		{math.NaN(), core.UnitUSD, "NaN"},
		{math.Inf(1), core.UnitBTC, "Infinity"},
		{math.Inf(-1), core.UnitUSD, "-Infinity"},
	}
	for _, tt := range tests {
		if got := formatTotal(tt.v, tt.unit); got != tt.want {
			t.Errorf("formatTotal(%v, %s) = %q, want %q", tt.v, tt.unit, got, tt.want)
		}
	}
}

func TestParseRevenueParams(t *testing.T) {
	p := ParseRevenueParams(url.Values{
		"asic":  {"  s19\x00 "},
		"start": {"2024-01-01T00:00"},
	})
	if p.ASICID != "s19" || p.Start != "2024-01-01T00:00" || p.End != "" {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestMissingFieldMessage(t *testing.T) {
	err := errors.Join(form.ErrMissingField, core.ErrEmptyEnd)
	if got := missingFieldMessage(err); !strings.Contains(got, "end is required") {
		t.Fatalf("unexpected message %q", got)
	}
	if got := missingFieldMessage(form.ErrMissingField); got != "Please select an ASIC and a time range." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestHTMXResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerRevenueUpdated("USD", 2).
		TriggerUnitChanged("USD").
		Header("X-Custom", "value").
		BodyHTML("<p>ok</p>").
		Write(rr)

	if rr.Code != http.StatusOK || rr.Body.String() != "<p>ok</p>" {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, part := range []string{`"revenue:updated"`, `"points":2`, `"unit:changed"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %s: %s", part, trigger)
		}
	}
	if rr.Header().Get("X-Custom") != "value" {
		t.Error("custom header not set")
	}
}

func TestAlertResponseEscapes(t *testing.T) {
	rr := httptest.NewRecorder()
	AlertResponse(http.StatusConflict, "<b>gone</b>").Write(rr)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Body.String() != "&lt;b&gt;gone&lt;/b&gt;" {
		t.Fatalf("body not escaped: %q", rr.Body.String())
	}
	if rr.Header().Get("HX-Retarget") != "#form-alert" || rr.Header().Get("HX-Reswap") != "innerHTML" {
		t.Fatal("alert should retarget the form alert")
	}
}

func TestRequireMethod(t *testing.T) {
	if RequireMethod(httptest.NewRequest(http.MethodPost, "/", nil), http.MethodPost) != nil {
		t.Fatal("POST should be allowed")
	}
	rr := httptest.NewRecorder()
	RequireMethod(httptest.NewRequest(http.MethodPut, "/", nil), http.MethodGet, http.MethodHead).Write(rr)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET, HEAD" {
		t.Fatalf("unexpected %d %q", rr.Code, rr.Header().Get("Allow"))
	}
}
