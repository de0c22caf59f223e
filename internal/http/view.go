package http

import (
	"html/template"

	"asicrev/internal/chart"
	"asicrev/internal/form"
)

// htmxURL is the HTMX build the layout loads.
const htmxURL = "https://unpkg.com/htmx.org@1.9.12"

type asicOption struct {
	ID       string
	Name     string
	Selected bool
}

// formView is the render model of one form snapshot.
type formView struct {
	ASICs       []asicOption
	UnitsPerMWh string
	Start       string
	End         string
	Status      string
	Loading     bool
	Error       string
	Chart       template.HTML
	Total       string
	Unit        string
	BTC         bool
}

type pageView struct {
	LoadError  string
	Form       *formView
	HTMXURL    string
	EChartsURL string
}

func newFormView(snap form.Snapshot, chartHeight int) *formView {
	v := &formView{
		UnitsPerMWh: formatNumber(snap.UnitsPerMWh, 2),
		Start:       snap.Start,
		End:         snap.End,
		Status:      snap.Status.String(),
		Loading:     snap.Loading,
		Error:       snap.Error,
		Total:       formatTotal(snap.Total, snap.Unit),
		Unit:        snap.Unit.String(),
		BTC:         bool(snap.Unit),
	}

	v.ASICs = make([]asicOption, 0, len(snap.ASICs))
	for _, a := range snap.ASICs {
		v.ASICs = append(v.ASICs, asicOption{ID: a.ID, Name: a.Name, Selected: a.ID == snap.SelectedID})
	}

	if len(snap.Series) > 0 {
		v.Chart = chart.Render(snap.Series, chart.Options{
			Height:     chartHeight,
			SeriesName: "Revenue (" + v.Unit + ")",
		})
	}
	return v
}

func newPageView(f *formView, loadErr string) pageView {
	return pageView{
		LoadError:  loadErr,
		Form:       f,
		HTMXURL:    htmxURL,
		EChartsURL: chart.ScriptURL(),
	}
}
