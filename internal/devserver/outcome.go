package devserver

import (
	"github.com/vango-dev/navguard/pkg/guard"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/scroll"
)

// Outcome is the JSON form of a finished navigation.
type Outcome struct {
	Navigation string         `json:"navigation,omitempty"`
	Status     guard.Status   `json:"status"`
	From       string         `json:"from"`
	To         *nav.Location  `json:"to,omitempty"`
	Redirects  []string       `json:"redirects,omitempty"`
	AbortedBy  string         `json:"abortedBy,omitempty"`
	Layout     string         `json:"layout,omitempty"`
	Views      []string       `json:"views,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Fetched    bool           `json:"fetched,omitempty"`
	Scroll     *scroll.Target `json:"scroll,omitempty"`
}

func newOutcome(out *guard.Outcome) *Outcome {
	o := &Outcome{
		Status:    out.Status,
		From:      out.From.FullPath,
		Redirects: out.Redirects,
	}
	if dec := out.Decision; dec != nil {
		o.Navigation = dec.ID
		o.AbortedBy = dec.Result.AbortedBy()
		for _, v := range dec.Views {
			o.Views = append(o.Views, v.Name)
		}
	}
	if out.Committed() {
		to := out.To
		o.To = &to
		o.Layout = out.Decision.Layout
		o.Data = out.Decision.Data
		o.Fetched = out.Decision.Fetched
		target := out.Scroll
		o.Scroll = &target
	}
	return o
}

// RouteInfo is the JSON form of a registered route.
type RouteInfo struct {
	Pattern string `json:"pattern"`
	Name    string `json:"name,omitempty"`
	Parent  string `json:"parent,omitempty"`
	Views   int    `json:"views"`
	Lazy    int    `json:"lazy"`
}
