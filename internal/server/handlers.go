package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/report"
	"github.com/ginjaninja78/funding-dashboard/internal/schema"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
	"github.com/ginjaninja78/funding-dashboard/internal/validation"
	"github.com/ginjaninja78/funding-dashboard/pkg/utils"
)

// =============================================================================
// REQUEST AND RESPONSE TYPES
// =============================================================================

// DashboardRequest is the body of POST /api/dashboard and /api/export.
//
// A nil selection component means "no filter" for that component. A
// component that is present applies exactly as given: {"all": false} with no
// values excludes every record.
type DashboardRequest struct {
	Cities          *filter.Choice      `json:"cities,omitempty"`
	Industries      *filter.Choice      `json:"industries,omitempty"`
	InvestmentTypes *filter.Choice      `json:"investment_types,omitempty"`
	Years           *filter.YearRange   `json:"years,omitempty"`
	Amount          *filter.AmountRange `json:"amount,omitempty"`

	TopN        int    `json:"top_n,omitempty"`
	PreviewRows *int   `json:"preview_rows,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	FillGaps    *bool  `json:"fill_gaps,omitempty"`
}

// Bind implements render.Binder.
func (req *DashboardRequest) Bind(r *http.Request) error {
	if req.TopN < 0 {
		return errors.New("top_n must not be negative")
	}
	if req.PreviewRows != nil && *req.PreviewRows < 0 {
		return errors.New("preview_rows must not be negative")
	}
	return nil
}

// Selection converts the request to a filter selection.
func (req *DashboardRequest) Selection() filter.Selection {
	sel := filter.Default()
	if req.Cities != nil {
		sel.Cities = *req.Cities
	}
	if req.Industries != nil {
		sel.Industries = *req.Industries
	}
	if req.InvestmentTypes != nil {
		sel.InvestmentTypes = *req.InvestmentTypes
	}
	if req.Years != nil {
		sel.Years = *req.Years
	}
	if req.Amount != nil {
		sel.Amount = *req.Amount
	}
	return sel
}

// Options applies request overrides to the server defaults.
func (req *DashboardRequest) Options(base dashboard.Options) (dashboard.Options, error) {
	opts := base
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}
	if req.PreviewRows != nil {
		opts.PreviewRows = *req.PreviewRows
	}
	if req.FillGaps != nil {
		opts.FillGaps = *req.FillGaps
	}
	if req.Bucket != "" {
		b, err := aggregate.ParseBucket(req.Bucket)
		if err != nil {
			return opts, err
		}
		opts.Bucket = b
	}
	return opts, nil
}

// OptionsResponse populates the filter widgets.
type OptionsResponse struct {
	Source  string           `json:"source"`
	Records int              `json:"records"`
	Columns types.Resolution `json:"columns"`
	Missing []types.Field    `json:"missing"`
	filter.Bounds

	// Selected lists every option explicitly. Posting it back selects every
	// record that has a value for each filtered field.
	Selected filter.Selection `json:"selected"`
}

// RawResponse is the unfiltered record listing.
type RawResponse struct {
	Total     int            `json:"total"`
	Returned  int            `json:"returned"`
	Truncated bool           `json:"truncated"`
	Records   []types.Record `json:"records"`
}

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Trace  string            `json:"trace_id,omitempty"`
	Errors validation.Errors `json:"errors,omitempty"`
}

// Render implements render.Renderer.
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func problem(r *http.Request, status int, detail string) *Problem {
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  middleware.GetReqID(r.Context()),
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"records": s.ds.Len(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	bounds := filter.Options(s.ds)
	resp := OptionsResponse{
		Records:  s.ds.Len(),
		Bounds:   bounds,
		Selected: filter.Explicit(bounds),
	}
	if s.ds != nil {
		resp.Source = s.ds.Source
		resp.Columns = s.ds.Columns
		resp.Missing = schema.Missing(s.ds.Columns, types.AllFields...)
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxRawRows
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			render.Render(w, r, problem(r, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", q)))
			return
		}
		if n < limit {
			limit = n
		}
	}

	records := filter.Preview(s.ds, limit)
	if records == nil {
		records = []types.Record{}
	}
	render.JSON(w, r, RawResponse{
		Total:     s.ds.Len(),
		Returned:  len(records),
		Truncated: len(records) < s.ds.Len(),
		Records:   records,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, p := s.build(r)
	if p != nil {
		render.Render(w, r, p)
		return
	}
	render.JSON(w, r, dash)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dash, p := s.build(r)
	if p != nil {
		render.Render(w, r, p)
		return
	}

	name := utils.GenerateOutputFileName("{dataset}_{timestamp}", map[string]string{
		"dataset": utils.DatasetName(dash.Source),
	}, ".xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := report.WriteXLSXTo(w, dash); err != nil {
		s.logger.ErrorContext(r.Context(), "export failed", "error", err)
	}
}

// build decodes and validates the request and computes the dashboard.
func (s *Server) build(r *http.Request) (*dashboard.Dashboard, *Problem) {
	// An empty body, with or without a Content-Length, selects everything.
	req := &DashboardRequest{}
	if r.ContentLength != 0 {
		if err := render.Bind(r, req); err != nil && !errors.Is(err, io.EOF) {
			return nil, problem(r, http.StatusBadRequest, err.Error())
		}
	}

	sel := req.Selection()
	if err := validation.Selection(sel); err != nil {
		p := problem(r, http.StatusUnprocessableEntity, "invalid selection")
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			p.Errors = verrs
		} else {
			p.Detail = err.Error()
		}
		return nil, p
	}

	opts, err := req.Options(s.opts)
	if err != nil {
		return nil, problem(r, http.StatusBadRequest, err.Error())
	}

	dash := dashboard.Build(s.ds, sel, opts)
	s.metrics.observeBuild(dash.Stats.Matched, dash.Stats.Elapsed)
	s.logger.InfoContext(r.Context(), "dashboard built",
		"dashboard_id", dash.RunID,
		"selection", sel.String(),
		"matched", dash.Stats.Matched,
		"elapsed", dash.Stats.Elapsed,
	)
	return dash, nil
}
