package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/chart"
	"github.com/secmon-lab/suistat/pkg/usecase"
)

type selectionView struct {
	Country string `json:"country"`
	Year    string `json:"year"`
	Chart   string `json:"chart"`
}

type stateResponse struct {
	Selection   selectionView                    `json:"selection"`
	YearVisible bool                             `json:"year_visible"`
	Width       float64                          `json:"container_width"`
	Status      usecase.Status                   `json:"status"`
	Version     uint64                           `json:"version"`
	Blank       bool                             `json:"blank"`
	Slots       map[types.SlotID]model.SlotValue `json:"slots"`
}

func (s *Server) state() stateResponse {
	snap := s.board.Snapshot()
	resp := stateResponse{
		Selection: selectionView{
			Country: s.widgets.Country.Current(),
			Year:    s.widgets.Year.Current(),
			Chart:   s.widgets.Chart.Current(),
		},
		Width:   s.widgets.Container.Current(),
		Status:  s.uc.status.Status(),
		Version: snap.Version,
		Blank:   snap.Blank(),
		Slots:   snap.Slots,
	}
	if kind, err := types.ParseChartKind(resp.Selection.Chart); err == nil {
		resp.YearVisible = model.Selection{ChartKind: kind}.YearVisible()
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.state())
}

type optionsResponse struct {
	Countries []string `json:"countries"`
	Charts    []string `json:"charts"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	countries, err := s.uc.options.Countries(r.Context())
	if err != nil {
		writeError(w, r, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, optionsResponse{
		Countries: countries,
		Charts:    []string{types.ChartKindLine.Label(), types.ChartKindBar.Label()},
	})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		country = s.widgets.Country.Current()
	}
	years, err := s.uc.options.Years(r.Context(), country)
	if err != nil {
		writeError(w, r, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"country": country,
		"years":   years,
	})
}

// yearText accepts a year as JSON number or string
type yearText string

func (y *yearText) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*y = yearText(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return goerr.Wrap(err, "year must be a number or string")
	}
	*y = yearText(s)
	return nil
}

type selectionRequest struct {
	Country *string   `json:"country"`
	Year    *yearText `json:"year"`
	Chart   *string   `json:"chart"`
}

// handleSelection applies widget changes in country, chart, year order and waits for the redraw
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid selection request"), http.StatusBadRequest)
		return
	}

	var chartLabel string
	if req.Chart != nil {
		kind, err := types.ParseChartKind(*req.Chart)
		if err != nil {
			writeError(w, r, goerr.Wrap(model.ErrUnknownChartKind, "invalid chart", goerr.V("chart", *req.Chart)), http.StatusBadRequest)
			return
		}
		chartLabel = kind.Label()
	}
	if req.Year != nil {
		if _, err := strconv.Atoi(strings.TrimSpace(string(*req.Year))); err != nil {
			writeError(w, r, goerr.Wrap(err, "invalid year", goerr.V("year", *req.Year)), http.StatusBadRequest)
			return
		}
	}

	if req.Country != nil {
		s.widgets.Country.Set(*req.Country)
	}
	if req.Chart != nil {
		s.widgets.Chart.Set(chartLabel)
	}
	if req.Year != nil {
		s.widgets.Year.Set(strings.TrimSpace(string(*req.Year)))
	}

	if err := s.uc.status.Flush(r.Context()); err != nil {
		writeError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, s.state())
}

type containerRequest struct {
	Width float64 `json:"width"`
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	var req containerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid container request"), http.StatusBadRequest)
		return
	}

	s.widgets.Container.Set(req.Width)

	if err := s.uc.status.Flush(r.Context()); err != nil {
		writeError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, s.state())
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.board.Snapshot()
	if snap.Blank() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(snap.Version, 10)))
	if _, err := w.Write([]byte(snap.SVG)); err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to write svg"), http.StatusInternalServerError)
	}
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	snap := s.board.Snapshot()
	if snap.Blank() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := chart.PNG(snap.Scene, s.uc.dashboard.Config().Headroom, &buf); err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to write png"), http.StatusInternalServerError)
	}
}

// handleSeries returns the aggregated series. Query parameters country, year and chart
// override the current selection.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	sel, err := s.uc.status.Selection()
	if err != nil {
		writeError(w, r, err, statusOf(err))
		return
	}

	q := r.URL.Query()
	if v := q.Get("country"); v != "" {
		sel.Country = v
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 0 || year > math.MaxInt32 {
			writeError(w, r, goerr.New("invalid year", goerr.V("year", v)), http.StatusBadRequest)
			return
		}
		sel.Year = year
	}
	if v := q.Get("chart"); v != "" {
		kind, err := types.ParseChartKind(v)
		if err != nil {
			writeError(w, r, goerr.Wrap(model.ErrUnknownChartKind, "invalid chart", goerr.V("chart", v)), http.StatusBadRequest)
			return
		}
		sel.ChartKind = kind
	}

	view, err := s.uc.dashboard.Series(r.Context(), sel)
	if err != nil {
		writeError(w, r, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
