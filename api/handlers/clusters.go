package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/11bthornton/clustering/pkg/clustering"
)

// Clusters serves the reports of one ingestion result. Reports are computed
// on first request and cached; the indices must not change afterwards.
type Clusters struct {
	res      *clustering.Result
	reporter *clustering.Reporter

	errorOnce sync.Once
	errorRep  *clustering.ErrorReport
	errorKeys map[string]int
	errorErr  error

	crossOnce sync.Once
	crossRep  *clustering.CrossReport
	crossKeys map[string]int
	crossErr  error
}

// NewClusters creates the handlers for res.
func NewClusters(res *clustering.Result, reporter *clustering.Reporter) *Clusters {
	return &Clusters{res: res, reporter: reporter}
}

func (c *Clusters) errorReport() (*clustering.ErrorReport, error) {
	c.errorOnce.Do(func() {
		c.errorRep, c.errorErr = c.reporter.ErrorReport(context.Background(), c.res.UMIToCDR)
		if c.errorErr != nil {
			return
		}
		c.errorKeys = make(map[string]int, len(c.errorRep.Clusters))
		for i, row := range c.errorRep.Clusters {
			c.errorKeys[row.Key] = i
		}
	})
	return c.errorRep, c.errorErr
}

func (c *Clusters) crossReport() (*clustering.CrossReport, error) {
	c.crossOnce.Do(func() {
		c.crossRep, c.crossErr = c.reporter.CrossReport(context.Background(), c.res.CDRToUMI, c.res.UMIToCDR)
		if c.crossErr != nil {
			return
		}
		c.crossKeys = make(map[string]int, len(c.crossRep.Clusters))
		for i, row := range c.crossRep.Clusters {
			c.crossKeys[row.Key] = i
		}
	})
	return c.crossRep, c.crossErr
}

// SummaryHandler returns ingestion counts and statistics of both indices.
func (c *Clusters) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, clustering.Summarize(c.res))
}

// ClusterPage is one page of a report.
type ClusterPage struct {
	Total    int         `json:"total"`
	Offset   int         `json:"offset"`
	Clusters interface{} `json:"clusters"`
}

// ErrorClustersHandler returns a page of barcode clusters, largest majority
// first. Supports limit and offset query parameters.
func (c *Clusters) ErrorClustersHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := c.errorReport()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lo, hi, err := page(r, len(rep.Clusters))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, ClusterPage{Total: len(rep.Clusters), Offset: lo, Clusters: rep.Clusters[lo:hi]})
}

// ErrorClusterHandler returns the cluster of the barcode in the key URL
// parameter.
func (c *Clusters) ErrorClusterHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := c.errorReport()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	key := chi.URLParam(r, "key")
	i, ok := c.errorKeys[key]
	if !ok {
		httpError(w, http.StatusNotFound, "no cluster for barcode "+key)
		return
	}
	writeJSON(w, rep.Clusters[i])
}

// CrossClustersHandler returns a page of CDR clusters with companion
// references. Supports limit and offset query parameters.
func (c *Clusters) CrossClustersHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := c.crossReport()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lo, hi, err := page(r, len(rep.Clusters))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, ClusterPage{Total: len(rep.Clusters), Offset: lo, Clusters: rep.Clusters[lo:hi]})
}

// CrossClusterHandler returns the cluster of the CDR in the key URL
// parameter.
func (c *Clusters) CrossClusterHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := c.crossReport()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	key := chi.URLParam(r, "key")
	i, ok := c.crossKeys[key]
	if !ok {
		httpError(w, http.StatusNotFound, "no cluster for cdr "+key)
		return
	}
	writeJSON(w, rep.Clusters[i])
}

// HistogramResponse represents the error cluster size histogram.
type HistogramResponse struct {
	Total   int                 `json:"total"`
	Buckets []clustering.Bucket `json:"buckets"`
}

// HistogramHandler returns how many minority CDRs were seen at each count.
func (c *Clusters) HistogramHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := c.errorReport()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, HistogramResponse{Total: rep.Histogram.Total(), Buckets: rep.Histogram.Buckets()})
}

// Routes mounts the cluster endpoints on r.
func (c *Clusters) Routes(r chi.Router) {
	r.Get("/summary", c.SummaryHandler)
	r.Get("/histogram", c.HistogramHandler)
	r.Route("/clusters", func(r chi.Router) {
		r.Get("/umi", c.ErrorClustersHandler)
		r.Get("/umi/{key}", c.ErrorClusterHandler)
		r.Get("/cdr", c.CrossClustersHandler)
		r.Get("/cdr/{key}", c.CrossClusterHandler)
	})
}
