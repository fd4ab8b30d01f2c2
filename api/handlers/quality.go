package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/11bthornton/clustering/internal/quality"
	"github.com/11bthornton/clustering/internal/sequence"
)

// QualityRequest represents a quality request. Sequence is optional; when
// given it is run through the admission filter.
type QualityRequest struct {
	Sequence     string   `json:"sequence,omitempty"`
	Qualities    string   `json:"qualities"`
	MaxAmbiguous *float64 `json:"max_ambiguous,omitempty"`
}

// QualityResponse represents the response for quality decoding.
type QualityResponse struct {
	Scores             []int     `json:"scores"`
	ErrorProbabilities []float64 `json:"error_probabilities"`
	Weight             float64   `json:"weight"`
	RatioAmbiguous     *float64  `json:"ratio_ambiguous,omitempty"`
	Admitted           *bool     `json:"admitted,omitempty"`
}

// QualityHandler decodes Phred+33 qualities and weighs them with the
// default quality model.
func QualityHandler(w http.ResponseWriter, r *http.Request) {
	var req QualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Qualities == "" {
		httpError(w, http.StatusBadRequest, "qualities are required")
		return
	}
	if req.Sequence != "" && len(req.Sequence) != len(req.Qualities) {
		err := &sequence.LengthMismatchError{Field: "qualities", Expected: len(req.Sequence), Actual: len(req.Qualities)}
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := quality.Default()
	resp := QualityResponse{
		Scores:             make([]int, len(req.Qualities)),
		ErrorProbabilities: make([]float64, len(req.Qualities)),
	}
	for i := 0; i < len(req.Qualities); i++ {
		q := req.Qualities[i]
		resp.Scores[i] = quality.Decode(q)
		resp.ErrorProbabilities[i] = quality.ErrorProbability(resp.Scores[i])
		resp.Weight += m.Weight(q)
	}

	if req.Sequence != "" {
		f := quality.DefaultFilter()
		if req.MaxAmbiguous != nil {
			var err error
			if f, err = quality.NewFilter(*req.MaxAmbiguous); err != nil {
				httpError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		ratio := sequence.RatioAmbiguousOf([]byte(req.Sequence))
		admitted := f.AdmitRatio(ratio)
		resp.RatioAmbiguous, resp.Admitted = &ratio, &admitted
	}

	writeJSON(w, resp)
}
