package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/11bthornton/clustering/internal/alignment"
	"github.com/11bthornton/clustering/internal/codon"
)

// AlignmentRequest represents an alignment request.
type AlignmentRequest struct {
	Majority string `json:"majority"`
	Variant  string `json:"variant"`
}

// AlignmentResponse represents the response for alignment.
type AlignmentResponse struct {
	Diff        string  `json:"diff"`
	Cursor      int     `json:"cursor"`
	Score       int     `json:"score"`
	Identity    float64 `json:"identity"`
	Matches     int     `json:"matches"`
	Mismatches  int     `json:"mismatches"`
	Deletions   int     `json:"deletions"`
	Insertions  int     `json:"insertions"`
	GapOpenings int     `json:"gap_openings"`
	Alignment   string  `json:"alignment"`
}

// AlignHandler handles affine global alignment requests. The diff is
// annotated against the variant.
func AlignHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, b := []byte(req.Majority), []byte(req.Variant)
	al, err := alignment.NewAligner(nil).Global(a, b)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := alignment.Annotate(al, b)

	writeJSON(w, AlignmentResponse{
		Diff:        d.Text,
		Cursor:      d.Cursor,
		Score:       al.Score,
		Identity:    al.Identity(),
		Matches:     al.Count(alignment.Match),
		Mismatches:  al.Count(alignment.Subst),
		Deletions:   al.Count(alignment.Del),
		Insertions:  al.Count(alignment.Ins),
		GapOpenings: al.GapOpenings(),
		Alignment:   al.Format(),
	})
}

// PositionWiseResponse represents the response for a gapless diff.
type PositionWiseResponse struct {
	Diff string `json:"diff"`
}

// PositionWiseHandler handles column-by-column diff requests.
func PositionWiseHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := alignment.PositionWise([]byte(req.Majority), []byte(req.Variant))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, PositionWiseResponse{Diff: d})
}

// TranslateRequest represents a translation request.
type TranslateRequest struct {
	Sequence string `json:"sequence"`
}

// TranslateResponse represents the response for translation.
type TranslateResponse struct {
	Protein string `json:"protein"`
	Codons  int    `json:"codons"`
	Partial bool   `json:"partial"` // a trailing partial codon was dropped
}

var translator = codon.NewTranslator()

// TranslateHandler handles nucleotide to protein translation requests.
func TranslateHandler(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sequence == "" {
		httpError(w, http.StatusBadRequest, "sequence is required")
		return
	}

	protein := translator.Bytes([]byte(req.Sequence))
	writeJSON(w, TranslateResponse{
		Protein: string(protein),
		Codons:  len(protein),
		Partial: len(req.Sequence)%3 != 0,
	})
}
