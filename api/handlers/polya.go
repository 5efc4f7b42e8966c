package handlers

import (
	"net/http"

	"github.com/aria-lang/isoannot-go/internal/sequence"
	"github.com/aria-lang/isoannot-go/pkg/isoannot"
)

// ScanRequest asks for a sliding-window poly(A) scan of a sequence.
// Zero parameters use the defaults.
type ScanRequest struct {
	Sequence    string  `json:"sequence"`
	WindowSize  int     `json:"window_size,omitempty"`
	MinFraction float64 `json:"min_fraction,omitempty"`
}

// ScanResponse reports the first qualifying window.
type ScanResponse struct {
	Offset     *int `json:"offset"`
	Found      bool `json:"found"`
	WindowSize int  `json:"window_size"`
	Threshold  int  `json:"threshold"`
}

// PolyAScanHandler handles poly(A) scan requests.
func PolyAScanHandler(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !decode(w, r, &req) {
		return
	}
	if !validFinderParams(w, req.WindowSize, req.MinFraction) {
		return
	}

	seq, err := sequence.New(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := isoannot.NewFinder(req.WindowSize, req.MinFraction)
	offset, ok := f.FindPolyA(seq.Bases)
	writeJSON(w, http.StatusOK, ScanResponse{
		Offset:     intPtr(offset, ok),
		Found:      ok,
		WindowSize: f.WindowSize,
		Threshold:  f.Threshold(),
	})
}

// TailRequest describes one alignment in SAM text form. Start is the
// 0-based leftmost reference position.
type TailRequest struct {
	Name        string  `json:"name"`
	Sequence    string  `json:"sequence"`
	Cigar       string  `json:"cigar"`
	Start       int     `json:"start"`
	WindowSize  int     `json:"window_size,omitempty"`
	MinFraction float64 `json:"min_fraction,omitempty"`
}

// TailResponse holds the tail coordinates; null means not found.
type TailResponse struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	PolyA *int   `json:"polya_pos"`
	PolyT *int   `json:"polyt_pos"`
}

// PolyATailHandler locates the poly(A) tail and poly(T) head of an
// alignment.
func PolyATailHandler(w http.ResponseWriter, r *http.Request) {
	var req TailRequest
	if !decode(w, r, &req) {
		return
	}
	if !validFinderParams(w, req.WindowSize, req.MinFraction) {
		return
	}

	a, err := isoannot.NewAlignment(req.Name, req.Sequence, req.Cigar, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := isoannot.NewFinder(req.WindowSize, req.MinFraction)
	writeJSON(w, http.StatusOK, TailResponse{
		Name:  a.Name,
		Start: a.Start,
		End:   a.End,
		PolyA: intPtr(f.FindPolyATail(a)),
		PolyT: intPtr(f.FindPolyTHead(a)),
	})
}

// validFinderParams rejects scan parameters outside their range. Zero
// values select the defaults.
func validFinderParams(w http.ResponseWriter, windowSize int, minFraction float64) bool {
	if minFraction < 0 || minFraction > 1 || windowSize < 0 {
		writeError(w, http.StatusBadRequest, "window_size must be positive and min_fraction in (0, 1]")
		return false
	}
	return true
}
