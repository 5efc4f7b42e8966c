package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/profile"
	"github.com/aria-lang/isoannot-go/internal/report"
	"github.com/aria-lang/isoannot-go/internal/stats"
)

// Boundary serves annotations against a loaded transcript model.
type Boundary struct {
	Model     *genemodel.DB
	Annotator *boundary.Annotator
	Regions   *genemodel.Regions // nil without a reference
}

// Span is a 1-based closed interval.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func toIntervals(spans []Span) []interval.Interval {
	out := make([]interval.Interval, len(spans))
	for i, s := range spans {
		out[i] = interval.Interval{Start: s.Start, End: s.End}
	}
	return out
}

func toSpans(list []interval.Interval) []Span {
	out := make([]Span, len(list))
	for i, iv := range list {
		out[i] = Span{Start: iv.Start, End: iv.End}
	}
	return out
}

// AnnotateRequest is a read profile with its assignment. Introns default
// to the gaps between exons and the intron profile to an exact comparison
// with the transcript.
type AnnotateRequest struct {
	ReadID        string `json:"read_id"`
	GeneID        string `json:"gene_id"`
	TranscriptID  string `json:"transcript_id"`
	Exons         []Span `json:"exons"`
	Introns       []Span `json:"introns,omitempty"`
	IntronProfile []int  `json:"intron_profile,omitempty"`
}

// AnnotateResponse carries the boundary metrics. Region-dependent fields
// are null when no reference sequence is loaded for the gene.
type AnnotateResponse struct {
	ReadID          string   `json:"read_id"`
	Chrom           string   `json:"chrom"`
	Strand          string   `json:"strand"`
	GeneID          string   `json:"gene_id"`
	TranscriptID    string   `json:"transcript_id"`
	DiffToTSS       int      `json:"diff_to_tss"`
	DiffToTTS       int      `json:"diff_to_tts"`
	DiffToGeneTSS   int      `json:"diff_to_gene_tss"`
	DiffToGeneTTS   int      `json:"diff_to_gene_tts"`
	SitesMatch      string   `json:"sites_match"`
	CDSStart        int      `json:"cds_start"`
	CDSEnd          int      `json:"cds_end"`
	AllCanonical    *bool    `json:"all_canonical"`
	PercADownstream *float64 `json:"perc_a_downstream"`
	SeqADownstream  *string  `json:"seq_a_downstream"`
	PercAFormatted  string   `json:"perc_a_formatted"`
}

// annotate runs one request and returns the HTTP status of a failure.
func (h *Boundary) annotate(req AnnotateRequest) (*boundary.Annotation, int, error) {
	if len(req.Exons) == 0 {
		return nil, http.StatusBadRequest, errors.New("exons must not be empty")
	}

	t, err := h.Model.Transcript(req.TranscriptID)
	if err != nil {
		return nil, http.StatusNotFound, err
	}

	read := &boundary.Read{
		ID:            req.ReadID,
		GeneID:        req.GeneID,
		TranscriptID:  req.TranscriptID,
		Exons:         toIntervals(req.Exons),
		Introns:       toIntervals(req.Introns),
		IntronProfile: req.IntronProfile,
	}
	if read.GeneID == "" {
		read.GeneID = t.GeneID
	}
	if len(read.Introns) == 0 {
		read.Introns = interval.Gaps(read.Exons)
	}
	if read.IntronProfile == nil {
		read.IntronProfile = profile.Compare(read.Introns, t)
	}

	var region *genemodel.GeneRegion
	if h.Regions != nil {
		if region, err = h.Regions.Get(read.GeneID); err != nil {
			return nil, http.StatusNotFound, err
		}
	}

	ann, err := h.Annotator.Annotate(read, region)
	switch {
	case errors.Is(err, genemodel.ErrUnknownGene), errors.Is(err, genemodel.ErrUnknownTranscript):
		return nil, http.StatusNotFound, err
	case err != nil:
		return nil, http.StatusBadRequest, err
	}
	return ann, http.StatusOK, nil
}

// AnnotateHandler handles boundary annotation requests.
func (h *Boundary) AnnotateHandler(w http.ResponseWriter, r *http.Request) {
	var req AnnotateRequest
	if !decode(w, r, &req) {
		return
	}
	ann, status, err := h.annotate(req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	resp := AnnotateResponse{
		ReadID:         ann.ReadID,
		Chrom:          ann.Chrom,
		Strand:         ann.Strand.String(),
		GeneID:         ann.GeneID,
		TranscriptID:   ann.TranscriptID,
		DiffToTSS:      ann.DiffToTSS,
		DiffToTTS:      ann.DiffToTTS,
		DiffToGeneTSS:  ann.DiffToGeneTSS,
		DiffToGeneTTS:  ann.DiffToGeneTTS,
		SitesMatch:     ann.SitesMatch.String(),
		CDSStart:       ann.CDSStart,
		CDSEnd:         ann.CDSEnd,
		PercAFormatted: ann.PercADownstream.Format(report.FormatFraction),
	}
	if v, ok := ann.AllCanonical.Get(); ok {
		resp.AllCanonical = &v
	}
	if v, ok := ann.PercADownstream.Get(); ok {
		resp.PercADownstream = &v
	}
	if v, ok := ann.SeqADownstream.Get(); ok {
		resp.SeqADownstream = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// StatsRequest is a batch of reads to summarize.
type StatsRequest struct {
	Reads    []AnnotateRequest `json:"reads"`
	HistBins int               `json:"hist_bins,omitempty"`
}

// StatsResponse summarizes a batch. Histogram bins TSS distances.
type StatsResponse struct {
	Stats     *stats.BoundaryStats     `json:"stats"`
	Histogram *stats.DistanceHistogram `json:"tss_histogram"`
}

// StatsHandler annotates a batch of reads and returns its summary. The
// first failing read fails the batch.
func (h *Boundary) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.HistBins <= 0 {
		req.HistBins = 10
	}

	anns := make([]*boundary.Annotation, 0, len(req.Reads))
	tss := make([]int, 0, len(req.Reads))
	for i, rr := range req.Reads {
		ann, status, err := h.annotate(rr)
		if err != nil {
			writeError(w, status, fmt.Sprintf("read %d: %v", i, err))
			return
		}
		anns = append(anns, ann)
		tss = append(tss, ann.DiffToTSS)
	}

	s, err := stats.FromAnnotations(anns)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hist, err := stats.NewDistanceHistogram(tss, req.HistBins)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Stats: s, Histogram: hist})
}

// TranscriptResponse describes one transcript of a gene.
type TranscriptResponse struct {
	ID       string `json:"id"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Length   int    `json:"length"`
	Exons    []Span `json:"exons"`
	CDSStart int    `json:"cds_start"`
	CDSEnd   int    `json:"cds_end"`
}

// GeneResponse describes a gene and its transcripts ordered by start.
type GeneResponse struct {
	ID          string               `json:"id"`
	Chrom       string               `json:"chrom"`
	Strand      string               `json:"strand"`
	Start       int                  `json:"start"`
	End         int                  `json:"end"`
	Transcripts []TranscriptResponse `json:"transcripts"`
}

// GeneHandler returns the gene named by the {id} URL parameter.
func (h *Boundary) GeneHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.Model.Gene(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	children, err := h.Model.Children(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := GeneResponse{
		ID:     g.ID,
		Chrom:  g.Chrom,
		Strand: g.Strand.String(),
		Start:  g.Start,
		End:    g.End,
	}
	for _, t := range children {
		cdsStart, cdsEnd, err := h.Annotator.RefCDSRegion(t.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Transcripts = append(resp.Transcripts, TranscriptResponse{
			ID:       t.ID,
			Start:    t.Start,
			End:      t.End,
			Length:   t.Length(),
			Exons:    toSpans(t.Exons),
			CDSStart: cdsStart,
			CDSEnd:   cdsEnd,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
