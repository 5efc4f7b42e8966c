package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/readassign"
)

var sqantiColumns = []string{
	"isoform", "chrom", "strand", "length", "exons", "structural_category",
	"associated_gene", "associated_transcript", "ref_length", "ref_exons",
	"diff_to_TSS", "diff_to_TTS", "diff_to_gene_TSS", "diff_to_gene_TTS",
	"subcategory", "all_canonical", "n_indels", "n_indels_junc", "bite",
	"CDS_genomic_start", "CDS_genomic_end", "perc_A_downstreamTTS",
	"seq_A_downstream_TTS", "dist_to_cage_peak", "within_cage_peak",
	"dist_to_polya_site", "within_polya_site", "polyA_motif", "polyA_dist",
}

// Columns without a data source here; always NA.
const (
	unknownIndels = "-1"
	noSubcategory = "."
	na            = "NA"
)

// SqantiWriter writes a SQANTI-style classification table.
type SqantiWriter struct {
	*table
}

// NewSqantiWriter creates the table on w.
func NewSqantiWriter(w io.Writer) *SqantiWriter {
	return &SqantiWriter{newTable(w, sqantiColumns, false)}
}

// Write appends the row for ann. Assignments that are not reportable are
// skipped and reported as not written.
func (sw *SqantiWriter) Write(asg *readassign.Assignment, ann *boundary.Annotation) (bool, error) {
	if !asg.Type.Reportable() {
		return false, nil
	}
	classification := asg.Classification
	if classification == "" {
		classification = na
	}

	err := sw.writeFields(
		ann.ReadID,
		ann.Chrom,
		ann.Strand.String(),
		strconv.Itoa(ann.Length),
		strconv.Itoa(ann.ExonCount),
		classification,
		ann.GeneID,
		ann.TranscriptID,
		strconv.Itoa(ann.RefLength),
		strconv.Itoa(ann.RefExons),
		strconv.Itoa(ann.DiffToTSS),
		strconv.Itoa(ann.DiffToTTS),
		strconv.Itoa(ann.DiffToGeneTSS),
		strconv.Itoa(ann.DiffToGeneTTS),
		noSubcategory,
		ann.AllCanonical.Format(formatBool),
		unknownIndels,
		unknownIndels,
		ann.SitesMatch.String(),
		strconv.Itoa(ann.CDSStart),
		strconv.Itoa(ann.CDSEnd),
		ann.PercADownstream.Format(FormatFraction),
		ann.SeqADownstream.String(),
		na, na, na, na, na, na,
	)
	return err == nil, err
}

// FormatFraction renders a fraction with two decimals.
func FormatFraction(f float64) string {
	return fmt.Sprintf("%0.2f", f)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
