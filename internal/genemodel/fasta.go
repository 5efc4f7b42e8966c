package genemodel

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Contigs maps a reference sequence name to its bases.
type Contigs map[string]string

// LoadFASTA reads every record of a FASTA stream.
func LoadFASTA(r io.Reader) (Contigs, error) {
	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	sc := seqio.NewScanner(fasta.NewReader(r, template))

	contigs := make(Contigs)
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T", sc.Seq())
		}
		bases := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			bases[i] = byte(l)
		}
		if _, dup := contigs[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate FASTA record %q", s.Name())
		}
		contigs[s.Name()] = string(bases)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("reading FASTA: %w", err)
	}
	return contigs, nil
}

// LoadFASTAFile opens and loads a FASTA file.
func LoadFASTAFile(path string) (Contigs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	contigs, err := LoadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return contigs, nil
}
