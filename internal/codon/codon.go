// Package codon translates nucleotide sequences to protein.
package codon

import (
	"fmt"

	"github.com/11bthornton/clustering/internal/sequence"
)

// Symbols emitted for stop codons and for codons that cannot be called.
const (
	Stop    byte = '*'
	Unknown byte = 'X'
)

// Standard genetic code.
var standardCode = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": Stop, "TAG": Stop,
	"TGT": 'C', "TGC": 'C', "TGA": Stop, "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Any byte outside ACGT is folded into this slot.
const otherBase = 4

var baseIndex = func() [256]uint8 {
	var idx [256]uint8
	for i := range idx {
		idx[i] = otherBase
	}
	idx['A'], idx['C'], idx['G'], idx['T'] = 0, 1, 2, 3
	return idx
}()

// Translator is a total codon table over every triple of bytes. Codons
// containing N or any other non-ACGT byte translate to Unknown.
type Translator struct {
	table [125]byte
}

// NewTranslator builds the standard-code translator.
func NewTranslator() *Translator {
	t := &Translator{}
	for i := range t.table {
		t.table[i] = Unknown
	}
	for codon, aa := range standardCode {
		t.table[slot(codon[0], codon[1], codon[2])] = aa
	}
	return t
}

func slot(a, b, c byte) int {
	return int(baseIndex[a])*25 + int(baseIndex[b])*5 + int(baseIndex[c])
}

// Codon translates a single codon.
func (t *Translator) Codon(a, b, c byte) byte {
	return t.table[slot(a, b, c)]
}

// Bytes translates a run of nucleotides. A trailing partial codon is
// ignored.
func (t *Translator) Bytes(nt []byte) []byte {
	out := make([]byte, len(nt)/3)
	for i := range out {
		out[i] = t.Codon(nt[3*i], nt[3*i+1], nt[3*i+2])
	}
	return out
}

// QualityPolicy derives n protein quality symbols from the nucleotide
// qualities of a 3n-wide sequence.
type QualityPolicy func(quals []byte, n int) []byte

// FirstThird copies the first n nucleotide qualities unchanged, so protein
// position i carries the quality of nucleotide i rather than of its codon.
func FirstThird(quals []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, quals[:n])
	return out
}

// MinOfCodon gives each residue the lowest quality of its three bases.
func MinOfCodon(quals []byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		q := quals[3*i]
		if quals[3*i+1] < q {
			q = quals[3*i+1]
		}
		if quals[3*i+2] < q {
			q = quals[3*i+2]
		}
		out[i] = q
	}
	return out
}

// Policy names accepted by PolicyByName.
const (
	PolicyFirstThird = "first-third"
	PolicyMin        = "min"
)

// PolicyByName resolves a configured policy name. The empty name selects
// FirstThird.
func PolicyByName(name string) (QualityPolicy, error) {
	switch name {
	case "", PolicyFirstThird:
		return FirstThird, nil
	case PolicyMin:
		return MinOfCodon, nil
	}
	return nil, fmt.Errorf("unknown protein quality policy %q (want %q or %q)",
		name, PolicyFirstThird, PolicyMin)
}

// Translate converts s to its protein sequence. A nil policy selects
// FirstThird. It fails with an InvalidWidthError when W is not a whole
// number of codons.
func Translate[W sequence.Width](s sequence.Sequence[W], t *Translator, policy QualityPolicy) (sequence.Sequence[sequence.Protein[W]], error) {
	if policy == nil {
		policy = FirstThird
	}
	n := sequence.Protein[W]{}.Width()
	if n <= 0 {
		var zero sequence.Sequence[sequence.Protein[W]]
		return zero, &sequence.InvalidWidthError{Width: n}
	}
	return sequence.New[sequence.Protein[W]](t.Bytes(s.Bytes()), policy(s.Quals(), n))
}
