package alignment

import (
	"github.com/11bthornton/clustering/internal/sequence"
)

// Markers used in diff renderings.
const (
	MarkSame byte = '-'
	MarkDel  byte = 'X'
	MarkIns  byte = '^'
)

// Diff is the annotated rendering of an alignment.
type Diff struct {
	Text   string
	Cursor int // final index into the second sequence
	Score  int
}

// Annotate renders al against second. A Match column renders '-', a Subst
// renders the symbol of second at the cursor, a Del renders 'X' and an Ins
// renders '^'. The cursor into second advances on Match and Subst and is
// held on Del and Ins.
func Annotate(al *Alignment, second []byte) Diff {
	out := make([]byte, 0, len(al.Ops))
	cursor := 0
	for _, op := range al.Ops {
		switch op {
		case Match:
			out = append(out, MarkSame)
			cursor++
		case Subst:
			out = append(out, second[cursor])
			cursor++
		case Del:
			out = append(out, MarkDel)
		case Ins:
			out = append(out, MarkIns)
		}
	}
	return Diff{Text: string(out), Cursor: cursor, Score: al.Score}
}

// Diff aligns a against b and annotates the result against b.
func (al *Aligner) Diff(a, b []byte) (Diff, error) {
	alignment, err := al.Global(a, b)
	if err != nil {
		return Diff{}, err
	}
	return Annotate(alignment, b), nil
}

// PositionWise compares a and b column by column without gaps, rendering
// '-' where they agree and b's symbol where they differ.
func PositionWise(a, b []byte) (string, error) {
	if len(a) != len(b) {
		return "", &sequence.LengthMismatchError{Field: "diff", Expected: len(a), Actual: len(b)}
	}
	out := make([]byte, len(a))
	for i := range a {
		if a[i] == b[i] {
			out[i] = MarkSame
		} else {
			out[i] = b[i]
		}
	}
	return string(out), nil
}

// AnnotatedDiff aligns two sequences of the same role.
func AnnotatedDiff[W sequence.Width](al *Aligner, a, b sequence.Sequence[W]) (Diff, error) {
	return al.Diff(a.Bytes(), b.Bytes())
}

// PositionWiseDiff compares two sequences of the same role column by column.
func PositionWiseDiff[W sequence.Width](a, b sequence.Sequence[W]) string {
	d, _ := PositionWise(a.Bytes(), b.Bytes())
	return d
}
