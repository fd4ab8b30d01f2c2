package alignment

import (
	"github.com/andrew-torda/matrix"

	"github.com/11bthornton/clustering/internal/sequence"
)

// DP states. The traceback matrices store the state a cell was reached from.
const (
	stateM byte = iota // last column pairs a[i-1] with b[j-1]
	stateX             // last column is a[i-1] against a gap (Del)
	stateY             // last column is b[j-1] against a gap (Ins)
)

const negInf float32 = -1e30

// Alignment is a global alignment of A against B.
type Alignment struct {
	A, B  []byte
	Ops   []Op
	Score int
}

// Aligner holds the DP storage for affine global alignment. The matrices are
// kept between calls and grow to the longest sequences seen. An Aligner is
// not safe for concurrent use; give each goroutine its own.
type Aligner struct {
	scoring *ScoringMatrix

	m, x, y    *matrix.FMatrix2d
	tm, tx, ty *matrix.BMatrix2d
}

// NewAligner creates an aligner. A nil scoring selects Default.
func NewAligner(scoring *ScoringMatrix) *Aligner {
	if scoring == nil {
		scoring = Default()
	}
	return &Aligner{scoring: scoring}
}

// Scoring returns the aligner's scoring scheme.
func (al *Aligner) Scoring() *ScoringMatrix {
	return al.scoring
}

// ensure makes the matrices at least nr x nc. They only grow, so alternating
// between nucleotide and protein widths does not reallocate.
func (al *Aligner) ensure(nr, nc int) {
	if al.m == nil {
		al.m = matrix.NewFMatrix2d(nr, nc)
		al.x = matrix.NewFMatrix2d(nr, nc)
		al.y = matrix.NewFMatrix2d(nr, nc)
		al.tm = matrix.NewBMatrix2d(nr, nc)
		al.tx = matrix.NewBMatrix2d(nr, nc)
		al.ty = matrix.NewBMatrix2d(nr, nc)
		return
	}
	r, c := al.m.Size()
	if r >= nr && c >= nc {
		return
	}
	if nr < r {
		nr = r
	}
	if nc < c {
		nc = c
	}
	al.m.Resize(nr, nc)
	al.x.Resize(nr, nc)
	al.y.Resize(nr, nc)
	al.tm.Resize(nr, nc)
	al.tx.Resize(nr, nc)
	al.ty.Resize(nr, nc)
}

// best3 returns the largest value and its state. Ties go to M, then X,
// then Y.
func best3(m, x, y float32) (float32, byte) {
	best, st := m, stateM
	if x > best {
		best, st = x, stateX
	}
	if y > best {
		best, st = y, stateY
	}
	return best, st
}

// Global aligns a against b end to end. Both must have the same length.
func (al *Aligner) Global(a, b []byte) (*Alignment, error) {
	if len(a) != len(b) {
		return nil, &sequence.LengthMismatchError{Field: "alignment", Expected: len(a), Actual: len(b)}
	}

	n, mcols := len(a), len(b)
	al.ensure(n+1, mcols+1)
	M, X, Y := al.m.Mat, al.x.Mat, al.y.Mat
	TM, TX, TY := al.tm.Mat, al.tx.Mat, al.ty.Mat

	sc := al.scoring
	open := float32(sc.GapOpenPenalty + sc.GapExtendPenalty)
	ext := float32(sc.GapExtendPenalty)

	M[0][0], X[0][0], Y[0][0] = 0, negInf, negInf
	for i := 1; i <= n; i++ {
		M[i][0], Y[i][0] = negInf, negInf
		X[i][0] = float32(sc.GapCost(i))
		TX[i][0] = stateX
	}
	for j := 1; j <= mcols; j++ {
		M[0][j], X[0][j] = negInf, negInf
		Y[0][j] = float32(sc.GapCost(j))
		TY[0][j] = stateY
	}
	if n > 0 {
		TX[1][0] = stateM
	}
	if mcols > 0 {
		TY[0][1] = stateM
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= mcols; j++ {
			v, st := best3(M[i-1][j-1], X[i-1][j-1], Y[i-1][j-1])
			M[i][j] = v + float32(sc.Score(a[i-1], b[j-1]))
			TM[i][j] = st

			X[i][j], TX[i][j] = best3(M[i-1][j]+open, X[i-1][j]+ext, Y[i-1][j]+open)
			Y[i][j], TY[i][j] = best3(M[i][j-1]+open, X[i][j-1]+open, Y[i][j-1]+ext)
		}
	}

	score, st := best3(M[n][mcols], X[n][mcols], Y[n][mcols])
	ops := make([]Op, 0, n+mcols)

	for i, j := n, mcols; i > 0 || j > 0; {
		if i == 0 {
			st = stateY
		} else if j == 0 {
			st = stateX
		}
		switch st {
		case stateM:
			if a[i-1] == b[j-1] {
				ops = append(ops, Match)
			} else {
				ops = append(ops, Subst)
			}
			st = TM[i][j]
			i--
			j--
		case stateX:
			ops = append(ops, Del)
			st = TX[i][j]
			i--
		case stateY:
			ops = append(ops, Ins)
			st = TY[i][j]
			j--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}

	return &Alignment{A: a, B: b, Ops: ops, Score: int(score)}, nil
}

// Identity returns the fraction of columns that are matches.
func (a *Alignment) Identity() float64 {
	if len(a.Ops) == 0 {
		return 0
	}
	return float64(a.Count(Match)) / float64(len(a.Ops))
}

// Count returns the number of columns of the given kind.
func (a *Alignment) Count(op Op) int {
	n := 0
	for _, o := range a.Ops {
		if o == op {
			n++
		}
	}
	return n
}

// GapOpenings counts maximal runs of Del or Ins.
func (a *Alignment) GapOpenings() int {
	n := 0
	prev := Match
	for _, o := range a.Ops {
		if (o == Del || o == Ins) && o != prev {
			n++
		}
		prev = o
	}
	return n
}

// Format returns the two aligned rows with '-' for gaps and a middle line
// marking matches.
func (a *Alignment) Format() string {
	top := make([]byte, 0, len(a.Ops))
	mid := make([]byte, 0, len(a.Ops))
	bot := make([]byte, 0, len(a.Ops))
	i, j := 0, 0
	for _, o := range a.Ops {
		switch o {
		case Match, Subst:
			top = append(top, a.A[i])
			bot = append(bot, a.B[j])
			if o == Match {
				mid = append(mid, '|')
			} else {
				mid = append(mid, '.')
			}
			i++
			j++
		case Del:
			top = append(top, a.A[i])
			mid = append(mid, ' ')
			bot = append(bot, '-')
			i++
		case Ins:
			top = append(top, '-')
			mid = append(mid, ' ')
			bot = append(bot, a.B[j])
			j++
		}
	}
	return string(top) + "\n" + string(mid) + "\n" + string(bot)
}
