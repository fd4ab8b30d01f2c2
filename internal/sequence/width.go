package sequence

// Fixed widths of the two read roles.
const (
	UMILength = 28
	CDRLength = 63

	// MaxWidth is the capacity of the inline buffer every Sequence carries.
	MaxWidth = 64
)

// Width fixes the number of symbols a sequence role holds.
type Width interface {
	Width() int
}

// UMIWidth is the width of a barcode read.
type UMIWidth struct{}

func (UMIWidth) Width() int { return UMILength }

// CDRWidth is the width of a variable-region read.
type CDRWidth struct{}

func (CDRWidth) Width() int { return CDRLength }

// Protein is the width of the translation of a W-wide nucleotide sequence.
// It reports -1 when W is not a whole number of codons, which makes every
// Sequence[Protein[W]] construction fail.
type Protein[W Width] struct{}

func (Protein[W]) Width() int {
	var w W
	n := w.Width()
	if n%3 != 0 {
		return -1
	}
	return n / 3
}

func widthOf[W Width]() (int, error) {
	var w W
	n := w.Width()
	if n <= 0 || n > MaxWidth {
		return 0, &InvalidWidthError{Width: n}
	}
	return n, nil
}

// mustWidth is for methods on already-constructed values, whose width was
// checked by New.
func mustWidth[W Width]() int {
	var w W
	return w.Width()
}
