package report

import (
	"bufio"
	"fmt"
	"io"
)

const indent = "\t           "

// WriteErrorReport renders an error report as text, one block per barcode.
func WriteErrorReport(w io.Writer, rep *ErrorReport) error {
	bw := bufio.NewWriter(w)
	for _, c := range rep.Clusters {
		fmt.Fprintf(bw, "---- Clusters with identical barcode of %s (%d) {\n\n", c.Key, c.Total)
		fmt.Fprintf(bw, "\tMajority   %s\t(%d copies)\t%s\n", c.Majority, c.MajorityCount, c.MajorityProtein)
		for _, v := range c.Variants {
			fmt.Fprintf(bw, "%s%s\t(%d copies)\t%s\n", indent, v.Diff, v.Count, v.ProteinDiff)
		}
		fmt.Fprint(bw, "\n}\n\n")
	}
	return bw.Flush()
}

// WriteCrossReport renders a cross report as text, one block per CDR.
func WriteCrossReport(w io.Writer, rep *CrossReport) error {
	bw := bufio.NewWriter(w)
	for _, c := range rep.Clusters {
		fmt.Fprintf(bw, "---- Clusters with identical cdr of %s (%d) {\n\n", c.Key, c.Total)
		fmt.Fprintf(bw, "\tMajority   %s   \t(%d copies)\t%.2f%%\n", c.Majority, c.MajorityCount, c.Percentage)
		for _, v := range c.Variants {
			fmt.Fprintf(bw, "%s%s   \t(%d copies)\t%.2f%%", indent, v.Diff, v.Count, v.Percentage)
			if ref := v.Companion; ref != nil {
				writeCrossRef(bw, ref)
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprint(bw, "\n}\n\n")
	}
	return bw.Flush()
}

func writeCrossRef(w io.Writer, ref *CrossRef) {
	switch {
	case !ref.Present:
		fmt.Fprint(w, "\t(Not clustered by barcode)")
	case ref.OtherPartners == 0:
		fmt.Fprint(w, "\t(Only seen with this sequence)")
	default:
		fmt.Fprintf(w, "\t(Seen with %d other unique sequences, total of %d times)   \t",
			ref.OtherPartners, ref.CoOccurrences)
		if ref.IsOwnMajority {
			fmt.Fprint(w, "This UMI is most commonly associated with above CDR.")
		} else {
			fmt.Fprintf(w, "Max sequence cluster associated with this UMI has size %d (/%d)\t%s",
				ref.MajorityCount, ref.CoOccurrences, ref.MajorityDiff)
		}
	}
}
