// Command umicluster clusters paired barcode and CDR reads and reports the
// minority sequences of every cluster.
//
// Usage:
//
//	umicluster [command] [flags]
//
// Commands:
//
//	cluster     Fold a FASTQ pair and print a cluster report
//	summary     Fold a FASTQ pair and print index statistics
//	affinity    Sweep cluster thresholds against reference barcodes
//	version     Show version information
//
// Every flag can also be set with a UMICLUSTER_ environment variable or in
// a YAML file passed with --config.
package main

func main() {
	Execute()
}
