/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Check command implementation. Loads the reference corpus and reports
document sizes, identical references, skipped files and the corpus fingerprint.
*/

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCheck executes the check command
func RunCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	store, err := openStore(cmd.Context(), logger, storeConfig{
		Sparsity: viper.GetInt("check.sparsity"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	printReport(os.Stdout, viper.GetString("references"), store)

	if len(store.Skipped()) > 0 {
		return fmt.Errorf("%d reference files failed to load", len(store.Skipped()))
	}
	return nil
}

// printReport writes a human-readable summary of store to w
func printReport(w io.Writer, dir string, store *corpus.Store) {
	fmt.Fprintf(w, "References:  %s\n", dir)
	fmt.Fprintf(w, "Codec:       %s\n", store.Adapter().Codec().Name())
	fmt.Fprintf(w, "Documents:   %d\n", store.Len())
	fmt.Fprintf(w, "Mean length: %.1f bytes compressed\n", store.MeanCompressedLength())
	fmt.Fprintf(w, "Fingerprint: %s\n\n", store.Fingerprint())

	width := len("LANGUAGE")
	for _, doc := range store.Documents() {
		width = max(width, len(doc.ID))
	}

	fmt.Fprintf(w, "%-*s  %10s  %10s  %6s  %s\n", width, "LANGUAGE", "SIZE", "COMPRESSED", "RATIO", "DIGEST")
	for _, doc := range store.Documents() {
		fmt.Fprintf(w, "%-*s  %10s  %10s  %6.3f  %s\n", width, doc.ID,
			humanize.Bytes(uint64(doc.Size())),
			humanize.Bytes(uint64(doc.CompressedLength)),
			doc.CompressionRatio(),
			doc.ShortDigest())
	}

	if groups := store.Duplicates(); len(groups) > 0 {
		fmt.Fprintf(w, "\nIdentical references:\n")
		for _, group := range groups {
			fmt.Fprintf(w, "  %s\n", strings.Join(group, ", "))
		}
	}

	if skipped := store.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped:\n")
		for _, e := range skipped {
			fmt.Fprintf(w, "  %s: %v\n", e.Path, e.Err)
		}
	}
}
