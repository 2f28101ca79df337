/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: oracle.go
Description: Distance oracle for langfilter. Measures how compressible a sample is
together with a reference document relative to compressing both separately.
*/

package detector

import (
	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/corpus"
)

var (
	// ErrEmptyInput is returned for empty samples
	ErrEmptyInput = compression.ErrEmptyInput
	// ErrNoReferenceFiles is returned when the engine has no references to rank against
	ErrNoReferenceFiles = corpus.ErrNoReferenceFiles
)

// RawRatio returns compress(doc ++ sample) / (compress(doc) + compress(sample)).
// Lower values mean stronger affinity. sampleCompressed must be the sample's own
// compressed length under the same adapter.
func RawRatio(adapter *compression.Adapter, sample []byte, sampleCompressed int, doc *corpus.ReferenceDocument) (float64, error) {
	together, err := adapter.CompressedLengthOfConcat(doc.Bytes(), sample)
	if err != nil {
		return 0, err
	}
	return float64(together) / float64(doc.CompressedLength+sampleCompressed), nil
}
