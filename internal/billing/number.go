package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// numberFormat is the display date prefix of a document number.
const numberFormat = "02/01/2006"

var numberSuffix = regexp.MustCompile(`-(\d+)$`)

// NextDocumentNumber generates the next human-readable document number in the
// form DD/MM/YYYY-NNN. The sequence is a single global counter: the trailing
// numeric suffix of every existing number is scanned and the maximum is
// incremented, regardless of the date each number carries. Numbers without a
// parseable suffix are skipped. With no existing documents the sequence starts
// at 001.
func NextDocumentNumber(existing []string, today time.Time) string {
	maxSeq := 0
	for _, number := range existing {
		m := numberSuffix.FindStringSubmatch(number)
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s-%03d", today.Format(numberFormat), maxSeq+1)
}
