package datatable

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Type inference constants, grounded in the teacher's types.go sampling
// logic (MaxSampleSize, confidence thresholds).
const (
	maxInferenceSample      = 1000
	minConfidenceThreshold  = 0.8
	earlyTextTermination    = 0.5
	minDatetimeLength       = 4
	maxDatetimeLength       = 35
	minRealConfidence       = 0.1
)

// datetimePattern pairs a cheap regexp pre-filter with the time.Parse
// layouts it's allowed to confirm.
type datetimePattern struct {
	pattern *regexp.Regexp
	layouts []string
}

var datetimePatterns = []datetimePattern{
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05", "15:04:05.000", "3:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}$`),
		[]string{"15:04", "3:04"},
	},
}

// isDatetime reports whether value matches one of the recognized
// date/time formats.
func isDatetime(value string) bool {
	value = strings.TrimSpace(value)
	n := len(value)
	if n < minDatetimeLength || n > maxDatetimeLength {
		return false
	}

	hasDigit, hasSep := false, false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '-' || r == '/' || r == '.' || r == ':' || r == 'T' || r == ' ':
			hasSep = true
		}
		if hasDigit && hasSep {
			break
		}
	}
	if !hasDigit || !hasSep {
		return false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, layout := range dp.layouts {
			if _, err := time.Parse(layout, value); err == nil {
				return true
			}
		}
	}
	return false
}

func isInteger(value string) bool {
	if value == "" {
		return false
	}
	first := value[0]
	if first != '+' && first != '-' && (first < '0' || first > '9') {
		return false
	}
	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

func isFloat(value string) bool {
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func classifyValue(value string) Kind {
	switch {
	case isDatetime(value):
		return KindDatetime
	case isInteger(value):
		return KindInteger
	case isFloat(value):
		return KindReal
	default:
		return KindText
	}
}

// sampleValues returns a bounded, roughly evenly-spaced sample of values
// for type inference so a huge first chunk doesn't make inference itself
// the bottleneck.
func sampleValues(values []string) []string {
	if len(values) <= maxInferenceSample {
		return values
	}
	step := max(1, len(values)/maxInferenceSample)
	samples := make([]string, 0, maxInferenceSample)
	for i := 0; i < len(values) && len(samples) < maxInferenceSample; i += step {
		samples = append(samples, values[i])
	}
	return samples
}

// inferKind infers a column's Kind from a sample of its string values,
// using confidence thresholds rather than requiring unanimous agreement
// (a single stray text value in an otherwise-numeric column still forces
// TEXT, matching the teacher's early-termination rule).
func inferKind(values []string) Kind {
	if len(values) == 0 {
		return KindText
	}

	sample := sampleValues(values)
	counts := map[Kind]int{}
	nonEmpty := 0

	for _, v := range sample {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		k := classifyValue(v)
		counts[k]++

		if counts[KindText] > 0 && float64(counts[KindText])/float64(nonEmpty) > earlyTextTermination {
			return KindText
		}
	}
	if nonEmpty == 0 {
		return KindText
	}

	return selectKind(counts, nonEmpty)
}

func selectKind(counts map[Kind]int, total int) Kind {
	if counts[KindText] > 0 {
		return KindText
	}

	datetimeConf := float64(counts[KindDatetime]) / float64(total)
	realConf := float64(counts[KindReal]) / float64(total)
	intConf := float64(counts[KindInteger]) / float64(total)

	if datetimeConf >= minConfidenceThreshold {
		return KindDatetime
	}
	if realConf >= minRealConfidence && (realConf+intConf) >= minConfidenceThreshold {
		return KindReal
	}
	if intConf >= minConfidenceThreshold {
		return KindInteger
	}

	switch {
	case realConf > 0:
		return KindReal
	case intConf > 0:
		return KindInteger
	case datetimeConf > 0:
		return KindDatetime
	default:
		return KindText
	}
}

// inferSchema builds a Schema from a header and a sample of data records,
// one column at a time.
func inferSchema(header Header, records []Record) Schema {
	if len(header) == 0 {
		return nil
	}

	schema := make(Schema, len(header))
	for i, name := range header {
		schema[i] = Column{Name: name, Kind: KindText}
	}
	if len(records) == 0 {
		return schema
	}

	for i := range header {
		values := make([]string, 0, len(records))
		for _, rec := range records {
			if i < len(rec) {
				values = append(values, rec[i])
			}
		}
		schema[i].Kind = inferKind(values)
	}
	return schema
}
