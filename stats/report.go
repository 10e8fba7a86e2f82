package stats

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

var errNoData = errors.New("no data to summarize")

// Report summarizes the best match percentage of every hand in a batch.
type Report struct {
	Count  int
	Mean   float64
	Stdev  float64
	Median float64
	P90    float64
	Min    float64
	Max    float64
	// CI95 is the half-width of the 95% confidence interval of the mean.
	CI95 float64

	values []float64
}

// Summarize builds a report from raw percentages. The input is not
// modified.
func Summarize(percentages []float64) Report {
	r := Report{Count: len(percentages)}
	if len(percentages) == 0 {
		return r
	}
	sorted := make([]float64, len(percentages))
	copy(sorted, percentages)
	sort.Float64s(sorted)

	r.values = sorted
	r.Mean, r.Stdev = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		r.Stdev = 0
	}
	r.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]

	st := &Statistic{}
	for _, v := range percentages {
		st.Push(v)
	}
	r.CI95 = st.ConfidenceInterval(95)
	return r
}

func (r Report) String() string {
	return fmt.Sprintf("hands: %d  mean: %.2f%% ± %.2f  stdev: %.2f  median: %.0f%%  p90: %.0f%%  min: %.0f%%  max: %.0f%%",
		r.Count, r.Mean, r.CI95, r.Stdev, r.Median, r.P90, r.Min, r.Max)
}

// Histogram writes a text histogram of the percentages to w.
func (r Report) Histogram(w io.Writer, bins, width int) error {
	if len(r.values) == 0 {
		return errNoData
	}
	if r.Min == r.Max {
		_, err := fmt.Fprintf(w, "%.0f%%: %d\n", r.Min, r.Count)
		return err
	}
	h := histogram.Hist(bins, r.values)
	return histogram.Fprint(w, h, histogram.Linear(width))
}
