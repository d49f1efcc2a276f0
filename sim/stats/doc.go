// Package stats reduces ensemble spike trains to the summary statistics that
// are compared against the analytical prediction: pooled interspike
// intervals, empirical firing rate and CV, and ISI histograms.
//
// Mean and standard deviation come from gonum's stat package. The CV uses the
// population (biased) standard deviation of the pooled intervals.
package stats
