// Package ecg reconstructs a single-lead ECG signal from the stroked
// paths of a vector printout page.
//
// The printout draws four horizontal baseline rulings (one per trace
// row) and the trace itself as dense polylines in the same pen style.
// Reconstruction runs in three stages:
//
//  1. DetectBaselines finds the row rulings by their visual fingerprint
//     (black ink, hairline width, long strictly horizontal segments).
//  2. ReconstructRows assigns trace paths to rows by mean-y proximity
//     to the nearest baseline and orders each row's points by x.
//  3. BuildSignal deduplicates shared segment endpoints, converts each
//     point's vertical offset from its baseline to millivolts, and
//     concatenates the rows into one time-ordered voltage sequence.
//
// All geometric thresholds are carried in a Layout value so a deviating
// printout can be accommodated without code changes; DefaultLayout
// matches the KardiaMobile single-lead report.
package ecg
