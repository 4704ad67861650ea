// Package upload drives one document through validation, submission and the
// wait for a result, and exposes the progress of that work as Session snapshots.
//
// The Controller accepts one analysis at a time. While a request is pending a
// progress driver, owned by an errgroup scoped to the session, advances a
// synthetic progress value on a fixed tick up to a ceiling below 100. The
// driver is cancelled and joined before the session moves to Complete or
// Failed, so no progress update can follow a terminal state.
package upload
