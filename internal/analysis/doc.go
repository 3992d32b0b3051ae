// Package analysis works on recorded signals from headless runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: swing period of a cradle ball
//   - [ZeroCrossingPeriod]: the same period without a transform
//   - [PhasePortrait]: position against velocity for one body
//   - [Divergence]: how fast two runs of the same scene drift apart, e.g.
//     the stiff and soft contact regimes
//
// Signals are uniformly sampled with spacing dt and may contain NaN where a
// body did not exist; NaN samples are treated as gaps.
package analysis
