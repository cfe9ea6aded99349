// Package daily implements the daily-words tracker: a per-calendar-day
// learning quota that runs alongside study sessions as an independent
// consumer of the card collection.
//
// The tracker owns a DailyWordsState loaded from the progress store at
// startup. Once per day it rolls the previous session into a bounded
// history and samples a fresh word subset, preferring cards the learner
// has not yet memorized. Completing the quota feeds the streak counters;
// the streak is always derived by one pure function over the history so
// the stored value can never drift from a recomputation.
package daily
