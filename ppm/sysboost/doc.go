// Package sysboost implements the system boost policy: several kernel-side
// users (Wi-Fi, the performance service, USB, the unit-test harness) each
// request per-cluster core-count and frequency bounds, and the policy folds
// them into one final limit that the PPM framework applies on its next decision.
//
// Every request goes through the same path: validate, take the policy lock,
// update the caller's row, rebuild the final limit from all rows, release the
// lock, then ask the framework to re-decide. Invalid requests and requests that
// arrive while the policy is disabled change nothing and return an error.
//
// Frequency bounds are kept as table indexes where a smaller index is a higher
// frequency, so the floor (MinFreqIdx) never sits below the ceiling (MaxFreqIdx).
package sysboost
