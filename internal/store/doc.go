// Package store defines the persistence ports of the study engine: the
// card collection contract and the daily-words progress key-value contract.
// Implementations live under internal/platform.
package store
