package config

// Tree defaults.
const (
	DefaultTreeMaxNodes             = 0
	DefaultTreeHibernationThreshold = 1000
	DefaultTreeShards               = 4
)

// Bench defaults.
const (
	DefaultBenchOperations  = 100000
	DefaultBenchKeyRange    = 10000
	DefaultBenchSets        = 8
	DefaultBenchSeed        = 1
	DefaultBenchInsertRatio = 0.6
	DefaultBenchHibernate   = true
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// DefaultDemoInsert is the walkthrough key list, duplicates included.
func DefaultDemoInsert() []int {
	return []int{13, 2, 5, 2, 1, 7, 1, 3, 4, 9, 12, 2, 31, 17, 10, 7, 7}
}

// DefaultDemoRemove is removed after DefaultDemoInsert; 8 and 6 are absent on purpose.
func DefaultDemoRemove() []int {
	return []int{8, 7, 6, 2, 13, 9}
}
