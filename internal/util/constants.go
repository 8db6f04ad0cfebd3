package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// Catalog source types.
const (
	StorageLocal = "local"
	StorageGit   = "git"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	// GuestHeader carries the user id in guest (demo) mode.
	GuestHeader = "X-User-Id"
	// TopicMasteryLimit is how many topics the dashboard shows.
	TopicMasteryLimit = 10
)
