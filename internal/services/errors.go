package services

import "errors"

// ErrSyncFailed wraps every failure of a snapshot rebuild. The previously
// stored snapshot is left untouched when it is returned.
var ErrSyncFailed = errors.New("catalog sync failed")
