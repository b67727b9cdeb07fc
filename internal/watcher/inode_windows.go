//go:build windows

package watcher

// getInode returns 0 on Windows, which has no inodes; move detection is
// simply unavailable there.
// TODO: use GetFileInformationByHandle for file identity if Windows ever
// becomes more than a development platform.
func getInode(sys interface{}) uint64 {
	return 0
}
