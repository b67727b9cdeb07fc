//go:build unix

package watcher

import "syscall"

// getInode pulls the inode number out of os.FileInfo.Sys so a file can be
// recognized across renames.
func getInode(sys interface{}) uint64 {
	if stat, ok := sys.(*syscall.Stat_t); ok {
		return stat.Ino
	}
	return 0
}
