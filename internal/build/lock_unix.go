//go:build unix

package build

import "syscall"

// lockFile takes a non-blocking exclusive advisory lock on the descriptor.
func lockFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// unlockFile drops the advisory lock.
func unlockFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
