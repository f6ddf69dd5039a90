//go:build !windows

package libvlc

func windowsInstallDirectories() []string { return nil }
