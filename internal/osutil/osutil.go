package osutil

const Windows = "windows"

const (
	ExitOK    = 0
	ExitError = 1
)

const (
	DirPermission  = 0o755
	FilePermission = 0o600
)
