// Package libvlc binds the libVLC media framework without cgo.
//
// The package finds the native library on the host, loads it with purego,
// and exposes the reference-counted libVLC objects as Go values whose
// lifetime is checked: using a reference after Release returns ErrReleased
// instead of touching freed native memory.
//
// # Discovery
//
// NativeDiscovery walks a list of DiscoveryStrategy values, one per
// operating system. Each strategy asks its DirectoryProviders for candidate
// directories, in ascending priority, and picks the first directory whose
// files match every library pattern (libvlc and libvlccore). The directory
// is added to the library search path, VLC_PLUGIN_PATH is set when it is
// unset, and the library is loaded and checked against MinimumVersion.
// Load still attempts a default load when discovery fails.
//
//	lib, err := libvlc.LoadDefault()
//
// # Objects and events
//
// Instance creates MediaRef and MediaListRef values. Media, MediaList and
// RendererDiscoverer pair a reference with an EventBridge that relays native
// events to Go listeners on a per-object dispatch goroutine, in the order
// libVLC raised them.
//
// # Waiting
//
// Waiter and Await turn an event stream into a blocking call with a typed
// result. AwaitParsed and AwaitState cover the common media cases.
//
// # Configuration
//
// LoadConfig reads libvlc.yaml from the user config directory, with
// LIBVLC_* environment overrides. LIBVLC_LOG_LEVEL sets the package log
// level; logging is off by default.
package libvlc
