package libvlc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ebitengine/purego"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrLibraryNotFound is returned when no candidate libvlc file exists.
	ErrLibraryNotFound = errors.New("libvlc not found")

	// ErrNativeCall is returned when a native call reports failure through
	// its return value.
	ErrNativeCall = errors.New("libvlc call failed")
)

// Library is a loaded libvlc shared library and the functions resolved from
// it. A Library is never unloaded.
type Library struct {
	path   string
	handle uintptr

	libvlcNew          func(argc int32, argv uintptr) uintptr
	libvlcRelease      func(inst uintptr)
	libvlcGetVersion   func() uintptr
	libvlcGetChangeset func() uintptr
	libvlcSetUserAgent func(inst uintptr, name, http string)
	libvlcSetAppID     func(inst uintptr, id, version, icon string)
	libvlcErrmsg       func() uintptr
	libvlcFree         func(ptr uintptr)

	mediaNewPath          func(inst uintptr, path string) uintptr
	mediaNewLocation      func(inst uintptr, mrl string) uintptr
	mediaRetain           func(m uintptr)
	mediaRelease          func(m uintptr)
	mediaGetMrl           func(m uintptr) uintptr
	mediaGetMeta          func(m uintptr, meta int32) uintptr
	mediaGetState         func(m uintptr) int32
	mediaGetDuration      func(m uintptr) int64
	mediaParseWithOptions func(m uintptr, flags int32, timeoutMs int32) int32
	mediaParseStop        func(m uintptr)
	mediaGetParsedStatus  func(m uintptr) int32
	mediaSubitems         func(m uintptr) uintptr
	mediaEventManager     func(m uintptr) uintptr

	mediaListNew          func(inst uintptr) uintptr
	mediaListRetain       func(ml uintptr)
	mediaListRelease      func(ml uintptr)
	mediaListLock         func(ml uintptr)
	mediaListUnlock       func(ml uintptr)
	mediaListAddMedia     func(ml, m uintptr) int32
	mediaListInsertMedia  func(ml, m uintptr, index int32) int32
	mediaListRemoveIndex  func(ml uintptr, index int32) int32
	mediaListCount        func(ml uintptr) int32
	mediaListItemAtIndex  func(ml uintptr, index int32) uintptr
	mediaListIsReadonly   func(ml uintptr) int32
	mediaListEventManager func(ml uintptr) uintptr

	rendererItemHold    func(item uintptr) uintptr
	rendererItemRelease func(item uintptr)
	rendererItemName    func(item uintptr) uintptr
	rendererItemType    func(item uintptr) uintptr
	rendererItemIconURI func(item uintptr) uintptr
	rendererItemFlags   func(item uintptr) int32

	rendererDiscovererNew          func(inst uintptr, name string) uintptr
	rendererDiscovererRelease      func(rd uintptr)
	rendererDiscovererStart        func(rd uintptr) int32
	rendererDiscovererStop         func(rd uintptr)
	rendererDiscovererEventManager func(rd uintptr) uintptr
	rendererDiscovererListGet      func(inst uintptr, services uintptr) int
	rendererDiscovererListRelease  func(services uintptr, count int)

	eventAttach func(em uintptr, eventType int32, callback, userData uintptr) int32
	eventDetach func(em uintptr, eventType int32, callback, userData uintptr)
}

// LoadLibrary opens libvlc from the first directory in searchPath that holds
// a loadable copy, then falls back to the platform's default library
// lookup by bare name.
func LoadLibrary(searchPath []string) (*Library, error) {
	var result *multierror.Error

	for _, dir := range searchPath {
		for _, name := range libraryNames() {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			lib, err := openAndResolve(candidate)
			if err == nil {
				return lib, nil
			}
			result = multierror.Append(result, err)
		}
	}

	for _, name := range libraryNames() {
		lib, err := openAndResolve(name)
		if err == nil {
			return lib, nil
		}
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
	}
	return nil, ErrLibraryNotFound
}

func openAndResolve(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	lib := &Library{path: path, handle: handle}
	if err := lib.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve symbols in %s: %w", path, err)
	}
	return lib, nil
}

func (l *Library) resolve() error {
	for _, reg := range []struct {
		fptr any
		name string
	}{
		{&l.libvlcNew, "libvlc_new"},
		{&l.libvlcRelease, "libvlc_release"},
		{&l.libvlcGetVersion, "libvlc_get_version"},
		{&l.libvlcGetChangeset, "libvlc_get_changeset"},
		{&l.libvlcSetUserAgent, "libvlc_set_user_agent"},
		{&l.libvlcSetAppID, "libvlc_set_app_id"},
		{&l.libvlcErrmsg, "libvlc_errmsg"},
		{&l.libvlcFree, "libvlc_free"},

		{&l.mediaNewPath, "libvlc_media_new_path"},
		{&l.mediaNewLocation, "libvlc_media_new_location"},
		{&l.mediaRetain, "libvlc_media_retain"},
		{&l.mediaRelease, "libvlc_media_release"},
		{&l.mediaGetMrl, "libvlc_media_get_mrl"},
		{&l.mediaGetMeta, "libvlc_media_get_meta"},
		{&l.mediaGetState, "libvlc_media_get_state"},
		{&l.mediaGetDuration, "libvlc_media_get_duration"},
		{&l.mediaParseWithOptions, "libvlc_media_parse_with_options"},
		{&l.mediaParseStop, "libvlc_media_parse_stop"},
		{&l.mediaGetParsedStatus, "libvlc_media_get_parsed_status"},
		{&l.mediaSubitems, "libvlc_media_subitems"},
		{&l.mediaEventManager, "libvlc_media_event_manager"},

		{&l.mediaListNew, "libvlc_media_list_new"},
		{&l.mediaListRetain, "libvlc_media_list_retain"},
		{&l.mediaListRelease, "libvlc_media_list_release"},
		{&l.mediaListLock, "libvlc_media_list_lock"},
		{&l.mediaListUnlock, "libvlc_media_list_unlock"},
		{&l.mediaListAddMedia, "libvlc_media_list_add_media"},
		{&l.mediaListInsertMedia, "libvlc_media_list_insert_media"},
		{&l.mediaListRemoveIndex, "libvlc_media_list_remove_index"},
		{&l.mediaListCount, "libvlc_media_list_count"},
		{&l.mediaListItemAtIndex, "libvlc_media_list_item_at_index"},
		{&l.mediaListIsReadonly, "libvlc_media_list_is_readonly"},
		{&l.mediaListEventManager, "libvlc_media_list_event_manager"},

		{&l.rendererItemHold, "libvlc_renderer_item_hold"},
		{&l.rendererItemRelease, "libvlc_renderer_item_release"},
		{&l.rendererItemName, "libvlc_renderer_item_name"},
		{&l.rendererItemType, "libvlc_renderer_item_type"},
		{&l.rendererItemIconURI, "libvlc_renderer_item_icon_uri"},
		{&l.rendererItemFlags, "libvlc_renderer_item_flags"},

		{&l.rendererDiscovererNew, "libvlc_renderer_discoverer_new"},
		{&l.rendererDiscovererRelease, "libvlc_renderer_discoverer_release"},
		{&l.rendererDiscovererStart, "libvlc_renderer_discoverer_start"},
		{&l.rendererDiscovererStop, "libvlc_renderer_discoverer_stop"},
		{&l.rendererDiscovererEventManager, "libvlc_renderer_discoverer_event_manager"},
		{&l.rendererDiscovererListGet, "libvlc_renderer_discoverer_list_get"},
		{&l.rendererDiscovererListRelease, "libvlc_renderer_discoverer_list_release"},

		{&l.eventAttach, "libvlc_event_attach"},
		{&l.eventDetach, "libvlc_event_detach"},
	} {
		sym, err := lookupSymbol(l.handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w", reg.name, err)
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string { return l.path }

// VersionString returns the raw libvlc_get_version string.
func (l *Library) VersionString() string {
	return goStringFromPtr(l.libvlcGetVersion())
}

// Version parses the native version string.
func (l *Library) Version() (Version, error) {
	return ParseVersion(l.VersionString())
}

// Changeset returns the source revision libvlc was built from.
func (l *Library) Changeset() string {
	return goStringFromPtr(l.libvlcGetChangeset())
}

// lastError returns libvlc's thread-local error message, if any.
func (l *Library) lastError() error {
	if l.libvlcErrmsg == nil {
		return ErrNativeCall
	}
	if msg := goStringFromPtr(l.libvlcErrmsg()); msg != "" {
		return fmt.Errorf("%w: %s", ErrNativeCall, msg)
	}
	return ErrNativeCall
}

// takeString copies a heap string returned by libvlc and frees it.
func (l *Library) takeString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	s := goStringFromPtr(ptr)
	l.libvlcFree(ptr)
	return s
}
