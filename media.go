package libvlc

import (
	"fmt"
	"time"
)

// Meta is a libvlc_meta_t key.
type Meta int

const (
	MetaTitle Meta = iota
	MetaArtist
	MetaGenre
	MetaCopyright
	MetaAlbum
	MetaTrackNumber
	MetaDescription
	MetaRating
	MetaDate
	MetaSetting
	MetaURL
	MetaLanguage
	MetaNowPlaying
	MetaPublisher
	MetaEncodedBy
	MetaArtworkURL
	MetaTrackID
	MetaTrackTotal
	MetaDirector
	MetaSeason
	MetaEpisode
	MetaShowName
	MetaActors
	MetaAlbumArtist
	MetaDiscNumber
	MetaDiscTotal
)

var metaNames = [...]string{
	MetaTitle:       "title",
	MetaArtist:      "artist",
	MetaGenre:       "genre",
	MetaCopyright:   "copyright",
	MetaAlbum:       "album",
	MetaTrackNumber: "track_number",
	MetaDescription: "description",
	MetaRating:      "rating",
	MetaDate:        "date",
	MetaSetting:     "setting",
	MetaURL:         "url",
	MetaLanguage:    "language",
	MetaNowPlaying:  "now_playing",
	MetaPublisher:   "publisher",
	MetaEncodedBy:   "encoded_by",
	MetaArtworkURL:  "artwork_url",
	MetaTrackID:     "track_id",
	MetaTrackTotal:  "track_total",
	MetaDirector:    "director",
	MetaSeason:      "season",
	MetaEpisode:     "episode",
	MetaShowName:    "show_name",
	MetaActors:      "actors",
	MetaAlbumArtist: "album_artist",
	MetaDiscNumber:  "disc_number",
	MetaDiscTotal:   "disc_total",
}

func (m Meta) String() string {
	if m < 0 || int(m) >= len(metaNames) {
		return "unknown"
	}
	return metaNames[m]
}

// AllMeta lists every meta key in native order.
func AllMeta() []Meta {
	keys := make([]Meta, len(metaNames))
	for i := range keys {
		keys[i] = Meta(i)
	}
	return keys
}

// ParseFlag selects what libvlc_media_parse_with_options may do.
type ParseFlag int

const (
	ParseLocal        ParseFlag = 0x00
	ParseNetwork      ParseFlag = 0x01
	ParseFetchLocal   ParseFlag = 0x02
	ParseFetchNetwork ParseFlag = 0x04
	ParseDoInteract   ParseFlag = 0x08
)

// Media is a media item with an attached event bridge.
type Media struct {
	ref    *MediaRef
	events *EventBridge
}

// newMedia takes ownership of ref.
func newMedia(ref *MediaRef, opts ...BridgeOption) *Media {
	var em uintptr
	if p, err := ref.get(); err == nil {
		em = ref.lib.mediaEventManager(p)
	}
	return &Media{
		ref:    ref,
		events: newEventBridge(ref.lib, em, mediaEventKinds, opts...),
	}
}

// Ref returns the reference the component owns. Callers that keep it past
// Release must Retain it.
func (m *Media) Ref() *MediaRef { return m.ref }

// Events returns the media's event bridge.
func (m *Media) Events() *EventBridge { return m.events }

// MRL returns the media resource locator.
func (m *Media) MRL() (string, error) { return m.ref.MRL() }

// Meta returns one metadata value, or "" when unset.
func (m *Media) Meta(key Meta) (string, error) {
	p, err := m.ref.get()
	if err != nil {
		return "", err
	}
	return m.ref.lib.takeString(m.ref.lib.mediaGetMeta(p, int32(key))), nil
}

// MetaMap returns every non-empty metadata value keyed by name.
func (m *Media) MetaMap() (map[string]string, error) {
	values := make(map[string]string)
	for _, key := range AllMeta() {
		v, err := m.Meta(key)
		if err != nil {
			return nil, err
		}
		if v != "" {
			values[key.String()] = v
		}
	}
	return values, nil
}

// State returns the current media state.
func (m *Media) State() (MediaState, error) {
	p, err := m.ref.get()
	if err != nil {
		return StateNothingSpecial, err
	}
	return MediaState(m.ref.lib.mediaGetState(p)), nil
}

// Duration returns the media length, or -1ms when unknown.
func (m *Media) Duration() (time.Duration, error) {
	p, err := m.ref.get()
	if err != nil {
		return 0, err
	}
	return time.Duration(m.ref.lib.mediaGetDuration(p)) * time.Millisecond, nil
}

// Parse starts asynchronous parsing. Completion is reported by an
// EventMediaParsedChanged event; see AwaitParsed for a blocking form.
// A zero timeout uses libVLC's default; a negative one waits forever.
func (m *Media) Parse(flags ParseFlag, timeout time.Duration) error {
	p, err := m.ref.get()
	if err != nil {
		return err
	}
	ms := int32(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}
	if rc := m.ref.lib.mediaParseWithOptions(p, int32(flags), ms); rc != 0 {
		return fmt.Errorf("parse: %w", m.ref.lib.lastError())
	}
	return nil
}

// StopParse cancels a running parse.
func (m *Media) StopParse() error {
	p, err := m.ref.get()
	if err != nil {
		return err
	}
	m.ref.lib.mediaParseStop(p)
	return nil
}

// ParsedStatus returns the outcome of the last parse.
func (m *Media) ParsedStatus() (ParsedStatus, error) {
	p, err := m.ref.get()
	if err != nil {
		return ParsedStatusNone, err
	}
	return ParsedStatus(m.ref.lib.mediaGetParsedStatus(p)), nil
}

// SubItems returns the list of sub items, such as the entries of a
// playlist file.
func (m *Media) SubItems() (*MediaListRef, error) {
	p, err := m.ref.get()
	if err != nil {
		return nil, err
	}
	ml := m.ref.lib.mediaSubitems(p)
	if ml == 0 {
		return nil, fmt.Errorf("subitems: %w", m.ref.lib.lastError())
	}
	return newMediaListRef(m.ref.lib, ml), nil
}

// Release detaches events and drops the component's reference.
func (m *Media) Release() error {
	m.events.Release()
	return m.ref.Release()
}
