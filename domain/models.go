package domain

import (
	"path/filepath"
	"time"
)

// Asset is an immutable reference to a local media file. It is created when a
// document opens and released when the document closes; the file itself is
// never read by this package.
type Asset struct {
	Path   string
	Name   string
	Opened time.Time
	Size   int64 // bytes, 0 if unknown
}

// NewAsset builds an asset reference for a local file path.
func NewAsset(path string) *Asset {
	return &Asset{
		Path:   path,
		Name:   filepath.Base(path),
		Opened: time.Now(),
	}
}

// TrackType classifies a media track discovered while probing an asset.
type TrackType int

const (
	TrackUnknown TrackType = iota
	TrackVideo
	TrackAudio
	TrackSubtitle
)

// String returns the string representation of the track type.
func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Track describes a single stream inside a media container.
type Track struct {
	Index    int
	Type     TrackType
	Codec    string
	Width    int // video only
	Height   int // video only
	Language string
}

// ItemStatus is the readiness state of the playback item installed on the
// engine. It starts at StatusUnknown the instant the engine handle exists and
// moves at most once, to StatusReady or StatusFailed.
type ItemStatus int

const (
	StatusUnknown ItemStatus = iota
	StatusReady
	StatusFailed
)

// String returns the string representation of the item status.
func (s ItemStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
