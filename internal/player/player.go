// Package player models one audio player widget: play/pause toggling, end of
// track handling and drag seeking on the progress track.
package player

import (
	"fmt"
	"math"
)

// State is the playback state of a player.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "idle"
}

// Media is the element the player drives.
type Media interface {
	Play() error
	Pause()
	Seek(seconds float64)
}

// Rect is the horizontal extent of the progress track on screen.
type Rect struct {
	Left  float64
	Width float64
}

// Player holds the state of one widget bound to one media URL.
type Player struct {
	media    Media
	state    State
	seeking  bool
	drag     float64
	position float64
	duration float64 // 0 until metadata is loaded
}

// New binds a player to its media element.
func New(m Media) *Player {
	return &Player{media: m}
}

// State returns the playback state.
func (p *Player) State() State { return p.state }

// Seeking reports whether a drag gesture is in progress.
func (p *Player) Seeking() bool { return p.seeking }

// Duration returns the track length, or 0 while unknown.
func (p *Player) Duration() float64 { return p.duration }

// Toggle starts playback when idle or paused and pauses when playing.
func (p *Player) Toggle() error {
	if p.state == Playing {
		p.media.Pause()
		p.state = Paused
		return nil
	}
	if err := p.media.Play(); err != nil {
		return err
	}
	p.state = Playing
	return nil
}

// LoadedMetadata records the track duration.  Non finite or negative values
// leave the duration unknown.
func (p *Player) LoadedMetadata(d float64) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		d = 0
	}
	p.duration = d
}

// TimeUpdate reports the media position during playback.  It is ignored
// while the user drags the track.
func (p *Player) TimeUpdate(t float64) {
	if p.seeking {
		return
	}
	p.position = t
}

// Ended returns the player to idle with the position reset.
func (p *Player) Ended() {
	p.state = Idle
	p.position = 0
}

// BeginSeek starts a drag at pointer x.
func (p *Player) BeginSeek(x float64, track Rect) {
	p.seeking = true
	p.seekTo(x, track)
}

// MoveSeek follows the pointer during a drag.
func (p *Player) MoveSeek(x float64, track Rect) {
	if !p.seeking {
		return
	}
	p.seekTo(x, track)
}

// EndSeek applies the final pointer position and resumes reflecting
// playback.
func (p *Player) EndSeek(x float64, track Rect) {
	if !p.seeking {
		return
	}
	p.seekTo(x, track)
	p.position = p.drag
	p.seeking = false
}

// Position is the time shown to the user: the drag target while seeking,
// the playback position otherwise.
func (p *Player) Position() float64 {
	if p.seeking {
		return p.drag
	}
	return p.position
}

// Progress returns the filled share of the track in percent.  It is zero
// while the duration is unknown.
func (p *Player) Progress() float64 {
	if p.duration <= 0 {
		return 0
	}
	return clamp(p.Position()/p.duration*100, 0, 100)
}

// TimeAt maps pointer x to a time in [0, duration].
func (p *Player) TimeAt(x float64, track Rect) float64 {
	if p.duration <= 0 || track.Width <= 0 {
		return 0
	}
	return clamp((x-track.Left)/track.Width, 0, 1) * p.duration
}

func (p *Player) seekTo(x float64, track Rect) {
	p.drag = p.TimeAt(x, track)
	p.media.Seek(p.drag)
}

// FormatTime renders seconds as m:ss.  Non finite values render as 0:00.
func FormatTime(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return "0:00"
	}
	m := int(t) / 60
	s := int(math.Mod(t, 60))
	return fmt.Sprintf("%d:%02d", m, s)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
