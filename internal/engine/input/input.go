// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/roomlight/internal/player"
)

// EventType classifies processed events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Input collects events and held keys once per frame.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool

	mouseDX, mouseDY int32
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events. Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.mouseDX, i.mouseDY = 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			key := e.Keysym.Scancode
			switch e.Type {
			case sdl.KEYDOWN:
				i.held[key] = true
				if e.Repeat == 0 {
					i.events = append(i.events, Event{Type: EventKeyDown, Key: key})
				}
			case sdl.KEYUP:
				delete(i.held, key)
				i.events = append(i.events, Event{Type: EventKeyUp, Key: key})
			}

		case *sdl.MouseMotionEvent:
			i.mouseDX += e.XRel
			i.mouseDY += e.YRel
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// MouseDelta returns the relative mouse motion of the last Update in
// SDL's convention: positive y is down.
func (i *Input) MouseDelta() (dx, dy int32) {
	return i.mouseDX, i.mouseDY
}

// Movement maps held keys to controller input: WASD to move, Shift to
// run, Ctrl to crouch, Space to jump.
func (i *Input) Movement() player.Input {
	return player.Input{
		Forward: i.held[sdl.SCANCODE_W],
		Back:    i.held[sdl.SCANCODE_S],
		Left:    i.held[sdl.SCANCODE_A],
		Right:   i.held[sdl.SCANCODE_D],
		Run:     i.held[sdl.SCANCODE_LSHIFT] || i.held[sdl.SCANCODE_RSHIFT],
		Crouch:  i.held[sdl.SCANCODE_LCTRL] || i.held[sdl.SCANCODE_RCTRL],
		Jump:    i.held[sdl.SCANCODE_SPACE],
	}
}
