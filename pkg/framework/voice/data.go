package voice

import "sync/atomic"

// Data is the shared record every voice carries.
// Position, velocity, radius and age are metadata written by the voice on
// the audio thread; the active flag is owned by the registry.
type Data struct {
	ID       int32
	Kind     string
	Position Vec3
	Velocity Vec3
	Radius   float64
	Age      float64 // Seconds of audio produced

	active atomic.Bool
}

// NewData creates an active, unregistered record
func NewData(kind string, radius float64) *Data {
	d := &Data{Kind: kind, Radius: radius}
	d.active.Store(true)
	return d
}

// Active reports whether the voice is producing sound
func (d *Data) Active() bool {
	return d.active.Load()
}

// Registered reports whether the record has an ID
func (d *Data) Registered() bool {
	return d.ID != 0
}

// Advance adds one block of samples to the age
func (d *Data) Advance(samples int, sampleRate float64) {
	if sampleRate > 0 {
		d.Age += float64(samples) / sampleRate
	}
}

// SetMotion writes position, velocity and radius for the block
func (d *Data) SetMotion(position, velocity Vec3, radius float64) {
	d.Position = position
	d.Velocity = velocity
	d.Radius = radius
}
