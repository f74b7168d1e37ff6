// Package action maps canonical emotions to local action descriptors:
// a human-readable message plus the scene and sound assets the
// presentation layer should render.
package action

import "github.com/soulsync-ai/soulsync/internal/taxonomy"

// Descriptor is the local response for one emotion. Descriptors are fixed
// configuration data; the table is never mutated after process start.
type Descriptor struct {
	Message string `json:"message"`
	Scene   string `json:"scene"`
	Sound   string `json:"sound"`
}

var table = map[taxonomy.Label]Descriptor{
	taxonomy.Happy:     {Message: "Turning on bright ambient lights", Scene: "sunrise.gif", Sound: "happy.mp3"},
	taxonomy.Sad:       {Message: "Playing comfort music", Scene: "rain.gif", Sound: "calm_piano.mp3"},
	taxonomy.Angry:     {Message: "Dimming lights and suggesting breathing", Scene: "fire.gif", Sound: "breathing.mp3"},
	taxonomy.Fearful:   {Message: "Locking doors and enabling security alert", Scene: "storm.gif", Sound: "relax_waves.mp3"},
	taxonomy.Calm:      {Message: "Maintaining calm environment", Scene: "forest.gif", Sound: "birds.mp3"},
	taxonomy.Neutral:   {Message: "Neutral ambient mode", Scene: "space.gif", Sound: "neutral.mp3"},
	taxonomy.Disgust:   {Message: "Activating air purifier", Scene: "clean.gif", Sound: "fresh_air.mp3"},
	taxonomy.Surprised: {Message: "Capturing surprise moment", Scene: "spark.gif", Sound: "surprise.mp3"},
}

// Lookup returns the descriptor for an emotion. Unrecognized emotions fall
// back to the neutral entry; lookup never fails.
func Lookup(emotion taxonomy.Label) Descriptor {
	if d, ok := table[emotion]; ok {
		return d
	}
	return table[taxonomy.Neutral]
}

// For normalizes a raw label and returns its descriptor.
func For(raw string) Descriptor {
	return Lookup(taxonomy.Normalize(raw))
}
