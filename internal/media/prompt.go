package media

import (
	"fmt"

	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

// catalogQueries maps each canonical emotion to the search phrase used both
// for curated catalog lookups and as flavor text in synthesis prompts.
var catalogQueries = map[taxonomy.Label]string{
	taxonomy.Happy:     "happy upbeat pop",
	taxonomy.Sad:       "acoustic sad mellow",
	taxonomy.Calm:      "ambient calm relaxation",
	taxonomy.Angry:     "intense aggressive rock",
	taxonomy.Fearful:   "dark cinematic ambient",
	taxonomy.Neutral:   "chill instrumental",
	taxonomy.Surprised: "energetic electronic",
	taxonomy.Disgust:   "detached experimental",
}

// QueryFor returns the catalog search phrase for an emotion, falling back
// to the neutral query.
func QueryFor(emotion taxonomy.Label) string {
	if q, ok := catalogQueries[emotion]; ok {
		return q
	}
	return catalogQueries[taxonomy.Neutral]
}

// PromptFor derives the synthesis prompt for an emotion.
func PromptFor(emotion taxonomy.Label) string {
	return fmt.Sprintf("A short instrumental soundtrack evoking %s mood, cinematic and %s", emotion, QueryFor(emotion))
}
