package action

import (
	"strings"
	"text/template"
)

var tweetTemplate = template.Must(template.New("tweet").Parse(`
# Context
{{.RecentMessages}}

# Topics
{{.Topics}}

# Post Directions
{{.PostDirections}}

# Recent interactions between {{.AgentName}} and other users:
{{.RecentPostInteractions}}

# Task
Generate a tweet that:
1. Relates to the recent conversation or requested topic
2. Matches the character's style and voice
3. Is concise and engaging
4. Must be UNDER 180 characters (this is a strict requirement)
5. Speaks from the perspective of {{.AgentName}}

Generate only the tweet text, no other commentary.

Return the tweet in JSON format like: {"text": "your tweet here"}`))

// composePrompt renders the tweet prompt. A nil state renders empty sections.
func composePrompt(state *State) (string, error) {
	if state == nil {
		state = &State{}
	}
	var b strings.Builder
	if err := tweetTemplate.Execute(&b, state); err != nil {
		return "", err
	}
	return b.String(), nil
}
