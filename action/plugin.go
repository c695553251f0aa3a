package action

// Plugin groups the actions a host agent registers.
type Plugin struct {
	Name        string
	Description string
	Actions     []*Action
}

// NewPlugin returns the verifiable-twitter plugin with its post action.
func NewPlugin(opts Options) *Plugin {
	return &Plugin{
		Name:        "verifiable-twitter",
		Description: "Automata 1RPC Verifiable Twitter Subagent",
		Actions:     []*Action{NewPostAction(opts)},
	}
}

// Action returns the registered action with the given name or simile.
func (p *Plugin) Action(name string) (*Action, bool) {
	for _, a := range p.Actions {
		if a.Name == name {
			return a, true
		}
		for _, s := range a.Similes {
			if s == name {
				return a, true
			}
		}
	}
	return nil, false
}

var postExamples = [][]ExampleMessage{
	{
		{User: "{{user1}}", Text: "You should tweet that"},
		{User: "{{agentName}}", Text: "I'll share this update with my followers right away!", Action: PostActionName},
	},
	{
		{User: "{{user1}}", Text: "Post this tweet"},
		{User: "{{agentName}}", Text: "I'll post that as a tweet now.", Action: PostActionName},
	},
	{
		{User: "{{user1}}", Text: "Share that on Twitter"},
		{User: "{{agentName}}", Text: "I'll share this message on Twitter.", Action: PostActionName},
	},
	{
		{User: "{{user1}}", Text: "Post that on X"},
		{User: "{{agentName}}", Text: "I'll post this message on X right away.", Action: PostActionName},
	},
	{
		{User: "{{user1}}", Text: "You should put that on X dot com"},
		{User: "{{agentName}}", Text: "I'll put this message up on X.com now.", Action: PostActionName},
	},
}
