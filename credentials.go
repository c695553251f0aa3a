package subagent

// Credentials are the four upstream OAuth 1.0a strings. They are opaque
// here: never parsed, only forwarded to the subagent.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four values are non-empty.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// String never prints secrets.
func (c Credentials) String() string {
	return "Credentials{consumer_key=" + maskSecret(c.ConsumerKey) +
		" access_token=" + maskSecret(c.AccessToken) + "}"
}

// tweetParams builds the single parameter object of the "tweet" method.
func (c Credentials) tweetParams(text string) TweetParams {
	return TweetParams{
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessToken:       c.AccessToken,
		AccessTokenSecret: c.AccessTokenSecret,
		Text:              text,
	}
}

// maskSecret keeps a short prefix for log correlation.
func maskSecret(s string) string {
	if s == "" {
		return "<empty>"
	}
	return s[:min(4, len(s))] + "***"
}
