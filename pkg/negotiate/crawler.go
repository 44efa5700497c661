package negotiate

import "regexp"

// crawlerSignature identifies a known search or social preview fetcher.
type crawlerSignature struct {
	name    string
	pattern *regexp.Regexp
}

// crawlers is scanned in order, first match wins. Patterns are case-sensitive.
var crawlers = []crawlerSignature{
	{name: "Facebook", pattern: regexp.MustCompile(`facebookexternalhit|Facebot`)},
	{name: "Twitter", pattern: regexp.MustCompile(`Twitterbot`)},
	{name: "LinkedIn", pattern: regexp.MustCompile(`LinkedInBot`)},
	{name: "Slack", pattern: regexp.MustCompile(`Slackbot-LinkExpanding`)},
	{name: "Discord", pattern: regexp.MustCompile(`Discordbot`)},
	{name: "WhatsApp", pattern: regexp.MustCompile(`WhatsApp`)},
	{name: "Telegram", pattern: regexp.MustCompile(`TelegramBot`)},
	{name: "Pinterest", pattern: regexp.MustCompile(`Pinterest`)},
	{name: "Google", pattern: regexp.MustCompile(`Googlebot`)},
	{name: "Bing", pattern: regexp.MustCompile(`bingbot`)},
}

// Crawler returns the name of the crawler identified by userAgent.
// An empty user agent never matches.
func Crawler(userAgent string) (string, bool) {
	for _, c := range crawlers {
		if c.pattern.MatchString(userAgent) {
			return c.name, true
		}
	}
	return "", false
}
