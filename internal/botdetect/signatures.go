package botdetect

import "visitgate/internal/dataType"

// Signature is one user-agent substring rule. The table is evaluated in
// order and the first hit wins, so named crawlers must come before the
// generic substrings at the bottom.
type Signature struct {
	Pattern string
	Type    dataType.BotType
	Name    string
}

var signatures = []Signature{
	// Search engines
	{"googlebot", dataType.BotTypeSearchEngine, "Googlebot"},
	{"bingbot", dataType.BotTypeSearchEngine, "Bingbot"},
	{"slurp", dataType.BotTypeSearchEngine, "Yahoo Slurp"},
	{"duckduckbot", dataType.BotTypeSearchEngine, "DuckDuckBot"},
	{"baiduspider", dataType.BotTypeSearchEngine, "Baiduspider"},
	{"yandexbot", dataType.BotTypeSearchEngine, "YandexBot"},
	{"applebot", dataType.BotTypeSearchEngine, "Applebot"},
	{"sogou web spider", dataType.BotTypeSearchEngine, "Sogou Spider"},

	// Social media preview fetchers
	{"facebookexternalhit", dataType.BotTypeSocialMedia, "Facebook"},
	{"twitterbot", dataType.BotTypeSocialMedia, "Twitterbot"},
	{"linkedinbot", dataType.BotTypeSocialMedia, "LinkedInBot"},
	{"whatsapp", dataType.BotTypeSocialMedia, "WhatsApp"},
	{"telegrambot", dataType.BotTypeSocialMedia, "TelegramBot"},
	{"discordbot", dataType.BotTypeSocialMedia, "Discordbot"},
	{"slackbot", dataType.BotTypeSocialMedia, "Slackbot"},

	// SEO crawlers
	{"ahrefsbot", dataType.BotTypeSeo, "AhrefsBot"},
	{"semrushbot", dataType.BotTypeSeo, "SemrushBot"},
	{"mj12bot", dataType.BotTypeSeo, "MJ12bot"},
	{"dotbot", dataType.BotTypeSeo, "DotBot"},
	{"screaming frog", dataType.BotTypeSeo, "Screaming Frog"},

	// Monitoring services
	{"uptimerobot", dataType.BotTypeMonitoring, "UptimeRobot"},
	{"pingdom", dataType.BotTypeMonitoring, "Pingdom"},
	{"statuscake", dataType.BotTypeMonitoring, "StatusCake"},
	{"site24x7", dataType.BotTypeMonitoring, "Site24x7"},

	// Security scanners
	{"nessus", dataType.BotTypeSecurity, "Nessus"},
	{"sqlmap", dataType.BotTypeSecurity, "sqlmap"},
	{"nikto", dataType.BotTypeSecurity, "Nikto"},
	{"masscan", dataType.BotTypeSecurity, "masscan"},
	{"zgrab", dataType.BotTypeSecurity, "zgrab"},

	// HTTP clients and automation
	{"curl/", dataType.BotTypeUnknown, "curl"},
	{"wget/", dataType.BotTypeUnknown, "Wget"},
	{"python-requests", dataType.BotTypeUnknown, "python-requests"},
	{"go-http-client", dataType.BotTypeUnknown, "Go-http-client"},
	{"java/", dataType.BotTypeUnknown, "Java"},
	{"libwww-perl", dataType.BotTypeUnknown, "libwww-perl"},
	{"okhttp", dataType.BotTypeUnknown, "okhttp"},
	{"headlesschrome", dataType.BotTypeUnknown, "HeadlessChrome"},
	{"phantomjs", dataType.BotTypeUnknown, "PhantomJS"},

	// Generic fallbacks, last so the named entries above win
	{"bot", dataType.BotTypeUnknown, "Generic Bot"},
	{"crawler", dataType.BotTypeUnknown, "Generic Crawler"},
	{"spider", dataType.BotTypeUnknown, "Generic Spider"},
	{"scraper", dataType.BotTypeUnknown, "Generic Scraper"},
	{"httpclient", dataType.BotTypeUnknown, "Generic HTTP Client"},
}

// crawlerNetworks are published crawler and well-known hosting ranges.
// An address hit alone classifies as an unknown bot at moderate
// confidence; combined with a signature hit it raises confidence.
var crawlerNetworks = []string{
	// Googlebot
	"66.249.64.0/19",
	// Bingbot
	"157.55.39.0/24",
	"207.46.13.0/24",
	"40.77.167.0/24",
	// AhrefsBot
	"54.36.148.0/22",
	// Common scraper hosting
	"2001:4860:4801::/48",
}
