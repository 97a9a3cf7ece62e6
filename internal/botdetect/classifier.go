package botdetect

import (
	"strings"

	"github.com/medama-io/go-useragent"

	"visitgate/internal/dataType"
)

const (
	botBaseConfidence   = 0.6
	humanBaseConfidence = 0.8
	patternBonus        = 0.3
	addressBonus        = 0.2
	frequencyBonus      = 0.1
	maxConfidence       = 0.99
)

// Classifier scores a request as bot or human from three ordered
// signals: the user-agent signature table, the crawler network table,
// and the caller-supplied request frequency. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	signatures []Signature
	networks   *dataType.NetTrie
	freqLimit  int64
	parser     *useragent.Parser
}

// NewClassifier builds a classifier with the built-in signal tables.
// freqLimit is the requests-per-minute threshold above which traffic is
// treated as bot-like; zero or negative selects the default of 60.
func NewClassifier(freqLimit int64) *Classifier {
	if freqLimit <= 0 {
		freqLimit = 60
	}
	networks := dataType.NewNetTrie()
	for _, cidr := range crawlerNetworks {
		networks.InsertCIDR(cidr)
	}
	return &Classifier{
		signatures: signatures,
		networks:   networks,
		freqLimit:  freqLimit,
		parser:     useragent.NewParser(),
	}
}

// Classify evaluates the signal tables in order. A missing user agent
// simply fails the signature check; classification itself never fails.
func (c *Classifier) Classify(req dataType.RequestContext) dataType.ClassificationResult {
	ua := req.UserAgent()
	lower := strings.ToLower(ua)

	var (
		patternHit bool
		botType    = dataType.BotTypeUnknown
		botName    string
	)
	if lower != "" {
		for _, sig := range c.signatures {
			if strings.Contains(lower, sig.Pattern) {
				patternHit = true
				botType = sig.Type
				botName = sig.Name
				break
			}
		}
		if !patternHit && c.parser.Parse(ua).IsBot() {
			// The parser knows crawlers the table does not name.
			patternHit = true
			botType = dataType.BotTypeUnknown
		}
	}

	addrHit := req.RemoteAddr.IsValid() && c.networks.Contains(req.RemoteAddr)
	freqHit := req.RequestFrequency > c.freqLimit

	if !patternHit && !addrHit && !freqHit {
		return dataType.ClassificationResult{
			IsBot:      false,
			BotType:    dataType.BotTypeHuman,
			Confidence: humanBaseConfidence,
		}
	}

	confidence := botBaseConfidence
	if patternHit {
		confidence += patternBonus
	}
	if addrHit {
		confidence += addressBonus
	}
	if freqHit {
		confidence += frequencyBonus
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return dataType.ClassificationResult{
		IsBot:      true,
		BotType:    botType,
		BotName:    botName,
		Confidence: confidence,
	}
}
