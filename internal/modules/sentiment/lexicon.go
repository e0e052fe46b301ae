package sentiment

// lexicon maps lowercase words to a valence in [-4, 4].
var lexicon = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 2.7, "amazing": 2.8, "awesome": 3.1,
	"love": 3.2, "loves": 2.7, "loved": 2.9, "like": 1.5, "likes": 1.4, "happy": 2.7,
	"win": 2.8, "wins": 2.7, "winning": 2.4, "gain": 2.4, "gains": 1.8, "gained": 1.6,
	"profit": 1.9, "profits": 1.9, "profitable": 1.9, "strong": 2.3, "stronger": 1.6,
	"growth": 1.6, "grow": 1.3, "growing": 1.3, "rally": 1.4, "rallies": 1.4,
	"surge": 1.5, "surges": 1.5, "soar": 2.0, "soars": 2.0, "bullish": 1.9,
	"beat": 1.2, "beats": 1.2, "record": 0.6, "upgrade": 1.5, "upgraded": 1.5,
	"optimistic": 1.6, "confident": 2.2, "innovation": 1.6, "innovative": 1.8,
	"success": 2.7, "successful": 2.8, "opportunity": 1.8, "positive": 2.6,
	"best": 3.2, "better": 1.9, "improve": 1.9, "improved": 2.1, "recovery": 1.4,
	"safe": 1.9, "secure": 1.4, "outperform": 1.8, "boom": 1.6, "thrive": 2.4,
	// negative
	"bad": -2.5, "terrible": -2.1, "awful": -2.0, "horrible": -2.5, "worst": -3.1,
	"hate": -2.7, "hates": -1.9, "hated": -3.2, "sad": -2.1, "angry": -2.3,
	"loss": -1.3, "losses": -1.7, "lose": -1.7, "losing": -1.6, "lost": -1.3,
	"weak": -1.9, "weaker": -1.9, "crash": -1.7, "crashes": -1.7, "plunge": -1.9,
	"plunges": -1.9, "drop": -1.1, "drops": -1.1, "fall": -0.9, "falls": -0.9,
	"decline": -1.1, "declines": -1.1, "bearish": -1.9, "downgrade": -1.5,
	"downgraded": -1.5, "miss": -0.6, "misses": -0.9, "risk": -1.1, "risky": -1.4,
	"fear": -2.2, "fears": -1.8, "concern": -0.9, "concerns": -0.9, "worry": -1.9,
	"worried": -1.2, "uncertain": -1.2, "uncertainty": -1.4, "volatile": -1.1,
	"debt": -1.5, "bankrupt": -2.6, "bankruptcy": -2.6, "fraud": -2.8,
	"scandal": -2.1, "lawsuit": -1.5, "recession": -2.3, "inflation": -1.0,
	"problem": -1.7, "problems": -1.7, "fail": -2.3, "failed": -2.3, "failure": -2.3,
	"negative": -2.7, "poor": -2.1, "worse": -2.1, "underperform": -1.8,
	"sell-off": -1.6, "selloff": -1.6, "panic": -2.3, "dump": -1.6, "mixed": -0.2,
}

// boosters scale the intensity of the word that follows them.
var boosters = map[string]float64{
	"very": 0.293, "extremely": 0.293, "really": 0.293, "incredibly": 0.293,
	"hugely": 0.293, "so": 0.293, "most": 0.293, "highly": 0.293, "totally": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "barely": -0.293, "marginally": -0.293,
	"kinda": -0.293, "little": -0.293,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "nobody": true,
	"nothing": true, "neither": true, "nor": true, "without": true, "cannot": true,
	"aint": true, "dont": true, "doesnt": true, "didnt": true, "isnt": true,
	"wasnt": true, "arent": true, "werent": true, "wont": true, "cant": true,
	"shouldnt": true, "wouldnt": true, "couldnt": true, "hardly": true,
}
