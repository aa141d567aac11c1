package prompt

import "math/rand"

// activityTopics seeds the weekend-activity prompt. The list was generated
// once from a "list 100 hobby topics" request and is kept as plain data;
// duplicates are harmless and only skew the draw slightly.
var activityTopics = []string{
	"photography", "painting", "gardening", "cooking", "writing", "reading",
	"fishing", "knitting", "sewing", "pottery", "woodworking", "sculpting",
	"playing a musical instrument", "dancing", "birdwatching", "hiking",
	"camping", "cycling", "running", "yoga", "meditation", "sketching",
	"calligraphy", "graphic design", "baking", "cross-stitching", "origami",
	"embroidery", "beekeeping", "candle making", "model building",
	"coin collecting", "stamp collecting", "wine tasting", "brewing beer",
	"playing board games", "chess", "video gaming", "archery", "rock climbing",
	"martial arts", "magic tricks", "singing", "acting", "stand-up comedy",
	"cosplay", "diy projects", "scrapbooking", "jewelry making", "pottery",
	"interior design", "crossword puzzles", "sudoku", "home brewing",
	"wine making", "bird photography", "beekeeping", "creative writing",
	"hiking and nature photography", "soap making", "kite flying", "astronomy",
	"collecting vintage items", "geocaching", "djing", "making short films",
	"wine pairing", "brewing coffee", "urban gardening", "chess puzzles",
	"stand-up paddleboarding", "surfing", "diy home improvement projects",
	"rollerblading", "jigsaw puzzles", "coin flipping tricks",
	"virtual reality gaming", "quilting", "photography editing and retouching",
	"wood carving", "digital art", "comic book collecting", "writing poetry",
	"archery", "playing card tricks", "making homemade candles",
	"terrarium gardening", "toy collecting", "marathon running",
	"mountain biking", "needle felting", "card making", "paper mache crafts",
	"tea tasting", "airbrush painting", "photography composition techniques",
	"dj mixing", "stargazing", "macrame", "bonsai tree cultivation",
}

// Topics returns a copy of the hobby topics the activity prompt draws from.
func Topics() []string {
	out := make([]string, len(activityTopics))
	copy(out, activityTopics)
	return out
}

// RandomTopic picks one hobby topic using the supplied source.
// #nosec G404 -- math/rand is acceptable for picking a prompt topic.
func RandomTopic(rng *rand.Rand) string {
	return activityTopics[rng.Intn(len(activityTopics))]
}
