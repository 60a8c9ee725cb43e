package humanize

// markedVocabulary maps stylistically formal or machine-typical terms to plain
// alternatives. Keys are lowercase; alternatives never contain another key.
var markedVocabulary = map[string][]string{
	"it is important to note that": {"keep in mind that", "note that", "remember that"},
	"it's worth noting that":       {"note that", "keep in mind that"},
	"in today's fast-paced world":  {"these days", "right now", "today"},
	"navigate the complexities of": {"work through", "deal with", "sort out"},
	"a testament to":               {"proof of", "a sign of", "a nod to"},
	"a myriad of":                  {"many", "lots of", "plenty of"},
	"myriad":                       {"many", "countless", "all sorts of"},
	"delve into":                   {"dig into", "look into", "get into"},
	"delve":                        {"dig", "look"},
	"dive into":                    {"get into", "look at", "dig into"},
	"embark on":                    {"start", "begin", "kick off"},
	"leverage":                     {"use", "tap into", "draw on", "make use of"},
	"leveraging":                   {"using", "tapping into", "drawing on"},
	"utilize":                      {"use", "work with"},
	"utilizing":                    {"using", "working with"},
	"facilitate":                   {"help", "ease", "make easier"},
	"furthermore":                  {"plus", "also", "on top of that", "what's more"},
	"moreover":                     {"also", "besides", "and"},
	"additionally":                 {"also", "plus", "on top of that"},
	"crucial":                      {"key", "vital", "big"},
	"pivotal":                      {"key", "central", "major"},
	"paramount":                    {"top", "first", "most pressing"},
	"comprehensive":                {"full", "complete", "thorough"},
	"robust":                       {"solid", "strong", "sturdy"},
	"seamless":                     {"smooth", "easy", "clean"},
	"seamlessly":                   {"smoothly", "easily", "cleanly"},
	"tapestry":                     {"mix", "blend", "web"},
	"realm":                        {"area", "world", "space"},
	"landscape":                    {"scene", "field", "market"},
	"foster":                       {"build", "grow", "encourage"},
	"elevate":                      {"raise", "lift", "boost"},
	"harness":                      {"use", "put to work", "tap"},
	"streamline":                   {"simplify", "speed up", "tighten"},
	"optimize":                     {"improve", "tune", "sharpen"},
	"unlock":                       {"open up", "get at", "reach"},
	"cutting-edge":                 {"new", "modern", "latest"},
	"game-changer":                 {"big deal", "breakthrough", "turning point"},
	"ever-evolving":                {"changing", "shifting", "fast-moving"},
	"meticulous":                   {"careful", "thorough", "precise"},
	"meticulously":                 {"carefully", "closely"},
	"vibrant":                      {"lively", "busy", "colorful"},
	"endeavor":                     {"effort", "attempt", "project"},
}

// contractionTable folds expanded auxiliary phrases into contracted forms.
var contractionTable = map[string][]string{
	"do not":     {"don't"},
	"does not":   {"doesn't"},
	"did not":    {"didn't"},
	"is not":     {"isn't"},
	"are not":    {"aren't"},
	"was not":    {"wasn't"},
	"were not":   {"weren't"},
	"cannot":     {"can't"},
	"will not":   {"won't"},
	"would not":  {"wouldn't"},
	"should not": {"shouldn't"},
	"could not":  {"couldn't"},
	"have not":   {"haven't"},
	"has not":    {"hasn't"},
	"had not":    {"hadn't"},
	"it is":      {"it's"},
	"that is":    {"that's"},
	"there is":   {"there's"},
	"what is":    {"what's"},
	"you are":    {"you're"},
	"we are":     {"we're"},
	"they are":   {"they're"},
	"i am":       {"I'm"},
	"you will":   {"you'll"},
	"we will":    {"we'll"},
	"they will":  {"they'll"},
}

// clauseFinalTerms only contract when more text follows in the clause:
// "what it is." and "as you are." do not fold.
var clauseFinalTerms = []string{
	"it is", "that is", "there is", "what is", "i am",
	"you are", "we are", "they are", "you will", "we will", "they will",
}

// negationPhrases are the uncontracted forms the risk scorer counts.
var negationPhrases = []string{
	"do not", "does not", "did not", "cannot", "can not", "is not", "are not",
	"was not", "were not", "will not", "would not", "should not", "could not",
	"have not", "has not", "had not",
}

var interjections = []string{
	"at least in theory",
	"believe it or not",
	"funny enough",
	"if you ask me",
	"more or less",
	"for what it's worth",
	"give or take",
	"oddly enough",
}

// voiceStarters end in their own punctuation so the following sentence keeps
// its original capitalization.
var voiceStarters = []string{
	"Honestly?",
	"Here's the thing:",
	"Real talk:",
	"Quick aside:",
	"Let's be real.",
	"Stay with me here.",
	"Think about it.",
	"Fair warning:",
}

var rhetoricalQuestions = []string{
	"Sound familiar?",
	"Why does this matter?",
	"So what's the catch?",
	"Makes sense, right?",
	"Who knew?",
	"Isn't that the point?",
	"What does that mean for you?",
}

var hedges = []string{
	"probably",
	"arguably",
	"often",
	"usually",
	"generally",
	"typically",
	"perhaps",
	"likely",
}

// hedgeMarkers suppress hedging on sentences that already qualify themselves.
var hedgeMarkers = []string{
	"probably", "arguably", "often", "usually", "generally", "typically",
	"perhaps", "likely", "maybe", "might", "seems", "somewhat", "sometimes",
}

// closingHeadings are the formal closing titles the heading pass rewrites.
var closingHeadings = []string{
	"conclusion",
	"conclusions",
	"summary",
	"final thoughts",
	"wrapping up",
	"in conclusion",
	"key takeaways",
}

var headingAlternatives = []string{
	"The Bottom Line",
	"Where This Leaves You",
	"What Comes Next",
	"Parting Words",
	"Before You Go",
}

// conclusionLeadIns are stripped from body text and penalized by the scorer.
var conclusionLeadIns = []string{
	"in conclusion",
	"to sum up",
	"in summary",
	"to summarize",
	"to conclude",
	"in closing",
	"all in all",
	"to wrap up",
}

// defaultListNouns are plural nouns that name a list category. The set is a
// tuning knob; see WithListNouns.
var defaultListNouns = []string{
	"advantages", "areas", "benefits", "challenges", "components", "elements",
	"examples", "factors", "features", "habits", "ideas", "lessons", "methods",
	"mistakes", "options", "pillars", "points", "principles", "questions",
	"reasons", "rules", "secrets", "signs", "stages", "steps", "strategies",
	"takeaways", "things", "tips", "tools", "trends", "types", "ways",
}

// listAdjectives may sit between the count word and the list noun.
var listAdjectives = []string{
	"key", "main", "simple", "major", "core", "common", "big", "practical", "quick",
}
