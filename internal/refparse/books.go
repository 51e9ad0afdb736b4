package refparse

import "strings"

// canonicalBooks maps lowercase book names and common abbreviations to the
// canonical book name used in verse references. Covering both full names and
// the abbreviation set speakers actually use ("1 Cor", "Ps", "Rev") is what
// makes citation detection work on live transcripts.
var canonicalBooks = map[string]string{
	// Old Testament
	"genesis": "Genesis", "gen": "Genesis",
	"exodus": "Exodus", "exod": "Exodus", "exo": "Exodus", "ex": "Exodus",
	"leviticus": "Leviticus", "lev": "Leviticus",
	"numbers": "Numbers", "num": "Numbers",
	"deuteronomy": "Deuteronomy", "deut": "Deuteronomy", "deu": "Deuteronomy",
	"joshua": "Joshua", "josh": "Joshua",
	"judges": "Judges", "judg": "Judges", "jdg": "Judges",
	"ruth":     "Ruth",
	"1 samuel": "1 Samuel", "1 sam": "1 Samuel", "first samuel": "1 Samuel",
	"2 samuel": "2 Samuel", "2 sam": "2 Samuel", "second samuel": "2 Samuel",
	"1 kings": "1 Kings", "1 kgs": "1 Kings", "first kings": "1 Kings",
	"2 kings": "2 Kings", "2 kgs": "2 Kings", "second kings": "2 Kings",
	"1 chronicles": "1 Chronicles", "1 chron": "1 Chronicles", "1 chr": "1 Chronicles",
	"2 chronicles": "2 Chronicles", "2 chron": "2 Chronicles", "2 chr": "2 Chronicles",
	"ezra":     "Ezra",
	"nehemiah": "Nehemiah", "neh": "Nehemiah",
	"esther":   "Esther", "esth": "Esther",
	"job":      "Job",
	"psalms":   "Psalms", "psalm": "Psalms", "ps": "Psalms", "psa": "Psalms", "pss": "Psalms",
	"proverbs": "Proverbs", "proverb": "Proverbs", "prov": "Proverbs", "pro": "Proverbs",
	"ecclesiastes": "Ecclesiastes", "eccl": "Ecclesiastes", "ecc": "Ecclesiastes",
	"song of solomon": "Song of Solomon", "song of songs": "Song of Solomon", "song": "Song of Solomon", "sos": "Song of Solomon",
	"isaiah": "Isaiah", "isa": "Isaiah",
	"jeremiah": "Jeremiah", "jer": "Jeremiah",
	"lamentations": "Lamentations", "lam": "Lamentations",
	"ezekiel": "Ezekiel", "ezek": "Ezekiel", "eze": "Ezekiel",
	"daniel": "Daniel", "dan": "Daniel",
	"hosea": "Hosea", "hos": "Hosea",
	"joel":  "Joel",
	"amos":  "Amos",
	"obadiah": "Obadiah", "obad": "Obadiah",
	"jonah": "Jonah", "jon": "Jonah",
	"micah": "Micah", "mic": "Micah",
	"nahum": "Nahum", "nah": "Nahum",
	"habakkuk": "Habakkuk", "hab": "Habakkuk",
	"zephaniah": "Zephaniah", "zeph": "Zephaniah",
	"haggai": "Haggai", "hag": "Haggai",
	"zechariah": "Zechariah", "zech": "Zechariah", "zec": "Zechariah",
	"malachi": "Malachi", "mal": "Malachi",

	// New Testament
	"matthew": "Matthew", "matt": "Matthew", "mat": "Matthew", "mt": "Matthew",
	"mark": "Mark", "mk": "Mark",
	"luke": "Luke", "lk": "Luke",
	"john": "John", "jn": "John", "joh": "John",
	"acts": "Acts", "act": "Acts",
	"romans": "Romans", "rom": "Romans", "ro": "Romans",
	"1 corinthians": "1 Corinthians", "1 cor": "1 Corinthians", "first corinthians": "1 Corinthians",
	"2 corinthians": "2 Corinthians", "2 cor": "2 Corinthians", "second corinthians": "2 Corinthians",
	"galatians": "Galatians", "gal": "Galatians",
	"ephesians": "Ephesians", "eph": "Ephesians",
	"philippians": "Philippians", "phil": "Philippians", "php": "Philippians",
	"colossians": "Colossians", "col": "Colossians",
	"1 thessalonians": "1 Thessalonians", "1 thess": "1 Thessalonians", "1 thes": "1 Thessalonians",
	"2 thessalonians": "2 Thessalonians", "2 thess": "2 Thessalonians", "2 thes": "2 Thessalonians",
	"1 timothy": "1 Timothy", "1 tim": "1 Timothy", "first timothy": "1 Timothy",
	"2 timothy": "2 Timothy", "2 tim": "2 Timothy", "second timothy": "2 Timothy",
	"titus": "Titus", "tit": "Titus",
	"philemon": "Philemon", "phlm": "Philemon", "phm": "Philemon",
	"hebrews": "Hebrews", "heb": "Hebrews",
	"james": "James", "jas": "James",
	"1 peter": "1 Peter", "1 pet": "1 Peter", "first peter": "1 Peter",
	"2 peter": "2 Peter", "2 pet": "2 Peter", "second peter": "2 Peter",
	"1 john": "1 John", "1 jn": "1 John", "first john": "1 John",
	"2 john": "2 John", "2 jn": "2 John", "second john": "2 John",
	"3 john": "3 John", "3 jn": "3 John", "third john": "3 John",
	"jude":       "Jude",
	"revelation": "Revelation", "revelations": "Revelation", "rev": "Revelation",
}

// NormalizeBook resolves a spoken or written book name (including
// abbreviations and leading ordinals like "1", "first") to its canonical
// form. ok is false for unrecognized names.
func NormalizeBook(name string) (canonical string, ok bool) {
	n := strings.TrimSuffix(strings.TrimSpace(name), ".")
	n = strings.Join(strings.Fields(strings.ToLower(n)), " ")
	// "1john" → "1 john"
	if len(n) > 1 && n[0] >= '1' && n[0] <= '3' && n[1] != ' ' {
		n = n[:1] + " " + n[1:]
	}
	canonical, ok = canonicalBooks[n]
	return canonical, ok
}
