package scripture

// builtinTranslations holds the corpora shipped embedded in the binary.
// The full KJV and WEB corpora are installed as YAML files by the host
// application's import tooling; the embedded set is a compact public-domain
// excerpt that keeps the engine usable before any corpus file exists.
var builtinTranslations = []*CorpusFile{
	{
		Translation: CorpusMeta{
			ID:       "kjv",
			Name:     "KJV",
			FullName: "King James Version",
			Language: "en",
			Source:   "Public domain (1769 Oxford edition excerpt)",
			Aliases: []string{
				"kjv",
				"king james",
				"king james version",
				"king james bible",
				"authorized version",
			},
		},
		Books: []CorpusBook{
			{
				Name: "Genesis",
				Chapters: []CorpusChapter{
					{Number: 1, Verses: []CorpusVerse{
						{Number: 1, Text: "In the beginning God created the heaven and the earth."},
						{Number: 2, Text: "And the earth was without form, and void; and darkness was upon the face of the deep. And the Spirit of God moved upon the face of the waters."},
						{Number: 3, Text: "And God said, Let there be light: and there was light."},
						{Number: 4, Text: "And God saw the light, that it was good: and God divided the light from the darkness."},
						{Number: 5, Text: "And God called the light Day, and the darkness he called Night. And the evening and the morning were the first day."},
					}},
				},
			},
			{
				Name: "Joshua",
				Chapters: []CorpusChapter{
					{Number: 1, Verses: []CorpusVerse{
						{Number: 9, Text: "Have not I commanded thee? Be strong and of a good courage; be not afraid, neither be thou dismayed: for the LORD thy God is with thee whithersoever thou goest."},
					}},
				},
			},
			{
				Name: "Psalms",
				Chapters: []CorpusChapter{
					{Number: 23, Verses: []CorpusVerse{
						{Number: 1, Text: "The LORD is my shepherd; I shall not want."},
						{Number: 2, Text: "He maketh me to lie down in green pastures: he leadeth me beside the still waters."},
						{Number: 3, Text: "He restoreth my soul: he leadeth me in the paths of righteousness for his name's sake."},
						{Number: 4, Text: "Yea, though I walk through the valley of the shadow of death, I will fear no evil: for thou art with me; thy rod and thy staff they comfort me."},
						{Number: 5, Text: "Thou preparest a table before me in the presence of mine enemies: thou anointest my head with oil; my cup runneth over."},
						{Number: 6, Text: "Surely goodness and mercy shall follow me all the days of my life: and I will dwell in the house of the LORD for ever."},
					}},
					{Number: 119, Verses: []CorpusVerse{
						{Number: 105, Text: "Thy word is a lamp unto my feet, and a light unto my path."},
					}},
				},
			},
			{
				Name: "Proverbs",
				Chapters: []CorpusChapter{
					{Number: 3, Verses: []CorpusVerse{
						{Number: 5, Text: "Trust in the LORD with all thine heart; and lean not unto thine own understanding."},
						{Number: 6, Text: "In all thy ways acknowledge him, and he shall direct thy paths."},
					}},
				},
			},
			{
				Name: "Isaiah",
				Chapters: []CorpusChapter{
					{Number: 40, Verses: []CorpusVerse{
						{Number: 31, Text: "But they that wait upon the LORD shall renew their strength; they shall mount up with wings as eagles; they shall run, and not be weary; and they shall walk, and not faint."},
					}},
				},
			},
			{
				Name: "Jeremiah",
				Chapters: []CorpusChapter{
					{Number: 29, Verses: []CorpusVerse{
						{Number: 11, Text: "For I know the thoughts that I think toward you, saith the LORD, thoughts of peace, and not of evil, to give you an expected end."},
					}},
				},
			},
			{
				Name: "Matthew",
				Chapters: []CorpusChapter{
					{Number: 5, Verses: []CorpusVerse{
						{Number: 3, Text: "Blessed are the poor in spirit: for theirs is the kingdom of heaven."},
						{Number: 4, Text: "Blessed are they that mourn: for they shall be comforted."},
						{Number: 5, Text: "Blessed are the meek: for they shall inherit the earth."},
						{Number: 6, Text: "Blessed are they which do hunger and thirst after righteousness: for they shall be filled."},
					}},
					{Number: 11, Verses: []CorpusVerse{
						{Number: 28, Text: "Come unto me, all ye that labour and are heavy laden, and I will give you rest."},
					}},
				},
			},
			{
				Name: "John",
				Chapters: []CorpusChapter{
					{Number: 1, Verses: []CorpusVerse{
						{Number: 1, Text: "In the beginning was the Word, and the Word was with God, and the Word was God."},
						{Number: 2, Text: "The same was in the beginning with God."},
						{Number: 3, Text: "All things were made by him; and without him was not any thing made that was made."},
						{Number: 4, Text: "In him was life; and the life was the light of men."},
						{Number: 5, Text: "And the light shineth in darkness; and the darkness comprehended it not."},
					}},
					{Number: 3, Verses: []CorpusVerse{
						{Number: 16, Text: "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life."},
						{Number: 17, Text: "For God sent not his Son into the world to condemn the world; but that the world through him might be saved."},
					}},
					{Number: 14, Verses: []CorpusVerse{
						{Number: 6, Text: "Jesus saith unto him, I am the way, the truth, and the life: no man cometh unto the Father, but by me."},
					}},
				},
			},
			{
				Name: "Romans",
				Chapters: []CorpusChapter{
					{Number: 3, Verses: []CorpusVerse{
						{Number: 23, Text: "For all have sinned, and come short of the glory of God;"},
					}},
					{Number: 8, Verses: []CorpusVerse{
						{Number: 28, Text: "And we know that all things work together for good to them that love God, to them who are the called according to his purpose."},
					}},
				},
			},
			{
				Name: "1 Corinthians",
				Chapters: []CorpusChapter{
					{Number: 13, Verses: []CorpusVerse{
						{Number: 4, Text: "Charity suffereth long, and is kind; charity envieth not; charity vaunteth not itself, is not puffed up,"},
						{Number: 13, Text: "And now abideth faith, hope, charity, these three; but the greatest of these is charity."},
					}},
				},
			},
			{
				Name: "Ephesians",
				Chapters: []CorpusChapter{
					{Number: 2, Verses: []CorpusVerse{
						{Number: 8, Text: "For by grace are ye saved through faith; and that not of yourselves: it is the gift of God:"},
						{Number: 9, Text: "Not of works, lest any man should boast."},
					}},
				},
			},
			{
				Name: "Philippians",
				Chapters: []CorpusChapter{
					{Number: 4, Verses: []CorpusVerse{
						{Number: 13, Text: "I can do all things through Christ which strengtheneth me."},
					}},
				},
			},
			{
				Name: "2 Timothy",
				Chapters: []CorpusChapter{
					{Number: 1, Verses: []CorpusVerse{
						{Number: 7, Text: "For God hath not given us the spirit of fear; but of power, and of love, and of a sound mind."},
					}},
				},
			},
		},
	},
	{
		Translation: CorpusMeta{
			ID:       "web",
			Name:     "WEB",
			FullName: "World English Bible",
			Language: "en",
			Source:   "Public domain excerpt",
			Aliases: []string{
				"web",
				"world english",
				"world english bible",
			},
		},
		Books: []CorpusBook{
			{
				Name: "Genesis",
				Chapters: []CorpusChapter{
					{Number: 1, Verses: []CorpusVerse{
						{Number: 1, Text: "In the beginning, God created the heavens and the earth."},
					}},
				},
			},
			{
				Name: "Psalms",
				Chapters: []CorpusChapter{
					{Number: 23, Verses: []CorpusVerse{
						{Number: 1, Text: "Yahweh is my shepherd: I shall lack nothing."},
					}},
				},
			},
			{
				Name: "John",
				Chapters: []CorpusChapter{
					{Number: 3, Verses: []CorpusVerse{
						{Number: 16, Text: "For God so loved the world, that he gave his one and only Son, that whoever believes in him should not perish, but have eternal life."},
					}},
				},
			},
		},
	},
}
