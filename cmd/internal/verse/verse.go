package verse

// Verse is one Quran verse with its sura context.
type Verse struct {
	ID           int64  `json:"id"`
	SuraIndex    int    `json:"suraIndex"`
	SuraTitle    string `json:"suraTitle"`
	SuraSubtitle string `json:"suraSubtitle"`
	VerseNumber  int    `json:"verseNumber"`
	Text         string `json:"text"`
}
