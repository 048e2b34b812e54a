package random

// Default charsets for credential generation. Letters mirrors ASCII letters;
// LettersDigitsPunct additionally covers digits and ASCII punctuation.
//
//nolint:gochecknoglobals
var (
	Letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

	LettersDigitsPunct = []rune(
		"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
			"0123456789" +
			"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~",
	)
)

// Fixed character pools for the Unicode probes. Every entry has a
// well-defined upper/lower case pair of identical UTF-8 width, so
// case-shuffled credentials keep their byte length.
//
//nolint:gochecknoglobals
var (
	emojiPool = []rune(
		"\U0001f600\U0001f601\U0001f602\U0001f603\U0001f604\U0001f605" +
			"\U0001f606\U0001f607\U0001f608\U0001f609\U0001f60a\U0001f60b" +
			"\U0001f60c\U0001f60d\U0001f60e\U0001f60f\U0001f610\U0001f611" +
			"\U0001f612\U0001f613\U0001f614\U0001f615\U0001f616\U0001f617" +
			"\U0001f618\U0001f619\U0001f61a\U0001f61b\U0001f61c\U0001f61d" +
			"\U0001f61e\U0001f61f\U0001f620\U0001f621\U0001f622\U0001f623" +
			"\U0001f624\U0001f625\U0001f626\U0001f627\U0001f628\U0001f629" +
			"\U0001f62a\U0001f62b\U0001f62c\U0001f62d\U0001f62e\U0001f62f",
	)

	latinPool = []rune(
		"ÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÑÒÓÔÕÖØÙÚÛÜÝ" +
			"àáâãäåæçèéêëìíîïñòóôõöøùúûüýÿ" +
			"ĀāĂăĄąĆćĈĉĊċČčĎďĒēĖėĘęĚěĜĝĞğ" +
			"ŁłŃńŇňŌōŐőŒœŔŕŘřŚśŠšŢţŤťŨũŪū" +
			"ŮůŰűŲųŴŵŶŹźŻżŽž",
	)
)
