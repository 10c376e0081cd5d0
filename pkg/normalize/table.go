package normalize

// baseLetters maps Latin letters that have no canonical Unicode
// decomposition (ligatures, digraphs, stroked letters) to ASCII.
// Letters with a decomposition are handled by NFD plus mark removal.
var baseLetters = map[rune]string{
	'Æ': "AE", 'æ': "ae",
	'Ǽ': "AE", 'ǽ': "ae",
	'Ǣ': "AE", 'ǣ': "ae",
	'Ꜳ': "AA", 'ꜳ': "aa",
	'Ꜵ': "AO", 'ꜵ': "ao",
	'Ꜷ': "AU", 'ꜷ': "au",
	'Ꜹ': "AV", 'ꜹ': "av",
	'Ꜻ': "AV", 'ꜻ': "av",
	'Ꜽ': "AY", 'ꜽ': "ay",
	'Ø': "O", 'ø': "o",
	'Ǿ': "O", 'ǿ': "o",
	'Œ': "OE", 'œ': "oe",
	'Ƣ': "OI", 'ƣ': "oi",
	'Ꝏ': "OO", 'ꝏ': "oo",
	'Ȣ': "OU", 'ȣ': "ou",
	'Ǳ': "DZ", 'ǲ': "Dz", 'ǳ': "dz",
	'Ǆ': "DZ", 'ǅ': "Dz", 'ǆ': "dz",
	'Ǉ': "LJ", 'ǈ': "Lj", 'ǉ': "lj",
	'Ǌ': "NJ", 'ǋ': "Nj", 'ǌ': "nj",
	'Ĳ': "IJ", 'ĳ': "ij",
	'Ð': "D", 'ð': "d",
	'Đ': "D", 'đ': "d",
	'Ɖ': "D", 'ɖ': "d",
	'Ɗ': "D", 'ɗ': "d",
	'Ƌ': "D", 'ƌ': "d",
	'Þ': "TH", 'þ': "th",
	'ß': "ss", 'ẞ': "SS",
	'Ł': "L", 'ł': "l",
	'Ŀ': "L", 'ŀ': "l",
	'Ƚ': "L", 'ƚ': "l",
	'Ħ': "H", 'ħ': "h",
	'Ƀ': "B", 'ƀ': "b",
	'Ɓ': "B", 'ɓ': "b",
	'Ƈ': "C", 'ƈ': "c",
	'Ȼ': "C", 'ȼ': "c",
	'Ɇ': "E", 'ɇ': "e",
	'Ɛ': "E", 'ɛ': "e",
	'Ƒ': "F", 'ƒ': "f",
	'Ɠ': "G", 'ɠ': "g",
	'Ǥ': "G", 'ǥ': "g",
	'Ɨ': "I", 'ɨ': "i",
	'ı': "i",
	'Ɉ': "J", 'ɉ': "j",
	'Ƙ': "K", 'ƙ': "k",
	'ĸ': "k",
	'Ɲ': "N", 'ɲ': "n",
	'Ƞ': "N", 'ƞ': "n",
	'Ŋ': "N", 'ŋ': "n",
	'Ɵ': "O", 'ɵ': "o",
	'Ƥ': "P", 'ƥ': "p",
	'Ɋ': "Q", 'ɋ': "q",
	'Ɍ': "R", 'ɍ': "r",
	'Ʀ': "R", 'ʀ': "r",
	'Ŧ': "T", 'ŧ': "t",
	'Ƭ': "T", 'ƭ': "t",
	'Ʈ': "T", 'ʈ': "t",
	'Ⱦ': "T", 'ⱦ': "t",
	'Ʉ': "U", 'ʉ': "u",
	'Ʋ': "V", 'ʋ': "v",
	'Ƴ': "Y", 'ƴ': "y",
	'Ɏ': "Y", 'ɏ': "y",
	'Ƶ': "Z", 'ƶ': "z",
	'Ȥ': "Z", 'ȥ': "z",
	'ﬀ': "ff", 'ﬁ': "fi", 'ﬂ': "fl",
	'ﬃ': "ffi", 'ﬄ': "ffl",
	'ﬅ': "st", 'ﬆ': "st",
}
