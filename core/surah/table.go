package surah

// surahs is the canonical table in Qur'an order.
var surahs = []Surah{
	{1, "Al-Fâtihah", 7},
	{2, "Al-Baqarah", 286},
	{3, "Âli-Imrân", 200},
	{4, "An-Nisâ", 176},
	{5, "Al-Mâidah", 120},
	{6, "Al-Anâm", 165},
	{7, "Al-Arâf", 206},
	{8, "Al-Anfâl", 75},
	{9, "At-Tawbah", 129},
	{10, "Yûnus", 109},
	{11, "Hûd", 123},
	{12, "Yûsuf", 111},
	{13, "Ar-Rad", 43},
	{14, "Ibrâhîm", 52},
	{15, "Al-Ḥijr", 99},
	{16, "An-Naḥl", 128},
	{17, "Al-Isrâ", 111},
	{18, "Al-Kahf", 110},
	{19, "Maryam", 98},
	{20, "Tâ-Hâ", 135},
	{21, "Al-Anbiyâ", 112},
	{22, "Al-Ḥajj", 78},
	{23, "Al-Muminûm", 118},
	{24, "An-Nûr", 64},
	{25, "Al-Furqân", 77},
	{26, "Ash-Shuarâ", 227},
	{27, "Al-Naml", 93},
	{28, "Al-Qaṣaṣ", 88},
	{29, "Al-Ankabût", 69},
	{30, "Ar-Rûm", 60},
	{31, "Luqmân", 34},
	{32, "As-Sajdah", 30},
	{33, "Al-Aḥzâb", 73},
	{34, "Saba", 54},
	{35, "Fâṭir", 45},
	{36, "Yâ-Sîn", 83},
	{37, "Aṣ-Ṣâffât", 182},
	{38, "Ṣâd", 88},
	{39, "Az-Zumar", 75},
	{40, "Ghâfir", 85},
	{41, "Fuṣṣilat", 54},
	{42, "Ash-Shûra", 53},
	{43, "Az-Zukhruf", 89},
	{44, "Ad-Dukhân", 59},
	{45, "Al-Jâthiyah", 37},
	{46, "Al-Aḥqâf", 35},
	{47, "Muḥammad", 38},
	{48, "Al-Fatḥ", 29},
	{49, "Al-Ḥujurât", 18},
	{50, "Qâf", 45},
	{51, "Adh-Dhâriyât", 60},
	{52, "Aṭ-Ṭûr", 49},
	{53, "An-Najm", 62},
	{54, "Al-Qamar", 55},
	{55, "Ar-Raḥmân", 78},
	{56, "Al-Wâqiah", 96},
	{57, "Al-Ḥadîd", 29},
	{58, "Al-Mudjâdilah", 22},
	{59, "Al-Ḥashr", 24},
	{60, "Al-Mumtaḥanah", 13},
	{61, "Aṣ-Ṣaf", 14},
	{62, "Al-Jumuah", 11},
	{63, "Al-Munȃfiqȗn", 11},
	{64, "At-Taghȃbun", 18},
	{65, "At-Talȃq", 12},
	{66, "At-Taḥrîm", 12},
	{67, "Al-Mulk", 30},
	{68, "Al-Qalam", 52},
	{69, "Al-Ḥaqqah", 52},
	{70, "Al-Maȃrij", 44},
	{71, "Al-Nȗḥ", 28},
	{72, "Al-Jinn", 28},
	{73, "Al-Muzzammil", 20},
	{74, "Al-Muddaththir", 56},
	{75, "Al-Qiyȃmah", 40},
	{76, "Al-Insȃn", 31},
	{77, "Al-Mursalȃt", 50},
	{78, "Al-Naba", 40},
	{79, "Al-Nȃziat", 46},
	{80, "Abasa", 42},
	{81, "At-Takwîr", 29},
	{82, "Al-Infiṭȃr", 19},
	{83, "Al-Muṭaffifîn", 36},
	{84, "Al-Inshiqȃq", 25},
	{85, "Al-Burȗj", 22},
	{86, "At-Ṭȃriq", 17},
	{87, "Al-Alȃ", 19},
	{88, "Al-Ghȃshiyah", 26},
	{89, "Al-Fajr", 30},
	{90, "Al-Balad", 20},
	{91, "Ash-Shams", 15},
	{92, "Al-Layl", 21},
	{93, "Aḍ-Ḍuḥȃ", 11},
	{94, "Ash-Sharḥ", 8},
	{95, "At-Tîn", 8},
	{96, "Al-Alaq", 19},
	{97, "Al-Qadr", 5},
	{98, "Al-Bayyinah", 8},
	{99, "Az-Zalzalah", 8},
	{100, "Al-Âdiyȃt", 11},
	{101, "Al-Qȃriah", 11},
	{102, "At-Takȃthur", 8},
	{103, "Al-Aṣr", 3},
	{104, "Al-Humazah", 9},
	{105, "Al-Fîl", 5},
	{106, "Quraysh", 4},
	{107, "Al-Mȃȗn", 7},
	{108, "Al-Kawthar", 3},
	{109, "Al-Kȃfirȗn", 6},
	{110, "An-Naṣr", 3},
	{111, "Al-Masad", 5},
	{112, "Al-Ikhlȃṣ", 4},
	{113, "Al-Falaq", 5},
	{114, "An-Nȃs", 6},
}
