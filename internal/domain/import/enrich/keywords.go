// Package enrich annotates extracted transaction candidates with suggested
// categories and duplicate flags before the user reviews them.
package enrich

// CategoryKeywords maps a category name to the lowercase merchant keywords
// that imply it. Candidates are matched against the keywords of the
// categories the user actually has; a category the user never created can
// never be suggested.
var CategoryKeywords = map[string][]string{
	"Groceries": {
		"walmart",
		"target",
		"kroger",
		"safeway",
		"whole foods",
		"grocery",
		"supermarket",
	},
	"Dining": {
		"restaurant",
		"cafe",
		"pizza",
		"mcdonald",
		"starbucks",
		"chipotle",
		"burger",
		"food",
	},
	"Transport": {
		"uber",
		"lyft",
		"gas",
		"fuel",
		"shell",
		"chevron",
		"parking",
		"transit",
	},
	"Utilities": {
		"electric",
		"water",
		"internet",
		"phone",
		"verizon",
		"at&t",
		"utility",
	},
	"Entertainment": {
		"netflix",
		"spotify",
		"hulu",
		"movie",
		"theater",
		"concert",
		"game",
	},
	"Shopping": {
		"amazon",
		"ebay",
		"best buy",
		"mall",
		"store",
		"shop",
	},
	"Healthcare": {
		"pharmacy",
		"doctor",
		"hospital",
		"medical",
		"health",
	},
	"Education": {
		"school",
		"university",
		"course",
		"tuition",
		"book",
	},
}
