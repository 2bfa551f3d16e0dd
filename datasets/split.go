package datasets

import "strings"

// Split records the keywords used and the resulting episode indices. An
// episode may appear in both lists or in neither.
type Split struct {
	TrainKeywords []string
	TestKeywords  []string
	Train         []int
	Test          []int
}

// DefaultTrainKeywords returns the stem of every path except the one at index
// (len(paths)-1)/2, which is held out.
func DefaultTrainKeywords(paths []string) []string {
	if len(paths) == 0 {
		return []string{}
	}
	pivot := (len(paths) - 1) / 2
	keywords := make([]string, 0, len(paths)-1)
	for i, p := range paths {
		if i != pivot {
			keywords = append(keywords, Stem(p))
		}
	}
	return keywords
}

// DefaultTestKeywords returns the stem of every path that contains none of
// the train keywords.
func DefaultTestKeywords(paths, trainKeywords []string) []string {
	keywords := []string{}
	for _, p := range paths {
		if !ContainsAny(p, trainKeywords) {
			keywords = append(keywords, Stem(p))
		}
	}
	return keywords
}

// ContainsAny reports whether s contains at least one of the keywords.
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Assign returns the indices of paths containing any keyword.
func Assign(paths, keywords []string) []int {
	indices := []int{}
	for i, p := range paths {
		if ContainsAny(p, keywords) {
			indices = append(indices, i)
		}
	}
	return indices
}

// ResolveSplit fills in default keywords where trainKeywords or testKeywords
// is nil and assigns every path to train and test independently. A non-nil
// empty list is used as is and selects nothing.
func ResolveSplit(paths, trainKeywords, testKeywords []string) Split {
	if trainKeywords == nil {
		trainKeywords = DefaultTrainKeywords(paths)
	}
	if testKeywords == nil {
		testKeywords = DefaultTestKeywords(paths, trainKeywords)
	}
	return Split{
		TrainKeywords: trainKeywords,
		TestKeywords:  testKeywords,
		Train:         Assign(paths, trainKeywords),
		Test:          Assign(paths, testKeywords),
	}
}
