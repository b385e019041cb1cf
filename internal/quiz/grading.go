package quiz

// Check grades a submission of display labels against the answer key.
//
// An empty submission or an empty answer key never passes. Labels absent
// from ChoiceMap (for example from an earlier shuffle) are dropped before
// the comparison. There is no partial credit.
func (q *Question) Check(selected []string) bool {
	if len(selected) == 0 || len(q.Answers) == 0 {
		return false
	}

	mapped := make([]string, 0, len(selected))
	for _, label := range selected {
		if orig, ok := q.ChoiceMap[label]; ok {
			mapped = append(mapped, orig)
		}
	}

	return IsAnswerCorrect(mapped, q.Answers)
}

// IsAnswerCorrect reports whether selected and correct hold the same set of
// labels. Duplicates on either side are ignored.
func IsAnswerCorrect(selected, correct []string) bool {
	selectedSet := toSet(selected)
	correctSet := toSet(correct)

	if len(selectedSet) != len(correctSet) {
		return false
	}
	for label := range correctSet {
		if !selectedSet[label] {
			return false
		}
	}
	return true
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
