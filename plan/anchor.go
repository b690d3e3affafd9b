package plan

// RaceDaySummary is the default anchor label.
const RaceDaySummary = "RACE DAY"

// FindAnchor returns the index of the single item whose summary equals label.
// It fails with *AnchorAmbiguityError as soon as a second match is seen and
// with *AnchorNotFoundError when nothing matches.
func FindAnchor[T any](items []T, label string, summary func(T) string) (int, error) {
	index := -1
	for i, item := range items {
		if summary(item) != label {
			continue
		}
		if index >= 0 {
			return -1, &AnchorAmbiguityError{Label: label, First: index + 1, Second: i + 1}
		}
		index = i
	}
	if index < 0 {
		return -1, &AnchorNotFoundError{Label: label}
	}
	return index, nil
}
