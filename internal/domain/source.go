package domain

// Source is one input image reference in walk order.
type Source struct {
	ID    string
	Order int
}

// ScanFilter narrows a directory scan. Patterns use doublestar syntax and
// are matched against the slash-separated path relative to the scan root.
type ScanFilter struct {
	Recursive bool
	Include   []string
	Exclude   []string
}
