package invoice

// ListOpts filters and pages invoice listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
