package stats

type ListFilter struct {
	Labeled          *bool
	Compacted        *bool
	TrainingExcluded *bool
}

func (filter ListFilter) SetLabeled(v bool) ListFilter {
	filter.Labeled = &v
	return filter
}

func (filter ListFilter) SetCompacted(v bool) ListFilter {
	filter.Compacted = &v
	return filter
}

func (filter ListFilter) SetTrainingExcluded(v bool) ListFilter {
	filter.TrainingExcluded = &v
	return filter
}
