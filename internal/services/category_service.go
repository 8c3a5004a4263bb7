package services

// categoryService serves the configured category enumeration.
type categoryService struct {
	categories []string
}

// NewCategoryService creates a new CategoryServicer over a fixed list.
func NewCategoryService(categories []string) CategoryServicer {
	return &categoryService{categories: append([]string(nil), categories...)}
}

// ListCategories returns a copy of the enumeration, never nil.
func (s *categoryService) ListCategories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}
