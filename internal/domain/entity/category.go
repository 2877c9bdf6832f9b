package entity

// Category represents a transaction category. System categories are shared by
// every user, custom ones belong to the current user.
type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	IsUserCategory bool   `json:"is_user_category"`
}

// CategoryInput is the body of POST /category.
type CategoryInput struct {
	Name string `json:"name"`
}
