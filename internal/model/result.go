package model

// Result is a published result attachment as served by /result/students/.
type Result struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"discrip"`
	Attachment  string `json:"attachment"`
}
