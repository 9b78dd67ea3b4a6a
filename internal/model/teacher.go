package model

// Teacher is a staff record as served by /teacher/teacher/.
type Teacher struct {
	TeacherID       int    `json:"teacher_id"`
	Title           string `json:"title"`
	TeacherName     string `json:"teacher_name"`
	TeacherPassword string `json:"teacher_password"`
	TeacherEmail    string `json:"teacher_email"`
	TeacherPhone    string `json:"teacher_phone"`
	TeacherAddress  string `json:"teacher_address"`
	Details         string `json:"details"`
	Image           string `json:"image,omitempty"`
}

// TeacherForm is the create/edit form of the staff page. All text fields are required.
type TeacherForm struct {
	Title           string `form:"title" binding:"required"`
	TeacherName     string `form:"teacher_name" binding:"required"`
	TeacherPassword string `form:"teacher_password" binding:"required"`
	TeacherEmail    string `form:"teacher_email" binding:"required"`
	TeacherPhone    string `form:"teacher_phone" binding:"required"`
	TeacherAddress  string `form:"teacher_address" binding:"required"`
	Details         string `form:"details" binding:"required"`
}

// Fields returns the multipart fields in the order the backend form expects.
func (f TeacherForm) Fields() [][2]string {
	return [][2]string{
		{"title", f.Title},
		{"teacher_name", f.TeacherName},
		{"teacher_password", f.TeacherPassword},
		{"teacher_email", f.TeacherEmail},
		{"teacher_phone", f.TeacherPhone},
		{"teacher_address", f.TeacherAddress},
		{"details", f.Details},
	}
}

// FormFromTeacher seeds the edit form from an existing record.
func FormFromTeacher(t Teacher) TeacherForm {
	return TeacherForm{
		Title:           t.Title,
		TeacherName:     t.TeacherName,
		TeacherPassword: t.TeacherPassword,
		TeacherEmail:    t.TeacherEmail,
		TeacherPhone:    t.TeacherPhone,
		TeacherAddress:  t.TeacherAddress,
		Details:         t.Details,
	}
}

// TeacherLoginRequest is the staff login form.
type TeacherLoginRequest struct {
	Phone    string `form:"teacher_phone" binding:"required"`
	Password string `form:"teacher_password" binding:"required"`
}
