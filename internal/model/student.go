package model

import "strings"

// Student is a student record as served by /payment/students/.
type Student struct {
	ID          int        `json:"id"`
	StudentID   string     `json:"student_id"`
	Name        string     `json:"name"`
	PhoneNumber FlexString `json:"Phone_number"`
	Department  string     `json:"department"`
	Year        FlexString `json:"year"`
	Email       string     `json:"email"`
	College     string     `json:"college"`
	Password    string     `json:"password"`
	Img         string     `json:"img,omitempty"`
}

// StudentForm is the add/edit student form. The image is sent separately as a file part.
type StudentForm struct {
	StudentID   string `form:"student_id" binding:"required"`
	Name        string `form:"name" binding:"required"`
	PhoneNumber string `form:"Phone_number" binding:"required"`
	Department  string `form:"department" binding:"required"`
	Year        string `form:"year" binding:"required,numeric"`
	Email       string `form:"email" binding:"required"`
	College     string `form:"college" binding:"required"`
	Password    string `form:"password" binding:"required"`
}

// Fields returns the multipart fields of the form.
func (f StudentForm) Fields() [][2]string {
	return [][2]string{
		{"student_id", f.StudentID},
		{"name", f.Name},
		{"Phone_number", f.PhoneNumber},
		{"department", f.Department},
		{"year", f.Year},
		{"email", f.Email},
		{"college", f.College},
		{"password", f.Password},
	}
}

// FormFromStudent copies every editable field of s into a form.
func FormFromStudent(s Student) StudentForm {
	return StudentForm{
		StudentID:   s.StudentID,
		Name:        s.Name,
		PhoneNumber: s.PhoneNumber.String(),
		Department:  s.Department,
		Year:        s.Year.String(),
		Email:       s.Email,
		College:     s.College,
		Password:    s.Password,
	}
}

// StudentFilter narrows the student list. Empty criteria match everything.
type StudentFilter struct {
	StudentID  string `form:"filter_id"`
	Phone      string `form:"filter_phone"`
	Department string `form:"filter_dept"`
}

// Match applies substring matching: id and department ignore case.
func (f StudentFilter) Match(s Student) bool {
	if id := strings.TrimSpace(f.StudentID); id != "" &&
		!strings.Contains(strings.ToLower(s.StudentID), strings.ToLower(id)) {
		return false
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" &&
		!strings.Contains(s.PhoneNumber.String(), phone) {
		return false
	}
	if dept := strings.TrimSpace(f.Department); dept != "" &&
		!strings.Contains(strings.ToLower(s.Department), strings.ToLower(dept)) {
		return false
	}
	return true
}

// PortalLoginRequest is the student self-service login form.
type PortalLoginRequest struct {
	StudentID string `form:"student_id" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

// PasswordChangeForm is the student self-service password form.
type PasswordChangeForm struct {
	CurrentPassword string `form:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required"`
}
