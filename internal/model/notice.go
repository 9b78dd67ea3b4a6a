package model

// Notice is a notice board entry as served by /notice/notices/.
type Notice struct {
	ID         int    `json:"id"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	Date       string `json:"date"`
	CreatedAt  string `json:"created_at"`
	Attachment string `json:"attachment,omitempty"`
}

// NoticeForm is the create/edit notice form. Date is optional.
type NoticeForm struct {
	Subject string `form:"subject" binding:"required"`
	Message string `form:"message" binding:"required"`
	Date    string `form:"date"`
}

// Fields returns the multipart fields, omitting an empty date.
func (f NoticeForm) Fields() [][2]string {
	fields := [][2]string{
		{"subject", f.Subject},
		{"message", f.Message},
	}
	if f.Date != "" {
		fields = append(fields, [2]string{"date", f.Date})
	}
	return fields
}

// FormFromNotice seeds the edit form.
func FormFromNotice(n Notice) NoticeForm {
	return NoticeForm{Subject: n.Subject, Message: n.Message, Date: n.Date}
}
