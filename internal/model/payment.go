package model

// PaymentStatus is compared against the literal strings the backend stores.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// PaymentStudent is the student summary nested in a payment.
type PaymentStudent struct {
	ID          int        `json:"id"`
	StudentID   string     `json:"student_id"`
	Name        string     `json:"name"`
	PhoneNumber FlexString `json:"phone_number"`
	Department  string     `json:"department,omitempty"`
}

// Payment is a payment record as served by /payment/payments/.
type Payment struct {
	ID          int            `json:"id"`
	Student     PaymentStudent `json:"student"`
	Amount      FlexString     `json:"amount"`
	Status      PaymentStatus  `json:"status"`
	DueDate     string         `json:"due_date"`
	PaymentDate string         `json:"payment_date"`
	ReferenceID string         `json:"reference_id"`
}

// IsPaid reports whether the payment is settled.
func (p Payment) IsPaid() bool { return p.Status == PaymentPaid }

// PaymentForm is the new-payment form for a selected student.
type PaymentForm struct {
	Amount      string `form:"amount" binding:"required,numeric"`
	DueDate     string `form:"due_date" binding:"required"`
	ReferenceID string `form:"reference_id" binding:"required"`
}

// PaymentUpdateForm edits the mutable fields of a payment.
type PaymentUpdateForm struct {
	Amount      string        `form:"amount" binding:"required,numeric"`
	Status      PaymentStatus `form:"status" binding:"required,oneof=Paid Pending"`
	ReferenceID string        `form:"reference_id"`
}

// FormFromPayment seeds the edit form.
func FormFromPayment(p Payment) PaymentUpdateForm {
	return PaymentUpdateForm{
		Amount:      p.Amount.String(),
		Status:      p.Status,
		ReferenceID: p.ReferenceID,
	}
}

// CreatePaymentPayload is the JSON body of a new payment. New payments start Pending.
type CreatePaymentPayload struct {
	StudentID   int           `json:"student_id"`
	Amount      float64       `json:"amount"`
	DueDate     string        `json:"due_date"`
	ReferenceID string        `json:"reference_id"`
	Status      PaymentStatus `json:"status"`
}

// UpdatePaymentPayload is the JSON body of a payment replacement.
type UpdatePaymentPayload struct {
	Amount      string        `json:"amount"`
	Status      PaymentStatus `json:"status"`
	ReferenceID string        `json:"reference_id"`
	StudentID   int           `json:"student_id"`
}
