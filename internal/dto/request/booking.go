package request

type CreateBookingRequest struct {
	CarID           string `json:"car_id" validate:"required,uuid"`
	CustomerName    string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerAddress string `json:"customer_address" validate:"required,min=5,max=200"`
	CustomerPhone   string `json:"customer_phone" validate:"required,phone"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
