package request

type CreateCarRequest struct {
	Brand     string  `json:"brand" validate:"required,max=100"`
	Model     string  `json:"model" validate:"required,max=100"`
	DailyRate string  `json:"daily_rate" validate:"required,numeric"`
	ImagePath *string `json:"image_path,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// UpdateCarRequest replaces every mutable field of a car.
type UpdateCarRequest struct {
	Brand     string  `json:"brand" validate:"required,max=100"`
	Model     string  `json:"model" validate:"required,max=100"`
	DailyRate string  `json:"daily_rate" validate:"required,numeric"`
	ImagePath *string `json:"image_path,omitempty"`
	Active    *bool   `json:"active" validate:"required"`
}
