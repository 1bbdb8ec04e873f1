package transfer

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// CreateRequest moves qty of one product from one warehouse to another.
type CreateRequest struct {
	Barcode       string `json:"barcode" validate:"required,max=100"`
	ProductName   string `json:"product_name" validate:"required,max=200"`
	Qty           int64  `json:"qty" validate:"required,gt=0"`
	FromWarehouse string `json:"from_warehouse" validate:"required,max=100"`
	ToWarehouse   string `json:"to_warehouse" validate:"required,max=100"`
	ProcessedBy   string `json:"processed_by" validate:"required,max=100"`
	Remarks       string `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

// ValidateCreateRequest validates a create request.
func ValidateCreateRequest(req CreateRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.FromWarehouse == req.ToWarehouse {
		return ErrSameWarehouse
	}
	return nil
}

// UpdateStatusRequest sets a new status on a self-transfer record.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}
