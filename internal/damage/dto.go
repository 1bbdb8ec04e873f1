package damage

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ActionRequest reports damaged or recovered quantity at a warehouse
// location, independent of any dispatch.
type ActionRequest struct {
	Product   string `json:"product" validate:"required,max=200"`
	Barcode   string `json:"barcode" validate:"required,max=100"`
	Warehouse string `json:"warehouse" validate:"required,max=100"`
	Qty       int64  `json:"qty" validate:"required,gt=0"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ValidateActionRequest validates an action request.
func ValidateActionRequest(req ActionRequest) error {
	return validate.Struct(req)
}
