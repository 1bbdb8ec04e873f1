package dispatch

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateCreateRequest validates a create request, including the rule that a
// dispatch without item rows must carry a header product.
func ValidateCreateRequest(req CreateRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		if req.Barcode == "" || req.ProductName == "" {
			return ErrEmptyDispatch
		}
		if req.Qty <= 0 {
			return ErrInvalidQuantity
		}
	}
	for i, item := range req.Items {
		if item.Qty <= 0 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
	}
	return nil
}

// ValidateUpdateStatusRequest validates a status update request.
func ValidateUpdateStatusRequest(req UpdateStatusRequest) error {
	return validate.Struct(req)
}

// ValidateReportDamageRequest validates a damage report request.
func ValidateReportDamageRequest(req ReportDamageRequest) error {
	return validate.Struct(req)
}
