package dispatch

// CreateRequest represents a request to create a dispatch. Either the header
// product fields or Items must be populated.
type CreateRequest struct {
	Warehouse     string        `json:"warehouse" validate:"required,max=100"`
	OrderRef      string        `json:"order_ref" validate:"required,max=100"`
	Customer      string        `json:"customer" validate:"required,max=200"`
	Barcode       string        `json:"barcode,omitempty" validate:"omitempty,max=100"`
	ProductName   string        `json:"product_name,omitempty" validate:"omitempty,max=200"`
	Qty           int64         `json:"qty,omitempty" validate:"gte=0"`
	AWB           string        `json:"awb" validate:"required,max=100"`
	Logistics     string        `json:"logistics,omitempty" validate:"omitempty,max=100"`
	ParcelType    string        `json:"parcel_type,omitempty" validate:"omitempty,max=50"`
	Dimensions    Dimensions    `json:"dimensions"`
	PaymentMode   string        `json:"payment_mode,omitempty" validate:"omitempty,max=50"`
	InvoiceAmount float64       `json:"invoice_amount" validate:"gte=0"`
	ProcessedBy   string        `json:"processed_by" validate:"required,max=100"`
	Remarks       string        `json:"remarks,omitempty"`
	Items         []ItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ItemRequest is one product line in a create request.
type ItemRequest struct {
	Barcode      string  `json:"barcode" validate:"required,max=100"`
	ProductName  string  `json:"product_name" validate:"required,max=200"`
	Qty          int64   `json:"qty" validate:"required,gt=0"`
	Variant      string  `json:"variant,omitempty" validate:"omitempty,max=100"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
}

// UpdateStatusRequest sets a new status. When Barcode is supplied the update
// is scoped to verifying that barcode belongs to the dispatch; status is
// still written at the header level only.
type UpdateStatusRequest struct {
	Status  string  `json:"status" validate:"required,max=50"`
	Barcode *string `json:"barcode,omitempty" validate:"omitempty,max=100"`
}

// ReportDamageRequest reports damaged quantity against a dispatch.
type ReportDamageRequest struct {
	Product   string `json:"product" validate:"required,max=200"`
	Barcode   string `json:"barcode" validate:"required,max=100"`
	Warehouse string `json:"warehouse" validate:"required,max=100"`
	Qty       int64  `json:"qty" validate:"required,gt=0"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// DeleteResult summarises the compensating work performed by a deletion.
type DeleteResult struct {
	DispatchID   int64 `json:"dispatch_id"`
	ItemsDeleted int   `json:"items_deleted"`
	Restored     int   `json:"products_restored"`
}
