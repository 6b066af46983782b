package payment

// midtransTransactionDetails identifies the order and its total
type midtransTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

// midtransCustomerDetails carries the payer identity shown in Snap
type midtransCustomerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// midtransItemDetail is a single line item on the checkout page
type midtransItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// midtransSnapRequest is the body of a Snap transaction creation call
type midtransSnapRequest struct {
	TransactionDetails midtransTransactionDetails `json:"transaction_details"`
	CustomerDetails    *midtransCustomerDetails   `json:"customer_details,omitempty"`
	ItemDetails        []midtransItemDetail       `json:"item_details,omitempty"`
}

// midtransSnapResponse is the token payload returned by Snap
type midtransSnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// midtransErrorResponse represents an error response from Midtrans
type midtransErrorResponse struct {
	StatusCode    string   `json:"status_code,omitempty"`
	StatusMessage string   `json:"status_message,omitempty"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}
