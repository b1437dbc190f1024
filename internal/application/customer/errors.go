package customer

import "errors"

var (
	ErrInvalidCustomerID = errors.New("invalid customer id")
	ErrInvalidCustomer   = errors.New("invalid customer")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrGetCustomer       = errors.New("failed to get customer")
	ErrSaveCustomer      = errors.New("failed to save customer")
	ErrDeleteCustomers   = errors.New("failed to delete customers")
	ErrSearchCustomers   = errors.New("failed to search customers")
	ErrCountCustomers    = errors.New("failed to count customers")
	ErrInvalidBatchQuery = errors.New("invalid batch query")
	ErrBatchQuery        = errors.New("failed to query customers")
	ErrRemarkTooLong     = errors.New("remark is too long")
	ErrCustomerRemark    = errors.New("failed to process customer remark")
)
