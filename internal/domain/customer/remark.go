package customer

import "time"

// CustomerRemark is the free-text note an operator keeps on one customer.
type CustomerRemark struct {
	CustomerID int64
	Text       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BatchMatch is one customer found by a batch lookup, with the name of the
// file it was imported from when there is one.
type BatchMatch struct {
	Customer       Customer
	UploadFileName string
}
