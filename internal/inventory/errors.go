package inventory

import "errors"

// ErrProductNotFound is returned when a product does not exist.
var ErrProductNotFound = errors.New("product not found")
