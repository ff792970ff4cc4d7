package inventory

// CreateResult resultado de una creación directa.
type CreateResult int

const (
	Created CreateResult = iota + 1
	CreateConflict
)

func (r CreateResult) String() string {
	switch r {
	case Created:
		return "created"
	case CreateConflict:
		return "conflict"
	}
	return "unknown"
}

// UpdateResult resultado de una actualización directa.
type UpdateResult int

const (
	Updated UpdateResult = iota + 1
	UpdateNotFound
)

func (r UpdateResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case UpdateNotFound:
		return "not_found"
	}
	return "unknown"
}

// DeleteResult resultado de un borrado.
type DeleteResult int

const (
	Deleted DeleteResult = iota + 1
	DeleteNotFound
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case DeleteNotFound:
		return "not_found"
	}
	return "unknown"
}

// AdjustResult resultado de un ajuste de stock.
type AdjustResult int

const (
	Adjusted AdjustResult = iota + 1
	AdjustNotFound
	AdjustInsufficientStock
)

func (r AdjustResult) String() string {
	switch r {
	case Adjusted:
		return "adjusted"
	case AdjustNotFound:
		return "not_found"
	case AdjustInsufficientStock:
		return "insufficient_stock"
	}
	return "unknown"
}

// Availability respuesta de tres estados: distingue "no alcanza" de "no existe el producto".
type Availability int

const (
	Available Availability = iota + 1
	Unavailable
	AvailabilityUnknown
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}
