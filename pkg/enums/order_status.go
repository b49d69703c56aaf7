package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusReserved       OrderStatus = "reserved"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusInInstallation OrderStatus = "in_installation"
	OrderStatusToShip         OrderStatus = "to_ship"
	OrderStatusToPickup       OrderStatus = "to_pickup"
	OrderStatusInvoiced       OrderStatus = "invoiced"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusReserved,
	OrderStatusDelivered,
	OrderStatusInInstallation,
	OrderStatusToShip,
	OrderStatusToPickup,
	OrderStatusInvoiced,
	OrderStatusCancelled,
}

// ActiveOrderStatuses are the statuses that consume availability and block
// bulk price changes.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusReserved,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts against stock availability.
func (s OrderStatus) IsActive() bool {
	for _, candidate := range ActiveOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
