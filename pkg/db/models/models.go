package models

// All lists every persisted model, in dependency order, for AutoMigrate in
// sqlite mode and tests.
func All() []any {
	return []any{
		&Product{},
		&ProductSize{},
		&PendingPayment{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&PaymentLog{},
		&Coupon{},
		&CouponRedemption{},
		&DeliverySettings{},
	}
}
