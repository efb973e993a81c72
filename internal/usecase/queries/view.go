package queries

import (
	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/usecase/shared"
)

// ViewFromDomain renders an aggregate the same way the read store renders a row.
func ViewFromDomain(res *reservation.Reservation) *ReservationView {
	deposit := res.Deposit()
	view := &ReservationView{
		ID:                 res.ID(),
		CustomerUsername:   res.CustomerUsername(),
		DeviceID:           res.DeviceID(),
		Status:             res.Status().String(),
		CancellationReason: res.CancellationReason(),
		Deposit: DepositView{
			Amount:        deposit.Amount(),
			Status:        deposit.Status().String(),
			DueAt:         deposit.DueAt(),
			ProofURL:      deposit.ProofURL(),
			PaymentMethod: methodString(deposit.PaymentMethod()),
		},
		CompletedAt: res.CompletedAt(),
		CreatedAt:   res.CreatedAt(),
		UpdatedAt:   res.UpdatedAt(),
	}

	if t := res.TradeIn(); t != nil {
		view.TradeIn = &TradeInView{
			ProductLine:   t.ProductLine(),
			Model:         t.Model(),
			BatteryHealth: t.BatteryHealth(),
		}
	}

	if sale := res.Sale(); sale != nil {
		view.Sale = &SaleView{
			Deposit:       sale.Deposit,
			FinalPayment:  sale.FinalPayment,
			Total:         sale.Total,
			PaymentMethod: methodString(sale.PaymentMethod),
		}
	}

	return view
}

func DeviceViewFrom(d *shared.Device) *DeviceView {
	if d == nil {
		return nil
	}
	return &DeviceView{
		ID:            d.ID,
		ProductID:     d.ProductID,
		Condition:     d.Condition,
		Grade:         d.Grade,
		State:         d.State,
		BatteryHealth: d.BatteryHealth,
		Price:         d.Price,
		Details:       d.Details,
		Accessories:   d.Accessories,
	}
}

func methodString(m *reservation.PaymentMethod) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}
