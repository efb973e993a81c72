package dbq

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Reservations struct {
	ID                   uuid.UUID          `json:"id"`
	CustomerUsername     string             `json:"customer_username"`
	DeviceID             string             `json:"device_id"`
	TradeInProductLine   pgtype.Text        `json:"trade_in_product_line"`
	TradeInModel         pgtype.Text        `json:"trade_in_model"`
	TradeInBatteryHealth pgtype.Numeric     `json:"trade_in_battery_health"`
	Status               string             `json:"status"`
	CancellationReason   pgtype.Text        `json:"cancellation_reason"`
	DepositAmount        pgtype.Numeric     `json:"deposit_amount"`
	DepositStatus        string             `json:"deposit_status"`
	DepositDueAt         pgtype.Timestamptz `json:"deposit_due_at"`
	DepositProofUrl      pgtype.Text        `json:"deposit_proof_url"`
	DepositPaymentMethod pgtype.Text        `json:"deposit_payment_method"`
	FinalPaymentAmount   pgtype.Numeric     `json:"final_payment_amount"`
	FinalPaymentMethod   pgtype.Text        `json:"final_payment_method"`
	CompletedAt          pgtype.Timestamptz `json:"completed_at"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

type NotificationJobs struct {
	ID        uuid.UUID          `json:"id"`
	Kind      string             `json:"kind"`
	Topic     string             `json:"topic"`
	Payload   []byte             `json:"payload"`
	RunAt     pgtype.Timestamptz `json:"run_at"`
	Attempts  int32              `json:"attempts"`
	Status    string             `json:"status"`
	LastError pgtype.Text        `json:"last_error"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
