package model

import "time"

const (
	ConnectionConnected    = "connected"
	ConnectionDisconnected = "disconnected"
)

// BrokerageConnection links an account to a named broker. Disconnecting
// flips Status instead of deleting the row so the link history survives
// for audit.
type BrokerageConnection struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	AccountID     string    `gorm:"column:account_id;uniqueIndex:idx_account_broker" json:"account_id"`
	BrokerName    string    `gorm:"column:broker_name;uniqueIndex:idx_account_broker" json:"broker_name"`
	CredentialRef string    `gorm:"column:credential_ref" json:"credential_ref,omitempty"`
	Status        string    `gorm:"column:status" json:"status"`
	ConnectedAt   time.Time `gorm:"column:connected_at" json:"connected_at"`
}

func (BrokerageConnection) TableName() string {
	return "brokerage_connections"
}
