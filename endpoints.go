package client

// Action paths relative to the versioned base URL.
const (
	// Outgoing messages
	EndpointSMS = "sms"
	EndpointMsg = "sms/" // append message ID

	// Incoming messages
	EndpointSMSIncoming = "sms-incoming"

	// Account
	EndpointCreditBalance = "user/credit-balance"
)
