package postlogin

type BasicCustomerInfo struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	CustomerType string `json:"customerType"`
}

type InitSessionPayload struct {
	ChannelID string `json:"channelId" binding:"required"`
}

type InitSessionData struct {
	CIF               string             `json:"cif" binding:"required"`
	BasicCustomerInfo BasicCustomerInfo  `json:"basicCustomerInfo"`
	TokenKey          string             `json:"tokenKey" binding:"required"`
	Payload           InitSessionPayload `json:"payload" binding:"required"`
}

type InitSessionRequest struct {
	Data InitSessionData `json:"data" binding:"required"`
}

type RenewTokenData struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RenewTokenRequest struct {
	Data RenewTokenData `json:"data" binding:"required"`
}

// TokenPair is returned by both init-session and renew-token.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}
