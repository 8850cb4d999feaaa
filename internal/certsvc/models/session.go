package models

// WalletSentinel marks "no session". Web clients keep the same value
// in local storage between logins.
const WalletSentinel = "0x0"

// Session is the explicit per-login context threaded through every
// operation. It replaces ambient current-user globals.
type Session struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Wallet    string `json:"wallet"`
	Certifier bool   `json:"certifier"`
	TokenID   string `json:"-"` // jti of the issued JWT, revoked at logout
	Token     string `json:"-"`
}

// NewSession returns a session with no wallet bound yet.
func NewSession(userID int64, email string) *Session {
	return &Session{
		UserID: userID,
		Email:  email,
		Wallet: WalletSentinel,
	}
}

// HasWallet reports whether a wallet is bound to the session.
func (s *Session) HasWallet() bool {
	return s != nil && s.Wallet != "" && s.Wallet != WalletSentinel
}
