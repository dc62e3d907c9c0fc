package auth

// Claims representa la identidad extraída de la sesión de wallet.
type Claims struct {
	UserID        string
	Email         string
	WalletAddress string
}
