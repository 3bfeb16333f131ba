package users

import (
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied to every password hash.
const bcryptCost = 12

// WalletType identifies which wallet software produced a wallet connection.
type WalletType string

const (
	WalletNone       WalletType = ""
	WalletHashPack   WalletType = "hashpack"
	WalletBlade      WalletType = "blade"
	WalletMetaMask   WalletType = "metamask"
	WalletConnectAny WalletType = "walletconnect"
)

// User is a marketplace account. Accounts authenticate with a password,
// a wallet address, or both; at least one must be set before the account
// can log in.
type User struct {
	ID           int64  `json:"id,omitempty"`       // Unique identifier for the user
	Username     string `json:"username,omitempty"` // Unique username
	Email        string `json:"email,omitempty"`    // User's email address (optional for wallet-only accounts)
	PasswordHash string `json:"-"`                  // Hashed version of the user's password - never serialize

	WalletAddress   string     `json:"wallet_address,omitempty"`    // Linked wallet address (optional)
	HederaAccountID string     `json:"hedera_account_id,omitempty"` // Hedera account (0.0.x) if a wallet is linked
	WalletType      WalletType `json:"wallet_type,omitempty"`       // Wallet software used to connect

	EmailVerified            bool       `json:"email_verified,omitempty"`
	EmailVerificationToken   *string    `json:"-"` // Pending verification token, nil once consumed
	EmailVerificationExpires *time.Time `json:"-"` // Absolute expiry of the pending token

	DateJoined time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin  time.Time `json:"last_login,omitempty"`  // Last time the user logged in
}

// Sanitized returns a copy of the user safe to hand past the credential
// boundary: the password hash and verification token are stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clean := *u
	clean.PasswordHash = ""
	clean.EmailVerificationToken = nil
	clean.EmailVerificationExpires = nil
	return &clean
}

// HasWallet reports whether a wallet address is linked to the account.
func (u *User) HasWallet() bool {
	return u.WalletAddress != ""
}

// CanAuthenticate reports whether the account has at least one credential.
func (u *User) CanAuthenticate() bool {
	return u.PasswordHash != "" || u.HasWallet()
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// HashPassword hashes a plaintext password with bcrypt. Each call salts
// independently, so hashing the same password twice yields different hashes.
// Hashing never fails for valid UTF-8 input of any length.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(passwordBytes(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext password against a bcrypt hash.
// Returns false on any malformed hash rather than an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password))
	return err == nil
}

// passwordBytes truncates input to bcrypt's 72-byte maximum. Hash and verify
// share the truncation so long passwords keep round-tripping instead of
// erroring out.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}
