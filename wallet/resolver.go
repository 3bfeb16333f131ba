package wallet

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dright-spec/RightNFT123-sub006/users"
)

// Connection is the identity tuple produced by the wallet collaborator after
// it has verified ownership of the address. How that proof happens (wallet
// SDKs, transaction signing) is outside this core; a Connection is trusted.
type Connection struct {
	WalletAddress   string           `json:"wallet_address"`
	HederaAccountID string           `json:"hedera_account_id,omitempty"`
	WalletType      users.WalletType `json:"wallet_type"`
}

// Resolver turns a wallet Connection into a marketplace user, creating a
// wallet-only account the first time an address connects.
type Resolver struct {
	users   users.Store
	nowTime func() time.Time
}

// ResolverOption defines a function type to modify the Resolver instance.
type ResolverOption func(*Resolver)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.nowTime = nowFunc
	}
}

// NewResolver initializes a Resolver bound to the given user store.
func NewResolver(userStore users.Store, options ...ResolverOption) (*Resolver, error) {
	if userStore == nil {
		return nil, errors.New("[NewResolver] users store is required")
	}

	r := &Resolver{
		users:   userStore,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(r)
	}

	return r, nil
}

// Resolve returns the user linked to the connection's wallet address. A
// first-time address gets a fresh wallet-only account; a returning one has
// its wallet metadata refreshed. The returned user is sanitized.
func (r *Resolver) Resolve(conn Connection) (*users.User, error) {
	if conn.WalletAddress == "" {
		return nil, errors.New("[Resolve] wallet address is required")
	}

	user, err := r.users.GetByWalletAddress(conn.WalletAddress)
	if err == nil {
		user.HederaAccountID = conn.HederaAccountID
		user.WalletType = conn.WalletType
		user.LastLogin = r.nowTime()
		if err := r.users.Update(user); err != nil {
			return nil, errors.Wrap(err, "[Resolve] users.Update")
		}
		return user.Sanitized(), nil
	}

	user = &users.User{
		Username:        usernameForAddress(conn.WalletAddress),
		WalletAddress:   conn.WalletAddress,
		HederaAccountID: conn.HederaAccountID,
		WalletType:      conn.WalletType,
		DateJoined:      r.nowTime(),
		LastLogin:       r.nowTime(),
	}
	if err := r.users.Create(user); err != nil {
		return nil, errors.Wrap(err, "[Resolve] users.Create")
	}

	return user.Sanitized(), nil
}

// usernameForAddress derives a readable placeholder username from a wallet
// address, e.g. "wallet_0a3f91b2". The user can rename later.
func usernameForAddress(address string) string {
	short := strings.TrimPrefix(strings.ToLower(address), "0x")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("wallet_%s", short)
}
