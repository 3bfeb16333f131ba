package fakeuserrepo

import (
	"sync"

	apperrors "github.com/dright-spec/RightNFT123-sub006/internal/errors"
	"github.com/dright-spec/RightNFT123-sub006/users"
)

var _ users.Store = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Store used by tests and the dev server.
type FakeUserRepo struct {
	users  map[int64]*users.User
	nextID int64
	lock   sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:  make(map[int64]*users.User),
		nextID: 1,
	}
}

func (ur *FakeUserRepo) Create(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == 0 {
		user.ID = ur.nextID
		ur.nextID++
	}
	ur.users[user.ID] = copyUser(user)
	return nil
}

func (ur *FakeUserRepo) Update(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	ur.users[user.ID] = copyUser(user)
	return nil
}

func (ur *FakeUserRepo) Delete(id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	if email == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.find(func(u *users.User) bool { return u.Email == email })
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	if username == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.find(func(u *users.User) bool { return u.Username == username })
}

func (ur *FakeUserRepo) GetByWalletAddress(address string) (*users.User, error) {
	if address == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.find(func(u *users.User) bool { return u.WalletAddress == address })
}

func (ur *FakeUserRepo) GetByVerificationToken(token string) (*users.User, error) {
	if token == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.find(func(u *users.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (ur *FakeUserRepo) find(match func(*users.User) bool) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	for _, user := range ur.users {
		if match(user) {
			return copyUser(user), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// copyUser guards the repo's state against mutation through returned pointers.
func copyUser(u *users.User) *users.User {
	clone := *u
	if u.EmailVerificationToken != nil {
		token := *u.EmailVerificationToken
		clone.EmailVerificationToken = &token
	}
	if u.EmailVerificationExpires != nil {
		expires := *u.EmailVerificationExpires
		clone.EmailVerificationExpires = &expires
	}
	return &clone
}
