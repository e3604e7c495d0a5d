package auth

import "golang.org/x/crypto/bcrypt"

// ErrPasswordTooLong is returned for passwords over bcrypt's 72 byte limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is
// outside bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("blogz-no-such-user"), cost)
	return &Hasher{cost: cost, dummy: dummy}
}

func (h *Hasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	return string(b), err
}

// Verify reports whether pw matches hash. A malformed hash is a mismatch.
func (h *Hasher) Verify(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// VerifyNothing spends the same work as Verify for logins naming an unknown
// account.
func (h *Hasher) VerifyNothing(pw string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(pw))
}
