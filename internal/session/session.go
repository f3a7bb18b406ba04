// Package session maps request credentials to an identity and an identity
// to the stored user that acts on its behalf.
package session

import (
	"errors"
	"strings"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/utils"
	"gorm.io/gorm"
)

const GuestEmail = "guest@example.com"

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrUnknownUser      = errors.New("session user does not exist")
	ErrIdentityRequired = errors.New("a signed-in user is required")
)

// Identity is who the caller claims to be. The zero value is anonymous.
type Identity struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool { return i.UserID == "" }

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// TokenResolver turns an Authorization header into an Identity.
type TokenResolver struct{}

// Identify returns Anonymous for an empty header and ErrInvalidToken for a
// malformed or unverifiable one.
func (TokenResolver) Identify(authHeader string) (Identity, error) {
	if authHeader == "" {
		return Anonymous, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return Anonymous, ErrInvalidToken
	}
	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return Anonymous, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// Resolver maps an identity to the stored user. It runs on the caller's
// transaction so user creation commits or rolls back with the caller's write.
type Resolver interface {
	ResolveUser(tx *gorm.DB, id Identity) (*models.User, error)
}

// StoreResolver looks up the identity's user. Anonymous callers are
// attributed to the first existing user, or to a newly created guest, when
// GuestFallback is on.
type StoreResolver struct {
	GuestFallback bool
}

func NewStoreResolver(guestFallback bool) *StoreResolver {
	return &StoreResolver{GuestFallback: guestFallback}
}

func (r *StoreResolver) ResolveUser(tx *gorm.DB, id Identity) (*models.User, error) {
	if !id.IsAnonymous() {
		var user models.User
		if err := tx.First(&user, "id = ?", id.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownUser
			}
			return nil, err
		}
		return &user, nil
	}

	if !r.GuestFallback {
		return nil, ErrIdentityRequired
	}
	return guestUser(tx)
}

func guestUser(tx *gorm.DB) (*models.User, error) {
	var user models.User
	err := tx.Order("created_at ASC, id ASC").First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{Email: GuestEmail, Role: models.RoleReader}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
