package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"liveqa/entity"
	"liveqa/internal/config"
	"liveqa/lib/clock"
	"liveqa/lib/sl"
)

const issuer = "liveqa"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrModeratorExists    = errors.New("moderator with this email already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// Database keeps moderator accounts. Lookups return nil without error when nothing matches.
type Database interface {
	SaveModerator(ctx context.Context, moderator *entity.Moderator) error
	ModeratorByEmail(ctx context.Context, email string) (*entity.Moderator, error)
	ModeratorById(ctx context.Context, id string) (*entity.Moderator, error)
	UpdateModeratorPassword(ctx context.Context, id, hash string) error
}

type Invites interface {
	CheckToken(ctx context.Context, token string) (*entity.Invite, error)
	MarkUsed(ctx context.Context, id string) error
}

type Auth struct {
	db      Database
	invites Invites
	secret  []byte
	ttl     time.Duration
	cost    int
	now     func() time.Time
	log     *slog.Logger
}

func New(db Database, invites Invites, conf config.Auth, log *slog.Logger) *Auth {
	a := &Auth{
		db:      db,
		invites: invites,
		secret:  []byte(conf.JwtSecret),
		ttl:     conf.TokenTTL,
		cost:    conf.BcryptCost,
		now:     clock.Now,
		log:     log.With(sl.Module("auth")),
	}
	if len(a.secret) == 0 {
		// tokens will not survive a restart
		a.secret = []byte(uuid.New().String())
		a.log.Warn("jwt secret is not configured, using a random one")
	}
	if a.cost < bcrypt.MinCost || a.cost > bcrypt.MaxCost {
		a.cost = bcrypt.DefaultCost
	}
	return a
}

func (a *Auth) SetClock(now func() time.Time) {
	a.now = now
}

// Register creates a moderator account from an invite. The invite is claimed
// before the account is stored so that it can be used only once.
func (a *Auth) Register(ctx context.Context, cmd *entity.RegisterCommand) (*entity.AuthResponse, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	invite, err := a.invites.CheckToken(ctx, cmd.Token)
	if err != nil {
		return nil, err
	}
	existing, err := a.db.ModeratorByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("find moderator: %w", err)
	}
	if existing != nil {
		return nil, ErrModeratorExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err = a.invites.MarkUsed(ctx, invite.Id); err != nil {
		return nil, err
	}
	moderator := &entity.Moderator{
		Id:           uuid.New().String(),
		Email:        cmd.Email,
		PasswordHash: string(hash),
		InviteId:     invite.Id,
		CreatedAt:    a.now(),
	}
	if err = a.db.SaveModerator(ctx, moderator); err != nil {
		// the invite stays used; an admin has to issue a new one
		a.log.Warn("invite consumed by failed registration",
			slog.String("invite_id", invite.Id),
			sl.Secret("email", moderator.Email),
			sl.Err(err),
		)
		return nil, fmt.Errorf("save moderator: %w", err)
	}
	a.log.Info("moderator registered",
		slog.String("moderator_id", moderator.Id),
		slog.String("invite_id", invite.Id),
	)
	return a.response(moderator)
}

func (a *Auth) Login(ctx context.Context, cmd *entity.LoginCommand) (*entity.AuthResponse, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	moderator, err := a.db.ModeratorByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("find moderator: %w", err)
	}
	if moderator == nil {
		return nil, ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(moderator.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a.response(moderator)
}

// ChangePassword replaces the password of an authenticated moderator after
// checking the current one. Issued tokens stay valid until they expire.
func (a *Auth) ChangePassword(ctx context.Context, moderator *entity.Moderator, cmd *entity.ChangePasswordCommand) error {
	if a.db == nil {
		return fmt.Errorf("database not connected")
	}
	stored, err := a.db.ModeratorById(ctx, moderator.Id)
	if err != nil {
		return fmt.Errorf("find moderator: %w", err)
	}
	if stored == nil {
		return ErrInvalidToken
	}
	if err = bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(cmd.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err = a.db.UpdateModeratorPassword(ctx, stored.Id, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	a.log.Info("password changed", slog.String("moderator_id", stored.Id))
	return nil
}

// Authenticate resolves a bearer token to the moderator it was issued for.
func (a *Auth) Authenticate(ctx context.Context, tokenString string) (*entity.Moderator, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	moderator, err := a.db.ModeratorById(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("find moderator: %w", err)
	}
	if moderator == nil {
		return nil, ErrInvalidToken
	}
	return moderator, nil
}

func (a *Auth) IssueToken(moderator *entity.Moderator) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   moderator.Id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) response(moderator *entity.Moderator) (*entity.AuthResponse, error) {
	token, err := a.IssueToken(moderator)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &entity.AuthResponse{
		Moderator: moderator,
		Token:     token,
		ExpiresIn: int64(a.ttl.Seconds()),
	}, nil
}
