// internal/auth/ticket.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidTicket is returned for any ticket that fails verification.
var ErrInvalidTicket = errors.New("invalid seat ticket")

// Ticket is a verified seat assignment.
type Ticket struct {
	MatchID   uuid.UUID
	PlayerID  uuid.UUID
	Seat      int
	ExpiresAt time.Time
}

// seatClaims is the JWT payload. The player is the subject.
type seatClaims struct {
	MatchID string `json:"mid"`
	Seat    int    `json:"seat"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 seat tickets.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using secret as the HMAC key.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("seat ticket secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("seat ticket ttl %v must be positive", ttl)
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a ticket binding player to seat in match.
func (i *Issuer) Issue(matchID, playerID uuid.UUID, seat int) (string, error) {
	now := i.now()
	claims := seatClaims{
		MatchID: matchID.String(),
		Seat:    seat,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign seat ticket: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its Ticket.
func (i *Issuer) Verify(raw string) (Ticket, error) {
	var claims seatClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	matchID, err := uuid.Parse(claims.MatchID)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: match id: %v", ErrInvalidTicket, err)
	}
	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: subject: %v", ErrInvalidTicket, err)
	}
	if claims.Seat < 0 || claims.Seat > 1 {
		return Ticket{}, fmt.Errorf("%w: seat %d", ErrInvalidTicket, claims.Seat)
	}
	return Ticket{
		MatchID:   matchID,
		PlayerID:  playerID,
		Seat:      claims.Seat,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
