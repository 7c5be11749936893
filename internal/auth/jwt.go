package auth

import (
	"fmt"
	"time"

	"cribbage-live-go/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims binds a session token to one player in one game. There are no user
// accounts: joining a game mints a token, and the token is the only proof of
// seat ownership on reconnect.
type Claims struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

func GenerateToken(playerID, gameID string, seat int, name string, cfg config.Config) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("JWT_SECRET is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		PlayerID: playerID,
		GameID:   gameID,
		Seat:     seat,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(cfg.JWTSecret))
}

func ParseAndValidateToken(tokenString string, cfg config.Config) (*Claims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
