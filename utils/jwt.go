package utils

import (
	"errors"
	"os"
	"time"

	"barberflow/config"

	"github.com/golang-jwt/jwt/v5"
)

func getSecret() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	return []byte(secret)
}

// StaffClaims is what the admin API puts inside a staff token.
type StaffClaims struct {
	StaffID string
	Email   string
	ShopID  string
	Role    string
}

// GenerateStaffToken creates a signed JWT for a staff account. The
// token carries the shop id so every admin request is scoped without a
// second lookup. It expires after the specified duration.
func GenerateStaffToken(sc StaffClaims, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     sc.StaffID,
		"email":   sc.Email,
		"shop_id": sc.ShopID,
		"role":    sc.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSecret())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getSecret(), nil
	})
}

// ExtractStaffClaims validates a token string and returns the staff
// claims it carries, or an error if validation fails.
func ExtractStaffClaims(tokenString string) (*StaffClaims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}

	sc := &StaffClaims{StaffID: sub}
	if v, ok := claims["email"].(string); ok {
		sc.Email = v
	}
	if v, ok := claims["shop_id"].(string); ok {
		sc.ShopID = v
	}
	if v, ok := claims["role"].(string); ok {
		sc.Role = v
	}
	return sc, nil
}
