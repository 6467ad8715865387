package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL matches the session length the frontend expects.
const tokenTTL = 7 * 24 * time.Hour

// Claims is the identity carried by a signed token.
type Claims struct {
	UserID   int
	Username string
	Name     string
	Role     string
}

func getJWTSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return []byte(secret), nil
}

func GenerateToken(userID int, username, name, role string) (string, error) {
	if userID <= 0 {
		return "", errors.New("empty userID passed to GenerateToken")
	}

	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"userID":   userID,
		"username": username,
		"name":     name,
		"role":     role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenString string) (Claims, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return Claims{}, err
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid token claims")
	}

	// JSON numbers decode as float64.
	userID, _ := mapClaims["userID"].(float64)
	username, _ := mapClaims["username"].(string)
	name, _ := mapClaims["name"].(string)
	role, _ := mapClaims["role"].(string)

	return Claims{UserID: int(userID), Username: username, Name: name, Role: role}, nil
}
