package utils

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type JWTUtil struct {
	secret string
}

func NewJWTUtil(secret string) *JWTUtil {
	return &JWTUtil{secret: secret}
}

func (j *JWTUtil) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(72 * time.Hour).Unix(),
		"iat":     now.Unix(),
		"jti":     GenerateCode(10),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTUtil) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secret), nil
	})
}

// Claims extracts user_id and role from a validated token.
func (j *JWTUtil) Claims(tokenString string) (userID, role string, err error) {
	token, err := j.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}
	userID, _ = claims["user_id"].(string)
	role, _ = claims["role"].(string)
	if userID == "" || role == "" {
		return "", "", errors.New("incomplete token claims")
	}
	return userID, role, nil
}

func (j *JWTUtil) IsTokenBlacklisted(ctx context.Context, tokenString string, redis *RedisClient) bool {
	return redis.Exists(ctx, fmt.Sprintf("blacklist:%s", tokenString))
}

const codeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateCode(length int) string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = codeCharset[seededRand.Intn(len(codeCharset))]
	}
	return string(b)
}
