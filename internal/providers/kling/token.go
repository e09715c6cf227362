package kling

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type jwtClaims struct {
	Iss string `json:"iss"`
	Exp int64  `json:"exp"`
	Nbf int64  `json:"nbf"`
}

// mintToken builds the HS256 JWT Kling expects: issued by the access key,
// valid for 30 minutes, not-before backdated 5 seconds for clock skew.
func mintToken(accessKey, secretKey string, now time.Time) (string, error) {
	header, err := json.Marshal(jwtHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("encode jwt header: %w", err)
	}
	claims, err := json.Marshal(jwtClaims{
		Iss: accessKey,
		Exp: now.Unix() + 1800,
		Nbf: now.Unix() - 5,
	})
	if err != nil {
		return "", fmt.Errorf("encode jwt claims: %w", err)
	}

	data := base64url(header) + "." + base64url(claims)
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(data))
	return data + "." + base64url(mac.Sum(nil)), nil
}

func base64url(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
