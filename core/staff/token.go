package staff

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	salt    = []byte("kozi.core.staff.token")
	nowFunc = time.Now // mockable

	secretKey                 []byte
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the account's role-qualified ID.
func EncodeUID(acct Account) string {
	return base64.RawURLEncoding.EncodeToString([]byte(acct.Role + ":" + strconv.Itoa(acct.ID())))
}

// decodeUID reverses EncodeUID.
func decodeUID(uid string) (role string, id int, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", 0, errInvalidToken
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) < 2 {
		return "", 0, errInvalidToken
	}
	id, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, errInvalidToken
	}
	return parts[0], id, nil
}

// makeToken generates a password reset token for a given account.
func makeToken(acct Account) string {
	return makeTokenWithTimestamp(acct, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a password reset token for a given account is valid.
func verifyToken(acct Account, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken := makeTokenWithTimestamp(acct, ts)
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(time.Now()) - ts) > int(passwordResetTimeoutDelta/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(acct Account, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, sign(hashValue(acct, ts)))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(val []byte) string {
	key := sha256.Sum256(append(salt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashValue(acct Account, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(acct.Role)
	val.WriteString(strconv.Itoa(acct.ID()))
	val.Write(acct.passwordHash())
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
